package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/prompt-gateway/internal/domain"
	"github.com/viralforge/prompt-gateway/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultPlanSlug = "free"

type userRepository struct {
	db *gorm.DB
}

// CreateWithDefaultPlan inserts the user and an active free-tier subscription
// in one transaction, creating the free plan on first use. A user therefore
// never exists without a plan to meter against.
func (r *userRepository) CreateWithDefaultPlan(ctx context.Context, params ports.CreateUserParams) (domain.User, error) {
	var result domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := userModel{
			Email:        params.Email,
			PasswordHash: params.PasswordHash,
			FirstName:    params.FirstName,
			LastName:     params.LastName,
			IsVerified:   false,
			CreatedAt:    params.RegisteredAtUTC,
			UpdatedAt:    params.RegisteredAtUTC,
		}
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateEmail
			}
			return err
		}

		plan, err := ensureDefaultPlan(tx)
		if err != nil {
			return err
		}
		sub := subscriptionModel{
			UserID:    rec.UserID,
			PlanID:    plan.PlanID,
			StartDate: params.RegisteredAtUTC,
			IsActive:  true,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}

		result = toDomainUser(rec)
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return result, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return toDomainUser(rec), nil
}

func (r *userRepository) GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return toDomainUser(rec), nil
}

// MarkVerified flips the flag conditionally so the mutation lands at most
// once per user even under concurrent verifies.
func (r *userRepository) MarkVerified(ctx context.Context, userID uuid.UUID, verifiedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&userModel{}).
		Where("user_id = ? AND is_verified = FALSE", userID).
		Updates(map[string]any{"is_verified": true, "updated_at": verifiedAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyVerified
	}
	return nil
}

func ensureDefaultPlan(tx *gorm.DB) (planModel, error) {
	var plan planModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("slug = ?", defaultPlanSlug).Take(&plan).Error
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return planModel{}, err
	}

	features, _ := json.Marshal(domain.PlanFeatures{MaxMessages: 10})
	plan = planModel{
		Name:        "Free",
		Slug:        defaultPlanSlug,
		Description: "Default free tier",
		Features:    string(features),
		IsActive:    true,
	}
	if err := tx.Create(&plan).Error; err != nil {
		if isUniqueViolation(err) {
			// a concurrent signup created it first
			if err := tx.Where("slug = ?", defaultPlanSlug).Take(&plan).Error; err != nil {
				return planModel{}, err
			}
			return plan, nil
		}
		return planModel{}, err
	}
	return plan, nil
}

func toDomainUser(rec userModel) domain.User {
	return domain.User{
		UserID:       rec.UserID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		FirstName:    rec.FirstName,
		LastName:     rec.LastName,
		IsVerified:   rec.IsVerified,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}
