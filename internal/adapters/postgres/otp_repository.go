package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/prompt-gateway/internal/domain"
	"github.com/viralforge/prompt-gateway/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type otpRepository struct {
	db *gorm.DB
}

// CreateInvalidatingActive runs invalidate-then-insert inside one transaction
// holding row locks on the user's unused challenges, so a resend racing a
// verify can never leave two simultaneously active challenges.
func (r *otpRepository) CreateInvalidatingActive(ctx context.Context, params ports.NewChallengeParams) (domain.OTPChallenge, error) {
	var result domain.OTPChallenge
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []otpChallengeModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND purpose = ? AND is_used = FALSE", params.UserID, string(params.Purpose)).
			Find(&stale).Error; err != nil {
			return err
		}
		if len(stale) > 0 {
			if err := tx.Model(&otpChallengeModel{}).
				Where("user_id = ? AND purpose = ? AND is_used = FALSE", params.UserID, string(params.Purpose)).
				Update("is_used", true).Error; err != nil {
				return err
			}
		}

		rec := otpChallengeModel{
			UserID:      params.UserID,
			Purpose:     string(params.Purpose),
			CodeHash:    params.CodeHash,
			CreatedAt:   params.CreatedAt,
			ExpiresAt:   params.ExpiresAt,
			MaxAttempts: params.MaxAttempts,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		result = toDomainChallenge(rec)
		return nil
	})
	if err != nil {
		return domain.OTPChallenge{}, err
	}
	return result, nil
}

func (r *otpRepository) LatestActive(ctx context.Context, userID uuid.UUID, purpose domain.Purpose, now time.Time) (domain.OTPChallenge, error) {
	var rec otpChallengeModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ? AND is_used = FALSE AND expires_at > ?", userID, string(purpose), now).
		Order("created_at DESC").
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.OTPChallenge{}, domain.ErrNotFound
		}
		return domain.OTPChallenge{}, err
	}
	return toDomainChallenge(rec), nil
}

func (r *otpRepository) GetByID(ctx context.Context, challengeID uuid.UUID) (domain.OTPChallenge, error) {
	var rec otpChallengeModel
	if err := r.db.WithContext(ctx).Where("challenge_id = ?", challengeID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.OTPChallenge{}, domain.ErrNotFound
		}
		return domain.OTPChallenge{}, err
	}
	return toDomainChallenge(rec), nil
}

func (r *otpRepository) IncrementAttempts(ctx context.Context, challengeID uuid.UUID) (int, error) {
	res := r.db.WithContext(ctx).Model(&otpChallengeModel{}).
		Where("challenge_id = ?", challengeID).
		Update("attempt_count", gorm.Expr("attempt_count + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrNotFound
	}

	var rec otpChallengeModel
	if err := r.db.WithContext(ctx).Select("attempt_count").
		Where("challenge_id = ?", challengeID).Take(&rec).Error; err != nil {
		return 0, err
	}
	return rec.AttemptCount, nil
}

// MarkUsed is a conditional update; RowsAffected tells the caller whether it
// won the flip against a concurrent verify.
func (r *otpRepository) MarkUsed(ctx context.Context, challengeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&otpChallengeModel{}).
		Where("challenge_id = ? AND is_used = FALSE", challengeID).
		Update("is_used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func toDomainChallenge(rec otpChallengeModel) domain.OTPChallenge {
	return domain.OTPChallenge{
		ChallengeID:  rec.ChallengeID,
		UserID:       rec.UserID,
		Purpose:      domain.Purpose(rec.Purpose),
		CodeHash:     rec.CodeHash,
		CreatedAt:    rec.CreatedAt,
		ExpiresAt:    rec.ExpiresAt,
		AttemptCount: rec.AttemptCount,
		MaxAttempts:  rec.MaxAttempts,
		IsUsed:       rec.IsUsed,
	}
}
