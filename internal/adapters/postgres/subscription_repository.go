package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/viralforge/prompt-gateway/internal/domain"
	"gorm.io/gorm"
)

type subscriptionRepository struct {
	db *gorm.DB
}

// GetActiveByUser resolves the user's authoritative subscription, newest
// start date first, with its plan features attached.
func (r *subscriptionRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (domain.Subscription, error) {
	var sub subscriptionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = TRUE", userID).
		Order("start_date DESC").
		Take(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Subscription{}, domain.ErrNotFound
		}
		return domain.Subscription{}, err
	}

	var plan planModel
	if err := r.db.WithContext(ctx).Where("plan_id = ?", sub.PlanID).Take(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Subscription{}, domain.ErrNotFound
		}
		return domain.Subscription{}, err
	}

	var features domain.PlanFeatures
	if plan.Features != "" {
		// malformed feature maps degrade to zero values, not failures
		_ = json.Unmarshal([]byte(plan.Features), &features)
	}

	return domain.Subscription{
		SubscriptionID: sub.SubscriptionID,
		UserID:         sub.UserID,
		PlanID:         sub.PlanID,
		Plan: domain.SubscriptionPlan{
			PlanID:      plan.PlanID,
			Name:        plan.Name,
			Slug:        plan.Slug,
			Description: plan.Description,
			Features:    features,
			IsActive:    plan.IsActive,
		},
		StartDate: sub.StartDate,
		EndDate:   sub.EndDate,
		IsActive:  sub.IsActive,
	}, nil
}
