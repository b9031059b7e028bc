package postgres

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/prompt-gateway/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Users         ports.UserRepository
	Subscriptions ports.SubscriptionRepository
	OTPs          ports.OTPRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:         &userRepository{db: db},
		Subscriptions: &subscriptionRepository{db: db},
		OTPs:          &otpRepository{db: db},
	}
}

type userModel struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	IsVerified   bool      `gorm:"column:is_verified"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type planModel struct {
	PlanID      uuid.UUID `gorm:"column:plan_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name"`
	Slug        string    `gorm:"column:slug"`
	Description string    `gorm:"column:description"`
	Features    string    `gorm:"column:features;type:jsonb"`
	IsActive    bool      `gorm:"column:is_active"`
}

func (planModel) TableName() string { return "subscription_plans" }

type subscriptionModel struct {
	SubscriptionID uuid.UUID  `gorm:"column:subscription_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID  `gorm:"column:user_id"`
	PlanID         uuid.UUID  `gorm:"column:plan_id"`
	StartDate      time.Time  `gorm:"column:start_date"`
	EndDate        *time.Time `gorm:"column:end_date"`
	IsActive       bool       `gorm:"column:is_active"`
}

func (subscriptionModel) TableName() string { return "subscriptions" }

type otpChallengeModel struct {
	ChallengeID  uuid.UUID `gorm:"column:challenge_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id"`
	Purpose      string    `gorm:"column:purpose"`
	CodeHash     string    `gorm:"column:code_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	ExpiresAt    time.Time `gorm:"column:expires_at"`
	AttemptCount int       `gorm:"column:attempt_count"`
	MaxAttempts  int       `gorm:"column:max_attempts"`
	IsUsed       bool      `gorm:"column:is_used"`
}

func (otpChallengeModel) TableName() string { return "otp_challenges" }

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
