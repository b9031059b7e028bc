package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the account identity owned by the credential store.
// IsVerified flips exactly once, on successful OTP verification.
type User struct {
	UserID       uuid.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MaskEmail hides most of an address so flows can be traced in logs without
// exposing the identity. Every layer masks the same way so one address stays
// correlatable across log lines.
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "***"
	}
	name, dom := email[:at], email[at+1:]
	left := string(name[0]) + "***"
	if len(name) > 1 {
		left += string(name[len(name)-1])
	}
	dot := strings.Index(dom, ".")
	if dot <= 0 {
		return left + "@***"
	}
	return left + "@" + string(dom[0]) + "***." + dom[dot+1:]
}

// PlanFeatures is the feature map resolved from the user's active plan.
// MaxMessages is the daily chat allowance; zero or negative means unmetered.
type PlanFeatures struct {
	MaxMessages int  `json:"max_messages"`
	Analytics   bool `json:"analytics"`
}

// SubscriptionPlan is static plan configuration (free/pro/...).
type SubscriptionPlan struct {
	PlanID      uuid.UUID
	Name        string
	Slug        string
	Description string
	Features    PlanFeatures
	IsActive    bool
}

// Subscription binds a user to a plan. At most one active subscription per
// user is treated as authoritative, newest start date first.
type Subscription struct {
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
	PlanID         uuid.UUID
	Plan           SubscriptionPlan
	StartDate      time.Time
	EndDate        *time.Time
	IsActive       bool
}
