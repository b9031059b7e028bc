package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/prompt-gateway/internal/domain"
)

// CreateUserParams captures signup inputs for atomic user provisioning.
// The default free-tier subscription is created in the same transaction so a
// user never exists without a plan to meter against.
type CreateUserParams struct {
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	RegisteredAtUTC time.Time
}

// UserRepository defines persistence operations for user identities.
type UserRepository interface {
	CreateWithDefaultPlan(ctx context.Context, params CreateUserParams) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
	// MarkVerified flips the verified flag once. Implementations must make the
	// update conditional on the flag being unset so concurrent verifies cannot
	// both observe a state change.
	MarkVerified(ctx context.Context, userID uuid.UUID, verifiedAt time.Time) error
}

// SubscriptionRepository resolves a user to their active plan. The core only
// reads from it; plan management lives outside this service.
type SubscriptionRepository interface {
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (domain.Subscription, error)
}

// NewChallengeParams are the inputs for a fresh OTP challenge row.
type NewChallengeParams struct {
	UserID      uuid.UUID
	Purpose     domain.Purpose
	CodeHash    string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	MaxAttempts int
}

// OTPRepository owns challenge rows. Challenges are never deleted; they go
// logically dead via the used flag or expiry.
type OTPRepository interface {
	// CreateInvalidatingActive marks every unused challenge for
	// (user, purpose) as used and inserts the new one, in a single unit of
	// mutual exclusion per (user, purpose).
	CreateInvalidatingActive(ctx context.Context, params NewChallengeParams) (domain.OTPChallenge, error)
	// LatestActive returns the most recently created unused, unexpired
	// challenge for (user, purpose), or domain.ErrNotFound.
	LatestActive(ctx context.Context, userID uuid.UUID, purpose domain.Purpose, now time.Time) (domain.OTPChallenge, error)
	GetByID(ctx context.Context, challengeID uuid.UUID) (domain.OTPChallenge, error)
	IncrementAttempts(ctx context.Context, challengeID uuid.UUID) (int, error)
	// MarkUsed is conditional on the used flag being unset and reports whether
	// this call won the flip. Concurrent verifies settle here.
	MarkUsed(ctx context.Context, challengeID uuid.UUID) (bool, error)
}
