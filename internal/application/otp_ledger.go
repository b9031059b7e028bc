package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/prompt-gateway/internal/domain"
	"github.com/viralforge/prompt-gateway/internal/ports"
)

// LedgerConfig carries the issuance and verification policy knobs.
type LedgerConfig struct {
	CodeLength  int
	TTL         time.Duration
	Cooldown    time.Duration
	MaxAttempts int
}

// OTPLedger tracks issued codes per (user, purpose): it enforces the issuance
// cooldown, invalidates superseded challenges, and runs the attempt policy on
// verification. The repository provides the per-challenge mutual exclusion.
type OTPLedger struct {
	repo  ports.OTPRepository
	cfg   LedgerConfig
	nowFn func() time.Time
}

func NewOTPLedger(repo ports.OTPRepository, cfg LedgerConfig, nowFn func() time.Time) *OTPLedger {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &OTPLedger{repo: repo, cfg: cfg, nowFn: nowFn}
}

// Issue invalidates every active challenge for (user, purpose) and creates a
// fresh one, returning the raw code exactly once. Issuance is refused with
// ErrThrottled while the most recent active challenge is younger than the
// cooldown window.
func (l *OTPLedger) Issue(ctx context.Context, userID uuid.UUID, purpose domain.Purpose) (domain.OTPChallenge, string, error) {
	now := l.nowFn()

	last, err := l.repo.LatestActive(ctx, userID, purpose, now)
	switch {
	case err == nil:
		if now.Sub(last.CreatedAt) < l.cfg.Cooldown {
			return domain.OTPChallenge{}, "", domain.ErrThrottled
		}
	case errors.Is(err, domain.ErrNotFound):
		// no active challenge, nothing to wait for
	default:
		return domain.OTPChallenge{}, "", fmt.Errorf("load latest challenge: %w", err)
	}

	code, err := domain.GenerateCode(l.cfg.CodeLength)
	if err != nil {
		return domain.OTPChallenge{}, "", fmt.Errorf("generate code: %w", err)
	}

	challenge, err := l.repo.CreateInvalidatingActive(ctx, ports.NewChallengeParams{
		UserID:      userID,
		Purpose:     purpose,
		CodeHash:    domain.HashCode(code),
		CreatedAt:   now,
		ExpiresAt:   now.Add(l.cfg.TTL),
		MaxAttempts: l.cfg.MaxAttempts,
	})
	if err != nil {
		return domain.OTPChallenge{}, "", fmt.Errorf("create challenge: %w", err)
	}
	return challenge, code, nil
}

// Verify runs the policy checks in precedence order, then the constant-time
// hash comparison. Preconditions (used, expired, exhausted) short-circuit
// without consuming an attempt; a failed comparison always costs one.
func (l *OTPLedger) Verify(ctx context.Context, challenge domain.OTPChallenge, code string) error {
	if challenge.IsUsed {
		return domain.ErrOTPAlreadyUsed
	}
	if challenge.IsExpired(l.nowFn()) {
		return domain.ErrOTPExpired
	}
	if challenge.AttemptsExhausted() {
		return domain.ErrOTPAttemptsExceeded
	}

	if !challenge.MatchesCode(code) {
		if _, err := l.repo.IncrementAttempts(ctx, challenge.ChallengeID); err != nil {
			return fmt.Errorf("record attempt: %w", err)
		}
		return domain.ErrOTPCodeMismatch
	}

	won, err := l.repo.MarkUsed(ctx, challenge.ChallengeID)
	if err != nil {
		return fmt.Errorf("mark challenge used: %w", err)
	}
	if !won {
		// a concurrent verify settled this challenge first
		return domain.ErrOTPAlreadyUsed
	}
	return nil
}

// Get loads a challenge by id for token cross-checking.
func (l *OTPLedger) Get(ctx context.Context, challengeID uuid.UUID) (domain.OTPChallenge, error) {
	return l.repo.GetByID(ctx, challengeID)
}
