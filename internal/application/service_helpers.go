package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/viralforge/prompt-gateway/internal/domain"
	"github.com/viralforge/prompt-gateway/internal/ports"
)

// normalizeEmail canonicalizes and validates email format before persistence/comparison.
func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}

const minPasswordLength = 6

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	return nil
}

// deliverCode hands the raw code to the notifier. Delivery is fire-and-forget:
// a failure is logged (code excluded) and the flow proceeds, since the client
// can always resend.
func (s *Service) deliverCode(ctx context.Context, email, code string, purpose domain.Purpose) {
	if err := s.notifier.SendCode(ctx, email, code, purpose, s.cfg.OTPTTL); err != nil {
		appLogger().WarnContext(ctx, "otp delivery failed",
			"operation", "send_code",
			"outcome", "failure",
			"purpose", string(purpose),
			"email", domain.MaskEmail(email),
			"error", err.Error(),
		)
	}
}

func appLogger() *slog.Logger {
	return slog.Default().With(
		"service", "prompt-gateway",
		"module", "application",
		"layer", "application",
	)
}

func (s *Service) signTokenPair(claimsBase ports.AuthClaims) (access string, refresh string, err error) {
	now := claimsBase.IssuedAt
	access, err = s.tokenSigner.Sign(ports.AuthClaims{
		UserID:    claimsBase.UserID,
		Email:     claimsBase.Email,
		TokenType: "access",
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	})
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	refresh, err = s.tokenSigner.Sign(ports.AuthClaims{
		UserID:    claimsBase.UserID,
		Email:     claimsBase.Email,
		TokenType: "refresh",
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
	})
	if err != nil {
		return "", "", fmt.Errorf("sign refresh token: %w", err)
	}
	return access, refresh, nil
}

// quotaDayKey scopes the usage counter to (user, UTC calendar day).
func quotaDayKey(userID string, now time.Time) string {
	return "usage:" + userID + ":" + now.UTC().Format("2006-01-02")
}
