package ports

import (
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/prompt-gateway/internal/domain"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AuthClaims is the payload of an issued access or refresh token.
type AuthClaims struct {
	UserID    uuid.UUID
	Email     string
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenSigner signs and validates the access/refresh credential pair handed
// out after verification or login.
type TokenSigner interface {
	Sign(claims AuthClaims) (string, error)
	ParseAndValidate(token string) (AuthClaims, error)
}

// VerificationClaims bind a pending signup to its OTP challenge so the client
// can resume verify/resend without re-sending the email address.
type VerificationClaims struct {
	ChallengeID uuid.UUID
	UserID      uuid.UUID
	Purpose     domain.Purpose
	IssuedAt    time.Time
}

// VerificationTokenCodec signs the claim set into an opaque string safe to
// hand to an untrusted client, and verifies it on the way back. Decode
// enforces the token max age, which is independent of the OTP's own expiry.
type VerificationTokenCodec interface {
	Encode(claims VerificationClaims) (string, error)
	Decode(token string) (VerificationClaims, error)
}
