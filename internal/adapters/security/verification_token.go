package security

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/viralforge/prompt-gateway/internal/domain"
	"github.com/viralforge/prompt-gateway/internal/ports"
)

// verifySalt domain-separates the verification-token key from the session
// signing secret so one token class can never validate as the other.
const verifySalt = "email-otp-verify"

// VerificationTokenCodec signs {otp_id, user_id, purpose, issued_at} into a
// compact HS256 token. Max age is enforced at decode time and is independent
// of the referenced challenge's own expiry.
type VerificationTokenCodec struct {
	key    []byte
	maxAge time.Duration
}

func NewVerificationTokenCodec(secret string, maxAge time.Duration) (*VerificationTokenCodec, error) {
	if secret == "" {
		return nil, errors.New("verification token secret is required")
	}
	if maxAge <= 0 {
		maxAge = 30 * time.Minute
	}
	derived := sha256.Sum256([]byte(verifySalt + ":" + secret))
	return &VerificationTokenCodec{key: derived[:], maxAge: maxAge}, nil
}

type verificationJWTClaims struct {
	ChallengeID string `json:"otp_id"`
	UserID      string `json:"uid"`
	Purpose     string `json:"purpose"`
	jwt.RegisteredClaims
}

func (c *VerificationTokenCodec) Encode(claims ports.VerificationClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, verificationJWTClaims{
		ChallengeID: claims.ChallengeID.String(),
		UserID:      claims.UserID.String(),
		Purpose:     string(claims.Purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.IssuedAt.Add(c.maxAge)),
		},
	})
	return token.SignedString(c.key)
}

func (c *VerificationTokenCodec) Decode(raw string) (ports.VerificationClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &verificationJWTClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ports.VerificationClaims{}, domain.ErrTokenExpired
		}
		return ports.VerificationClaims{}, domain.ErrBadSignature
	}
	claims, ok := parsed.Claims.(*verificationJWTClaims)
	if !ok || !parsed.Valid {
		return ports.VerificationClaims{}, domain.ErrBadSignature
	}

	challengeID, err := uuid.Parse(claims.ChallengeID)
	if err != nil {
		return ports.VerificationClaims{}, domain.ErrBadSignature
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ports.VerificationClaims{}, domain.ErrBadSignature
	}
	purpose := domain.Purpose(claims.Purpose)
	if !domain.ValidPurpose(purpose) {
		return ports.VerificationClaims{}, domain.ErrBadSignature
	}

	return ports.VerificationClaims{
		ChallengeID: challengeID,
		UserID:      userID,
		Purpose:     purpose,
		IssuedAt:    claims.IssuedAt.Time.UTC(),
	}, nil
}
