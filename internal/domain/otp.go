package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Purpose scopes an OTP challenge to the flow that issued it.
type Purpose string

const (
	PurposeSignup        Purpose = "signup"
	PurposePasswordReset Purpose = "password_reset"
	PurposeLogin         Purpose = "login"
)

// ValidPurpose reports whether p is one of the known challenge purposes.
func ValidPurpose(p Purpose) bool {
	switch p {
	case PurposeSignup, PurposePasswordReset, PurposeLogin:
		return true
	}
	return false
}

// OTPChallenge is one issued code. Only the SHA-256 hash of the code is ever
// stored; rows are never deleted so the table doubles as the attempt audit.
type OTPChallenge struct {
	ChallengeID  uuid.UUID
	UserID       uuid.UUID
	Purpose      Purpose
	CodeHash     string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	AttemptCount int
	MaxAttempts  int
	IsUsed       bool
}

// IsExpired reports whether the challenge is past its expiry at the given time.
func (c OTPChallenge) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// AttemptsExhausted reports whether the attempt ceiling has been reached.
func (c OTPChallenge) AttemptsExhausted() bool {
	return c.AttemptCount >= c.MaxAttempts
}

// GenerateCode produces a fixed-length decimal code from crypto/rand.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// HashCode is the one-way fingerprint stored in place of the raw code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// MatchesCode compares a supplied code against the stored hash in constant time.
func (c OTPChallenge) MatchesCode(code string) bool {
	return subtle.ConstantTimeCompare([]byte(HashCode(code)), []byte(c.CodeHash)) == 1
}
