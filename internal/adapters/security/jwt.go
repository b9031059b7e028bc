package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/viralforge/prompt-gateway/internal/ports"
)

// JWTSigner implements HMAC token signing/parsing for the access/refresh
// credential pair. The secret and algorithm stay at adapter level so the
// application layer remains crypto-library agnostic.
type JWTSigner struct {
	secret []byte
	method jwt.SigningMethod
}

// NewJWTSigner builds a signer from the configured shared secret and
// algorithm name (HS256, HS384 or HS512).
func NewJWTSigner(secret, algorithm string) (*JWTSigner, error) {
	if secret == "" {
		return nil, errors.New("jwt signing secret is required")
	}
	var method jwt.SigningMethod
	switch algorithm {
	case "", jwt.SigningMethodHS256.Alg():
		method = jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		method = jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm: %s", algorithm)
	}
	return &JWTSigner{secret: []byte(secret), method: method}, nil
}

type authJWTClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (s *JWTSigner) Sign(claims ports.AuthClaims) (string, error) {
	token := jwt.NewWithClaims(s.method, authJWTClaims{
		UserID:    claims.UserID.String(),
		Email:     claims.Email,
		TokenType: claims.TokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	return token.SignedString(s.secret)
}

func (s *JWTSigner) ParseAndValidate(raw string) (ports.AuthClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &authJWTClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return ports.AuthClaims{}, err
	}
	claims, ok := parsed.Claims.(*authJWTClaims)
	if !ok || !parsed.Valid {
		return ports.AuthClaims{}, errors.New("invalid token claims")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ports.AuthClaims{}, fmt.Errorf("parse user_id: %w", err)
	}

	return ports.AuthClaims{
		UserID:    userID,
		Email:     claims.Email,
		TokenType: claims.TokenType,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}
