package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/viralforge/prompt-gateway/internal/domain"
	"github.com/viralforge/prompt-gateway/internal/ports"
)

// Signup creates the user with a default free-tier subscription, issues the
// first OTP challenge and hands back the signed verification token. The raw
// code travels out-of-band through the notifier only.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (SignupResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return SignupResponse{}, err
	}
	if err := validatePassword(req.Password); err != nil {
		return SignupResponse{}, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return SignupResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateWithDefaultPlan(ctx, ports.CreateUserParams{
		Email:           email,
		PasswordHash:    passwordHash,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		RegisteredAtUTC: s.now(),
	})
	if err != nil {
		return SignupResponse{}, err
	}

	// A cooldown hit here can only come from a racing signup for the same
	// email; the user row already exists, so surface the throttle instead of
	// discarding it.
	challenge, code, err := s.ledger.Issue(ctx, user.UserID, domain.PurposeSignup)
	if err != nil {
		return SignupResponse{}, err
	}

	token, err := s.codec.Encode(ports.VerificationClaims{
		ChallengeID: challenge.ChallengeID,
		UserID:      user.UserID,
		Purpose:     challenge.Purpose,
		IssuedAt:    s.now(),
	})
	if err != nil {
		return SignupResponse{}, fmt.Errorf("encode verification token: %w", err)
	}

	s.deliverCode(ctx, user.Email, code, domain.PurposeSignup)
	appLogger().InfoContext(ctx, "signup challenge issued",
		"operation", "signup",
		"outcome", "success",
		"email", domain.MaskEmail(user.Email),
	)

	resp := SignupResponse{
		Message:           "Signup successful. We emailed you a verification code.",
		VerificationToken: token,
	}
	if s.cfg.DebugExposeOTP {
		resp.DebugOTP = code
	}
	return resp, nil
}

// Resend re-issues the signup challenge referenced by a verification token.
// The old token goes semantically stale once its challenge is invalidated.
func (s *Service) Resend(ctx context.Context, req ResendRequest) (SignupResponse, error) {
	claims, err := s.decodeSignupToken(req.VerificationToken)
	if err != nil {
		return SignupResponse{}, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return SignupResponse{}, err
	}
	if user.IsVerified {
		return SignupResponse{}, domain.ErrAlreadyVerified
	}

	challenge, code, err := s.ledger.Issue(ctx, user.UserID, domain.PurposeSignup)
	if err != nil {
		return SignupResponse{}, err
	}

	token, err := s.codec.Encode(ports.VerificationClaims{
		ChallengeID: challenge.ChallengeID,
		UserID:      user.UserID,
		Purpose:     challenge.Purpose,
		IssuedAt:    s.now(),
	})
	if err != nil {
		return SignupResponse{}, fmt.Errorf("encode verification token: %w", err)
	}

	s.deliverCode(ctx, user.Email, code, domain.PurposeSignup)
	appLogger().InfoContext(ctx, "signup challenge reissued",
		"operation", "resend_otp",
		"outcome", "success",
		"email", domain.MaskEmail(user.Email),
	)

	resp := SignupResponse{
		Message:           "A new verification code has been sent.",
		VerificationToken: token,
	}
	if s.cfg.DebugExposeOTP {
		resp.DebugOTP = code
	}
	return resp, nil
}

// Verify settles the OTP challenge referenced by the verification token.
// On success the user becomes verified and receives the access/refresh pair.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (VerifyResponse, error) {
	if req.Code == "" {
		return VerifyResponse{}, fmt.Errorf("%w: otp is required", domain.ErrInvalidInput)
	}
	claims, err := s.decodeSignupToken(req.VerificationToken)
	if err != nil {
		return VerifyResponse{}, err
	}

	challenge, err := s.ledger.Get(ctx, claims.ChallengeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return VerifyResponse{}, domain.ErrInvalidRequest
		}
		return VerifyResponse{}, err
	}
	if challenge.UserID != claims.UserID || challenge.Purpose != claims.Purpose {
		return VerifyResponse{}, domain.ErrInvalidRequest
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return VerifyResponse{}, domain.ErrInvalidRequest
		}
		return VerifyResponse{}, err
	}
	if user.IsVerified {
		return VerifyResponse{}, domain.ErrAlreadyVerified
	}

	if err := s.ledger.Verify(ctx, challenge, req.Code); err != nil {
		appLogger().WarnContext(ctx, "otp verification rejected",
			"operation", "verify_otp",
			"outcome", "failure",
			"email", domain.MaskEmail(user.Email),
			"reason", err.Error(),
		)
		return VerifyResponse{}, err
	}

	if err := s.users.MarkVerified(ctx, user.UserID, s.now()); err != nil {
		return VerifyResponse{}, fmt.Errorf("mark verified: %w", err)
	}

	access, refresh, err := s.signTokenPair(ports.AuthClaims{
		UserID:   user.UserID,
		Email:    user.Email,
		IssuedAt: s.now(),
	})
	if err != nil {
		return VerifyResponse{}, err
	}

	appLogger().InfoContext(ctx, "account verified",
		"operation", "verify_otp",
		"outcome", "success",
		"email", domain.MaskEmail(user.Email),
	)
	return VerifyResponse{
		Message: "Verification successful.",
		Access:  access,
		Refresh: refresh,
	}, nil
}

// Login is the standard password check gated by the verified flag.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return LoginResponse{}, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return LoginResponse{}, domain.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return LoginResponse{}, domain.ErrNotVerified
	}

	access, refresh, err := s.signTokenPair(ports.AuthClaims{
		UserID:   user.UserID,
		Email:    user.Email,
		IssuedAt: s.now(),
	})
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (RefreshResponse, error) {
	claims, err := s.tokenSigner.ParseAndValidate(req.Refresh)
	if err != nil || claims.TokenType != "refresh" {
		return RefreshResponse{}, domain.ErrUnauthorized
	}

	now := s.now()
	access, err := s.tokenSigner.Sign(ports.AuthClaims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		TokenType: "access",
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	})
	if err != nil {
		return RefreshResponse{}, fmt.Errorf("sign access token: %w", err)
	}
	return RefreshResponse{Access: access}, nil
}

// ValidateAccessToken guards the metered AI routes.
func (s *Service) ValidateAccessToken(_ context.Context, raw string) (ports.AuthClaims, error) {
	claims, err := s.tokenSigner.ParseAndValidate(raw)
	if err != nil || claims.TokenType != "access" {
		return ports.AuthClaims{}, domain.ErrUnauthorized
	}
	return claims, nil
}

func (s *Service) decodeSignupToken(token string) (ports.VerificationClaims, error) {
	if token == "" {
		return ports.VerificationClaims{}, fmt.Errorf("%w: verification_token is required", domain.ErrInvalidInput)
	}
	claims, err := s.codec.Decode(token)
	if err != nil {
		return ports.VerificationClaims{}, err
	}
	if claims.Purpose != domain.PurposeSignup {
		return ports.VerificationClaims{}, domain.ErrInvalidRequest
	}
	return claims, nil
}
