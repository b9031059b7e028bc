package application

import "time"

type Config struct {
	OTPLength               int
	OTPTTL                  time.Duration
	OTPCooldown             time.Duration
	OTPMaxAttempts          int
	VerificationTokenMaxAge time.Duration

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	DefaultDailyQuota int
	HistoryLimit      int

	// DebugExposeOTP echoes the raw code in signup/resend responses.
	// Strictly a local-dev switch; defaults off.
	DebugExposeOTP bool
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type SignupResponse struct {
	Message           string `json:"message"`
	VerificationToken string `json:"verification_token"`
	DebugOTP          string `json:"__debug_only_otp,omitempty"`
}

type ResendRequest struct {
	VerificationToken string `json:"verification_token"`
}

type VerifyRequest struct {
	VerificationToken string `json:"verification_token"`
	Code              string `json:"otp"`
}

type VerifyResponse struct {
	Message string `json:"message"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type RefreshResponse struct {
	Access string `json:"access"`
}

type ChatRequest struct {
	Prompt string `json:"prompt"`
}
