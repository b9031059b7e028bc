package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether email or password failed.
	// The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotVerified is returned when the password matched but the account has
	// not completed OTP verification. Distinct from ErrInvalidCredentials so
	// clients can prompt for verification instead of a password retry.
	ErrNotVerified = errors.New("account not verified")
	// ErrDuplicateEmail signals a signup against an already registered email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrAlreadyVerified blocks verify/resend for accounts that completed the flow.
	ErrAlreadyVerified = errors.New("account already verified")
	// ErrThrottled signals the issuance cooldown is still active for this account.
	ErrThrottled = errors.New("code recently sent")

	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidRequest is returned when a verification token references an
	// OTP challenge that does not exist or does not belong to its claims.
	ErrInvalidRequest = errors.New("invalid verification request")

	// ErrBadSignature and ErrTokenExpired are verification-token outcomes.
	// They are independent of the referenced OTP challenge's own lifecycle.
	ErrBadSignature = errors.New("invalid verification token signature")
	ErrTokenExpired = errors.New("verification token expired")

	// OTP challenge outcomes. Kept distinct so clients can tell a stale code
	// from an exhausted one.
	ErrOTPAlreadyUsed      = errors.New("code already used")
	ErrOTPExpired          = errors.New("code expired")
	ErrOTPAttemptsExceeded = errors.New("too many incorrect attempts")
	ErrOTPCodeMismatch     = errors.New("incorrect code")

	// ErrSubscriptionLimitExceeded means the user has no active plan to meter
	// against; ErrQuotaExceeded means the plan's daily allowance ran out.
	ErrSubscriptionLimitExceeded = errors.New("subscription limit exceeded")
	ErrQuotaExceeded             = errors.New("daily quota exceeded")

	// ErrUpstreamUnavailable covers every transport or HTTP-level failure of
	// the generation service. Raw transport errors never reach the caller.
	ErrUpstreamUnavailable = errors.New("upstream generation service unavailable")
)
