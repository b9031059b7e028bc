package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/prompt-gateway/internal/domain"
	"github.com/viralforge/prompt-gateway/internal/ports"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyClaims    ctxKey = "auth_claims"
)

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpLogger().ErrorContext(r.Context(), "panic recovered",
					"operation", "http_panic_recovery",
					"outcome", "failure",
					"request_id", requestIDFromContext(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
				)
				writeError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(payload []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(payload)
	r.bytes += n
	return n, err
}

// Flush keeps streaming responses working behind the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)

		statusCode := recorder.statusCode
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		outcome := "success"
		if statusCode >= 400 {
			outcome = "failure"
		}

		fields := []any{
			"operation", "http_request",
			"outcome", outcome,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", statusCode,
			"bytes", recorder.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestIDFromContext(r.Context()),
		}
		switch {
		case statusCode >= 500:
			httpLogger().ErrorContext(r.Context(), "http request completed", fields...)
		case statusCode >= 400:
			httpLogger().WarnContext(r.Context(), "http request completed", fields...)
		default:
			httpLogger().InfoContext(r.Context(), "http request completed", fields...)
		}
	})
}

func requestIDFromContext(ctx context.Context) string {
	v := ctx.Value(ctxKeyRequestID)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func bearerTokenFromHeader(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", errors.New("missing bearer token")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func mapDomainError(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "EMAIL_TAKEN", "email already registered"
	case errors.Is(err, domain.ErrThrottled):
		return http.StatusTooManyRequests, "OTP_COOLDOWN", "code requested too recently"
	case errors.Is(err, domain.ErrAlreadyVerified):
		return http.StatusBadRequest, "ALREADY_VERIFIED", "account already verified"
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST", "verification request does not match any pending signup"
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusBadRequest, "TOKEN_EXPIRED", "verification token expired"
	case errors.Is(err, domain.ErrBadSignature):
		return http.StatusBadRequest, "BAD_TOKEN", "invalid verification token"
	case errors.Is(err, domain.ErrOTPAlreadyUsed):
		return http.StatusBadRequest, "OTP_ALREADY_USED", "code already used"
	case errors.Is(err, domain.ErrOTPExpired):
		return http.StatusBadRequest, "OTP_EXPIRED", "code expired"
	case errors.Is(err, domain.ErrOTPAttemptsExceeded):
		return http.StatusBadRequest, "OTP_ATTEMPTS_EXCEEDED", "too many incorrect attempts"
	case errors.Is(err, domain.ErrOTPCodeMismatch):
		return http.StatusBadRequest, "OTP_INCORRECT", "incorrect code"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "INVALID_CREDENTIALS", "invalid email or password"
	case errors.Is(err, domain.ErrNotVerified):
		return http.StatusForbidden, "NOT_VERIFIED", "account not verified"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials"
	case errors.Is(err, domain.ErrSubscriptionLimitExceeded):
		return http.StatusPaymentRequired, "SUBSCRIPTION_REQUIRED", "no active subscription"
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "QUOTA_EXCEEDED", "daily message limit reached"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "model backend unavailable"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}

func claimsFromContext(ctx context.Context) (ports.AuthClaims, bool) {
	v := ctx.Value(ctxKeyClaims)
	claims, ok := v.(ports.AuthClaims)
	return claims, ok
}
