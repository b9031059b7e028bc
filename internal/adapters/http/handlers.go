package http

import (
	"context"
	"net/http"

	"github.com/viralforge/prompt-gateway/internal/ports"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(r.Context(), w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}

		claims, err := h.service.ValidateAccessToken(r.Context(), raw)
		if err != nil {
			status, code, msg := mapDomainError(err)
			writeError(r.Context(), w, status, code, msg)
			return
		}

		ctx := contextWithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func contextWithClaims(ctx context.Context, claims ports.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, claims)
}
