package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/prompt-gateway/internal/application"
)

// Handler is the HTTP adapter entrypoint for gateway use-cases.
// Keeping only application dependency here preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers gateway HTTP routes and middleware stack.
// Centralizing routes here ensures consistent auth and error behavior across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/signup", handler.signup)
		r.Post("/resend-otp", handler.resendOTP)
		r.Post("/verify-otp", handler.verifyOTP)
		r.Post("/login", handler.login)
		r.Post("/refresh", handler.refresh)
	})

	r.Route("/ai/v1", func(r chi.Router) {
		r.Use(handler.authMiddleware)
		r.Post("/chat", handler.chat)
	})

	return r
}
