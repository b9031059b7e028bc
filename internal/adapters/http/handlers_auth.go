package http

import (
	"net/http"

	"github.com/viralforge/prompt-gateway/internal/application"
)

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req application.SignupRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "signup", err)
		return
	}

	res, err := h.service.Signup(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "signup", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) resendOTP(w http.ResponseWriter, r *http.Request) {
	var req application.ResendRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "resend_otp", err)
		return
	}

	res, err := h.service.Resend(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "resend_otp", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req application.VerifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "verify_otp", err)
		return
	}

	res, err := h.service.Verify(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "verify_otp", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req application.RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "refresh", err)
		return
	}

	res, err := h.service.Refresh(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "refresh", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
