package http

import (
	"net/http"

	"github.com/viralforge/prompt-gateway/internal/application"
)

// chat streams the model reply as plain text. Admission failures map to a
// JSON error before any content is sent; once bytes are on the wire a broken
// upstream can only truncate the stream.
func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	var req application.ChatRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "chat", err)
		return
	}

	stream, err := h.service.Chat(r.Context(), claims.UserID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "chat", err)
		return
	}

	flusher, _ := w.(http.Flusher)
	wroteAny := false
	for chunk := range stream {
		if chunk.Err != nil {
			if !wroteAny {
				writeMappedError(r.Context(), w, "chat", chunk.Err)
				return
			}
			logHTTPOperationError(r.Context(), "chat", http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "stream truncated", chunk.Err)
			return
		}
		if !wroteAny {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			wroteAny = true
		}
		if _, err := w.Write([]byte(chunk.Content)); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	if !wroteAny {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	}
}
