package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/rezkam/taskboard/internal/infrastructure/http/response"
)

// MsgPayloadTooLarge is the envelope message for rejected bodies.
const MsgPayloadTooLarge = "Request body exceeds size limit"

// MaxBodyBytes creates a middleware that limits request body size.
// Uses a two-phase approach:
// 1. Fast path: Check Content-Length header for early rejection
// 2. Slow path: Read and verify body (handles chunked encoding and missing headers)
//
// Returns 413 Request Entity Too Large in the standard envelope if the limit is exceeded.
func MaxBodyBytes(maxBytes int64, resp *response.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Content-Length of -1 means unknown (chunked encoding)
			if r.ContentLength > maxBytes {
				resp.Error(w, http.StatusRequestEntityTooLarge, MsgPayloadTooLarge)
				return
			}

			body := http.MaxBytesReader(w, r.Body, maxBytes)
			buf, err := io.ReadAll(body)
			if err != nil {
				slog.WarnContext(r.Context(), "Request body size limit exceeded",
					"method", r.Method,
					"path", r.URL.Path,
					"content_length", r.ContentLength,
					"limit", maxBytes,
					"error", err)
				resp.Error(w, http.StatusRequestEntityTooLarge, MsgPayloadTooLarge)
				return
			}

			// Replace the body so handlers can read it
			r.Body = io.NopCloser(bytes.NewReader(buf))
			next.ServeHTTP(w, r)
		})
	}
}
