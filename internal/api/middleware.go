// Package api implements the NyayAssist REST API using chi.
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nyayassist/nyayassist/internal/db"
)

// AuthMiddleware returns middleware that validates a Bearer token.
// If enabled is false, all requests pass through (disabled mode).
// If enabled is true, requests must carry a valid "Authorization: Bearer <token>" header.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// maxLoggedBody caps the request body captured for the access log.
const maxLoggedBody = 4096

// redactedFields are request-body keys whose values are never logged.
var redactedFields = []string{"password", "old_password", "new_password"}

// AccessLog returns middleware that records every API request in the
// access_logs table. Logging failures never fail the request. Health
// probes and the SSE stream are skipped.
func AccessLog(database *db.DB, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipAccessLog(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			body := captureBody(r)
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			entry := db.AccessLogEntry{
				UserUUID:    r.Header.Get("X-User-UUID"),
				SessionID:   r.Header.Get("X-Session-UUID"),
				IPAddress:   clientIP(r),
				UserAgent:   r.UserAgent(),
				Endpoint:    r.URL.Path,
				Method:      r.Method,
				RequestBody: body,
				Status:      ww.Status(),
				DurationMS:  time.Since(start).Milliseconds(),
			}
			if ww.Status() >= http.StatusBadRequest {
				entry.ErrorMessage = http.StatusText(ww.Status())
			}
			if err := database.LogAccess(entry); err != nil {
				logger.Warn("access log write failed", slog.String("error", err.Error()))
			}
		})
	}
}

func skipAccessLog(path string) bool {
	return strings.HasPrefix(path, "/health") || strings.HasSuffix(path, "/events")
}

// captureBody reads up to maxLoggedBody bytes of a JSON request body for
// the access log and restores r.Body for the handler. Credential fields
// are redacted; non-JSON and multipart bodies are not captured.
func captureBody(r *http.Request) string {
	if r.Body == nil || r.Method == http.MethodGet {
		return ""
	}
	if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), r.Body))
	if len(raw) > maxLoggedBody {
		raw = raw[:maxLoggedBody]
	}
	return redactBody(raw)
}

func redactBody(raw []byte) string {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return string(raw)
	}
	for _, field := range redactedFields {
		if _, ok := m[field]; ok {
			m[field] = "[REDACTED]"
		}
	}
	out, err := json.Marshal(m)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
