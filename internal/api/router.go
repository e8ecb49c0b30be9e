package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nyayassist/nyayassist/internal/db"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, database *db.DB, logger *slog.Logger, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AccessLog(database, logger))
	r.Use(AuthMiddleware(authEnabled, token))

	// Statute cross-reference.
	r.Post("/law/compare", h.CompareSection)
	r.Post("/law/compare/bulk", h.CompareBulk)
	r.Get("/law/sections/{family}", h.ListSections)

	// PDF ingestion and chat.
	r.Post("/pdf/upload", h.UploadPDF)
	r.Post("/pdf/chat", h.ChatPDF)
	r.Get("/pdf/uploads/{uploadUUID}/download", h.DownloadPDF)
	r.Delete("/pdf/uploads/{uploadUUID}", h.DeleteUpload)

	// Case law search.
	r.Post("/kanoon/search", h.SearchKanoon)

	// Accounts and sessions.
	r.Post("/users/register", h.RegisterUser)
	r.Post("/users/login", h.LoginUser)
	r.Post("/sessions/create", h.CreateSession)
	r.Get("/sessions/{sessionUUID}/messages", h.SessionMessages)

	// Feedback and analytics.
	r.Post("/feedback", h.SubmitFeedback)
	r.Get("/analytics/stats", h.AnalyticsStats)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
