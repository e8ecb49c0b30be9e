package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nyayassist/nyayassist/internal/apperr"
	"github.com/nyayassist/nyayassist/internal/chat"
	"github.com/nyayassist/nyayassist/internal/db"
	"github.com/nyayassist/nyayassist/internal/ingest"
	"github.com/nyayassist/nyayassist/internal/kanoon"
	"github.com/nyayassist/nyayassist/internal/law"
	"github.com/nyayassist/nyayassist/internal/userservice"
)

// Handler holds API route handlers.
type Handler struct {
	engine *law.Engine
	ingest *ingest.Service
	chat   *chat.Service
	kanoon *kanoon.Client
	users  *userservice.Service
	db     *db.DB
}

// NewHandler creates a new Handler. kanoonClient may be nil when no API
// token is configured.
func NewHandler(engine *law.Engine, ingestSvc *ingest.Service, chatSvc *chat.Service, kanoonClient *kanoon.Client, users *userservice.Service, database *db.DB) *Handler {
	return &Handler{
		engine: engine,
		ingest: ingestSvc,
		chat:   chatSvc,
		kanoon: kanoonClient,
		users:  users,
		db:     database,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// CompareSection handles POST /api/law/compare.
//
//	@Summary		Map an old-code section to its successor provision
//	@Tags			law
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CompareRequest	true	"Section to compare"
//	@Success		200		{object}	Comparison
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	law.NotFound
//	@Security		BearerAuth
//	@Router			/law/compare [post]
func (h *Handler) CompareSection(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.LawType == "" || req.Section == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("law_type and section are required"))
		return
	}
	found, missing := h.engine.ResolveBulk([]law.SectionRequest{{Family: req.LawType, Section: req.Section}})
	if len(found) == 0 {
		writeJSON(w, http.StatusNotFound, missing[0])
		return
	}
	writeJSON(w, http.StatusOK, found[0])
}

// CompareBulk handles POST /api/law/compare/bulk.
//
//	@Summary		Map a batch of old-code sections in one call
//	@Tags			law
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CompareBulkRequest	true	"Sections to compare"
//	@Success		200		{object}	CompareBulkResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/law/compare/bulk [post]
func (h *Handler) CompareBulk(w http.ResponseWriter, r *http.Request) {
	var req CompareBulkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Sections) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("sections must not be empty"))
		return
	}
	reqs := make([]law.SectionRequest, 0, len(req.Sections))
	for _, s := range req.Sections {
		reqs = append(reqs, law.SectionRequest{Family: s.LawType, Section: s.Section})
	}
	found, missing := h.engine.ResolveBulk(reqs)
	if found == nil {
		found = []law.Comparison{}
	}
	if missing == nil {
		missing = []law.NotFound{}
	}
	writeJSON(w, http.StatusOK, CompareBulkResponse{Found: found, NotFound: missing})
}

// ListSections handles GET /api/law/sections/{family}.
//
//	@Summary		List every mapped section of one legal code
//	@Tags			law
//	@Produce		json
//	@Param			family	path		string	true	"Legal code"	Enums(IPC, CRPC, IEA)
//	@Success		200		{object}	SectionListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/law/sections/{family} [get]
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	family := chi.URLParam(r, "family")
	sections, ok := h.engine.Sections(family)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("unsupported law type: "+family))
		return
	}
	writeJSON(w, http.StatusOK, SectionListResponse{
		LawType:  strings.ToUpper(family),
		Sections: sections,
	})
}

// CreateSession handles POST /api/sessions/create.
//
//	@Summary		Open a chat session
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateSessionRequest	true	"Session parameters"
//	@Success		201		{object}	userservice.Session
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/create [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, err := h.users.CreateSession(r.Context(), req.ChatMode, req.Title, req.UserUUID)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("create session failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// SessionMessages handles GET /api/sessions/{sessionUUID}/messages.
//
//	@Summary		List a session's chat history
//	@Tags			sessions
//	@Produce		json
//	@Param			sessionUUID	path	string	true	"Session UUID"
//	@Success		200	{object}	SessionMessagesResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sessionUUID}/messages [get]
func (h *Handler) SessionMessages(w http.ResponseWriter, r *http.Request) {
	sess, err := h.db.GetSessionByUUID(chi.URLParam(r, "sessionUUID"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("session not found"))
		} else {
			slog.Error("get session failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	msgs, err := h.db.SessionMessages(sess.ID)
	if err != nil {
		slog.Error("session messages failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if msgs == nil {
		msgs = []db.MessageRow{}
	}
	writeJSON(w, http.StatusOK, SessionMessagesResponse{
		SessionUUID: sess.UUID,
		Messages:    msgs,
	})
}

// SubmitFeedback handles POST /api/feedback.
//
//	@Summary		Record feedback on an answer
//	@Tags			feedback
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FeedbackRequest	true	"Feedback"
//	@Success		201		{object}	FeedbackResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/feedback [post]
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	uuid, err := h.users.SubmitFeedback(r.Context(), req.FeedbackType, req.UserUUID, req.MessageID, req.Rating, req.Text)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("submit feedback failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, FeedbackResponse{FeedbackUUID: uuid})
}

// AnalyticsStats handles GET /api/analytics/stats.
//
//	@Summary		Daily usage counts and popular searches
//	@Tags			analytics
//	@Produce		json
//	@Param			days	query		int	false	"Window in days (default 7)"
//	@Success		200		{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/analytics/stats [get]
func (h *Handler) AnalyticsStats(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	daily, err := h.db.DailyStats(days)
	if err != nil {
		slog.Error("daily stats failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	popular, err := h.db.PopularSearches(0)
	if err != nil {
		slog.Error("popular searches failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"daily":            daily,
		"popular_searches": popular,
	})
}
