package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nyayassist/nyayassist/internal/db"
	"github.com/nyayassist/nyayassist/internal/kanoon"
	"github.com/nyayassist/nyayassist/internal/law"
)

// SearchKanoon handles POST /api/kanoon/search.
//
//	@Summary		Search Indian case law
//	@Tags			kanoon
//	@Accept			json
//	@Produce		json
//	@Param			body	body		KanoonSearchRequest	true	"Search query"
//	@Success		200		{object}	KanoonSearchResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/kanoon/search [post]
func (h *Handler) SearchKanoon(w http.ResponseWriter, r *http.Request) {
	var req KanoonSearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query is required"))
		return
	}
	if h.kanoon == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("case law search is not configured"))
		return
	}

	start := time.Now()
	res, err := h.kanoon.Search(r.Context(), req.Query, req.Page)

	entry := db.KanoonQueryEntry{
		UserID:     h.lookupUserID(req.UserUUID),
		SessionID:  h.lookupSessionID(req.SessionUUID),
		Query:      req.Query,
		Page:       req.Page,
		DurationMS: time.Since(start).Milliseconds(),
		Success:    err == nil,
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
	} else {
		entry.TotalFound = res.TotalFound
		entry.Returned = len(res.Cases)
		for _, c := range res.Cases {
			entry.Cases = append(entry.Cases, db.KanoonCaseEntry{
				DocID:    c.DocID,
				Title:    c.Title,
				Snippet:  c.Snippet,
				CaseLink: c.CaseLink,
			})
		}
	}
	if _, logErr := h.db.LogKanoonQuery(entry); logErr != nil {
		slog.Warn("kanoon query log failed", slog.String("error", logErr.Error()))
	}

	if err != nil {
		slog.Error("kanoon search failed", slog.String("query", req.Query), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("case law search failed"))
		return
	}

	cases := res.Cases
	if cases == nil {
		cases = []kanoon.Case{}
	}
	writeJSON(w, http.StatusOK, KanoonSearchResponse{
		Cases:       cases,
		TotalFound:  res.TotalFound,
		Comparisons: h.engine.ResolveMany(law.Detect(req.Query)),
	})
}
