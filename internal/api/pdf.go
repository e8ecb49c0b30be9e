package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nyayassist/nyayassist/internal/apperr"
	"github.com/nyayassist/nyayassist/internal/ingest"
)

// maxUploadBytes bounds one multipart upload batch.
const maxUploadBytes = 50 << 20 // 50 MB

// UploadPDF handles POST /api/pdf/upload (multipart/form-data, field "files").
//
//	@Summary		Upload one or more PDFs and index them for chat
//	@Tags			pdf
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			files	formData	file	true	"PDF files"
//	@Success		201		{object}	UploadResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pdf/upload [post]
func (h *Handler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'files' field in multipart form"))
		return
	}

	files := make([]ingest.FileInput, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("failed to open uploaded file"))
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("failed to read uploaded file"))
			return
		}
		files = append(files, ingest.FileInput{Filename: fh.Filename, Content: content})
	}

	userID := h.lookupUserID(r.FormValue("user_uuid"))
	sessionID := h.lookupSessionID(r.FormValue("session_uuid"))

	res, err := h.ingest.ProcessFiles(r.Context(), files, userID, sessionID)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("pdf upload failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("failed to process uploaded files"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		Message:     fmt.Sprintf("%d file(s) processed", len(res.UploadUUIDs)),
		UploadUUIDs: res.UploadUUIDs,
		Filenames:   res.Filenames,
		Chunks:      res.Chunks,
	})
}

// ChatPDF handles POST /api/pdf/chat.
//
//	@Summary		Ask a question over the uploaded documents
//	@Tags			pdf
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ChatRequest	true	"Question"
//	@Success		200		{object}	ChatResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pdf/chat [post]
func (h *Handler) ChatPDF(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("question is required"))
		return
	}
	ans, err := h.chat.Ask(r.Context(), req.Question, req.UserUUID, req.SessionUUID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("no documents uploaded yet"))
		} else {
			slog.Error("pdf chat failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("failed to answer question"))
		}
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{
		Answer:      ans.Text,
		MessageID:   ans.MessageID,
		Comparisons: ans.Comparisons,
	})
}

// DownloadPDF handles GET /api/pdf/uploads/{uploadUUID}/download.
//
//	@Summary		Download the original bytes of an uploaded PDF
//	@Tags			pdf
//	@Produce		application/pdf
//	@Param			uploadUUID	path	string	true	"Upload UUID"
//	@Success		200
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pdf/uploads/{uploadUUID}/download [get]
func (h *Handler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	upload, content, err := h.ingest.ReadUpload(chi.URLParam(r, "uploadUUID"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("upload not found"))
		} else {
			slog.Error("pdf download failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("failed to read upload"))
		}
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", upload.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// DeleteUpload handles DELETE /api/pdf/uploads/{uploadUUID}.
//
//	@Summary		Delete an uploaded PDF, its stored file, and its indexed chunks
//	@Tags			pdf
//	@Produce		json
//	@Param			uploadUUID	path	string	true	"Upload UUID"
//	@Success		200	{object}	StatusResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pdf/uploads/{uploadUUID} [delete]
func (h *Handler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	err := h.ingest.DeleteUpload(chi.URLParam(r, "uploadUUID"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("upload not found"))
		} else {
			slog.Error("pdf delete failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("failed to delete upload"))
		}
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Message: "upload deleted"})
}

func (h *Handler) lookupUserID(userUUID string) *int64 {
	if userUUID == "" {
		return nil
	}
	u, err := h.db.GetUserByUUID(userUUID)
	if err != nil {
		return nil
	}
	return &u.ID
}

func (h *Handler) lookupSessionID(sessionUUID string) *int64 {
	if sessionUUID == "" {
		return nil
	}
	s, err := h.db.GetSessionByUUID(sessionUUID)
	if err != nil {
		return nil
	}
	return &s.ID
}
