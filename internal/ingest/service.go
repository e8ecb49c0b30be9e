// Package ingest implements the PDF upload pipeline: store the original
// file, extract its text, split it into chunks, and index the chunks for
// retrieval.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/nyayassist/nyayassist/internal/apperr"
	"github.com/nyayassist/nyayassist/internal/checksum"
	"github.com/nyayassist/nyayassist/internal/db"
	"github.com/nyayassist/nyayassist/internal/pdftext"
	"github.com/nyayassist/nyayassist/internal/storage"
)

// Chunking parameters for the retrieval index.
const (
	chunkSize    = 10000
	chunkOverlap = 1000
)

// EventCallback is called after an upload finishes processing.
// kind is "completed" or "failed".
type EventCallback func(kind, uploadUUID, filename string)

// Service runs the ingestion pipeline.
type Service struct {
	store    storage.Provider
	db       *db.DB
	splitter textsplitter.RecursiveCharacter
	logger   *slog.Logger
	cb       EventCallback
}

// NewService creates an ingestion service. cb may be nil.
func NewService(store storage.Provider, database *db.DB, logger *slog.Logger, cb EventCallback) *Service {
	return &Service{
		store: store,
		db:    database,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
		logger: logger,
		cb:     cb,
	}
}

// FileInput is one uploaded file.
type FileInput struct {
	Filename string
	Content  []byte
}

// Result summarises a processed batch.
type Result struct {
	UploadUUIDs []string
	Filenames   []string
	Chunks      int
}

// ProcessFiles ingests a batch of PDF uploads. Each file is stored, hashed,
// extracted, chunked, and indexed under its own upload record. A file whose
// text cannot be used marks its upload failed and the batch continues; the
// batch as a whole fails only when not a single chunk was produced.
func (s *Service) ProcessFiles(ctx context.Context, files []FileInput, userID, sessionID *int64) (*Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("ingest: no files: %w", apperr.ErrInvalidInput)
	}

	res := &Result{}
	for _, f := range files {
		if !strings.HasSuffix(strings.ToLower(f.Filename), ".pdf") {
			return nil, fmt.Errorf("ingest: %s is not a PDF: %w", f.Filename, apperr.ErrInvalidInput)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		upload, err := s.processOne(f, userID, sessionID)
		if err != nil {
			return nil, err
		}
		res.UploadUUIDs = append(res.UploadUUIDs, upload.UUID)
		res.Filenames = append(res.Filenames, f.Filename)
		if upload.Status == db.UploadCompleted {
			res.Chunks += upload.chunks
		}
	}

	if res.Chunks == 0 {
		return nil, fmt.Errorf("ingest: could not extract text from any file: %w", apperr.ErrInvalidInput)
	}
	return res, nil
}

type processedUpload struct {
	*db.UploadRow
	chunks int
}

func (s *Service) processOne(f FileInput, userID, sessionID *int64) (*processedUpload, error) {
	extracted, err := pdftext.Extract(f.Content)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w: %v", f.Filename, apperr.ErrInvalidInput, err)
	}

	// Store the original bytes under a per-upload directory.
	storedPath := filepath.Join(uuid.NewString(), filepath.Base(f.Filename))
	if err := s.store.Write(storedPath, f.Content); err != nil {
		return nil, fmt.Errorf("ingest: store %s: %w", f.Filename, err)
	}

	upload, err := s.db.CreateUpload(f.Filename, storedPath, int64(len(f.Content)),
		checksum.Sum(f.Content), extracted.Pages, userID, sessionID)
	if err != nil {
		return nil, err
	}

	chunks, err := s.indexText(upload.ID, extracted.Text)
	if err != nil || chunks == 0 {
		msg := "no text could be extracted"
		if err != nil {
			msg = err.Error()
		}
		if failErr := s.db.FailUpload(upload.ID, msg); failErr != nil {
			s.logger.Warn("ingest: mark failed", slog.String("error", failErr.Error()))
		}
		upload.Status = db.UploadFailed
		s.publish("failed", upload.UUID, f.Filename)
		s.logger.Warn("ingest: upload failed",
			slog.String("filename", f.Filename), slog.String("reason", msg))
		return &processedUpload{UploadRow: upload}, nil
	}

	if err := s.db.FinishUpload(upload.ID, chunks); err != nil {
		return nil, err
	}
	upload.Status = db.UploadCompleted
	s.publish("completed", upload.UUID, f.Filename)
	s.logger.Info("ingest: upload processed",
		slog.String("filename", f.Filename),
		slog.Int("pages", extracted.Pages),
		slog.Int("chunks", chunks))
	return &processedUpload{UploadRow: upload, chunks: chunks}, nil
}

// indexText splits text and writes the chunks into the retrieval index.
// Returns the number of chunks indexed.
func (s *Service) indexText(uploadID int64, text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	chunks, err := s.splitter.SplitText(text)
	if err != nil {
		return 0, fmt.Errorf("ingest: split text: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	if err := s.db.AddChunks(uploadID, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// ReadUpload returns an upload record together with its stored bytes.
func (s *Service) ReadUpload(uploadUUID string) (*db.UploadRow, []byte, error) {
	upload, err := s.db.GetUploadByUUID(uploadUUID)
	if err != nil {
		return nil, nil, err
	}
	content, err := s.store.Read(upload.Path)
	if err != nil {
		return nil, nil, err
	}
	return upload, content, nil
}

// DeleteUpload removes an upload: its stored file, its indexed chunks, and
// the upload record itself.
func (s *Service) DeleteUpload(uploadUUID string) error {
	upload, err := s.db.GetUploadByUUID(uploadUUID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(upload.Path); err != nil {
		// The record still goes; a leftover file is caught by the sweep.
		s.logger.Warn("ingest: delete stored file",
			slog.String("path", upload.Path), slog.String("error", err.Error()))
	}
	if err := s.db.DeleteUploadChunks(upload.ID); err != nil {
		return err
	}
	if err := s.db.DeleteUpload(upload.ID); err != nil {
		return err
	}
	s.logger.Info("ingest: upload deleted", slog.String("upload_uuid", uploadUUID))
	return nil
}

// SweepOrphans deletes stored files that no upload record references, e.g.
// left behind by a crash between storing a file and recording the upload.
// Returns the number of files removed.
func (s *Service) SweepOrphans() (int, error) {
	paths, err := s.db.StoredUploadPaths()
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(paths))
	for _, p := range paths {
		known[p] = true
	}

	files, err := s.store.List("")
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if known[f.Path] {
			continue
		}
		if err := s.store.Delete(f.Path); err != nil {
			s.logger.Warn("ingest: sweep orphan",
				slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *Service) publish(kind, uploadUUID, filename string) {
	if s.cb != nil {
		s.cb(kind, uploadUUID, filename)
	}
}
