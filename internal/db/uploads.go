package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nyayassist/nyayassist/internal/apperr"
	"github.com/nyayassist/nyayassist/internal/checksum"
)

// Upload processing states.
const (
	UploadPending    = "pending"
	UploadProcessing = "processing"
	UploadCompleted  = "completed"
	UploadFailed     = "failed"
)

// UploadRow is one row of the pdf_uploads table.
type UploadRow struct {
	ID       int64
	UUID     string
	Filename string
	Path     string
	Size     int64
	Hash     string
	Pages    int
	Status   string
}

// CreateUpload records a new PDF upload in the "processing" state.
func (db *DB) CreateUpload(filename, storedPath string, size int64, hash string, pages int, userID, sessionID *int64) (*UploadRow, error) {
	id := uuid.NewString()
	res, err := db.conn.Exec(`
		INSERT INTO pdf_uploads
			(upload_uuid, user_id, session_id, original_filename, stored_path, file_size_bytes, file_hash, pages_count, processing_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, userID, sessionID, filename, storedPath, size, hash, pages, UploadProcessing)
	if err != nil {
		return nil, fmt.Errorf("db: create upload: %w", err)
	}
	rowID, _ := res.LastInsertId()
	return &UploadRow{
		ID: rowID, UUID: id, Filename: filename, Path: storedPath,
		Size: size, Hash: hash, Pages: pages, Status: UploadProcessing,
	}, nil
}

// FinishUpload marks an upload completed with its chunk count.
func (db *DB) FinishUpload(uploadID int64, chunks int) error {
	_, err := db.conn.Exec(`
		UPDATE pdf_uploads
		SET processing_status = ?, chunks_processed = ?, processed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, UploadCompleted, chunks, uploadID)
	if err != nil {
		return fmt.Errorf("db: finish upload: %w", err)
	}
	return nil
}

// FailUpload marks an upload failed with an error message.
func (db *DB) FailUpload(uploadID int64, msg string) error {
	_, err := db.conn.Exec(`
		UPDATE pdf_uploads
		SET processing_status = ?, error_message = ?, processed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, UploadFailed, msg, uploadID)
	if err != nil {
		return fmt.Errorf("db: fail upload: %w", err)
	}
	return nil
}

// AddChunks stores the extracted text chunks of an upload and indexes each
// one for retrieval, within a single transaction.
func (db *DB) AddChunks(uploadID int64, chunks []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("db: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.Prepare(`
		INSERT INTO pdf_chunks (upload_id, chunk_index, chunk_text, chunk_hash)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("db: prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for i, text := range chunks {
		res, err := stmt.Exec(uploadID, i, text, checksum.Sum([]byte(text)))
		if err != nil {
			return fmt.Errorf("db: insert chunk %d: %w", i, err)
		}
		chunkID, _ := res.LastInsertId()
		if err := chunkFTSInsert(tx, chunkID, text); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ChunkCount returns the total number of indexed chunks.
func (db *DB) ChunkCount() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM pdf_chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db: chunk count: %w", err)
	}
	return n, nil
}

// GetUploadByUUID returns the upload with the given uuid, or
// apperr.ErrNotFound.
func (db *DB) GetUploadByUUID(uploadUUID string) (*UploadRow, error) {
	var u UploadRow
	err := db.conn.QueryRow(`
		SELECT id, upload_uuid, original_filename, stored_path,
		       file_size_bytes, file_hash, pages_count, processing_status
		FROM pdf_uploads WHERE upload_uuid = ?
	`, uploadUUID).Scan(&u.ID, &u.UUID, &u.Filename, &u.Path,
		&u.Size, &u.Hash, &u.Pages, &u.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("db: get upload: %w", err)
	}
	return &u, nil
}

// DeleteUpload removes an upload record.
func (db *DB) DeleteUpload(uploadID int64) error {
	if _, err := db.conn.Exec(`DELETE FROM pdf_uploads WHERE id = ?`, uploadID); err != nil {
		return fmt.Errorf("db: delete upload: %w", err)
	}
	return nil
}

// StoredUploadPaths returns the stored_path of every upload on record.
func (db *DB) StoredUploadPaths() ([]string, error) {
	rows, err := db.conn.Query(`SELECT stored_path FROM pdf_uploads`)
	if err != nil {
		return nil, fmt.Errorf("db: stored paths: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("db: scan stored path: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteUploadChunks removes all chunks (and FTS entries) for an upload.
func (db *DB) DeleteUploadChunks(uploadID int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("db: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	chunkFTSDeleteForUpload(tx, uploadID)
	if _, err := tx.Exec(`DELETE FROM pdf_chunks WHERE upload_id = ?`, uploadID); err != nil {
		return fmt.Errorf("db: delete chunks: %w", err)
	}
	return tx.Commit()
}
