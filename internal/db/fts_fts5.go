//go:build sqlite_fts5

package db

import (
	"database/sql"
	"fmt"
)

func initChunkFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
			chunk_id UNINDEXED,
			chunk_text,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func chunkFTSInsert(tx *sql.Tx, chunkID int64, text string) error {
	_, err := tx.Exec(`INSERT INTO chunks_fts (chunk_id, chunk_text) VALUES (?, ?)`, chunkID, text)
	if err != nil {
		return fmt.Errorf("db: insert chunk fts: %w", err)
	}
	return nil
}

func chunkFTSDeleteForUpload(tx *sql.Tx, uploadID int64) {
	_, _ = tx.Exec(`
		DELETE FROM chunks_fts
		WHERE chunk_id IN (SELECT id FROM pdf_chunks WHERE upload_id = ?)
	`, uploadID)
}

// SearchChunks runs an FTS5 ranked search over indexed chunk text.
func (db *DB) SearchChunks(query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 4
	}
	rows, err := db.conn.Query(`
		SELECT chunk_text
		FROM chunks_fts
		WHERE chunks_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db: search chunks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, rows.Err()
}
