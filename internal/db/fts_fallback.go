//go:build !sqlite_fts5

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

func initChunkFTS(_ *sql.DB) error {
	// FTS5 not available; retrieval uses LIKE fallback on pdf_chunks.
	return nil
}

func chunkFTSInsert(_ *sql.Tx, _ int64, _ string) error {
	// Chunk text already lives in pdf_chunks; nothing extra to do.
	return nil
}

func chunkFTSDeleteForUpload(_ *sql.Tx, _ int64) {}

// SearchChunks performs a LIKE-based search (fallback when FTS5 is not
// compiled in). Each query term must appear somewhere in the chunk.
func (db *DB) SearchChunks(query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 4
	}

	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, nil
	}
	var sb strings.Builder
	sb.WriteString(`SELECT chunk_text FROM pdf_chunks WHERE 1=1`)
	args := make([]any, 0, len(terms)+1)
	for _, term := range terms {
		sb.WriteString(` AND chunk_text LIKE ?`)
		args = append(args, "%"+term+"%")
	}
	sb.WriteString(` ORDER BY id LIMIT ?`)
	args = append(args, limit)

	rows, err := db.conn.Query(sb.String(), args...)
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
