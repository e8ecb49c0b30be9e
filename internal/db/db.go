// Package db provides the SQLite relational store: users, chat sessions,
// messages, request/LLM/search logs, PDF uploads, and the chunk index used
// for retrieval.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	user_uuid     TEXT NOT NULL UNIQUE,
	full_name     TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	phone         TEXT,
	password_hash TEXT NOT NULL,
	is_active     INTEGER NOT NULL DEFAULT 1,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login_at DATETIME
);

CREATE TABLE IF NOT EXISTS chat_sessions (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	session_uuid TEXT NOT NULL UNIQUE,
	user_id      INTEGER REFERENCES users(id) ON DELETE CASCADE,
	title        TEXT NOT NULL DEFAULT 'New Chat',
	chat_mode    TEXT NOT NULL CHECK (chat_mode IN ('PDF_CHAT', 'KANOON_SEARCH')),
	is_archived  INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	message_uuid TEXT NOT NULL UNIQUE,
	session_id   INTEGER NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
	role         TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
	content      TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS llm_outputs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	output_uuid      TEXT NOT NULL UNIQUE,
	user_id          INTEGER REFERENCES users(id) ON DELETE SET NULL,
	session_id       INTEGER REFERENCES chat_sessions(id) ON DELETE SET NULL,
	model_name       TEXT NOT NULL DEFAULT '',
	user_question    TEXT NOT NULL,
	context_provided TEXT,
	llm_response     TEXT NOT NULL,
	response_time_ms INTEGER,
	success          INTEGER NOT NULL DEFAULT 1,
	error_message    TEXT,
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS kanoon_queries (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	query_uuid          TEXT NOT NULL UNIQUE,
	user_id             INTEGER REFERENCES users(id) ON DELETE SET NULL,
	session_id          INTEGER REFERENCES chat_sessions(id) ON DELETE SET NULL,
	search_query        TEXT NOT NULL,
	page_number         INTEGER NOT NULL DEFAULT 0,
	total_results_found INTEGER NOT NULL DEFAULT 0,
	results_returned    INTEGER NOT NULL DEFAULT 0,
	response_time_ms    INTEGER,
	success             INTEGER NOT NULL DEFAULT 1,
	error_message       TEXT,
	created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS kanoon_case_results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	query_id    INTEGER NOT NULL REFERENCES kanoon_queries(id) ON DELETE CASCADE,
	doc_id      TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	snippet     TEXT NOT NULL DEFAULT '',
	case_link   TEXT NOT NULL DEFAULT '',
	result_rank INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS pdf_uploads (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	upload_uuid       TEXT NOT NULL UNIQUE,
	user_id           INTEGER REFERENCES users(id) ON DELETE SET NULL,
	session_id        INTEGER REFERENCES chat_sessions(id) ON DELETE SET NULL,
	original_filename TEXT NOT NULL,
	stored_path       TEXT NOT NULL DEFAULT '',
	file_size_bytes   INTEGER NOT NULL DEFAULT 0,
	file_hash         TEXT NOT NULL DEFAULT '',
	pages_count       INTEGER NOT NULL DEFAULT 0,
	chunks_processed  INTEGER NOT NULL DEFAULT 0,
	processing_status TEXT NOT NULL DEFAULT 'pending'
		CHECK (processing_status IN ('pending', 'processing', 'completed', 'failed')),
	error_message     TEXT,
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	processed_at      DATETIME
);

CREATE TABLE IF NOT EXISTS pdf_chunks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	upload_id   INTEGER NOT NULL REFERENCES pdf_uploads(id) ON DELETE CASCADE,
	chunk_index INTEGER NOT NULL,
	chunk_text  TEXT NOT NULL,
	chunk_hash  TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(upload_id, chunk_index)
);

CREATE TABLE IF NOT EXISTS access_logs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	user_uuid        TEXT,
	session_id       TEXT,
	ip_address       TEXT,
	user_agent       TEXT,
	endpoint         TEXT NOT NULL,
	http_method      TEXT NOT NULL,
	request_body     TEXT,
	response_status  INTEGER,
	response_time_ms INTEGER,
	error_message    TEXT,
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS feedback (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	feedback_uuid TEXT NOT NULL UNIQUE,
	user_id       INTEGER REFERENCES users(id) ON DELETE SET NULL,
	output_uuid   TEXT,
	feedback_type TEXT NOT NULL
		CHECK (feedback_type IN ('helpful', 'not_helpful', 'incorrect', 'offensive', 'other')),
	rating        INTEGER,
	feedback_text TEXT,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
CREATE INDEX IF NOT EXISTS idx_chunks_upload ON pdf_chunks(upload_id);
CREATE INDEX IF NOT EXISTS idx_access_logs_created ON access_logs(created_at);
CREATE INDEX IF NOT EXISTS idx_kanoon_queries_created ON kanoon_queries(created_at);
`

// DB wraps a sql.DB with application-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db: apply core schema: %w", err)
	}
	if err := initChunkFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
