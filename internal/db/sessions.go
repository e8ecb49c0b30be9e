package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nyayassist/nyayassist/internal/apperr"
)

// Chat modes.
const (
	ModePDFChat      = "PDF_CHAT"
	ModeKanoonSearch = "KANOON_SEARCH"
)

// SessionRow is one row of the chat_sessions table.
type SessionRow struct {
	ID        int64
	UUID      string
	UserID    *int64
	Title     string
	ChatMode  string
	CreatedAt time.Time
}

// CreateChatSession inserts a new chat session. userID may be nil for
// anonymous sessions.
func (db *DB) CreateChatSession(chatMode, title string, userID *int64) (*SessionRow, error) {
	if title == "" {
		title = "New Chat"
	}
	id := uuid.NewString()
	res, err := db.conn.Exec(`
		INSERT INTO chat_sessions (session_uuid, user_id, title, chat_mode)
		VALUES (?, ?, ?, ?)
	`, id, userID, title, chatMode)
	if err != nil {
		return nil, fmt.Errorf("db: create chat session: %w", err)
	}
	rowID, _ := res.LastInsertId()
	return &SessionRow{ID: rowID, UUID: id, UserID: userID, Title: title, ChatMode: chatMode}, nil
}

// GetSessionByUUID returns the session with the given uuid, or
// apperr.ErrNotFound.
func (db *DB) GetSessionByUUID(sessionUUID string) (*SessionRow, error) {
	var s SessionRow
	var userID sql.NullInt64
	err := db.conn.QueryRow(`
		SELECT id, session_uuid, user_id, title, chat_mode, created_at
		FROM chat_sessions WHERE session_uuid = ?
	`, sessionUUID).Scan(&s.ID, &s.UUID, &userID, &s.Title, &s.ChatMode, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("db: get session: %w", err)
	}
	if userID.Valid {
		s.UserID = &userID.Int64
	}
	return &s, nil
}

// MessageRow is one row of the messages table.
type MessageRow struct {
	UUID      string    `json:"message_uuid"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionMessages returns a session's messages in insertion order.
func (db *DB) SessionMessages(sessionID int64) ([]MessageRow, error) {
	rows, err := db.conn.Query(`
		SELECT message_uuid, role, content, created_at
		FROM messages WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("db: session messages: %w", err)
	}
	defer rows.Close()

	var out []MessageRow
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.UUID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db: scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddMessage appends a message to a session and returns its uuid.
func (db *DB) AddMessage(sessionID int64, role, content string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(`
		INSERT INTO messages (message_uuid, session_id, role, content)
		VALUES (?, ?, ?, ?)
	`, id, sessionID, role, content)
	if err != nil {
		return "", fmt.Errorf("db: add message: %w", err)
	}
	_, _ = db.conn.Exec(`UPDATE chat_sessions SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, sessionID)
	return id, nil
}
