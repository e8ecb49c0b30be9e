package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nyayassist/nyayassist/internal/apperr"
)

// UserRow is one row of the users table.
type UserRow struct {
	ID           int64
	UUID         string
	FullName     string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// CreateUser inserts a new user and returns the stored row.
func (db *DB) CreateUser(fullName, email, phone, passwordHash string) (*UserRow, error) {
	id := uuid.NewString()
	res, err := db.conn.Exec(`
		INSERT INTO users (user_uuid, full_name, email, phone, password_hash)
		VALUES (?, ?, ?, ?, ?)
	`, id, fullName, email, phone, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db: create user: %w", err)
	}
	rowID, _ := res.LastInsertId()
	return &UserRow{ID: rowID, UUID: id, FullName: fullName, Email: email, Phone: phone, PasswordHash: passwordHash}, nil
}

// GetUserByEmail returns the user with the given email, or apperr.ErrNotFound.
func (db *DB) GetUserByEmail(email string) (*UserRow, error) {
	return db.scanUser(db.conn.QueryRow(`
		SELECT id, user_uuid, full_name, email, COALESCE(phone, ''), password_hash, created_at, last_login_at
		FROM users WHERE email = ?
	`, email))
}

// GetUserByUUID returns the user with the given uuid, or apperr.ErrNotFound.
func (db *DB) GetUserByUUID(userUUID string) (*UserRow, error) {
	return db.scanUser(db.conn.QueryRow(`
		SELECT id, user_uuid, full_name, email, COALESCE(phone, ''), password_hash, created_at, last_login_at
		FROM users WHERE user_uuid = ?
	`, userUUID))
}

// UpdateLastLogin stamps the user's last login time.
func (db *DB) UpdateLastLogin(userID int64) error {
	_, err := db.conn.Exec(`UPDATE users SET last_login_at = CURRENT_TIMESTAMP WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("db: update last login: %w", err)
	}
	return nil
}

func (db *DB) scanUser(row *sql.Row) (*UserRow, error) {
	var u UserRow
	var last sql.NullTime
	err := row.Scan(&u.ID, &u.UUID, &u.FullName, &u.Email, &u.Phone, &u.PasswordHash, &u.CreatedAt, &last)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("db: scan user: %w", err)
	}
	if last.Valid {
		u.LastLoginAt = &last.Time
	}
	return &u, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
