// Package userservice implements user accounts, chat sessions, and
// feedback on top of the relational store.
package userservice

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/nyayassist/nyayassist/internal/apperr"
	"github.com/nyayassist/nyayassist/internal/db"
)

// Service coordinates account and session operations.
type Service struct {
	db *db.DB
}

// NewService creates a new user service.
func NewService(database *db.DB) *Service {
	return &Service{db: database}
}

// User is the public representation of an account.
type User struct {
	UUID     string `json:"user_uuid"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Register creates a new account with a bcrypt password hash.
func (s *Service) Register(_ context.Context, fullName, email, password, phone string) (*User, error) {
	if fullName == "" || email == "" || password == "" {
		return nil, fmt.Errorf("userservice: full name, email, and password are required: %w", apperr.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("userservice: hash password: %w", err)
	}
	row, err := s.db.CreateUser(fullName, email, phone, string(hash))
	if err != nil {
		return nil, err
	}
	return &User{UUID: row.UUID, FullName: row.FullName, Email: row.Email}, nil
}

// Login verifies credentials and stamps the last login time. The error is
// apperr.ErrUnauthorized for both unknown emails and wrong passwords, so
// the two cases are indistinguishable to the caller.
func (s *Service) Login(_ context.Context, email, password string) (*User, error) {
	row, err := s.db.GetUserByEmail(email)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		return nil, apperr.ErrUnauthorized
	}
	if err := s.db.UpdateLastLogin(row.ID); err != nil {
		return nil, err
	}
	return &User{UUID: row.UUID, FullName: row.FullName, Email: row.Email}, nil
}

// Session is the public representation of a chat session.
type Session struct {
	UUID  string `json:"session_uuid"`
	Title string `json:"title"`
}

// CreateSession opens a chat session, optionally owned by a known user.
// An unknown user uuid degrades to an anonymous session.
func (s *Service) CreateSession(_ context.Context, chatMode, title, userUUID string) (*Session, error) {
	if chatMode != db.ModePDFChat && chatMode != db.ModeKanoonSearch {
		return nil, fmt.Errorf("userservice: chat_mode must be %s or %s: %w",
			db.ModePDFChat, db.ModeKanoonSearch, apperr.ErrInvalidInput)
	}
	var userID *int64
	if userUUID != "" {
		if u, err := s.db.GetUserByUUID(userUUID); err == nil {
			userID = &u.ID
		}
	}
	row, err := s.db.CreateChatSession(chatMode, title, userID)
	if err != nil {
		return nil, err
	}
	return &Session{UUID: row.UUID, Title: row.Title}, nil
}

var feedbackTypes = map[string]struct{}{
	"helpful": {}, "not_helpful": {}, "incorrect": {}, "offensive": {}, "other": {},
}

// SubmitFeedback records feedback, optionally tied to a user and an LLM
// output. Returns the feedback uuid.
func (s *Service) SubmitFeedback(_ context.Context, feedbackType, userUUID, messageID string, rating *int, text string) (string, error) {
	if _, ok := feedbackTypes[feedbackType]; !ok {
		return "", fmt.Errorf("userservice: unknown feedback_type %q: %w", feedbackType, apperr.ErrInvalidInput)
	}
	var userID *int64
	if userUUID != "" {
		if u, err := s.db.GetUserByUUID(userUUID); err == nil {
			userID = &u.ID
		}
	}
	return s.db.AddFeedback(feedbackType, userID, messageID, rating, text)
}
