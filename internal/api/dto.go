package api

import (
	"github.com/nyayassist/nyayassist/internal/db"
	"github.com/nyayassist/nyayassist/internal/kanoon"
	"github.com/nyayassist/nyayassist/internal/law"
	"github.com/nyayassist/nyayassist/internal/userservice"
)

// CompareRequest is the request body for a single statute comparison.
type CompareRequest struct {
	LawType string `json:"law_type" example:"IPC" validate:"required"`
	Section string `json:"section" example:"302" validate:"required"`
}

// CompareBulkRequest carries a batch of statute comparisons.
type CompareBulkRequest struct {
	Sections []CompareRequest `json:"sections" validate:"required"`
}

// Comparison is the enriched old-to-new mapping (aliased from the domain layer).
type Comparison = law.Comparison

// CompareBulkResponse wraps the resolved and unresolved halves of a batch.
type CompareBulkResponse struct {
	Found    []law.Comparison `json:"found" validate:"required"`
	NotFound []law.NotFound   `json:"not_found" validate:"required"`
}

// SectionListResponse lists every mapped section of one legal code.
type SectionListResponse struct {
	LawType  string            `json:"law_type" example:"IPC" validate:"required"`
	Sections []law.SectionInfo `json:"sections" validate:"required"`
}

// UploadResponse is returned after a PDF batch has been ingested.
type UploadResponse struct {
	Message     string   `json:"message" example:"2 file(s) processed" validate:"required"`
	UploadUUIDs []string `json:"upload_uuids" validate:"required"`
	Filenames   []string `json:"filenames" validate:"required"`
	Chunks      int      `json:"chunks" example:"14" validate:"required"`
}

// StatusResponse acknowledges a completed action.
type StatusResponse struct {
	Message string `json:"message" example:"upload deleted" validate:"required"`
}

// SessionMessagesResponse is a session's chat history in insertion order.
type SessionMessagesResponse struct {
	SessionUUID string          `json:"session_uuid" validate:"required"`
	Messages    []db.MessageRow `json:"messages" validate:"required"`
}

// ChatRequest is the request body for a PDF chat turn.
type ChatRequest struct {
	Question    string `json:"question" example:"What punishment does IPC 302 carry?" validate:"required"`
	UserUUID    string `json:"user_uuid,omitempty"`
	SessionUUID string `json:"session_uuid,omitempty"`
}

// ChatResponse carries the augmented answer for one chat turn.
type ChatResponse struct {
	Answer      string           `json:"answer" validate:"required"`
	MessageID   string           `json:"message_id" validate:"required"`
	Comparisons []law.Comparison `json:"law_comparisons,omitempty"`
}

// KanoonSearchRequest is the request body for a case-law search.
type KanoonSearchRequest struct {
	Query       string `json:"query" example:"murder section 302" validate:"required"`
	Page        int    `json:"page,omitempty" example:"0"`
	UserUUID    string `json:"user_uuid,omitempty"`
	SessionUUID string `json:"session_uuid,omitempty"`
}

// KanoonSearchResponse wraps case results plus statute comparisons
// detected in the query text.
type KanoonSearchResponse struct {
	Cases       []kanoon.Case    `json:"cases" validate:"required"`
	TotalFound  int              `json:"total_found" example:"1523" validate:"required"`
	Comparisons []law.Comparison `json:"law_comparisons,omitempty"`
}

// RegisterRequest is the request body for account creation.
type RegisterRequest struct {
	FullName string `json:"full_name" example:"A. Advocate" validate:"required"`
	Email    string `json:"email" example:"a@example.com" validate:"required"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone,omitempty"`
}

// LoginRequest is the request body for credential login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// User is the public account representation (aliased from the domain layer).
type User = userservice.User

// CreateSessionRequest opens a new chat session.
type CreateSessionRequest struct {
	ChatMode string `json:"chat_mode" example:"PDF_CHAT" validate:"required"`
	Title    string `json:"title,omitempty" example:"New Chat"`
	UserUUID string `json:"user_uuid,omitempty"`
}

// FeedbackRequest records user feedback on an answer.
type FeedbackRequest struct {
	FeedbackType string `json:"feedback_type" example:"helpful" validate:"required"`
	UserUUID     string `json:"user_uuid,omitempty"`
	MessageID    string `json:"message_id,omitempty"`
	Rating       *int   `json:"rating,omitempty" example:"5"`
	Text         string `json:"text,omitempty"`
}

// FeedbackResponse acknowledges recorded feedback.
type FeedbackResponse struct {
	FeedbackUUID string `json:"feedback_uuid" validate:"required"`
}
