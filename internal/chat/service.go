package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/nyayassist/nyayassist/internal/apperr"
	"github.com/nyayassist/nyayassist/internal/db"
	"github.com/nyayassist/nyayassist/internal/law"
)

// loggedContextLimit caps the retrieval context stored with each LLM log
// row.
const loggedContextLimit = 5000

// Answer is the result of one chat turn.
type Answer struct {
	Text        string
	MessageID   string
	Comparisons []law.Comparison
}

// EventCallback is called after an answer is produced.
type EventCallback func(messageID string)

// Service runs retrieval, generation, and statute augmentation for one
// question.
type Service struct {
	db       *db.DB
	llm      Generator
	engine   *law.Engine
	logger   *slog.Logger
	topK     int
	answered EventCallback
}

// NewService creates a chat service. answered may be nil.
func NewService(database *db.DB, llm Generator, engine *law.Engine, logger *slog.Logger, answered EventCallback) *Service {
	return &Service{db: database, llm: llm, engine: engine, logger: logger, topK: 4, answered: answered}
}

// Ask answers a question against the indexed document chunks. The raw model
// answer is augmented with statute comparisons before being returned and
// logged. userUUID and sessionUUID are optional.
func (s *Service) Ask(ctx context.Context, question, userUUID, sessionUUID string) (*Answer, error) {
	start := time.Now()

	userID, sessionID := s.resolveIDs(userUUID, sessionUUID)

	chunks, err := s.db.SearchChunks(retrievalQuery(question), s.topK)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		if n, countErr := s.db.ChunkCount(); countErr == nil && n == 0 {
			return nil, fmt.Errorf("chat: no documents uploaded yet: %w", apperr.ErrNotFound)
		}
	}
	contextText := strings.Join(chunks, "\n\n")

	raw, err := s.llm.Generate(ctx, question, contextText)
	if err != nil {
		// Log the failure; the logging itself is best-effort.
		if _, logErr := s.db.LogLLMOutput(db.LLMOutputEntry{
			UserID: userID, SessionID: sessionID,
			ModelName: s.llm.Model(), Question: question,
			DurationMS: time.Since(start).Milliseconds(),
			Success:    false, ErrorMessage: err.Error(),
		}); logErr != nil {
			s.logger.Warn("chat: log failure", slog.String("error", logErr.Error()))
		}
		return nil, err
	}

	augmented, comparisons := s.engine.Augment(raw, question)

	messageID, err := s.db.LogLLMOutput(db.LLMOutputEntry{
		UserID: userID, SessionID: sessionID,
		ModelName: s.llm.Model(), Question: question,
		Context:    truncate(contextText, loggedContextLimit),
		Response:   augmented,
		DurationMS: time.Since(start).Milliseconds(),
		Success:    true,
	})
	if err != nil {
		s.logger.Warn("chat: log output", slog.String("error", err.Error()))
	}

	if sessionID != nil {
		s.persistTurn(*sessionID, question, augmented)
	}

	if s.answered != nil && messageID != "" {
		s.answered(messageID)
	}

	return &Answer{Text: augmented, MessageID: messageID, Comparisons: comparisons}, nil
}

// persistTurn appends the question/answer pair to the session history.
// Best-effort: a failed write never fails the chat response.
func (s *Service) persistTurn(sessionID int64, question, answer string) {
	if _, err := s.db.AddMessage(sessionID, "user", question); err != nil {
		s.logger.Warn("chat: persist user message", slog.String("error", err.Error()))
		return
	}
	if _, err := s.db.AddMessage(sessionID, "assistant", answer); err != nil {
		s.logger.Warn("chat: persist assistant message", slog.String("error", err.Error()))
	}
}

// resolveIDs maps optional caller uuids to row ids; unknown uuids degrade
// to anonymous rather than failing the chat.
func (s *Service) resolveIDs(userUUID, sessionUUID string) (userID, sessionID *int64) {
	if userUUID != "" {
		if u, err := s.db.GetUserByUUID(userUUID); err == nil {
			userID = &u.ID
		}
	}
	if sessionUUID != "" {
		if sess, err := s.db.GetSessionByUUID(sessionUUID); err == nil {
			sessionID = &sess.ID
		}
	}
	return userID, sessionID
}

// retrievalQuery reduces a free-text question to bare search terms so the
// chunk index never sees query-syntax metacharacters.
func retrievalQuery(question string) string {
	var terms []string
	for _, f := range strings.Fields(question) {
		term := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(term) > 2 {
			terms = append(terms, term)
		}
	}
	return strings.Join(terms, " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
