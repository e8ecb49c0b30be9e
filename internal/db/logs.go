package db

import (
	"fmt"

	"github.com/google/uuid"
)

// AccessLogEntry is the record written by the access-log middleware.
type AccessLogEntry struct {
	UserUUID     string
	SessionID    string
	IPAddress    string
	UserAgent    string
	Endpoint     string
	Method       string
	RequestBody  string
	Status       int
	DurationMS   int64
	ErrorMessage string
}

// LogAccess writes one access-log row.
func (db *DB) LogAccess(e AccessLogEntry) error {
	_, err := db.conn.Exec(`
		INSERT INTO access_logs
			(user_uuid, session_id, ip_address, user_agent, endpoint, http_method,
			 request_body, response_status, response_time_ms, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, nullable(e.UserUUID), nullable(e.SessionID), nullable(e.IPAddress), nullable(e.UserAgent),
		e.Endpoint, e.Method, nullable(e.RequestBody), e.Status, e.DurationMS, nullable(e.ErrorMessage))
	if err != nil {
		return fmt.Errorf("db: log access: %w", err)
	}
	return nil
}

// LLMOutputEntry records one model call.
type LLMOutputEntry struct {
	UserID       *int64
	SessionID    *int64
	ModelName    string
	Question     string
	Context      string
	Response     string
	DurationMS   int64
	Success      bool
	ErrorMessage string
}

// LogLLMOutput writes one llm_outputs row and returns its uuid.
func (db *DB) LogLLMOutput(e LLMOutputEntry) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(`
		INSERT INTO llm_outputs
			(output_uuid, user_id, session_id, model_name, user_question, context_provided,
			 llm_response, response_time_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, e.UserID, e.SessionID, e.ModelName, e.Question, nullable(e.Context),
		e.Response, e.DurationMS, e.Success, nullable(e.ErrorMessage))
	if err != nil {
		return "", fmt.Errorf("db: log llm output: %w", err)
	}
	return id, nil
}

// KanoonCaseEntry is one logged case result for a search query.
type KanoonCaseEntry struct {
	DocID    string
	Title    string
	Snippet  string
	CaseLink string
}

// KanoonQueryEntry records one case-law search.
type KanoonQueryEntry struct {
	UserID       *int64
	SessionID    *int64
	Query        string
	Page         int
	TotalFound   int
	Returned     int
	DurationMS   int64
	Success      bool
	ErrorMessage string
	Cases        []KanoonCaseEntry
}

// LogKanoonQuery writes the query row and its case results in one
// transaction, returning the query uuid.
func (db *DB) LogKanoonQuery(e KanoonQueryEntry) (string, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("db: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id := uuid.NewString()
	res, err := tx.Exec(`
		INSERT INTO kanoon_queries
			(query_uuid, user_id, session_id, search_query, page_number,
			 total_results_found, results_returned, response_time_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, e.UserID, e.SessionID, e.Query, e.Page, e.TotalFound, e.Returned,
		e.DurationMS, e.Success, nullable(e.ErrorMessage))
	if err != nil {
		return "", fmt.Errorf("db: log kanoon query: %w", err)
	}
	queryID, _ := res.LastInsertId()

	for i, c := range e.Cases {
		if _, err := tx.Exec(`
			INSERT INTO kanoon_case_results (query_id, doc_id, title, snippet, case_link, result_rank)
			VALUES (?, ?, ?, ?, ?, ?)
		`, queryID, c.DocID, c.Title, c.Snippet, c.CaseLink, i+1); err != nil {
			return "", fmt.Errorf("db: log case result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// AddFeedback stores one feedback row and returns its uuid.
func (db *DB) AddFeedback(feedbackType string, userID *int64, outputUUID string, rating *int, text string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(`
		INSERT INTO feedback (feedback_uuid, user_id, output_uuid, feedback_type, rating, feedback_text)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, userID, nullable(outputUUID), feedbackType, rating, nullable(text))
	if err != nil {
		return "", fmt.Errorf("db: add feedback: %w", err)
	}
	return id, nil
}

// nullable maps "" to NULL so empty optional fields stay NULL in the schema.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
