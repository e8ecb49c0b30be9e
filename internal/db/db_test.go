package db

import (
	"errors"
	"os"
	"testing"

	"github.com/nyayassist/nyayassist/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "nyayassist-db-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	database, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestCreateAndGetUser(t *testing.T) {
	database := testDB(t)

	row, err := database.CreateUser("A. Advocate", "a@example.com", "9999999999", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if row.UUID == "" || row.ID == 0 {
		t.Errorf("row = %+v", row)
	}

	byEmail, err := database.GetUserByEmail("a@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.FullName != "A. Advocate" || byEmail.Phone != "9999999999" {
		t.Errorf("byEmail = %+v", byEmail)
	}

	byUUID, err := database.GetUserByUUID(row.UUID)
	if err != nil {
		t.Fatalf("GetUserByUUID: %v", err)
	}
	if byUUID.ID != row.ID {
		t.Errorf("id mismatch: %d vs %d", byUUID.ID, row.ID)
	}

	if err := database.UpdateLastLogin(row.ID); err != nil {
		t.Fatalf("UpdateLastLogin: %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	database := testDB(t)

	if _, err := database.CreateUser("A", "dup@example.com", "", "h1"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := database.CreateUser("B", "dup@example.com", "", "h2")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	database := testDB(t)
	_, err := database.GetUserByEmail("nope@example.com")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	_, err = database.GetUserByUUID("no-such-uuid")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestChatSessionLifecycle(t *testing.T) {
	database := testDB(t)

	sess, err := database.CreateChatSession(ModePDFChat, "", nil)
	if err != nil {
		t.Fatalf("CreateChatSession: %v", err)
	}
	if sess.Title != "New Chat" {
		t.Errorf("default title = %q", sess.Title)
	}
	if sess.ChatMode != ModePDFChat {
		t.Errorf("mode = %q", sess.ChatMode)
	}

	got, err := database.GetSessionByUUID(sess.UUID)
	if err != nil {
		t.Fatalf("GetSessionByUUID: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("id mismatch")
	}

	msgUUID, err := database.AddMessage(sess.ID, "user", "What is Section 302?")
	if err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if msgUUID == "" {
		t.Error("empty message uuid")
	}
	if _, err := database.AddMessage(sess.ID, "assistant", "Section 302 covers murder."); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	msgs, err := database.SessionMessages(sess.ID)
	if err != nil {
		t.Fatalf("SessionMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("roles out of order: %q, %q", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].UUID != msgUUID {
		t.Errorf("first message uuid = %q, want %q", msgs[0].UUID, msgUUID)
	}
}

func TestUploadLifecycle(t *testing.T) {
	database := testDB(t)

	up, err := database.CreateUpload("brief.pdf", "u1/brief.pdf", 2048, "hash", 3, nil, nil)
	if err != nil {
		t.Fatalf("CreateUpload: %v", err)
	}
	if up.Status != UploadProcessing {
		t.Errorf("status = %q, want processing", up.Status)
	}

	chunks := []string{
		"Murder is punishable under Section 302.",
		"Bail provisions are covered separately.",
	}
	if err := database.AddChunks(up.ID, chunks); err != nil {
		t.Fatalf("AddChunks: %v", err)
	}
	n, err := database.ChunkCount()
	if err != nil {
		t.Fatalf("ChunkCount: %v", err)
	}
	if n != 2 {
		t.Errorf("chunk count = %d, want 2", n)
	}

	if err := database.FinishUpload(up.ID, len(chunks)); err != nil {
		t.Fatalf("FinishUpload: %v", err)
	}
}

func TestFailUpload(t *testing.T) {
	database := testDB(t)
	up, err := database.CreateUpload("scan.pdf", "u2/scan.pdf", 10, "h", 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := database.FailUpload(up.ID, "no text could be extracted"); err != nil {
		t.Fatalf("FailUpload: %v", err)
	}
}

func TestSearchChunks(t *testing.T) {
	database := testDB(t)
	up, _ := database.CreateUpload("law.pdf", "u3/law.pdf", 10, "h", 1, nil, nil)
	_ = database.AddChunks(up.ID, []string{
		"Murder is punishable with death under Section 302.",
		"Theft is covered by Section 379.",
		"Cheating is covered by Section 420.",
	})

	hits, err := database.SearchChunks("murder 302", 4)
	if err != nil {
		t.Fatalf("SearchChunks: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}

	hits, err = database.SearchChunks("section", 2)
	if err != nil {
		t.Fatalf("SearchChunks: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("limit not applied: %d hits", len(hits))
	}
}

func TestGetAndDeleteUpload(t *testing.T) {
	database := testDB(t)
	up, _ := database.CreateUpload("brief.pdf", "u5/brief.pdf", 10, "h", 1, nil, nil)

	got, err := database.GetUploadByUUID(up.UUID)
	if err != nil {
		t.Fatalf("GetUploadByUUID: %v", err)
	}
	if got.ID != up.ID || got.Path != "u5/brief.pdf" {
		t.Errorf("got = %+v", got)
	}

	paths, err := database.StoredUploadPaths()
	if err != nil {
		t.Fatalf("StoredUploadPaths: %v", err)
	}
	if len(paths) != 1 || paths[0] != "u5/brief.pdf" {
		t.Errorf("paths = %v", paths)
	}

	if err := database.DeleteUpload(up.ID); err != nil {
		t.Fatalf("DeleteUpload: %v", err)
	}
	if _, err := database.GetUploadByUUID(up.UUID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err after delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteUploadChunks(t *testing.T) {
	database := testDB(t)
	up, _ := database.CreateUpload("tmp.pdf", "u4/tmp.pdf", 10, "h", 1, nil, nil)
	_ = database.AddChunks(up.ID, []string{"some chunk text"})

	if err := database.DeleteUploadChunks(up.ID); err != nil {
		t.Fatalf("DeleteUploadChunks: %v", err)
	}
	n, _ := database.ChunkCount()
	if n != 0 {
		t.Errorf("chunk count after delete = %d", n)
	}
}

func TestLogAccessAndDailyStats(t *testing.T) {
	database := testDB(t)

	for i := 0; i < 3; i++ {
		err := database.LogAccess(AccessLogEntry{
			Endpoint:   "/api/law/compare",
			Method:     "POST",
			IPAddress:  "10.0.0.1",
			Status:     200,
			DurationMS: 5,
		})
		if err != nil {
			t.Fatalf("LogAccess: %v", err)
		}
	}

	stats, err := database.DailyStats(7)
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if len(stats) == 0 {
		t.Fatal("no stats rows")
	}
	if stats[0].Requests != 3 {
		t.Errorf("requests = %d, want 3", stats[0].Requests)
	}
}

func TestLogLLMOutput(t *testing.T) {
	database := testDB(t)

	id, err := database.LogLLMOutput(LLMOutputEntry{
		ModelName:  "gpt-4o-mini",
		Question:   "What is Section 302?",
		Context:    "Section 302 text...",
		Response:   "Murder.",
		DurationMS: 120,
		Success:    true,
	})
	if err != nil {
		t.Fatalf("LogLLMOutput: %v", err)
	}
	if id == "" {
		t.Error("empty output uuid")
	}

	stats, err := database.DailyStats(7)
	if err != nil {
		t.Fatal(err)
	}
	if stats[0].ChatCalls != 1 {
		t.Errorf("chat calls = %d, want 1", stats[0].ChatCalls)
	}
}

func TestLogKanoonQueryAndPopularSearches(t *testing.T) {
	database := testDB(t)

	for i := 0; i < 2; i++ {
		_, err := database.LogKanoonQuery(KanoonQueryEntry{
			Query:      "murder 302",
			TotalFound: 10,
			Returned:   2,
			DurationMS: 30,
			Success:    true,
			Cases: []KanoonCaseEntry{
				{DocID: "123", Title: "State v. Accused", Snippet: "x", CaseLink: "https://indiankanoon.org/doc/123/"},
				{DocID: "456", Title: "Another v. Case", Snippet: "y", CaseLink: "https://indiankanoon.org/doc/456/"},
			},
		})
		if err != nil {
			t.Fatalf("LogKanoonQuery: %v", err)
		}
	}
	if _, err := database.LogKanoonQuery(KanoonQueryEntry{Query: "bail", Success: true}); err != nil {
		t.Fatal(err)
	}

	popular, err := database.PopularSearches(10)
	if err != nil {
		t.Fatalf("PopularSearches: %v", err)
	}
	if len(popular) < 2 {
		t.Fatalf("popular = %+v", popular)
	}
	if popular[0].Query != "murder 302" || popular[0].Count != 2 {
		t.Errorf("top search = %+v", popular[0])
	}
}

func TestAddFeedback(t *testing.T) {
	database := testDB(t)
	rating := 4
	id, err := database.AddFeedback("helpful", nil, "", &rating, "good answer")
	if err != nil {
		t.Fatalf("AddFeedback: %v", err)
	}
	if id == "" {
		t.Error("empty feedback uuid")
	}
}
