package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/nyayassist/nyayassist/internal/apperr"
	"github.com/nyayassist/nyayassist/internal/db"
	"github.com/nyayassist/nyayassist/internal/testutil"
)

type stubLLM struct {
	answer   string
	err      error
	lastCtx  string
	lastQstn string
}

func (s *stubLLM) Generate(_ context.Context, question, contextText string) (string, error) {
	s.lastQstn = question
	s.lastCtx = contextText
	return s.answer, s.err
}

func (s *stubLLM) Model() string { return "stub-model" }

func testChat(t *testing.T, llm Generator, answered EventCallback) (*Service, *db.DB) {
	t.Helper()
	database := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(database, llm, testutil.TestEngine(t), logger, answered), database
}

func seedChunks(t *testing.T, database *db.DB, chunks []string) {
	t.Helper()
	up, err := database.CreateUpload("seed.pdf", "s/seed.pdf", 100, "h", 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := database.AddChunks(up.ID, chunks); err != nil {
		t.Fatal(err)
	}
	if err := database.FinishUpload(up.ID, len(chunks)); err != nil {
		t.Fatal(err)
	}
}

func TestAskNoDocuments(t *testing.T) {
	svc, _ := testChat(t, &stubLLM{answer: "x"}, nil)
	_, err := svc.Ask(context.Background(), "What does the deed say?", "", "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAskRetrievesAndAugments(t *testing.T) {
	llm := &stubLLM{answer: "Murder is punished with death or life imprisonment."}
	var answeredID string
	svc, database := testChat(t, llm, func(messageID string) { answeredID = messageID })
	seedChunks(t, database, []string{
		"Murder punishment under Section 302 IPC is death or imprisonment for life.",
		"Unrelated clause about lease renewals.",
	})

	ans, err := svc.Ask(context.Background(), "murder punishment under IPC Section 302", "", "")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.Contains(llm.lastCtx, "Section 302 IPC") {
		t.Errorf("retrieved context missing chunk: %q", llm.lastCtx)
	}
	if !strings.Contains(ans.Text, llm.answer) {
		t.Errorf("answer lost model text: %q", ans.Text)
	}
	if !strings.Contains(ans.Text, "LAW COMPARISON") {
		t.Errorf("answer not augmented: %q", ans.Text)
	}
	if len(ans.Comparisons) != 1 || ans.Comparisons[0].NewSection != "103" {
		t.Errorf("comparisons = %+v", ans.Comparisons)
	}
	if ans.MessageID == "" || answeredID != ans.MessageID {
		t.Errorf("message id = %q, callback got %q", ans.MessageID, answeredID)
	}
}

func TestAskNoCitationsNoAugmentation(t *testing.T) {
	llm := &stubLLM{answer: "The lease renews annually."}
	svc, database := testChat(t, llm, nil)
	seedChunks(t, database, []string{"The lease renews annually unless terminated."})

	ans, err := svc.Ask(context.Background(), "when does the lease renew", "", "")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if ans.Text != llm.answer {
		t.Errorf("answer modified without citations: %q", ans.Text)
	}
	if len(ans.Comparisons) != 0 {
		t.Errorf("comparisons = %+v, want none", ans.Comparisons)
	}
}

func TestAskModelFailureLogged(t *testing.T) {
	llm := &stubLLM{err: fmt.Errorf("model unavailable")}
	svc, database := testChat(t, llm, nil)
	seedChunks(t, database, []string{"Some indexed text about statutes."})

	_, err := svc.Ask(context.Background(), "statutes text", "", "")
	if err == nil {
		t.Fatal("expected model error")
	}

	// The failure is still recorded as an llm_outputs row.
	stats, statErr := database.DailyStats(1)
	if statErr != nil {
		t.Fatal(statErr)
	}
	if len(stats) == 0 || stats[0].ChatCalls != 1 {
		t.Errorf("stats = %+v, want one chat call", stats)
	}
}

func TestRetrievalQueryStripsPunctuation(t *testing.T) {
	got := retrievalQuery("What is IPC Section 302, exactly?!")
	for _, bad := range []string{",", "?", "!"} {
		if strings.Contains(got, bad) {
			t.Errorf("query %q contains %q", got, bad)
		}
	}
	if !strings.Contains(got, "302") {
		t.Errorf("query %q lost the section number", got)
	}
}

func TestAskPersistsSessionHistory(t *testing.T) {
	svc, database := testChat(t, &stubLLM{answer: "Theft is punished with imprisonment."}, nil)
	seedChunks(t, database, []string{
		"Theft punishment under Section 379 is imprisonment up to three years.",
	})
	sess, err := database.CreateChatSession(db.ModePDFChat, "", nil)
	if err != nil {
		t.Fatal(err)
	}

	ans, err := svc.Ask(context.Background(), "theft punishment under Section 379", "", sess.UUID)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	msgs, err := database.SessionMessages(sess.ID)
	if err != nil {
		t.Fatalf("SessionMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[0].Content != "theft punishment under Section 379" {
		t.Errorf("user turn = %+v", msgs[0])
	}
	if msgs[1].Role != "assistant" || msgs[1].Content != ans.Text {
		t.Errorf("assistant turn = %+v", msgs[1])
	}
}

func TestAskAnonymousLeavesNoHistory(t *testing.T) {
	svc, database := testChat(t, &stubLLM{answer: "Theft is punished with imprisonment."}, nil)
	seedChunks(t, database, []string{
		"Theft punishment under Section 379 is imprisonment up to three years.",
	})
	sess, err := database.CreateChatSession(db.ModePDFChat, "", nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Ask(context.Background(), "theft punishment under Section 379", "", ""); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	msgs, err := database.SessionMessages(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("messages = %d, want 0", len(msgs))
	}
}
