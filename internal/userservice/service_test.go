package userservice

import (
	"context"
	"errors"
	"testing"

	"github.com/nyayassist/nyayassist/internal/apperr"
	"github.com/nyayassist/nyayassist/internal/db"
	"github.com/nyayassist/nyayassist/internal/testutil"
)

func testService(t *testing.T) *Service {
	t.Helper()
	return NewService(testutil.TestDB(t))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "A. Advocate", "a@example.com", "secret123", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.UUID == "" || user.Email != "a@example.com" {
		t.Errorf("user = %+v", user)
	}

	got, err := svc.Login(ctx, "a@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.UUID != user.UUID {
		t.Errorf("uuid mismatch: %q vs %q", got.UUID, user.UUID)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	svc := testService(t)
	_, err := svc.Register(context.Background(), "", "a@example.com", "pw", "")
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "A", "dup@example.com", "pw123", ""); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Register(ctx, "B", "dup@example.com", "pw456", "")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "A", "a@example.com", "right-pw", ""); err != nil {
		t.Fatal(err)
	}

	_, wrongPw := svc.Login(ctx, "a@example.com", "wrong-pw")
	_, noUser := svc.Login(ctx, "ghost@example.com", "whatever")
	if !errors.Is(wrongPw, apperr.ErrUnauthorized) || !errors.Is(noUser, apperr.ErrUnauthorized) {
		t.Errorf("wrongPw = %v, noUser = %v, both should be ErrUnauthorized", wrongPw, noUser)
	}
}

func TestCreateSessionModes(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, db.ModeKanoonSearch, "Research", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.Title != "Research" {
		t.Errorf("title = %q", sess.Title)
	}

	_, err = svc.CreateSession(ctx, "VIDEO_CALL", "", "")
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCreateSessionUnknownUserDegradesToAnonymous(t *testing.T) {
	svc := testService(t)
	sess, err := svc.CreateSession(context.Background(), db.ModePDFChat, "", "no-such-user")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.UUID == "" {
		t.Error("missing session uuid")
	}
}

func TestSubmitFeedbackValidation(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	id, err := svc.SubmitFeedback(ctx, "helpful", "", "", nil, "clear answer")
	if err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	if id == "" {
		t.Error("empty feedback uuid")
	}

	_, err = svc.SubmitFeedback(ctx, "amazing", "", "", nil, "")
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}
