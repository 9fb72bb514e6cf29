package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestError_ErrorString_NoCause(t *testing.T) {
	err := New(KindValidation, "invalid_credentials", "invalid email or password")

	msg := err.Error()
	if msg == "" {
		t.Fatal("expected non-empty error string")
	}
}

func TestError_WrapAndUnwrap(t *testing.T) {
	root := errors.New("root cause")
	err := Wrap(KindInternal, "hash_failed", "hash failed", root)

	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is to match cause")
	}
	if errors.Unwrap(err) != root {
		t.Fatalf("unwrap did not return cause")
	}
}

func TestIs_MatchesCode(t *testing.T) {
	err := ErrInvalidCredentials()

	if !Is(err, "invalid_credentials") {
		t.Fatalf("expected code match")
	}
	if Is(err, "something_else") {
		t.Fatalf("unexpected code match")
	}
}

func TestErrAccountLocked_RoundsMinutesUp(t *testing.T) {
	err := ErrAccountLocked(10*time.Minute + 30*time.Second)

	if err.Meta["retry_after_minutes"] != "11" {
		t.Fatalf("expected 11 minutes, got %+v", err.Meta)
	}
	if !strings.Contains(err.Message, "11 minutes") {
		t.Fatalf("expected remaining minutes in message, got %q", err.Message)
	}
}

func TestErrAccountLocked_NeverBelowOneMinute(t *testing.T) {
	err := ErrAccountLocked(5 * time.Second)

	if err.Meta["retry_after_minutes"] != "1" {
		t.Fatalf("expected floor of 1 minute, got %+v", err.Meta)
	}
}

func TestErrAccountJustLocked_NamesThresholdAndDuration(t *testing.T) {
	err := ErrAccountJustLocked(3, 24*time.Hour)

	if !strings.Contains(err.Message, "24 hours") || !strings.Contains(err.Message, "3 failed") {
		t.Fatalf("unexpected message: %q", err.Message)
	}
	if err.Kind != KindForbidden {
		t.Fatalf("expected forbidden kind, got %s", err.Kind)
	}
}
