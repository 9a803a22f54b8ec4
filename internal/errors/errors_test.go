package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestDaybriefError_Error(t *testing.T) {
	err := &DaybriefError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "summary not found",
	}

	expected := "NOT_FOUND: summary not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("message is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "message is required" {
		t.Errorf("Message = %q, want %q", err.Message, "message is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("daily_summary")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "daily_summary" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "daily_summary")
	}
}

func TestNewBusy(t *testing.T) {
	err := NewBusy("jira")

	if err.Code != ErrBusy {
		t.Errorf("Code = %q, want %q", err.Code, ErrBusy)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["panel"] != "jira" {
		t.Errorf("Details[panel] = %v, want jira", err.Details["panel"])
	}
}

func TestNewRemoteUnavailable_HidesCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp 10.0.0.1:443: connection refused")
	err := NewRemoteUnavailable("daily_summary", cause)

	if err.Code != ErrRemoteUnavailable {
		t.Errorf("Code = %q, want %q", err.Code, ErrRemoteUnavailable)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if err.Message != "remote service unavailable" {
		t.Errorf("Message = %q, want generic message", err.Message)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Code != ErrInternal || err.Status != 500 {
		t.Errorf("got %s/%d, want INTERNAL/500", err.Code, err.Status)
	}
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	if NewInternal(nil).Message != "internal error" {
		t.Error("nil cause should produce default message")
	}
}

func TestIs(t *testing.T) {
	err := NewBusy("jira")
	if !Is(err, ErrBusy) {
		t.Error("Is(busy, ErrBusy) = false, want true")
	}
	if Is(err, ErrNotFound) {
		t.Error("Is(busy, ErrNotFound) = true, want false")
	}

	wrapped := fmt.Errorf("send: %w", err)
	if !Is(wrapped, ErrBusy) {
		t.Error("Is should see through wrapping")
	}

	if Is(fmt.Errorf("plain"), ErrInternal) {
		t.Error("plain errors carry no code")
	}
}

func TestAs(t *testing.T) {
	orig := NewNotFound("x")
	if got := As(fmt.Errorf("wrap: %w", orig)); got != orig {
		t.Errorf("As returned %v, want original", got)
	}

	got := As(fmt.Errorf("boom"))
	if got.Code != ErrInternal {
		t.Errorf("As(plain).Code = %q, want INTERNAL", got.Code)
	}
}
