package errors

import (
	"fmt"
	"testing"
)

func TestTaskbarError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeNiriReply, "reply error")
	if err.Code != ErrCodeNiriReply {
		t.Errorf("expected code %s, got %s", ErrCodeNiriReply, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeNiriSocket, "socket failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeNiriSocket) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeNiriReply) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("request", "EventStream").WithDetail("attempt", 1)
	if detailed.Details["request"] != "EventStream" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	err := ProcMalformed(42)
	if err.Code != ErrCodeProcMalformed {
		t.Errorf("expected code %s, got %s", ErrCodeProcMalformed, err.Code)
	}
	if err.Details["pid"] != 42 {
		t.Error("ProcMalformed should include pid detail")
	}

	err = UnexpectedResponse("Handled", "Windows")
	if err.Code != ErrCodeUnexpectedResponse {
		t.Errorf("expected code %s, got %s", ErrCodeUnexpectedResponse, err.Code)
	}
	if err.Details["got"] != "Windows" {
		t.Error("UnexpectedResponse should include got detail")
	}
}

func TestAsTaskbarError(t *testing.T) {
	inner := ProcUnreadable(7, fmt.Errorf("no such file"))
	chained := fmt.Errorf("walking ancestry: %w", inner)

	te, ok := AsTaskbarError(chained)
	if !ok {
		t.Fatal("AsTaskbarError should find the wrapped error")
	}
	if te.Code != ErrCodeProcUnreadable {
		t.Errorf("expected code %s, got %s", ErrCodeProcUnreadable, te.Code)
	}

	if _, ok := AsTaskbarError(fmt.Errorf("plain")); ok {
		t.Error("AsTaskbarError should report false for plain errors")
	}
}
