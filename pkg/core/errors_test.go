package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestExecutionError_Is(t *testing.T) {
	wrapped := ErrToolNotFound.WithCause(fmt.Errorf("adb not in PATH"))

	if !errors.Is(wrapped, ErrToolNotFound) {
		t.Error("wrapped copy should match its sentinel")
	}
	if errors.Is(wrapped, ErrToolFailed) {
		t.Error("tool_not_found must not match tool_failed")
	}
	if errors.Is(wrapped, ErrNoSession) {
		t.Error("tool error must not match a session error")
	}
}

func TestExecutionError_IsAcrossMessages(t *testing.T) {
	custom := ErrElementNotFound.WithMessage("no element matching #login")

	if !errors.Is(custom, ErrElementNotFound) {
		t.Error("custom message must not break sentinel matching")
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrSessionStart.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through Unwrap")
	}

	var exec *ExecutionError
	if !errors.As(err, &exec) {
		t.Fatal("errors.As failed")
	}
	if exec.Category != ErrCategorySession {
		t.Errorf("Category = %v, want session", exec.Category)
	}
}

func TestExecutionError_ErrorString(t *testing.T) {
	plain := ErrWaitTimeout.Error()
	if plain == "" {
		t.Error("Error() returned empty string")
	}

	withCause := ErrToolFailed.WithCause(errors.New("exit status 1")).Error()
	if withCause == plain {
		t.Error("cause should appear in the message")
	}
}

func TestExecutionError_CopiesDoNotAlias(t *testing.T) {
	a := ErrAssertionFailed.WithMessage("a")
	b := ErrAssertionFailed.WithMessage("b")

	if a.Message == b.Message {
		t.Error("WithMessage must return independent copies")
	}
	if ErrAssertionFailed.Message == "a" {
		t.Error("sentinel mutated by WithMessage")
	}
}

func TestErrorCategory_String(t *testing.T) {
	cases := map[ErrorCategory]string{
		ErrCategoryNone:      "none",
		ErrCategoryTool:      "tool",
		ErrCategorySession:   "session",
		ErrCategoryElement:   "element",
		ErrCategoryAssertion: "assertion",
		ErrorCategory(99):    "unknown",
	}
	for cat, want := range cases {
		if got := cat.String(); got != want {
			t.Errorf("ErrorCategory(%d).String() = %q, want %q", cat, got, want)
		}
	}
}
