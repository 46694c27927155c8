package ingest

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusError_Error(t *testing.T) {
	err := &StatusError{StatusCode: 502, Body: `{"error": "bad gateway"}`}

	want := `unexpected status 502: {"error": "bad gateway"}`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestExhaustedError_Error(t *testing.T) {
	err := &ExhaustedError{
		URL:      "https://api.example.com/items",
		Attempts: 5,
		Err:      &StatusError{StatusCode: 500, Body: "boom"},
	}

	want := "failed to fetch https://api.example.com/items after 5 attempts: unexpected status 500: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestExhaustedError_Is(t *testing.T) {
	err := &ExhaustedError{URL: "https://api.example.com", Attempts: 3}

	if !errors.Is(err, ErrRetryExhausted) {
		t.Error("errors.Is should match ErrRetryExhausted")
	}
	if errors.Is(err, ErrContextCancelled) {
		t.Error("errors.Is should not match ErrContextCancelled")
	}
}

func TestExhaustedError_Unwrap(t *testing.T) {
	inner := &StatusError{StatusCode: 429, Body: "slow down"}
	err := &ExhaustedError{URL: "u", Attempts: 2, Err: inner}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatal("errors.As should unwrap to *StatusError")
	}
	if statusErr.StatusCode != 429 {
		t.Errorf("StatusCode = %d, want 429", statusErr.StatusCode)
	}
}

func TestExhaustedError_WrappedFurther(t *testing.T) {
	err := fmt.Errorf("fetch crimes: %w", &ExhaustedError{URL: "u", Attempts: 5})

	if !errors.Is(err, ErrRetryExhausted) {
		t.Error("errors.Is should match through additional wrapping")
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatal("errors.As should find *ExhaustedError through wrapping")
	}
	if exhausted.Attempts != 5 {
		t.Errorf("Attempts = %d, want 5", exhausted.Attempts)
	}
}
