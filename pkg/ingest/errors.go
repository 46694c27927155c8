package ingest

import (
	"errors"
	"fmt"
)

// Common errors returned by the ingestor.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrBadEnvelope is returned when a response body is neither a JSON
	// array nor an object carrying a "results" array.
	ErrBadEnvelope = errors.New("unexpected response envelope")
)

// StatusError represents a non-200 response from the target API.
// It is recovered locally by the retry loop and only surfaces to callers
// wrapped inside an ExhaustedError.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// ExhaustedError is returned when every retry attempt for a request has
// failed. It carries the URL and the attempt count, and wraps the error
// from the final attempt.
type ExhaustedError struct {
	URL      string
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed to fetch %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Is reports ErrRetryExhausted so callers can match exhaustion with
// errors.Is without knowing the concrete type.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrRetryExhausted
}
