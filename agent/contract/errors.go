package contract

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
	ErrRateLimited     = errors.New("provider rate limit exceeded")
	ErrToolExecution   = errors.New("tool execution failed")
	ErrTranscription   = errors.New("transcription failed")
	ErrPersistence     = errors.New("persistence failed")
)

// RateLimitError is the structured form of a throughput rejection. Providers
// that expose a retry hint should return it instead of relying on message
// parsing.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (retry after %s)", ErrRateLimited, e.RetryAfter)
	}
	return fmt.Sprintf("%s (retry after %s): %v", ErrRateLimited, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRateLimited}
	}
	return []error{ErrRateLimited, e.Err}
}
