package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable indicates a collaborator fetch failed; the caller
	// degrades to an empty-but-usable state and may retry.
	ErrUnavailable = errors.New("data unavailable")
	// ErrInvalid marks a precondition failure on user input or form state.
	ErrInvalid = errors.New("invalid state")
	// ErrConflict indicates the request collides with existing data.
	ErrConflict = errors.New("conflict")
)

// ValidationError is a local, recoverable input error. It is returned, never
// panicked, and its message is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SubmissionError wraps a rejected external submit. The in-progress draft is
// deliberately kept so the user can retry without re-entering data.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission rejected: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
