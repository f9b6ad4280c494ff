package review

import (
	"errors"
	"fmt"
)

// Common error types for the review service.
var (
	// ErrNoCardsDue indicates that the learner has no cards due for review.
	// This is a normal, expected state, not a failure.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrSessionNotFound indicates that the session handle is unknown,
	// typically because the session expired or was never started.
	ErrSessionNotFound = errors.New("review session not found")

	// ErrSessionComplete indicates an operation on a session that has
	// already presented and graded its entire queue.
	ErrSessionComplete = errors.New("review session is already complete")

	// ErrAnswerNotRevealed indicates a grade was submitted before the
	// current card's answer was revealed. Grading is only valid from the
	// revealed state.
	ErrAnswerNotRevealed = errors.New("answer has not been revealed")
)

// ServiceError wraps errors from the review service with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_session", "grade")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// newServiceError returns a new ServiceError for the given operation.
func newServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
