package services

import (
	"errors"
	"fmt"

	"vendicraft/internal/repositories"
)

var (
	// ErrOperationFailed matches every failure coming from the database,
	// the image host or the payment flow. No distinction is made between
	// transient and permanent failures and nothing is retried.
	ErrOperationFailed = errors.New("operation failed")

	// ErrNotFound matches lookups that found nothing.
	ErrNotFound = repositories.ErrNotFound

	// ErrInvalidInput marks requests rejected before any backend call.
	ErrInvalidInput = errors.New("invalid input")
)

// BackendError wraps a failed backend call. It matches ErrOperationFailed
// and, through Unwrap, whatever the backend returned.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrOperationFailed) hold for every BackendError.
func (e *BackendError) Is(target error) bool {
	return target == ErrOperationFailed
}

func backendError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
