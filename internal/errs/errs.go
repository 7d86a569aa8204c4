package errs

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnknownEngine indicates that the requested download engine is not registered.
	ErrUnknownEngine = errors.New("unknown engine")
	// ErrUnsupportedSelection indicates that an engine cannot honour the requested format selection.
	ErrUnsupportedSelection = errors.New("unsupported format selection")
	// ErrNoSuitableFormat indicates that no stream matched the format selection.
	ErrNoSuitableFormat = errors.New("no suitable format found")
	// ErrToolMissing indicates that a required external executable is not installed.
	ErrToolMissing = errors.New("required tool not found")
)

// InvalidInputError reports a malformed request detected before any network
// or filesystem activity. It is never retried.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

// FilesystemError reports a fatal local filesystem failure.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// TransferError wraps the failure of a single download attempt.
type TransferError struct {
	Attempt int
	Err     error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("attempt %d: %v", e.Attempt, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// ExhaustedRetriesError is returned once every allowed attempt has failed.
// Last holds the final TransferError.
type ExhaustedRetriesError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, Cause(e.Last))
}

func (e *ExhaustedRetriesError) Unwrap() error { return e.Last }

// NewInvalidInput is a shorthand for building an InvalidInputError.
func NewInvalidInput(field, value, reason string) error {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}

// IsInvalidInput reports whether err is or wraps an InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// IsFilesystem reports whether err is or wraps a FilesystemError.
func IsFilesystem(err error) bool {
	var target *FilesystemError
	return errors.As(err, &target)
}

// IsRetryable reports whether another attempt may succeed. Only transfer
// failures qualify; input, filesystem and cancellation errors are final.
func IsRetryable(err error) bool {
	if err == nil || IsInvalidInput(err) || IsFilesystem(err) {
		return false
	}
	var exhausted *ExhaustedRetriesError
	if errors.As(err, &exhausted) {
		return false
	}
	var transfer *TransferError
	return errors.As(err, &transfer)
}

// IsCanceled reports whether err came from context cancellation or a deadline
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Cause strips TransferError wrappers and returns the underlying error.
func Cause(err error) error {
	for {
		var transfer *TransferError
		if !errors.As(err, &transfer) || transfer.Err == nil {
			return err
		}
		err = transfer.Err
	}
}
