// internal/cmdutil/exit.go
package cmdutil

import (
	"context"
	"errors"

	"predsim/internal/simerr"
	"predsim/internal/writers"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitInput    = 2   // usage, configuration or bad input data
	ExitRuntime  = 3   // simulator or I/O failure
	ExitCanceled = 130 // interrupted
)

// UsageError marks errors caused by how predsim was invoked.
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// Usage wraps err as a UsageError; nil stays nil.
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Err: err}
}

// ExitCode maps a run error to the process exit code.
func ExitCode(err error) int {
	var ue *UsageError
	switch {
	case err == nil:
		return ExitOK
	case writers.IsBrokenPipe(err):
		// downstream closed early (e.g. `predsim ... | head`)
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	case errors.As(err, &ue), simerr.IsInputError(err):
		return ExitInput
	default:
		return ExitRuntime
	}
}
