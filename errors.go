package regionfill

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by a Harness after Close.
	ErrClosed = errors.New("regionfill: harness closed")

	// ErrFillFailed is wrapped by RunReport.Err for fill phases with failed regions.
	ErrFillFailed = errors.New("regionfill: fill failed")
)

// ErrInvalidConfig indicates a configuration value that cannot be used.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidConfig struct {
	Field string
	cause error
}

func (e *ErrInvalidConfig) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("invalid config: %s", e.Field)
	}
	return fmt.Sprintf("invalid config: %s: %v", e.Field, e.cause)
}

func (e *ErrInvalidConfig) Unwrap() error { return e.cause }
