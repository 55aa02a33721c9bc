package verify

import (
	"errors"
	"fmt"
	"time"
)

// ErrVerification is wrapped by Result.Err for every failed verification.
var ErrVerification = errors.New("verify: file does not match layout")

// FailureKind classifies a failed verification.
type FailureKind int

const (
	// FailureNone means the file matched.
	FailureNone FailureKind = iota
	// FailureMismatch means a byte held an unexpected value.
	FailureMismatch
	// FailureTruncated means the stream ended early.
	FailureTruncated
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureMismatch:
		return "mismatch"
	case FailureTruncated:
		return "truncated"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Result is the outcome of a verification.
type Result struct {
	Passed  bool
	Failure FailureKind

	// Region is the failing region index, or -1 when Passed.
	Region int
	// Offset is the absolute offset of the first wrong byte, or where the stream ended.
	Offset   int64
	Expected byte
	Actual   byte

	BytesRead int64
	Duration  time.Duration
	// Throttled is the part of Duration spent waiting on the IO limit.
	Throttled time.Duration
}

// Err returns nil for a passed result and an error wrapping ErrVerification otherwise.
func (r Result) Err() error {
	switch r.Failure {
	case FailureNone:
		return nil
	case FailureMismatch:
		return fmt.Errorf("%w: region %d offset %d: expected %d, got %d",
			ErrVerification, r.Region, r.Offset, r.Expected, r.Actual)
	case FailureTruncated:
		return fmt.Errorf("%w: region %d: stream ended at offset %d",
			ErrVerification, r.Region, r.Offset)
	default:
		return fmt.Errorf("%w: %v", ErrVerification, r.Failure)
	}
}
