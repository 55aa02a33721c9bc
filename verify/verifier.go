package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/regionfill/internal/conv"
	"github.com/hupe1980/regionfill/internal/fs"
	"github.com/hupe1980/regionfill/internal/resource"
	"github.com/hupe1980/regionfill/layout"
)

// Options configures a Verifier.
type Options struct {
	// FileSystem opens files for VerifyFile. Defaults to fs.Default.
	FileSystem fs.FileSystem

	// Resources accounts for the region buffer and throttles reads. Optional.
	Resources *resource.Controller

	// Logger receives the verification outcome. Nil discards it.
	Logger *slog.Logger
}

// Verifier checks streamed fill images against a layout.
type Verifier struct {
	opts Options
}

// New creates a Verifier.
func New(optFns ...func(o *Options)) *Verifier {
	opts := Options{FileSystem: fs.Default}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.FileSystem == nil {
		opts.FileSystem = fs.Default
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Verifier{opts: opts}
}

// VerifyFile opens path for sequential reading and verifies it.
func (v *Verifier) VerifyFile(ctx context.Context, path string, l *layout.Layout, p layout.Policy) (Result, error) {
	f, err := v.opts.FileSystem.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return Result{Region: -1}, fmt.Errorf("verify: open %s: %w", path, err)
	}
	defer f.Close()

	return v.Verify(ctx, f, l, p)
}

// Verify reads l.TotalLength bytes from r, one region at a time, and checks
// that region i holds only l.Value(i, p). Bytes after the last region are
// not read.
func (v *Verifier) Verify(ctx context.Context, r io.Reader, l *layout.Layout, p layout.Policy) (Result, error) {
	start := time.Now()

	res, err := v.verify(ctx, r, l, p)
	res.Duration = time.Since(start)

	logger := v.opts.Logger.With("policy", p.String(), "regions", l.Regions)
	switch {
	case err != nil:
		logger.ErrorContext(ctx, "verification aborted",
			"bytes_read", res.BytesRead,
			"error", err,
		)
	case res.Passed:
		logger.InfoContext(ctx, "verification passed",
			"bytes_read", res.BytesRead,
			"duration", res.Duration,
		)
	default:
		logger.WarnContext(ctx, "verification failed",
			"failure", res.Failure.String(),
			"region", res.Region,
			"offset", res.Offset,
			"expected", res.Expected,
			"actual", res.Actual,
		)
	}

	return res, err
}

func (v *Verifier) verify(ctx context.Context, r io.Reader, l *layout.Layout, p layout.Policy) (res Result, err error) {
	res.Region = -1

	rc := v.opts.Resources
	if err := rc.AcquireMemory(l.ChunkLength); err != nil {
		return res, fmt.Errorf("verify: region buffer: %w", err)
	}
	defer rc.ReleaseMemory(l.ChunkLength)

	tr := resource.NewThrottledReader(ctx, r, rc)
	defer func() { res.Throttled = tr.Waited() }()

	size, err := conv.NonNegativeInt(l.ChunkLength)
	if err != nil {
		return res, fmt.Errorf("verify: region buffer: %w", err)
	}
	values := l.Expected(p)
	buf := make([]byte, size)
	for i, rng := range l.Ranges {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		n, err := io.ReadFull(tr, buf)
		res.BytesRead += int64(n)

		truncated := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
		if err != nil && !truncated {
			return res, fmt.Errorf("verify: read region %d: %w", i, err)
		}

		// Bytes that did arrive are checked first: a wrong value is reported as a
		// mismatch even when the stream also ends early.
		if off := firstMismatch(buf[:n], values[i]); off >= 0 {
			res.failAt(l, FailureMismatch, rng.Start+int64(off), values[i])
			res.Actual = buf[off]
			return res, nil
		}

		if truncated {
			res.failAt(l, FailureTruncated, rng.Start+int64(n), values[i])
			return res, nil
		}
	}

	res.Passed = true
	return res, nil
}

// failAt records a failure of kind at the absolute offset off.
func (r *Result) failAt(l *layout.Layout, kind FailureKind, off int64, want byte) {
	r.Failure = kind
	r.Offset = off
	r.Region = l.RegionOf(off)
	r.Expected = want
}

// firstMismatch returns the index of the first byte in b that differs from want, or -1.
func firstMismatch(b []byte, want byte) int {
	for i, c := range b {
		if c != want {
			return i
		}
	}
	return -1
}
