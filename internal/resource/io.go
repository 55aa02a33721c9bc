package resource

import (
	"context"
	"io"
	"time"
)

// Throttle charges one stream's bytes against a Controller's IO budget and
// keeps the time that stream spent blocked on the limit.
//
// A Throttle belongs to a single goroutine, like the region it meters.
type Throttle struct {
	ctx    context.Context
	rc     *Controller
	waited time.Duration
}

func (t *Throttle) charge(n int) error {
	d, err := t.rc.waitIO(t.ctx, n)
	t.waited += d
	return err
}

// Waited returns the time spent blocked on the IO limit so far.
func (t *Throttle) Waited() time.Duration {
	return t.waited
}

// ThrottledWriter charges every write against the IO budget before passing it on.
type ThrottledWriter struct {
	Throttle
	w io.Writer
}

// NewThrottledWriter wraps w. With a nil rc it never blocks.
func NewThrottledWriter(ctx context.Context, w io.Writer, rc *Controller) *ThrottledWriter {
	return &ThrottledWriter{Throttle: Throttle{ctx: ctx, rc: rc}, w: w}
}

func (w *ThrottledWriter) Write(p []byte) (int, error) {
	if err := w.charge(len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// ThrottledReader charges every read against the IO budget before issuing it.
type ThrottledReader struct {
	Throttle
	r io.Reader
}

// NewThrottledReader wraps r. With a nil rc it never blocks.
func NewThrottledReader(ctx context.Context, r io.Reader, rc *Controller) *ThrottledReader {
	return &ThrottledReader{Throttle: Throttle{ctx: ctx, rc: rc}, r: r}
}

// Read waits for len(p) tokens up front; the bucket is charged for the
// maximum possible read.
func (r *ThrottledReader) Read(p []byte) (int, error) {
	if err := r.charge(len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
