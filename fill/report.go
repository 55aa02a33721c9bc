package fill

import (
	"errors"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/regionfill/layout"
)

// Task is the work of a single region writer.
type Task struct {
	Index int
	Range layout.ByteRange
	Value byte
}

// Tasks returns one task per region of l, valued by policy p.
func Tasks(l *layout.Layout, p layout.Policy) []Task {
	tasks := make([]Task, len(l.Ranges))
	for i, r := range l.Ranges {
		tasks[i] = Task{Index: i, Range: r, Value: l.Value(i, p)}
	}
	return tasks
}

// RegionError reports a failed region writer.
type RegionError struct {
	Index int
	Range layout.ByteRange
	Err   error
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("fill: region %d %v: %v", e.Index, e.Range, e.Err)
}

func (e *RegionError) Unwrap() error { return e.Err }

// RegionResult is the outcome of one region writer.
type RegionResult struct {
	Task      Task
	Written   int64
	Duration  time.Duration
	// Throttled is the part of Duration spent waiting on the IO limit.
	Throttled time.Duration
	Err       error
}

// Report summarizes a fill run.
type Report struct {
	Policy       layout.Policy
	Regions      []RegionResult
	Failed       *roaring.Bitmap
	BytesWritten int64
	Duration     time.Duration
	Throttled    time.Duration
}

func newReport(p layout.Policy, results []RegionResult, took time.Duration) *Report {
	r := &Report{
		Policy:   p,
		Regions:  results,
		Failed:   roaring.New(),
		Duration: took,
	}
	for _, res := range results {
		r.BytesWritten += res.Written
		r.Throttled += res.Throttled
		if res.Err != nil {
			r.Failed.Add(uint32(res.Task.Index))
		}
	}
	return r
}

// OK reports whether every region writer succeeded.
func (r *Report) OK() bool {
	return r.Failed.IsEmpty()
}

// FailedRegions returns the indexes of failed regions in ascending order.
func (r *Report) FailedRegions() []int {
	out := make([]int, 0, r.Failed.GetCardinality())
	it := r.Failed.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Err joins the errors of all failed regions, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, i := range r.FailedRegions() {
		res := r.Regions[i]
		errs = append(errs, &RegionError{Index: i, Range: res.Task.Range, Err: res.Err})
	}
	return errors.Join(errs...)
}
