package fill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/regionfill/internal/fs"
	"github.com/hupe1980/regionfill/internal/mmap"
	"github.com/hupe1980/regionfill/internal/resource"
	"github.com/hupe1980/regionfill/layout"
)

// Options configures an Orchestrator.
type Options struct {
	// FileSystem opens the backing file. Defaults to fs.Default.
	FileSystem fs.FileSystem

	// Perm is used when the backing file is created. Defaults to 0644.
	Perm os.FileMode

	// BufferSize is the write granularity per region. Defaults to DefaultBufferSize.
	BufferSize int

	// Resources caps running writers, buffer memory and write throughput. Optional.
	Resources *resource.Controller

	// Sync flushes each region's dirty pages to the file before its view is released.
	Sync bool

	// WrapWriter, if set, wraps the writer of every region. It runs inside the
	// region's goroutine, after resource throttling has been applied.
	WrapWriter func(Task, io.Writer) io.Writer

	// Logger receives per-region and per-run records. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the options used when no overrides are given.
func DefaultOptions() Options {
	return Options{
		FileSystem: fs.Default,
		Perm:       0o644,
		BufferSize: DefaultBufferSize,
	}
}

// Orchestrator fills a backing file region by region, concurrently.
type Orchestrator struct {
	path string
	opts Options
}

// New creates an Orchestrator for the file at path.
func New(path string, optFns ...func(o *Options)) (*Orchestrator, error) {
	opts := DefaultOptions()
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	if path == "" {
		return nil, errors.New("fill: path is required")
	}
	if opts.BufferSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBufferSize, opts.BufferSize)
	}
	if opts.FileSystem == nil {
		opts.FileSystem = fs.Default
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Orchestrator{path: path, opts: opts}, nil
}

// Path returns the backing file path.
func (o *Orchestrator) Path() string {
	return o.path
}

// Fill creates or opens the backing file, sizes it to the layout, and writes every
// region concurrently with the value chosen by p. It returns once all writers have
// finished. The error is non-nil only when the file could not be prepared; writer
// failures are reported per region in the Report.
func (o *Orchestrator) Fill(ctx context.Context, l *layout.Layout, p layout.Policy) (*Report, error) {
	start := time.Now()
	tasks := Tasks(l, p)

	views, err := o.mapViews(l, tasks)
	if err != nil {
		return nil, err
	}

	results := make([]RegionResult, len(tasks))

	// Task errors are captured in results, so the group never cancels siblings.
	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			results[i] = o.runTask(ctx, task, views[i])
			return nil
		})
	}
	_ = g.Wait()

	report := newReport(p, results, time.Since(start))

	logger := o.opts.Logger.With("path", o.path, "policy", p.String())
	if report.OK() {
		logger.InfoContext(ctx, "fill completed",
			"regions", len(tasks),
			"bytes", report.BytesWritten,
			"duration", report.Duration,
		)
	} else {
		logger.WarnContext(ctx, "fill completed with failures",
			"regions", len(tasks),
			"failed", report.Failed.GetCardinality(),
			"bytes", report.BytesWritten,
			"duration", report.Duration,
		)
	}

	return report, nil
}

// mapViews prepares the backing file and derives one view per task. The file
// descriptor and the orchestrator's own mapping reference are released before it
// returns; the views keep the mapping alive.
func (o *Orchestrator) mapViews(l *layout.Layout, tasks []Task) ([]*mmap.View, error) {
	size := l.Regions * l.ChunkLength

	f, err := o.opts.FileSystem.OpenFile(o.path, os.O_RDWR|os.O_CREATE, o.opts.Perm)
	if err != nil {
		return nil, fmt.Errorf("fill: open backing file: %w", err)
	}
	defer f.Close()

	if err := f.Truncate(size); err != nil {
		return nil, fmt.Errorf("fill: size backing file to %d bytes: %w", size, err)
	}

	m, err := mmap.Map(f, size)
	if err != nil {
		return nil, fmt.Errorf("fill: map backing file: %w", err)
	}
	defer m.Close()

	views := make([]*mmap.View, 0, len(tasks))
	for _, task := range tasks {
		v, err := m.View(task.Range.Start, task.Range.Len())
		if err != nil {
			for _, opened := range views {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("fill: view for region %d: %w", task.Index, err)
		}
		views = append(views, v)
	}

	return views, nil
}

func (o *Orchestrator) runTask(ctx context.Context, task Task, view *mmap.View) RegionResult {
	start := time.Now()
	written, throttled, err := o.writeView(ctx, task, view)
	res := RegionResult{
		Task:      task,
		Written:   written,
		Duration:  time.Since(start),
		Throttled: throttled,
		Err:       err,
	}

	logger := o.opts.Logger.With(
		"region", task.Index,
		"start", task.Range.Start,
		"end", task.Range.End,
		"value", task.Value,
	)
	if err != nil {
		logger.ErrorContext(ctx, "region write failed",
			"written", written,
			"error", err,
		)
	} else {
		logger.DebugContext(ctx, "region write completed",
			"written", written,
			"duration", res.Duration,
			"throttled", throttled,
		)
	}

	return res
}

// writeView owns view for its whole lifetime and closes it on every path,
// including a panicking writer. throttled is the time the region spent
// blocked on the IO limit.
func (o *Orchestrator) writeView(ctx context.Context, task Task, view *mmap.View) (written int64, throttled time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fill: region %d panicked: %v", task.Index, r)
		}
		if cerr := view.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	rc := o.opts.Resources
	if err := rc.AcquireWorker(ctx); err != nil {
		return 0, 0, err
	}
	defer rc.ReleaseWorker()

	bufBytes := min(int64(o.opts.BufferSize), task.Range.Len())
	if err := rc.AcquireMemory(bufBytes); err != nil {
		return 0, 0, err
	}
	defer rc.ReleaseMemory(bufBytes)

	_ = view.Advise(mmap.AccessSequential)

	tw := resource.NewThrottledWriter(ctx, view, rc)
	var w io.Writer = tw
	if o.opts.WrapWriter != nil {
		w = o.opts.WrapWriter(task, w)
	}

	written, err = WriteRegion(ctx, w, task.Range.Len(), task.Value, o.opts.BufferSize)
	if err != nil {
		return written, tw.Waited(), err
	}

	if o.opts.Sync {
		if err := view.Flush(); err != nil {
			return written, tw.Waited(), fmt.Errorf("flush: %w", err)
		}
	}

	return written, tw.Waited(), nil
}
