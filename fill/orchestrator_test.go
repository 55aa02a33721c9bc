package fill

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/regionfill/internal/fs"
	"github.com/hupe1980/regionfill/internal/mmap"
	"github.com/hupe1980/regionfill/internal/resource"
	"github.com/hupe1980/regionfill/layout"
	"github.com/hupe1980/regionfill/testutil"
)

func TestOrchestrator_Fill(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)

	for _, p := range []layout.Policy{layout.Forward, layout.Reversed} {
		t.Run(p.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fill.bin")

			o, err := New(path)
			require.NoError(t, err)

			report, err := o.Fill(context.Background(), l, p)
			require.NoError(t, err)
			require.True(t, report.OK())
			assert.NoError(t, report.Err())
			assert.Equal(t, int64(1024), report.BytesWritten)
			assert.Len(t, report.Regions, 4)
			assert.Equal(t, p, report.Policy)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, testutil.Image(l, p), data)
		})
	}
}

func TestOrchestrator_FillReversedRuns(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	path := filepath.Join(t.TempDir(), "fill.bin")

	o, err := New(path)
	require.NoError(t, err)

	_, err = o.Fill(context.Background(), l, layout.Reversed)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	for i, want := range []byte{4, 3, 2, 1} {
		assert.Equal(t, bytes.Repeat([]byte{want}, 256), data[i*256:(i+1)*256], "run %d", i)
	}
}

func TestOrchestrator_ResizesExistingFile(t *testing.T) {
	l := testutil.Partition(t, 512, 2)
	path := filepath.Join(t.TempDir(), "fill.bin")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0xFF}, 4096), 0o644))

	o, err := New(path)
	require.NoError(t, err)

	_, err = o.Fill(context.Background(), l, layout.Forward)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testutil.Image(l, layout.Forward), data)
}

func TestOrchestrator_UnevenBufferSize(t *testing.T) {
	l := testutil.Partition(t, 3000, 3)
	path := filepath.Join(t.TempDir(), "fill.bin")

	o, err := New(path, func(o *Options) {
		o.BufferSize = 384 // does not divide 1000
		o.Sync = true
	})
	require.NoError(t, err)

	report, err := o.Fill(context.Background(), l, layout.Forward)
	require.NoError(t, err)
	require.True(t, report.OK())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testutil.Image(l, layout.Forward), data)
}

func TestOrchestrator_RegionFailureIsIsolated(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	path := filepath.Join(t.TempDir(), "fill.bin")

	o, err := New(path, func(o *Options) {
		o.WrapWriter = func(task Task, w io.Writer) io.Writer {
			if task.Index == 2 {
				return &failingWriter{}
			}
			return w
		}
	})
	require.NoError(t, err)

	report, err := o.Fill(context.Background(), l, layout.Forward)
	require.NoError(t, err, "writer failures must not fail the whole fill")
	assert.False(t, report.OK())
	assert.Equal(t, []int{2}, report.FailedRegions())

	var regionErr *RegionError
	require.ErrorAs(t, report.Err(), &regionErr)
	assert.Equal(t, 2, regionErr.Index)
	assert.Equal(t, layout.ByteRange{Start: 512, End: 767}, regionErr.Range)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := testutil.Image(l, layout.Forward)
	assert.Equal(t, want[:512], data[:512])
	assert.Equal(t, want[768:], data[768:])
	assert.NotEqual(t, want[512:768], data[512:768])
}

type panickingWriter struct{}

func (panickingWriter) Write([]byte) (int, error) { panic("writer exploded") }

func TestOrchestrator_RecoversPanickingRegion(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	path := filepath.Join(t.TempDir(), "fill.bin")

	o, err := New(path, func(o *Options) {
		o.WrapWriter = func(task Task, w io.Writer) io.Writer {
			if task.Index == 1 {
				return panickingWriter{}
			}
			return w
		}
	})
	require.NoError(t, err)

	report, err := o.Fill(context.Background(), l, layout.Reversed)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, report.FailedRegions())
	assert.ErrorContains(t, report.Regions[1].Err, "panicked")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{4}, 256), data[:256])
}

func TestOrchestrator_MemoryLimitFailsRegions(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	path := filepath.Join(t.TempDir(), "fill.bin")
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})

	o, err := New(path, func(o *Options) {
		o.BufferSize = 128
		o.Resources = rc
	})
	require.NoError(t, err)

	report, err := o.Fill(context.Background(), l, layout.Forward)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, report.FailedRegions())
	assert.ErrorIs(t, report.Err(), resource.ErrMemoryLimitExceeded)
	assert.Zero(t, rc.MemoryUsage())
}

func TestOrchestrator_ReportsThrottling(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	path := filepath.Join(t.TempDir(), "fill.bin")
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 512})

	o, err := New(path, func(o *Options) {
		o.BufferSize = 64
		o.Resources = rc
	})
	require.NoError(t, err)

	report, err := o.Fill(context.Background(), l, layout.Forward)
	require.NoError(t, err)
	require.True(t, report.OK())

	// The first 512 bytes are free, the other half waits about a second.
	var sum time.Duration
	for _, res := range report.Regions {
		sum += res.Throttled
		assert.LessOrEqual(t, res.Throttled, res.Duration)
	}
	assert.Equal(t, sum, report.Throttled)
	assert.GreaterOrEqual(t, report.Throttled, 800*time.Millisecond)
	assert.GreaterOrEqual(t, rc.IOWait(), report.Throttled)
}

func TestOrchestrator_UnthrottledByDefault(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)

	o, err := New(filepath.Join(t.TempDir(), "fill.bin"))
	require.NoError(t, err)

	report, err := o.Fill(context.Background(), l, layout.Forward)
	require.NoError(t, err)
	assert.Zero(t, report.Throttled)
}

func TestOrchestrator_MaxWorkers(t *testing.T) {
	l := testutil.Partition(t, 64*1024, 8)
	dir := t.TempDir()
	rc := resource.NewController(resource.Config{MaxWorkers: 1})

	serial, err := New(filepath.Join(dir, "serial.bin"), func(o *Options) {
		o.Resources = rc
	})
	require.NoError(t, err)
	_, err = serial.Fill(context.Background(), l, layout.Forward)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rc.PeakWorkers())
	assert.Equal(t, int64(64*1024), rc.IOBytes())

	parallel, err := New(filepath.Join(dir, "parallel.bin"))
	require.NoError(t, err)
	_, err = parallel.Fill(context.Background(), l, layout.Forward)
	require.NoError(t, err)

	a, err := os.ReadFile(serial.Path())
	require.NoError(t, err)
	b, err := os.ReadFile(parallel.Path())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// Writing the regions one at a time in reverse order must give the same bytes
// as the concurrent fill.
func TestOrchestrator_MatchesSequentialFill(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	dir := t.TempDir()

	o, err := New(filepath.Join(dir, "parallel.bin"))
	require.NoError(t, err)
	_, err = o.Fill(context.Background(), l, layout.Reversed)
	require.NoError(t, err)

	seqPath := filepath.Join(dir, "sequential.bin")
	f, err := os.OpenFile(seqPath, os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(l.TotalLength))
	m, err := mmap.Map(f, l.TotalLength)
	require.NoError(t, err)

	tasks := Tasks(l, layout.Reversed)
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Index > tasks[j].Index })
	for _, task := range tasks {
		v, err := m.View(task.Range.Start, task.Range.Len())
		require.NoError(t, err)
		_, err = WriteRegion(context.Background(), v, task.Range.Len(), task.Value, 100)
		require.NoError(t, err)
		require.NoError(t, v.Close())
	}
	require.NoError(t, m.Close())
	require.NoError(t, f.Close())

	parallel, err := os.ReadFile(o.Path())
	require.NoError(t, err)
	sequential, err := os.ReadFile(seqPath)
	require.NoError(t, err)
	assert.Equal(t, sequential, parallel)
}

func TestOrchestrator_AllTasksStartBeforeJoin(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	path := filepath.Join(t.TempDir(), "fill.bin")

	var started atomic.Int32
	release := make(chan struct{})
	o, err := New(path, func(o *Options) {
		o.WrapWriter = func(task Task, w io.Writer) io.Writer {
			// Every writer blocks until all four are running.
			if started.Add(1) == 4 {
				close(release)
			}
			<-release
			return w
		}
	})
	require.NoError(t, err)

	report, err := o.Fill(context.Background(), l, layout.Forward)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, int32(4), started.Load())
}

func TestOrchestrator_SetupFailure(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("locked", fs.Fault{FailOnOpen: true, FailAfterBytes: -1, TruncateReadsAt: -1})

	o, err := New(filepath.Join(t.TempDir(), "locked.bin"), func(o *Options) {
		o.FileSystem = ffs
	})
	require.NoError(t, err)

	report, err := o.Fill(context.Background(), l, layout.Forward)
	assert.ErrorIs(t, err, fs.ErrInjected)
	assert.Nil(t, report)
}

func TestNew_Validation(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New("fill.bin", func(o *Options) { o.BufferSize = 0 })
	assert.ErrorIs(t, err, ErrInvalidBufferSize)

	o, err := New("fill.bin", nil, func(o *Options) { o.FileSystem = nil })
	require.NoError(t, err)
	assert.Equal(t, "fill.bin", o.Path())
}
