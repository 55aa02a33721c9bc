package verify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/regionfill/fill"
	"github.com/hupe1980/regionfill/internal/fs"
	"github.com/hupe1980/regionfill/internal/resource"
	"github.com/hupe1980/regionfill/layout"
	"github.com/hupe1980/regionfill/testutil"
)

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestVerify_Passes(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	v := New()

	for _, p := range []layout.Policy{layout.Forward, layout.Reversed} {
		t.Run(p.String(), func(t *testing.T) {
			res, err := v.Verify(context.Background(), bytes.NewReader(testutil.Image(l, p)), l, p)
			require.NoError(t, err)
			assert.True(t, res.Passed)
			assert.Equal(t, FailureNone, res.Failure)
			assert.Equal(t, -1, res.Region)
			assert.Equal(t, int64(1024), res.BytesRead)
			assert.NoError(t, res.Err())
		})
	}
}

func TestVerify_WrongPolicy(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)

	res, err := New().Verify(context.Background(), bytes.NewReader(testutil.Image(l, layout.Forward)), l, layout.Reversed)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, FailureMismatch, res.Failure)
	assert.Equal(t, 0, res.Region)
	assert.Equal(t, byte(4), res.Expected)
	assert.Equal(t, byte(0), res.Actual)
}

func TestVerify_DetectsSingleCorruptByte(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)

	for _, off := range []int64{0, 1, 255, 256, 600, 767, 768, 1023} {
		data := testutil.Image(l, layout.Forward)
		data[off] ^= 0xFF

		res, err := New().Verify(context.Background(), bytes.NewReader(data), l, layout.Forward)
		require.NoError(t, err)
		assert.False(t, res.Passed, "offset %d", off)
		assert.Equal(t, FailureMismatch, res.Failure)
		assert.Equal(t, l.RegionOf(off), res.Region)
		assert.Equal(t, off, res.Offset)
		assert.ErrorIs(t, res.Err(), ErrVerification)
	}
}

func TestVerify_DetectsRandomCorruption(t *testing.T) {
	rng := testutil.NewRNG(7)
	l := testutil.Partition(t, 64*1024, 16)

	for _, p := range []layout.Policy{layout.Forward, layout.Reversed} {
		clean := testutil.Image(l, p)
		for _, off := range rng.Offsets(32, l.TotalLength) {
			data := rng.Corrupt(clean, off)

			res, err := New().Verify(context.Background(), bytes.NewReader(data), l, p)
			require.NoError(t, err)
			require.False(t, res.Passed, "seed %d offset %d", rng.Seed(), off)
			assert.Equal(t, l.RegionOf(off), res.Region)
			assert.Equal(t, off, res.Offset)
			assert.Equal(t, clean[off], res.Expected)
			assert.Equal(t, data[off], res.Actual)
		}
	}
}

func TestVerify_StopsAtFirstFailingRegion(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	data := testutil.Image(l, layout.Forward)
	data[300] = 9
	data[900] = 9

	res, err := New().Verify(context.Background(), bytes.NewReader(data), l, layout.Forward)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Region)
	assert.Equal(t, int64(300), res.Offset)
	assert.Equal(t, int64(512), res.BytesRead, "nothing after the failing region is read")
}

func TestVerify_Truncated(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	full := testutil.Image(l, layout.Forward)

	tests := []struct {
		name       string
		size       int
		wantRegion int
	}{
		{"empty", 0, 0},
		{"mid region", 700, 2},
		{"region boundary", 512, 2},
		{"one byte short", 1023, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New().Verify(context.Background(), bytes.NewReader(full[:tt.size]), l, layout.Forward)
			require.NoError(t, err)
			assert.False(t, res.Passed)
			assert.Equal(t, FailureTruncated, res.Failure)
			assert.Equal(t, tt.wantRegion, res.Region)
			assert.Equal(t, int64(tt.size), res.Offset)
			assert.Equal(t, int64(tt.size), res.BytesRead)
			assert.ErrorContains(t, res.Err(), "stream ended")
		})
	}
}

func TestVerify_MismatchWinsOverTruncation(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	data := testutil.Image(l, layout.Forward)[:600]
	data[550] = 7

	res, err := New().Verify(context.Background(), bytes.NewReader(data), l, layout.Forward)
	require.NoError(t, err)
	assert.Equal(t, FailureMismatch, res.Failure)
	assert.Equal(t, int64(550), res.Offset)
}

func TestVerify_IgnoresTrailingBytes(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	data := append(testutil.Image(l, layout.Reversed), 0xEE, 0xEE)

	res, err := New().Verify(context.Background(), bytes.NewReader(data), l, layout.Reversed)
	require.NoError(t, err)
	assert.True(t, res.Passed)
}

func TestVerify_ReadError(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	boom := errors.New("boom")

	res, err := New().Verify(context.Background(), errReader{err: boom}, l, layout.Forward)
	assert.ErrorIs(t, err, boom)
	assert.False(t, res.Passed)
}

func TestVerify_Cancelled(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Verify(ctx, bytes.NewReader(testutil.Image(l, layout.Forward)), l, layout.Forward)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerify_MemoryLimit(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 128})

	v := New(func(o *Options) { o.Resources = rc })
	_, err := v.Verify(context.Background(), bytes.NewReader(testutil.Image(l, layout.Forward)), l, layout.Forward)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
}

func TestVerify_Throttled(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})

	v := New(func(o *Options) { o.Resources = rc })
	res, err := v.Verify(context.Background(), bytes.NewReader(testutil.Image(l, layout.Forward)), l, layout.Forward)
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, int64(1024), rc.IOBytes())
	assert.Zero(t, rc.MemoryUsage())
}

func TestVerify_ReportsThrottling(t *testing.T) {
	l := testutil.Partition(t, 2048, 4)
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1024})

	v := New(func(o *Options) { o.Resources = rc })
	res, err := v.Verify(context.Background(), bytes.NewReader(testutil.Image(l, layout.Reversed)), l, layout.Reversed)
	require.NoError(t, err)
	assert.True(t, res.Passed)

	// Two regions fit in the initial burst, the other two wait half a second each.
	assert.GreaterOrEqual(t, res.Throttled, 800*time.Millisecond)
	assert.LessOrEqual(t, res.Throttled, res.Duration)
	assert.Equal(t, rc.IOWait(), res.Throttled)
}

func TestVerifyFile(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	path := filepath.Join(t.TempDir(), "fill.bin")
	require.NoError(t, os.WriteFile(path, testutil.Image(l, layout.Reversed), 0o644))

	res, err := New().VerifyFile(context.Background(), path, l, layout.Reversed)
	require.NoError(t, err)
	assert.True(t, res.Passed)

	_, err = New().VerifyFile(context.Background(), filepath.Join(t.TempDir(), "missing.bin"), l, layout.Reversed)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVerifyFile_ShortFile(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	path := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(path, testutil.Image(l, layout.Forward), 0o644))

	ffs := fs.NewFaultyFS(nil)
	fault := fs.NoFault
	fault.TruncateReadsAt = 300
	ffs.AddRule("short", fault)

	v := New(func(o *Options) { o.FileSystem = ffs })
	res, err := v.VerifyFile(context.Background(), path, l, layout.Forward)
	require.NoError(t, err)
	assert.Equal(t, FailureTruncated, res.Failure)
	assert.Equal(t, 1, res.Region)
	assert.Equal(t, int64(300), res.Offset)
}

func TestFillThenVerify_RoundTrip(t *testing.T) {
	for _, regions := range []int64{1, 2, 4, 7, 16} {
		l := testutil.Partition(t, regions*4096, regions)

		for _, p := range []layout.Policy{layout.Forward, layout.Reversed} {
			path := filepath.Join(t.TempDir(), "fill.bin")
			o, err := fill.New(path, func(o *fill.Options) { o.BufferSize = 1000 })
			require.NoError(t, err)

			report, err := o.Fill(context.Background(), l, p)
			require.NoError(t, err)
			require.True(t, report.OK())

			res, err := New().VerifyFile(context.Background(), path, l, p)
			require.NoError(t, err)
			assert.True(t, res.Passed, "regions=%d policy=%v", regions, p)
		}
	}
}

func TestFillThenVerify_FailedRegionIsCaught(t *testing.T) {
	l := testutil.Partition(t, 1024, 4)
	path := filepath.Join(t.TempDir(), "fill.bin")

	o, err := fill.New(path, func(o *fill.Options) {
		o.WrapWriter = func(task fill.Task, w io.Writer) io.Writer {
			if task.Index == 3 {
				return io.Discard
			}
			return w
		}
	})
	require.NoError(t, err)

	_, err = o.Fill(context.Background(), l, layout.Forward)
	require.NoError(t, err)

	res, err := New().VerifyFile(context.Background(), path, l, layout.Forward)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, 3, res.Region)
}

func TestFailureKind_String(t *testing.T) {
	assert.Equal(t, "none", FailureNone.String())
	assert.Equal(t, "mismatch", FailureMismatch.String())
	assert.Equal(t, "truncated", FailureTruncated.String())
	assert.Equal(t, "FailureKind(9)", FailureKind(9).String())
}
