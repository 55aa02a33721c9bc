package regionfill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hupe1980/regionfill/blobstore"
	"github.com/hupe1980/regionfill/compress"
	"github.com/hupe1980/regionfill/internal/resource"
	"github.com/hupe1980/regionfill/layout"
	"github.com/hupe1980/regionfill/verify"
)

// ArchiveReport describes an uploaded fill image.
type ArchiveReport struct {
	// Name is the blob name, including the codec extension.
	Name        string
	Codec       string
	RawBytes    int64
	StoredBytes int64
	Duration    time.Duration
	// Throttled is the part of Duration spent waiting on the IO limit.
	Throttled   time.Duration
}

// Archive streams the backing file into store under base plus the codec
// extension. A failed upload is aborted and leaves no blob behind.
func (h *Harness) Archive(ctx context.Context, store blobstore.Store, base string) (*ArchiveReport, error) {
	if h.closed.Load() {
		return nil, ErrClosed
	}

	name := base + compress.Extension(h.opts.codec)
	start := time.Now()

	raw, stored, throttled, err := h.archive(ctx, store, name)
	took := time.Since(start)

	h.opts.metricsCollector.RecordArchive(raw, stored, took, err)
	h.logger.LogArchive(ctx, name, raw, stored, err)
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", name, err)
	}

	return &ArchiveReport{
		Name:        name,
		Codec:       h.opts.codec.Name(),
		RawBytes:    raw,
		StoredBytes: stored,
		Duration:    took,
		Throttled:   throttled,
	}, nil
}

func (h *Harness) archive(ctx context.Context, store blobstore.Store, name string) (raw, stored int64, throttled time.Duration, err error) {
	f, err := h.opts.fileSystem.OpenFile(h.path, os.O_RDONLY, 0)
	if err != nil {
		return 0, 0, 0, err
	}
	defer f.Close()

	blob, err := store.Create(ctx, name)
	if err != nil {
		return 0, 0, 0, err
	}

	counter := &countingWriter{w: blob}
	cw, err := h.opts.codec.NewWriter(counter)
	if err != nil {
		_ = blob.Abort()
		return 0, 0, 0, err
	}

	src := resource.NewThrottledReader(ctx, io.LimitReader(f, h.layout.TotalLength), h.opts.resources)
	raw, err = io.Copy(cw, src)
	err = errors.Join(err, cw.Close())
	if err == nil && raw < h.layout.TotalLength {
		err = fmt.Errorf("%w: backing file holds %d of %d bytes", io.ErrUnexpectedEOF, raw, h.layout.TotalLength)
	}
	if err != nil {
		_ = blob.Abort()
		return raw, counter.n, src.Waited(), err
	}

	if err := blob.Close(); err != nil {
		return raw, counter.n, src.Waited(), err
	}
	return raw, counter.n, src.Waited(), nil
}

// VerifyArchive streams an archived image back from store and checks it
// against p. The codec is chosen by the extension of name.
func (h *Harness) VerifyArchive(ctx context.Context, store blobstore.Store, name string, p layout.Policy) (verify.Result, error) {
	if h.closed.Load() {
		return verify.Result{Region: -1}, ErrClosed
	}

	res, err := h.verifyArchive(ctx, store, name, p)
	h.opts.metricsCollector.RecordVerify(res.Passed, res.BytesRead, res.Duration, err)
	return res, err
}

func (h *Harness) verifyArchive(ctx context.Context, store blobstore.Store, name string, p layout.Policy) (verify.Result, error) {
	failed := verify.Result{Region: -1}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return failed, fmt.Errorf("open archive %s: %w", name, err)
	}
	defer blob.Close()

	rc, err := blob.NewReader(ctx)
	if err != nil {
		return failed, fmt.Errorf("read archive %s: %w", name, err)
	}
	defer rc.Close()

	dr, err := compress.ByExtension(name).NewReader(rc)
	if err != nil {
		return failed, fmt.Errorf("decompress archive %s: %w", name, err)
	}
	defer dr.Close()

	return h.verifier.Verify(ctx, dr, h.layout, p)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
