package fill

import (
	"bytes"
	"context"
	"errors"
	"io"
)

// DefaultBufferSize is the write granularity used when Options.BufferSize is unset.
const DefaultBufferSize = 1024

// ErrInvalidBufferSize is returned for a non-positive buffer size.
var ErrInvalidBufferSize = errors.New("fill: buffer size must be positive")

// WriteRegion writes value to length bytes of w, bufferSize bytes at a time.
// The final write is truncated to the bytes that remain, so bufferSize need not
// divide length and nothing is written past the region. It returns the number
// of bytes written and the first error; a cancelled ctx stops it between writes.
func WriteRegion(ctx context.Context, w io.Writer, length int64, value byte, bufferSize int) (int64, error) {
	if bufferSize <= 0 {
		return 0, ErrInvalidBufferSize
	}

	buf := bytes.Repeat([]byte{value}, int(min(int64(bufferSize), length)))

	var written int64
	for written < length {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		chunk := buf
		if remaining := length - written; remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}

		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
		if n < len(chunk) {
			return written, io.ErrShortWrite
		}
	}

	return written, nil
}
