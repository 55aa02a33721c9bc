package compress

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// Zstd uses the zstd frame format (better ratio, good for cold archives).
type Zstd struct {
	// Level is the zstd level (1-22). Zero selects zstd.SpeedDefault.
	Level int
}

func (z Zstd) NewWriter(w io.Writer) (io.WriteCloser, error) {
	level := zstd.SpeedDefault
	if z.Level > 0 {
		level = zstd.EncoderLevelFromZstd(z.Level)
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, err
	}
	return enc, nil
}

func (Zstd) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

func (Zstd) Name() string { return "zstd" }
