package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 uses the LZ4 frame format (fast, moderate ratio).
type LZ4 struct{}

func (LZ4) NewWriter(w io.Writer) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4.Fast)); err != nil {
		return nil, err
	}
	return zw, nil
}

func (LZ4) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func (LZ4) Name() string { return "lz4" }
