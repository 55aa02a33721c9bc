// Package compress provides the stream codecs used for archived fill images.
//
// Codec names and file extensions are part of archive names, so they are a
// stable contract: an image written as "fill.bin.zst" is read back with zstd.
package compress

import (
	"io"
	"strings"
)

// Codec wraps streams with a compression format.
// Implementations must be safe for concurrent use.
type Codec interface {
	// NewWriter returns a writer that compresses into w. Close flushes the
	// stream but does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
	// NewReader returns a reader that decompresses r.
	NewReader(r io.Reader) (io.ReadCloser, error)
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = Zstd{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "none", "":
		return None{}, true
	case "lz4":
		return LZ4{}, true
	case "zstd":
		return Zstd{}, true
	default:
		return nil, false
	}
}

// Extension returns the file extension for c, including the dot.
// None has no extension.
func Extension(c Codec) string {
	switch c.Name() {
	case "zstd":
		return ".zst"
	case "lz4":
		return ".lz4"
	default:
		return ""
	}
}

// ByExtension picks the codec for an archive name by its extension.
// Names without a known extension are read uncompressed.
func ByExtension(name string) Codec {
	switch {
	case strings.HasSuffix(name, ".zst"):
		return Zstd{}
	case strings.HasSuffix(name, ".lz4"):
		return LZ4{}
	default:
		return None{}
	}
}

// None passes bytes through unchanged.
type None struct{}

func (None) NewWriter(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil }
func (None) NewReader(r io.Reader) (io.ReadCloser, error)  { return io.NopCloser(r), nil }
func (None) Name() string                                  { return "none" }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
