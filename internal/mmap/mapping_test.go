package mmap

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSizedFile(t *testing.T, size int64) *os.File {
	t.Helper()

	f, err := os.OpenFile(filepath.Join(t.TempDir(), "mapped.bin"), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	t.Cleanup(func() { _ = f.Close() })

	return f
}

func TestMapping_WriteThroughViews(t *testing.T) {
	f := newSizedFile(t, 1024)

	m, err := Map(f, 1024)
	require.NoError(t, err)
	assert.Equal(t, 1024, m.Size())
	assert.Equal(t, int64(1), m.Refs())

	v1, err := m.View(0, 512)
	require.NoError(t, err)
	v2, err := m.View(512, 512)
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.Refs())

	// The file descriptor and owner reference can go before the views are used.
	require.NoError(t, f.Close())
	require.NoError(t, m.Close())
	assert.Equal(t, int64(2), m.Refs())
	assert.Nil(t, m.Bytes())

	n, err := v1.Write(bytes.Repeat([]byte{7}, 512))
	require.NoError(t, err)
	assert.Equal(t, 512, n)
	_, err = v2.Write(bytes.Repeat([]byte{9}, 512))
	require.NoError(t, err)

	require.NoError(t, v1.Flush())
	require.NoError(t, v2.Flush())
	require.NoError(t, v1.Close())
	assert.Equal(t, int64(1), m.Refs())
	require.NoError(t, v2.Close())
	assert.Equal(t, int64(0), m.Refs())

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{7}, 512), data[:512])
	assert.Equal(t, bytes.Repeat([]byte{9}, 512), data[512:])
}

func TestMapping_CloseIsIdempotent(t *testing.T) {
	f := newSizedFile(t, 64)

	m, err := Map(f, 64)
	require.NoError(t, err)

	v, err := m.View(0, 64)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Equal(t, int64(1), m.Refs())

	require.NoError(t, v.Close())
	require.NoError(t, v.Close())
	assert.Equal(t, int64(0), m.Refs())
}

func TestMapping_ViewBounds(t *testing.T) {
	f := newSizedFile(t, 100)

	m, err := Map(f, 100)
	require.NoError(t, err)
	defer m.Close()

	_, err = m.View(-1, 10)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = m.View(90, 11)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	v, err := m.View(90, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(90), v.Offset())
	assert.Equal(t, int64(10), v.Len())
	require.NoError(t, v.Close())
}

func TestMapping_ViewAfterClose(t *testing.T) {
	f := newSizedFile(t, 16)

	m, err := Map(f, 16)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, err = m.View(0, 16)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Advise(AccessSequential), ErrClosed)
	assert.ErrorIs(t, m.Flush(), ErrClosed)
}

func TestMapping_InvalidSize(t *testing.T) {
	f := newSizedFile(t, 16)

	_, err := Map(f, -1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMapping_Empty(t *testing.T) {
	f := newSizedFile(t, 0)

	m, err := Map(f, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Size())

	v, err := m.View(0, 0)
	require.NoError(t, err)
	n, err := v.Write([]byte{1})
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.ErrShortWrite)

	require.NoError(t, v.Close())
	require.NoError(t, m.Close())
}

func TestView_ShortWrite(t *testing.T) {
	f := newSizedFile(t, 32)

	m, err := Map(f, 32)
	require.NoError(t, err)
	defer m.Close()

	v, err := m.View(8, 8)
	require.NoError(t, err)
	defer v.Close()

	n, err := v.Write(bytes.Repeat([]byte{1}, 6))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	// Only two bytes remain in the window.
	n, err = v.Write(bytes.Repeat([]byte{2}, 6))
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(8), v.Written())

	data := m.Bytes()
	assert.Equal(t, make([]byte, 8), data[:8], "bytes before the view are untouched")
	assert.Equal(t, []byte{1, 1, 1, 1, 1, 1, 2, 2}, data[8:16])
	assert.Equal(t, make([]byte, 16), data[16:], "bytes after the view are untouched")
}

func TestView_Seek(t *testing.T) {
	f := newSizedFile(t, 16)

	m, err := Map(f, 16)
	require.NoError(t, err)
	defer m.Close()

	v, err := m.View(0, 16)
	require.NoError(t, err)
	defer v.Close()

	pos, err := v.Seek(-4, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(12), pos)

	_, err = v.Write([]byte{5, 5, 5, 5})
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 5, 5, 5}, v.Bytes()[12:])

	_, err = v.Seek(1, io.SeekCurrent)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = v.Seek(0, 42)
	assert.Error(t, err)
}

func TestView_AfterClose(t *testing.T) {
	f := newSizedFile(t, 16)

	m, err := Map(f, 16)
	require.NoError(t, err)
	defer m.Close()

	v, err := m.View(0, 8)
	require.NoError(t, err)
	require.NoError(t, v.Advise(AccessSequential))
	require.NoError(t, v.Close())

	assert.Nil(t, v.Bytes())
	_, err = v.Write([]byte{1})
	assert.ErrorIs(t, err, ErrViewClosed)
	assert.ErrorIs(t, v.Advise(AccessDefault), ErrViewClosed)
	assert.ErrorIs(t, v.Flush(), ErrViewClosed)
}
