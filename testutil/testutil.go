package testutil

import (
	"bytes"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/regionfill/layout"
)

// Partition is layout.Partition for arguments a test knows to be valid.
func Partition(tb testing.TB, total, regions int64) *layout.Layout {
	tb.Helper()
	l, err := layout.Partition(total, regions)
	require.NoError(tb, err)
	return l
}

// Image returns the file contents a correct fill of l under p produces.
func Image(l *layout.Layout, p layout.Policy) []byte {
	out := make([]byte, 0, l.TotalLength)
	for i := range l.Ranges {
		out = append(out, bytes.Repeat([]byte{l.Value(i, p)}, int(l.ChunkLength))...)
	}
	return out
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Seed returns the seed, for failure messages.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Int63n returns a random number in [0, n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// Offsets returns count random offsets in [0, total).
func (r *RNG) Offsets(count int, total int64) []int64 {
	out := make([]int64, count)
	for i := range out {
		out[i] = r.Int63n(total)
	}
	return out
}

// Corrupt returns a copy of data with the byte at off replaced by a value
// that differs from the original.
func (r *RNG) Corrupt(data []byte, off int64) []byte {
	out := bytes.Clone(data)
	out[off] ^= byte(1 + r.Int63n(255))
	return out
}
