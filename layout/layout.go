package layout

import (
	"errors"
	"fmt"
	"sort"
)

// MaxRegions is the largest region count whose fill values fit in a byte
// under both policies (Reversed assigns n to the first region).
const MaxRegions = 255

var (
	// ErrInvalidLength is returned when the total length is not positive.
	ErrInvalidLength = errors.New("layout: total length must be positive")
	// ErrInvalidRegions is returned when the region count is not positive.
	ErrInvalidRegions = errors.New("layout: number of regions must be positive")
	// ErrNotDivisible is returned when the total length is not a multiple of the region count.
	ErrNotDivisible = errors.New("layout: total length is not divisible by number of regions")
	// ErrTooManyRegions is returned when fill values would not fit into a byte.
	ErrTooManyRegions = fmt.Errorf("layout: more than %d regions", MaxRegions)
)

// ByteRange is a closed interval [Start, End] of file offsets.
type ByteRange struct {
	Start int64
	End   int64
}

// Len returns the number of bytes in the range.
func (r ByteRange) Len() int64 {
	return r.End - r.Start + 1
}

// Contains reports whether off lies inside the range.
func (r ByteRange) Contains(off int64) bool {
	return off >= r.Start && off <= r.End
}

// Overlaps reports whether the two ranges share at least one byte.
func (r ByteRange) Overlaps(o ByteRange) bool {
	return r.Start <= o.End && o.Start <= r.End
}

func (r ByteRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}

// Layout is the result of partitioning a file into regions.
type Layout struct {
	TotalLength int64
	Regions     int64
	ChunkLength int64
	Ranges      []ByteRange
}

// Partition splits totalLength into regions equally sized ranges.
// Ranges are ordered by Start, pairwise disjoint, and cover [0, totalLength) exactly.
// Lengths that do not divide evenly are rejected rather than truncated.
func Partition(totalLength, regions int64) (*Layout, error) {
	if totalLength <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, totalLength)
	}
	if regions <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRegions, regions)
	}
	if regions > MaxRegions {
		return nil, fmt.Errorf("%w: %d", ErrTooManyRegions, regions)
	}
	if totalLength%regions != 0 {
		return nil, fmt.Errorf("%w: %d %% %d = %d", ErrNotDivisible, totalLength, regions, totalLength%regions)
	}

	chunk := totalLength / regions
	ranges := make([]ByteRange, regions)
	for i := range ranges {
		start := int64(i) * chunk
		ranges[i] = ByteRange{Start: start, End: start + chunk - 1}
	}

	return &Layout{
		TotalLength: totalLength,
		Regions:     regions,
		ChunkLength: chunk,
		Ranges:      ranges,
	}, nil
}

// Value returns the fill byte of region i under policy p.
func (l *Layout) Value(i int, p Policy) byte {
	return p.Value(int64(i), l.Regions)
}

// Expected returns the fill bytes in file order under policy p.
func (l *Layout) Expected(p Policy) []byte {
	values := make([]byte, l.Regions)
	for i := range values {
		values[i] = l.Value(i, p)
	}
	return values
}

// RegionOf returns the index of the region containing off, or -1.
func (l *Layout) RegionOf(off int64) int {
	i := sort.Search(len(l.Ranges), func(i int) bool {
		return l.Ranges[i].End >= off
	})
	if i < len(l.Ranges) && l.Ranges[i].Contains(off) {
		return i
	}
	return -1
}
