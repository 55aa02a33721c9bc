package conv

import (
	"fmt"
	"math"
)

// Int64ToInt converts int64 to int safely.
// File offsets are int64 while slices are indexed by int, which is 32 bits
// wide on some platforms.
func Int64ToInt(v int64) (int, error) {
	if v > math.MaxInt || v < math.MinInt {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int", v)
	}
	return int(v), nil
}

// NonNegativeInt converts a length or offset to int, rejecting negatives.
func NonNegativeInt(v int64) (int, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer underflow: %d is negative", v)
	}
	return Int64ToInt(v)
}
