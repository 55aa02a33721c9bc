package layout

import (
	"fmt"
	"strings"
)

// Policy assigns fill values to regions.
type Policy int

const (
	// Forward fills region i with byte i.
	Forward Policy = iota
	// Reversed fills region i with byte n-i, so the first region holds n and the last holds 1.
	Reversed
)

// Value returns the fill byte for region index out of regions.
func (p Policy) Value(index, regions int64) byte {
	if p == Reversed {
		return byte(regions - index)
	}
	return byte(index)
}

func (p Policy) String() string {
	switch p {
	case Forward:
		return "forward"
	case Reversed:
		return "reversed"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// PolicyFor maps the reversed flag used in configuration to a Policy.
func PolicyFor(reversed bool) Policy {
	if reversed {
		return Reversed
	}
	return Forward
}

// ParsePolicy parses "forward" or "reversed" (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "":
		return Forward, nil
	case "reversed", "reverse":
		return Reversed, nil
	default:
		return Forward, fmt.Errorf("layout: unknown policy %q", s)
	}
}
