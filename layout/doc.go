// Package layout describes how a fill file is cut into regions.
//
// Partition splits a total length into equally sized, contiguous, disjoint
// byte ranges. A Policy decides which byte value each region is filled with:
//
//	l, err := layout.Partition(1024, 4)
//	// l.Ranges: [0,255] [256,511] [512,767] [768,1023]
//	l.Value(0, layout.Forward)  // 0
//	l.Value(0, layout.Reversed) // 4
//
// A Layout is an immutable value; writers and verifiers receive it explicitly.
package layout
