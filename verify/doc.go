// Package verify checks a filled file by streaming it sequentially.
//
// The Verifier never maps the file. It reads one region-sized buffer at a time
// and checks every byte of the region against the value the fill policy assigns
// to it, stopping at the first region that does not match.
//
// Two failure kinds are kept apart:
//
//   - FailureMismatch: a byte holds the wrong value
//   - FailureTruncated: the stream ended before the layout's total length
//
// Both make Result.Passed false. I/O errors other than end of stream are
// returned as errors.
package verify
