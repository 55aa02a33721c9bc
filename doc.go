// Package regionfill fills a file concurrently, one memory-mapped region per
// goroutine, and verifies the result with a plain sequential read.
//
// # Quick Start
//
//	cfg := regionfill.DefaultConfig()
//	cfg.TotalLength = 64 << 20
//	cfg.Regions = 8
//
//	h, err := regionfill.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	report, err := h.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !report.Passed() {
//	    log.Fatal(report.Err())
//	}
//
// # Layout
//
// The file is split into Regions equal, disjoint byte ranges. Region i is
// filled with byte i (forward) or n-i (reversed), so a misplaced write shows
// up as a wrong value at a known offset.
//
// # Concurrency
//
// The file is mapped once. Every region writes through its own view of the
// mapping, and the mapping is unmapped when the last view is released. All
// writers are started before any is awaited; verification starts only after
// every writer has finished. A failing writer is logged and reported without
// affecting its siblings.
//
// # Archives
//
// A finished image can be streamed into a blob store (local directory,
// S3 or MinIO), compressed with zstd or lz4, and verified from there:
//
//	ar, _ := h.Archive(ctx, store, "fill.bin")
//	res, _ := h.VerifyArchive(ctx, store, ar.Name, layout.Forward)
package regionfill
