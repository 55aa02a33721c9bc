// Package resource implements the Controller that governs how hard a fill run
// may push the machine.
//
// The Controller manages three resource types:
//
//   - Workers: cap on region writers running at the same time (semaphore)
//   - Memory: accounting for write and verify buffers (non-blocking, fail-fast)
//   - IO: token-bucket throttling of bytes written and read
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                        Controller                           │
//	├─────────────────┬─────────────────┬─────────────────────────┤
//	│  Worker slots   │  Buffer memory  │  IO rate limiter        │
//	│  (semaphore)    │  (fail-fast)    │  (token bucket)         │
//	├─────────────────┼─────────────────┼─────────────────────────┤
//	│  AcquireWorker  │  AcquireMemory  │  AcquireIO              │
//	│  ReleaseWorker  │  ReleaseMemory  │  ThrottledWriter        │
//	│  PeakWorkers    │  MemoryUsage    │  ThrottledReader        │
//	│                 │                 │  IOWait                 │
//	└─────────────────┴─────────────────┴─────────────────────────┘
//
// # Worker Limits
//
// Every region writer goroutine is started up front; MaxWorkers only limits
// how many of them write at once:
//
//	rc := resource.NewController(resource.Config{MaxWorkers: 2})
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
// # IO Rate Limiting
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 100 * 1024 * 1024, // 100MB/s
//	})
//
//	writer := resource.NewThrottledWriter(ctx, view, rc)
//	reader := resource.NewThrottledReader(ctx, file, rc)
//
// Each throttled stream reports the time it spent blocked through Waited;
// the Controller sums them in IOWait.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
