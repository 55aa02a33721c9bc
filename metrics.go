package regionfill

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordRegionWrite is called once per region after every fill.
	RecordRegionWrite(bytes int64, duration time.Duration, err error)

	// RecordFill is called after each fill with the number of regions and
	// how many of them failed.
	RecordFill(regions, failed int, duration time.Duration)

	// RecordVerify is called after each verification. err is set when the
	// verification could not run; a mismatch is reported through passed.
	RecordVerify(passed bool, bytesRead int64, duration time.Duration, err error)

	// RecordArchive is called after each archive upload.
	RecordArchive(rawBytes, storedBytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRegionWrite(int64, time.Duration, error)    {}
func (NoopMetricsCollector) RecordFill(int, int, time.Duration)               {}
func (NoopMetricsCollector) RecordVerify(bool, int64, time.Duration, error)   {}
func (NoopMetricsCollector) RecordArchive(int64, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RegionWrites      atomic.Int64
	RegionErrors      atomic.Int64
	BytesWritten      atomic.Int64
	RegionTotalNanos  atomic.Int64
	FillCount         atomic.Int64
	FillFailedRegions atomic.Int64
	VerifyCount       atomic.Int64
	VerifyFailures    atomic.Int64
	VerifyErrors      atomic.Int64
	BytesVerified     atomic.Int64
	ArchiveCount      atomic.Int64
	ArchiveErrors     atomic.Int64
	ArchiveRawBytes   atomic.Int64
	ArchiveStored     atomic.Int64
}

// RecordRegionWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRegionWrite(bytes int64, duration time.Duration, err error) {
	b.RegionWrites.Add(1)
	b.BytesWritten.Add(bytes)
	b.RegionTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RegionErrors.Add(1)
	}
}

// RecordFill implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFill(regions, failed int, duration time.Duration) {
	b.FillCount.Add(1)
	b.FillFailedRegions.Add(int64(failed))
}

// RecordVerify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordVerify(passed bool, bytesRead int64, duration time.Duration, err error) {
	b.VerifyCount.Add(1)
	b.BytesVerified.Add(bytesRead)
	switch {
	case err != nil:
		b.VerifyErrors.Add(1)
	case !passed:
		b.VerifyFailures.Add(1)
	}
}

// RecordArchive implements MetricsCollector.
func (b *BasicMetricsCollector) RecordArchive(rawBytes, storedBytes int64, duration time.Duration, err error) {
	b.ArchiveCount.Add(1)
	if err != nil {
		b.ArchiveErrors.Add(1)
		return
	}
	b.ArchiveRawBytes.Add(rawBytes)
	b.ArchiveStored.Add(storedBytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RegionWrites:      b.RegionWrites.Load(),
		RegionErrors:      b.RegionErrors.Load(),
		BytesWritten:      b.BytesWritten.Load(),
		RegionAvgNanos:    b.getAvgRegionNanos(),
		FillCount:         b.FillCount.Load(),
		FillFailedRegions: b.FillFailedRegions.Load(),
		VerifyCount:       b.VerifyCount.Load(),
		VerifyFailures:    b.VerifyFailures.Load(),
		VerifyErrors:      b.VerifyErrors.Load(),
		BytesVerified:     b.BytesVerified.Load(),
		ArchiveCount:      b.ArchiveCount.Load(),
		ArchiveErrors:     b.ArchiveErrors.Load(),
		ArchiveRawBytes:   b.ArchiveRawBytes.Load(),
		ArchiveStored:     b.ArchiveStored.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgRegionNanos() int64 {
	count := b.RegionWrites.Load()
	if count == 0 {
		return 0
	}
	return b.RegionTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RegionWrites      int64
	RegionErrors      int64
	BytesWritten      int64
	RegionAvgNanos    int64
	FillCount         int64
	FillFailedRegions int64
	VerifyCount       int64
	VerifyFailures    int64
	VerifyErrors      int64
	BytesVerified     int64
	ArchiveCount      int64
	ArchiveErrors     int64
	ArchiveRawBytes   int64
	ArchiveStored     int64
}
