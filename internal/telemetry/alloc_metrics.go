package telemetry

import (
	"sync/atomic"
)

// AllocMetrics summarises the block traffic seen by tracking allocators.
type AllocMetrics struct {
	reserved atomic.Uint64
	released atomic.Uint64
	failures atomic.Uint64
	bytes    atomic.Int64
}

var defaultAllocMetrics AllocMetrics

// DefaultAllocMetrics returns the process-wide metrics.
func DefaultAllocMetrics() *AllocMetrics {
	return &defaultAllocMetrics
}

// RecordReserve counts a successful reservation of size bytes.
func (m *AllocMetrics) RecordReserve(size int) {
	m.reserved.Add(1)
	m.bytes.Add(int64(size))
}

// RecordRelease counts a released block of size bytes.
func (m *AllocMetrics) RecordRelease(size int) {
	m.released.Add(1)
	m.bytes.Add(-int64(size))
}

// RecordFailure counts a reservation that was refused.
func (m *AllocMetrics) RecordFailure() {
	m.failures.Add(1)
}

// AllocSnapshot is a point-in-time copy of AllocMetrics.
type AllocSnapshot struct {
	Reserved  uint64
	Released  uint64
	Failures  uint64
	LiveBytes int64
}

// Live is the number of blocks reserved and not yet released.
func (s AllocSnapshot) Live() int64 {
	return int64(s.Reserved) - int64(s.Released)
}

// Snapshot returns the collected values.
func (m *AllocMetrics) Snapshot() AllocSnapshot {
	return AllocSnapshot{
		Reserved:  m.reserved.Load(),
		Released:  m.released.Load(),
		Failures:  m.failures.Load(),
		LiveBytes: m.bytes.Load(),
	}
}

// Reset zeroes every counter.
func (m *AllocMetrics) Reset() {
	m.reserved.Store(0)
	m.released.Store(0)
	m.failures.Store(0)
	m.bytes.Store(0)
}
