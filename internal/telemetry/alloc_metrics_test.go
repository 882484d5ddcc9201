package telemetry

import (
	"testing"
)

func TestDefaultAllocMetricsSingleton(t *testing.T) {
	if DefaultAllocMetrics() != DefaultAllocMetrics() {
		t.Fatalf("expected default metrics to return singleton instance")
	}
}

func TestAllocMetricsRecordsTraffic(t *testing.T) {
	var metrics AllocMetrics

	metrics.RecordReserve(16)
	metrics.RecordReserve(6)
	metrics.RecordFailure()
	metrics.RecordRelease(6)

	snap := metrics.Snapshot()
	if snap.Reserved != 2 || snap.Released != 1 || snap.Failures != 1 {
		t.Fatalf("unexpected counters %+v", snap)
	}
	if snap.LiveBytes != 16 {
		t.Fatalf("expected 16 live bytes, got %d", snap.LiveBytes)
	}
	if snap.Live() != 1 {
		t.Fatalf("expected 1 live block, got %d", snap.Live())
	}

	metrics.Reset()
	if snap := metrics.Snapshot(); snap != (AllocSnapshot{}) {
		t.Fatalf("expected metrics to reset to zero, got %+v", snap)
	}
}
