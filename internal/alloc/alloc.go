// Package alloc routes the queue's storage requests through an Allocator so
// that allocation failure, which the Go runtime never reports, can be
// injected and leaks can be counted.
package alloc

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/timzifer/string_queue/internal/telemetry"
)

// Allocator hands out and takes back blocks of a given byte size.
// Reserve returns false when the block cannot be provided.
type Allocator interface {
	Reserve(size int) bool
	Release(size int)
}

type heap struct{}

func (heap) Reserve(int) bool { return true }
func (heap) Release(int)      {}

// Heap is the allocator that never fails and keeps no books.
var Heap Allocator = heap{}

// Tracker is an Allocator that refuses a configurable share of requests and
// counts the blocks still outstanding. It is not safe for concurrent use.
type Tracker struct {
	failPercent  int
	rng          *rand.Rand
	metrics      *telemetry.AllocMetrics
	blocks       int
	bytes        int
	overReleases int
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithFailPercent sets the chance, in percent, that Reserve refuses a request.
// Values outside 0..100 are clamped.
func WithFailPercent(percent int) TrackerOption {
	return func(t *Tracker) {
		t.failPercent = min(max(percent, 0), 100)
	}
}

// WithSeed makes failure injection reproducible.
func WithSeed(seed int64) TrackerOption {
	return func(t *Tracker) {
		t.rng = rand.New(rand.NewSource(seed))
	}
}

// WithMetrics reports traffic to m instead of the process-wide metrics.
func WithMetrics(m *telemetry.AllocMetrics) TrackerOption {
	return func(t *Tracker) {
		t.metrics = m
	}
}

// NewTracker returns a Tracker that never fails unless configured otherwise.
func NewTracker(options ...TrackerOption) *Tracker {
	t := &Tracker{
		rng:     rand.New(rand.NewSource(1)),
		metrics: telemetry.DefaultAllocMetrics(),
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// SetFailPercent changes the failure rate of subsequent reservations.
func (t *Tracker) SetFailPercent(percent int) error {
	if percent < 0 || percent > 100 {
		return errors.Errorf("fail percent %d out of range 0..100", percent)
	}
	t.failPercent = percent
	return nil
}

// FailPercent returns the current failure rate in percent.
func (t *Tracker) FailPercent() int {
	return t.failPercent
}

// Reserve books a block of size bytes unless failure injection refuses it.
func (t *Tracker) Reserve(size int) bool {
	if t.failPercent > 0 && t.rng.Intn(100) < t.failPercent {
		t.metrics.RecordFailure()
		return false
	}
	t.blocks++
	t.bytes += size
	t.metrics.RecordReserve(size)
	return true
}

// Release returns a block of size bytes. Releases beyond the outstanding
// blocks are counted and reported by Verify.
func (t *Tracker) Release(size int) {
	if t.blocks == 0 {
		t.overReleases++
		return
	}
	t.blocks--
	t.bytes -= size
	t.metrics.RecordRelease(size)
}

// Live returns the number of outstanding blocks and their total size.
func (t *Tracker) Live() (blocks, bytes int) {
	return t.blocks, t.bytes
}

// Verify reports outstanding blocks and releases that had no matching
// reservation.
func (t *Tracker) Verify() error {
	if t.overReleases > 0 {
		return errors.Errorf("%d blocks released without a reservation", t.overReleases)
	}
	if t.blocks != 0 || t.bytes != 0 {
		return errors.Errorf("%d blocks (%d bytes) still allocated", t.blocks, t.bytes)
	}
	return nil
}
