package utils

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// LatencyTracker keeps the most recent duration samples in a ring buffer.
type LatencyTracker struct {
	mu      sync.RWMutex
	samples []time.Duration
	next    int
	full    bool
}

// NewLatencyTracker creates a tracker storing up to maxSize samples.
func NewLatencyTracker(maxSize int) *LatencyTracker {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &LatencyTracker{samples: make([]time.Duration, maxSize)}
}

// Observe records a new duration, overwriting the oldest once full.
func (l *LatencyTracker) Observe(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.samples[l.next] = d
	l.next = (l.next + 1) % len(l.samples)
	if l.next == 0 {
		l.full = true
	}
}

// Count returns number of samples held.
func (l *LatencyTracker) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count()
}

func (l *LatencyTracker) count() int {
	if l.full {
		return len(l.samples)
	}
	return l.next
}

// Percentile returns the percentile (0-100) duration. Returns zero if no samples.
func (l *LatencyTracker) Percentile(p float64) time.Duration {
	l.mu.RLock()
	n := l.count()
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = float64(l.samples[i])
	}
	l.mu.RUnlock()

	if n == 0 {
		return 0
	}
	sort.Float64s(values)
	q := min(max(p/100, 0), 1)
	return time.Duration(stat.Quantile(q, stat.Empirical, values, nil))
}

// LatencyRegistry holds one tracker per operation name.
type LatencyRegistry struct {
	mu       sync.Mutex
	size     int
	trackers map[string]*LatencyTracker
}

// NewLatencyRegistry creates a registry whose trackers keep size samples.
func NewLatencyRegistry(size int) *LatencyRegistry {
	return &LatencyRegistry{size: size, trackers: make(map[string]*LatencyTracker)}
}

// Observe records d against op.
func (r *LatencyRegistry) Observe(op string, d time.Duration) {
	r.Tracker(op).Observe(d)
}

// Tracker returns the tracker for op, creating it on first use.
func (r *LatencyRegistry) Tracker(op string) *LatencyTracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	tracker, ok := r.trackers[op]
	if !ok {
		tracker = NewLatencyTracker(r.size)
		r.trackers[op] = tracker
	}
	return tracker
}
