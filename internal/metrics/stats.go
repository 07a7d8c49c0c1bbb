package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Stats counts what happened to frames. Safe for concurrent use.
type Stats struct {
	started     time.Time
	processed   atomic.Uint64
	passthrough atomic.Uint64
	dropped     atomic.Uint64
	busyNanos   atomic.Int64

	mu       sync.Mutex
	failures map[string]uint64
	quality  map[string]float64
}

func NewStats() *Stats {
	return &Stats{
		started:  time.Now(),
		failures: make(map[string]uint64),
		quality:  make(map[string]float64),
	}
}

// RecordProcessed counts a frame that went through a filter.
func (s *Stats) RecordProcessed(elapsed time.Duration) {
	s.processed.Add(1)
	s.busyNanos.Add(int64(elapsed))
}

// RecordPassthrough counts a frame shown unfiltered because filtering is off.
func (s *Stats) RecordPassthrough() {
	s.passthrough.Add(1)
}

// RecordFailure counts a frame that fell back to the original.
func (s *Stats) RecordFailure(kind string, elapsed time.Duration) {
	s.busyNanos.Add(int64(elapsed))
	s.mu.Lock()
	s.failures[kind]++
	s.mu.Unlock()
}

// SetDropped stores the capture buffer's running drop count.
func (s *Stats) SetDropped(n uint64) {
	s.dropped.Store(n)
}

// RecordQuality keeps the latest value of each quality metric.
func (s *Stats) RecordQuality(values map[string]float64) {
	s.mu.Lock()
	for k, v := range values {
		s.quality[k] = v
	}
	s.mu.Unlock()
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Uptime         string             `json:"uptime"`
	Processed      uint64             `json:"processed"`
	Passthrough    uint64             `json:"passthrough"`
	Dropped        uint64             `json:"dropped"`
	Failures       map[string]uint64  `json:"failures"`
	AvgFrameMillis float64            `json:"avg_frame_ms"`
	Quality        map[string]float64 `json:"quality,omitempty"`
}

// TotalFailures sums the failure counts over all kinds.
func (s Snapshot) TotalFailures() uint64 {
	var total uint64
	for _, n := range s.Failures {
		total += n
	}
	return total
}

func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		Processed:   s.processed.Load(),
		Passthrough: s.passthrough.Load(),
		Dropped:     s.dropped.Load(),
		Failures:    make(map[string]uint64),
		Quality:     make(map[string]float64),
	}

	s.mu.Lock()
	for k, v := range s.failures {
		snap.Failures[k] = v
	}
	for k, v := range s.quality {
		// +Inf PSNR does not encode
		if v <= 1e300 && v >= -1e300 {
			snap.Quality[k] = v
		}
	}
	s.mu.Unlock()

	if handled := snap.Processed + snap.TotalFailures(); handled > 0 {
		snap.AvgFrameMillis = float64(s.busyNanos.Load()) / float64(handled) / 1e6
	}
	return snap
}

// Report renders the current snapshot as JSON.
func (s *Stats) Report() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(s.Snapshot())
}
