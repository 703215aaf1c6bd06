// Package metrics provides in-process counters for scan activity.
package metrics

import (
	"sync"
	"time"
)

// ScanMetrics holds cumulative scan counters for the lifetime of the process.
type ScanMetrics struct {
	// CyclesCompleted is the number of finished scan cycles.
	CyclesCompleted int64
	// SourcesScanned is the number of successful source scans.
	SourcesScanned int64
	// SourcesFailed is the number of failed or timed-out source scans.
	SourcesFailed int64
	// TendersNew is the number of newly discovered tenders.
	TendersNew int64
	// TendersUpdated is the number of tenders updated by change detection.
	TendersUpdated int64
	// LastCycleTime is when the most recent cycle finished.
	LastCycleTime time.Time
	// LastCycleDuration is how long the most recent cycle took.
	LastCycleDuration time.Duration
	// StartTime is when metrics collection began.
	StartTime time.Time
	// mu protects concurrent access to the counters.
	mu sync.Mutex
}

// NewScanMetrics creates a ScanMetrics instance anchored at the current time.
func NewScanMetrics() *ScanMetrics {
	return &ScanMetrics{
		StartTime: time.Now(),
	}
}

// RecordCycle folds the outcome of one scan cycle into the counters.
func (m *ScanMetrics) RecordCycle(scanned, failed, created, updated int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CyclesCompleted++
	m.SourcesScanned += int64(scanned)
	m.SourcesFailed += int64(failed)
	m.TendersNew += int64(created)
	m.TendersUpdated += int64(updated)
	m.LastCycleTime = time.Now()
	m.LastCycleDuration = duration
}

// Snapshot is a point-in-time copy of the scan counters.
type Snapshot struct {
	CyclesCompleted   int64     `json:"cycles_completed"`
	SourcesScanned    int64     `json:"sources_scanned"`
	SourcesFailed     int64     `json:"sources_failed"`
	TendersNew        int64     `json:"tenders_new"`
	TendersUpdated    int64     `json:"tenders_updated"`
	LastCycleTime     time.Time `json:"last_cycle_time"`
	LastCycleDuration string    `json:"last_cycle_duration"`
	Uptime            string    `json:"uptime"`
}

// Snapshot returns a copy of the current counters safe for concurrent readers.
func (m *ScanMetrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		CyclesCompleted:   m.CyclesCompleted,
		SourcesScanned:    m.SourcesScanned,
		SourcesFailed:     m.SourcesFailed,
		TendersNew:        m.TendersNew,
		TendersUpdated:    m.TendersUpdated,
		LastCycleTime:     m.LastCycleTime,
		LastCycleDuration: m.LastCycleDuration.Round(time.Millisecond).String(),
		Uptime:            time.Since(m.StartTime).Round(time.Second).String(),
	}
}
