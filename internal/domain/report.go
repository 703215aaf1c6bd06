package domain

import "time"

// SourceStatus is the outcome of scanning one source.
type SourceStatus string

const (
	// StatusSucceeded means the source was scanned without error. A source
	// that yields zero records still succeeds.
	StatusSucceeded SourceStatus = "succeeded"
	// StatusFailed means the source adapter returned an error.
	StatusFailed SourceStatus = "failed"
	// StatusTimedOut means the per-source time budget expired.
	StatusTimedOut SourceStatus = "timed_out"
)

// SourceResult records the outcome of one source within a scan cycle.
type SourceResult struct {
	Source    string        `json:"source"`
	Status    SourceStatus  `json:"status"`
	Duration  time.Duration `json:"duration"`
	New       int           `json:"new"`
	Updated   int           `json:"updated"`
	Unchanged int           `json:"unchanged"`
	Error     string        `json:"error,omitempty"`
}

// ScanReport aggregates the results of one scan cycle. It is built by the
// orchestrator and handed to the caller; nothing retains it afterwards.
type ScanReport struct {
	CycleID    string         `json:"cycle_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Sources    []SourceResult `json:"sources"`
	Expired    int            `json:"expired"`
}

// Add appends one source result to the report.
func (r *ScanReport) Add(result SourceResult) {
	r.Sources = append(r.Sources, result)
}

// Scanned returns the number of sources the cycle attempted.
func (r *ScanReport) Scanned() int {
	return len(r.Sources)
}

// Succeeded returns the number of sources that completed without error.
func (r *ScanReport) Succeeded() int {
	return r.countStatus(StatusSucceeded)
}

// Failed returns the number of sources whose adapter errored.
func (r *ScanReport) Failed() int {
	return r.countStatus(StatusFailed)
}

// TimedOut returns the number of sources that exceeded their time budget.
func (r *ScanReport) TimedOut() int {
	return r.countStatus(StatusTimedOut)
}

// TotalNew returns the number of records created across all sources.
func (r *ScanReport) TotalNew() int {
	total := 0
	for _, s := range r.Sources {
		total += s.New
	}
	return total
}

// TotalUpdated returns the number of records updated across all sources.
func (r *ScanReport) TotalUpdated() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Updated
	}
	return total
}

// TotalUnchanged returns the number of unchanged records across all sources.
func (r *ScanReport) TotalUnchanged() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Unchanged
	}
	return total
}

// Duration returns the wall-clock length of the cycle.
func (r *ScanReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *ScanReport) countStatus(status SourceStatus) int {
	n := 0
	for _, s := range r.Sources {
		if s.Status == status {
			n++
		}
	}
	return n
}
