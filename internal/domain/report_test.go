package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/tenderscan/internal/domain"
)

func TestScanReportAggregation(t *testing.T) {
	t.Parallel()

	report := &domain.ScanReport{
		CycleID:   "cycle-1",
		StartedAt: time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC),
	}
	report.FinishedAt = report.StartedAt.Add(3 * time.Minute)

	report.Add(domain.SourceResult{
		Source: "merx", Status: domain.StatusSucceeded,
		New: 3, Updated: 1, Unchanged: 10,
	})
	report.Add(domain.SourceResult{
		Source: "canadabuys", Status: domain.StatusSucceeded,
		New: 2, Unchanged: 5,
	})
	report.Add(domain.SourceResult{
		Source: "biddingo", Status: domain.StatusTimedOut,
		Error: "context deadline exceeded",
	})
	report.Add(domain.SourceResult{
		Source: "bcbid", Status: domain.StatusFailed,
		Error: "grid unavailable",
	})

	assert.Equal(t, 4, report.Scanned())
	assert.Equal(t, 2, report.Succeeded())
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 1, report.TimedOut())
	assert.Equal(t, 5, report.TotalNew())
	assert.Equal(t, 1, report.TotalUpdated())
	assert.Equal(t, 15, report.TotalUnchanged())
	assert.Equal(t, 3*time.Minute, report.Duration())
}

func TestScanReportEmpty(t *testing.T) {
	t.Parallel()

	report := &domain.ScanReport{}

	assert.Zero(t, report.Scanned())
	assert.Zero(t, report.TotalNew())
	assert.Zero(t, report.Failed())
}
