package metrics_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jonesrussell/tenderscan/internal/metrics"
	"github.com/stretchr/testify/assert"
)

func TestNewScanMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.NewScanMetrics()
	assert.NotNil(t, m)
	assert.False(t, m.StartTime.IsZero())
}

func TestRecordCycle(t *testing.T) {
	t.Parallel()

	m := metrics.NewScanMetrics()
	m.RecordCycle(5, 1, 12, 3, 90*time.Second)
	m.RecordCycle(6, 0, 2, 8, 45*time.Second)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.CyclesCompleted)
	assert.Equal(t, int64(11), snap.SourcesScanned)
	assert.Equal(t, int64(1), snap.SourcesFailed)
	assert.Equal(t, int64(14), snap.TendersNew)
	assert.Equal(t, int64(11), snap.TendersUpdated)
	assert.Equal(t, "45s", snap.LastCycleDuration)
	assert.False(t, snap.LastCycleTime.IsZero())
}

func TestRecordCycleConcurrently(t *testing.T) {
	t.Parallel()

	m := metrics.NewScanMetrics()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordCycle(1, 0, 1, 0, time.Second)
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, int64(10), snap.CyclesCompleted)
	assert.Equal(t, int64(10), snap.SourcesScanned)
	assert.Equal(t, int64(10), snap.TendersNew)
}
