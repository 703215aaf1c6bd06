package job

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/logger"
)

type blockingTrigger struct {
	calls   atomic.Int32
	release chan struct{}
}

func (b *blockingTrigger) Scan(context.Context) (*domain.ScanReport, error) {
	b.calls.Add(1)
	if b.release != nil {
		<-b.release
	}
	return &domain.ScanReport{CycleID: "cycle"}, nil
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	t.Parallel()

	_, err := New("not a schedule", &blockingTrigger{}, logger.NewNoOp())
	require.Error(t, err)

	_, err = New("0 */6 * * *", &blockingTrigger{}, logger.NewNoOp())
	require.NoError(t, err)
}

func TestScheduleDigestRejectsInvalidSchedule(t *testing.T) {
	t.Parallel()

	s, err := New("0 */6 * * *", &blockingTrigger{}, logger.NewNoOp())
	require.NoError(t, err)

	err = s.ScheduleDigest("@daily-ish", nil)
	require.Error(t, err)

	err = s.ScheduleDigest("0 8 * * *", reporterFunc(func(context.Context) error { return nil }))
	require.NoError(t, err)
}

type reporterFunc func(context.Context) error

func (f reporterFunc) SendDigest(ctx context.Context) error { return f(ctx) }

func TestRunScanSkipsOverlap(t *testing.T) {
	t.Parallel()

	trigger := &blockingTrigger{release: make(chan struct{})}

	s, err := New("0 */6 * * *", trigger, logger.NewNoOp())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runScan()
	}()

	require.Eventually(t, func() bool {
		return trigger.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// A second tick while the first is still running must be a no-op.
	s.runScan()
	assert.Equal(t, int32(1), trigger.calls.Load())

	close(trigger.release)
	wg.Wait()

	s.runScan()
	assert.Equal(t, int32(2), trigger.calls.Load())
}
