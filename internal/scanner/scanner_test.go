package scanner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/tenderscan/internal/config"
	"github.com/jonesrussell/tenderscan/internal/database"
	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/logger"
	"github.com/jonesrussell/tenderscan/internal/portal"
	"github.com/jonesrussell/tenderscan/internal/relevance"
	"github.com/jonesrussell/tenderscan/internal/scanner"
	"github.com/jonesrussell/tenderscan/internal/sources"
)

type stubAdapter struct {
	tenders []domain.Tender
	err     error
	delay   time.Duration
}

func (a *stubAdapter) List(ctx context.Context, _ sources.Config) ([]domain.Tender, error) {
	if a.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.delay):
		}
	}
	return a.tenders, a.err
}

type stubFactory struct {
	adapters map[string]portal.Adapter
}

func (f *stubFactory) ForSource(src sources.Config) (portal.Adapter, error) {
	a, ok := f.adapters[src.ID]
	if !ok {
		return nil, portal.ErrUnsupportedStrategy
	}
	return a, nil
}

func scanConfig() *config.ScanConfig {
	return &config.ScanConfig{
		SourceTimeout:     2 * time.Second,
		FeedWorkers:       2,
		BrowserWorkers:    1,
		MinRelevanceScore: relevance.DefaultMinScore,
	}
}

func relevantTender(id string) domain.Tender {
	return domain.Tender{
		Portal:      "Test Portal",
		TenderID:    id,
		Title:       "Leadership Training Program",
		Description: "Change management coaching workshops with professional development",
		URL:         "https://example.com/t/" + id,
		IsActive:    true,
	}
}

func irrelevantTender(id string) domain.Tender {
	return domain.Tender{
		Portal:   "Test Portal",
		TenderID: id,
		Title:    "Snow Clearing Services",
		URL:      "https://example.com/t/" + id,
		IsActive: true,
	}
}

func newScanner(t *testing.T, factory scanner.AdapterFactory, registry sources.Interface, store database.TenderStore) *scanner.Scanner {
	t.Helper()

	engine := relevance.New(relevance.DefaultTaxonomy(), relevance.DefaultMinScore)

	s, err := scanner.New(scanConfig(), registry, factory, engine, store, nil, logger.NewNoOp())
	require.NoError(t, err)

	return s
}

func registryOf(t *testing.T, configs ...sources.Config) sources.Interface {
	t.Helper()

	reg, err := sources.New(configs, logger.NewNoOp())
	require.NoError(t, err)

	return reg
}

func TestScanPersistsRelevantTenders(t *testing.T) {
	t.Parallel()

	store := database.NewMemoryStore()
	factory := &stubFactory{adapters: map[string]portal.Adapter{
		"a": &stubAdapter{tenders: []domain.Tender{relevantTender("1"), irrelevantTender("2")}},
	}}
	reg := registryOf(t, sources.Config{ID: "a", Name: "Test Portal", Tier: sources.TierHigh, Enabled: true})

	s := newScanner(t, factory, reg, store)

	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.CycleID)
	assert.Equal(t, 1, report.Scanned())
	assert.Equal(t, 1, report.Succeeded())
	assert.Equal(t, 1, report.TotalNew())

	stored, err := store.GetByKey(context.Background(), domain.Key{Portal: "Test Portal", TenderID: "1"})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Categories)
	assert.NotEmpty(t, stored.ContentHash)

	_, err = store.GetByKey(context.Background(), domain.Key{Portal: "Test Portal", TenderID: "2"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestScanSecondCycleIsUnchanged(t *testing.T) {
	t.Parallel()

	store := database.NewMemoryStore()
	factory := &stubFactory{adapters: map[string]portal.Adapter{
		"a": &stubAdapter{tenders: []domain.Tender{relevantTender("1")}},
	}}
	reg := registryOf(t, sources.Config{ID: "a", Name: "Test Portal", Tier: sources.TierHigh, Enabled: true})

	s := newScanner(t, factory, reg, store)

	_, err := s.Scan(context.Background())
	require.NoError(t, err)

	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.TotalNew())
	assert.Zero(t, report.TotalUpdated())
	assert.Equal(t, 1, report.TotalUnchanged())
}

func TestScanIsolatesSourceFailures(t *testing.T) {
	t.Parallel()

	store := database.NewMemoryStore()
	factory := &stubFactory{adapters: map[string]portal.Adapter{
		"good": &stubAdapter{tenders: []domain.Tender{relevantTender("1")}},
		"bad":  &stubAdapter{err: portal.ErrNavigationFailed},
	}}
	reg := registryOf(t,
		sources.Config{ID: "good", Name: "Test Portal", Tier: sources.TierHigh, Enabled: true},
		sources.Config{ID: "bad", Name: "Broken Portal", Tier: sources.TierLow, Enabled: true},
	)

	s := newScanner(t, factory, reg, store)

	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Scanned())
	assert.Equal(t, 1, report.Succeeded())
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 1, report.TotalNew())
}

func TestScanMarksSlowSourceTimedOut(t *testing.T) {
	t.Parallel()

	store := database.NewMemoryStore()
	factory := &stubFactory{adapters: map[string]portal.Adapter{
		"slow": &stubAdapter{delay: 5 * time.Second},
	}}
	reg := registryOf(t, sources.Config{ID: "slow", Name: "Slow Portal", Enabled: true})

	engine := relevance.New(relevance.DefaultTaxonomy(), relevance.DefaultMinScore)
	cfg := scanConfig()
	cfg.SourceTimeout = 50 * time.Millisecond

	s, err := scanner.New(cfg, reg, factory, engine, store, nil, logger.NewNoOp())
	require.NoError(t, err)

	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.TimedOut())
	assert.Zero(t, report.Failed())
}

func TestScanZeroRecordsIsSuccess(t *testing.T) {
	t.Parallel()

	store := database.NewMemoryStore()
	factory := &stubFactory{adapters: map[string]portal.Adapter{
		"empty": &stubAdapter{},
	}}
	reg := registryOf(t, sources.Config{ID: "empty", Name: "Quiet Portal", Enabled: true})

	s := newScanner(t, factory, reg, store)

	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded())
	assert.Zero(t, report.TotalNew())
}

func TestScanSweepsExpiredTenders(t *testing.T) {
	t.Parallel()

	store := database.NewMemoryStore()

	past := time.Now().UTC().Add(-48 * time.Hour)
	expired := relevantTender("old")
	expired.ClosingDate = &past
	expired.ContentHash = expired.ComputeContentHash()

	_, err := store.Apply(context.Background(), &expired)
	require.NoError(t, err)

	factory := &stubFactory{adapters: map[string]portal.Adapter{
		"empty": &stubAdapter{},
	}}
	reg := registryOf(t, sources.Config{ID: "empty", Name: "Quiet Portal", Enabled: true})

	s := newScanner(t, factory, reg, store)

	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Expired)

	stored, err := store.GetByKey(context.Background(), expired.Key())
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

type failingIndexer struct{ calls int }

func (f *failingIndexer) Index(context.Context, []domain.Tender) error {
	f.calls++
	return errors.New("index down")
}

func TestScanIndexerFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	store := database.NewMemoryStore()
	idx := &failingIndexer{}
	factory := &stubFactory{adapters: map[string]portal.Adapter{
		"a": &stubAdapter{tenders: []domain.Tender{relevantTender("1")}},
	}}
	reg := registryOf(t, sources.Config{ID: "a", Name: "Test Portal", Tier: sources.TierHigh, Enabled: true})

	engine := relevance.New(relevance.DefaultTaxonomy(), relevance.DefaultMinScore)

	s, err := scanner.New(scanConfig(), reg, factory, engine, store, idx, logger.NewNoOp())
	require.NoError(t, err)

	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded())
	assert.Equal(t, 1, idx.calls)
}
