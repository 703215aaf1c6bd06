// Package scanner orchestrates scan cycles: it fans sources out across
// bounded worker pools, filters what the adapters bring back, commits
// changes through the store, and sweeps expired tenders.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/tenderscan/internal/config"
	"github.com/jonesrussell/tenderscan/internal/database"
	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/logger"
	"github.com/jonesrussell/tenderscan/internal/metrics"
	"github.com/jonesrussell/tenderscan/internal/portal"
	"github.com/jonesrussell/tenderscan/internal/relevance"
	"github.com/jonesrussell/tenderscan/internal/sources"
	"github.com/jonesrussell/tenderscan/internal/worker"
)

// AdapterFactory resolves the adapter for a source. *portal.Factory is the
// production implementation.
type AdapterFactory interface {
	ForSource(src sources.Config) (portal.Adapter, error)
}

// Indexer mirrors committed tenders into a search backend. It is optional;
// a nil Indexer disables mirroring.
type Indexer interface {
	Index(ctx context.Context, tenders []domain.Tender) error
}

// Scanner runs scan cycles over the configured sources.
type Scanner struct {
	cfg      *config.ScanConfig
	registry sources.Interface
	factory  AdapterFactory
	engine   *relevance.Engine
	store    database.TenderStore
	indexer  Indexer
	logger   logger.Interface
	metrics  *metrics.ScanMetrics

	feedPool    *worker.Pool
	browserPool *worker.Pool
}

// New assembles a scanner. The feed pool serves feed and hybrid sources;
// the browser pool is sized to the grid's session capacity.
func New(
	cfg *config.ScanConfig,
	registry sources.Interface,
	factory AdapterFactory,
	engine *relevance.Engine,
	store database.TenderStore,
	indexer Indexer,
	log logger.Interface,
) (*Scanner, error) {
	feedPool, err := worker.NewPool("feed", cfg.FeedWorkers)
	if err != nil {
		return nil, fmt.Errorf("creating feed pool: %w", err)
	}

	browserPool, err := worker.NewPool("browser", cfg.BrowserWorkers)
	if err != nil {
		return nil, fmt.Errorf("creating browser pool: %w", err)
	}

	return &Scanner{
		cfg:         cfg,
		registry:    registry,
		factory:     factory,
		engine:      engine,
		store:       store,
		indexer:     indexer,
		logger:      log.WithComponent("scanner"),
		metrics:     metrics.NewScanMetrics(),
		feedPool:    feedPool,
		browserPool: browserPool,
	}, nil
}

// Metrics returns a snapshot of the cumulative scan counters.
func (s *Scanner) Metrics() metrics.Snapshot {
	return s.metrics.Snapshot()
}

// Scan runs one full cycle and returns its report. Individual source
// failures and timeouts are recorded in the report, never propagated; only
// the absence of any configured source is an error.
func (s *Scanner) Scan(ctx context.Context) (*domain.ScanReport, error) {
	srcs, err := s.registry.GetSources()
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}

	report := &domain.ScanReport{
		CycleID:   uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	log := s.logger.WithCycle(report.CycleID)
	log.Info("scan cycle started", "sources", len(srcs))

	var mu sync.Mutex
	for _, src := range srcs {
		src := src

		task := func(taskCtx context.Context) {
			result := s.scanSource(taskCtx, src)

			mu.Lock()
			report.Add(result)
			mu.Unlock()
		}

		pool := s.feedPool
		if src.RequiresBrowser || src.Strategy == sources.StrategyBrowser {
			pool = s.browserPool
		}

		if submitErr := pool.Submit(ctx, task); submitErr != nil {
			mu.Lock()
			report.Add(domain.SourceResult{
				Source: src.ID,
				Status: domain.StatusFailed,
				Error:  submitErr.Error(),
			})
			mu.Unlock()
		}
	}

	s.feedPool.Wait()
	s.browserPool.Wait()

	// The sweep runs once per cycle so tenders past their closing date
	// stop surfacing as active.
	expired, sweepErr := s.store.MarkInactiveExpired(ctx, time.Now().UTC())
	if sweepErr != nil {
		log.Error("expiry sweep failed", "error", sweepErr.Error())
	}
	report.Expired = expired

	report.FinishedAt = time.Now().UTC()

	s.metrics.RecordCycle(
		report.Scanned(),
		report.Failed()+report.TimedOut(),
		report.TotalNew(),
		report.TotalUpdated(),
		report.Duration())

	log.Info("scan cycle finished",
		"duration", report.Duration().Round(time.Millisecond).String(),
		"scanned", report.Scanned(),
		"succeeded", report.Succeeded(),
		"failed", report.Failed(),
		"timed_out", report.TimedOut(),
		"new", report.TotalNew(),
		"updated", report.TotalUpdated(),
		"unchanged", report.TotalUnchanged(),
		"expired", report.Expired)

	return report, nil
}

// scanSource runs one source under its own time budget and commits what it
// finds. Each source commits independently, so a broken portal cannot hold
// back the rest of the cycle.
func (s *Scanner) scanSource(ctx context.Context, src sources.Config) domain.SourceResult {
	started := time.Now()

	result := domain.SourceResult{
		Source: src.ID,
		Status: domain.StatusSucceeded,
	}

	defer func() {
		result.Duration = time.Since(started)
	}()

	log := s.logger.WithSource(src.ID)

	adapter, err := s.factory.ForSource(src)
	if err != nil {
		result.Status = domain.StatusFailed
		result.Error = err.Error()
		log.Error("no adapter for source", "error", err.Error())
		return result
	}

	srcCtx, cancel := context.WithTimeout(ctx, s.cfg.SourceTimeout)
	defer cancel()

	tenders, err := adapter.List(srcCtx, src)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(srcCtx.Err(), context.DeadlineExceeded) {
			result.Status = domain.StatusTimedOut
		} else {
			result.Status = domain.StatusFailed
		}
		result.Error = err.Error()
		log.Warn("source scan did not complete",
			"status", string(result.Status), "error", err.Error())
		return result
	}

	kept := s.commit(ctx, log, src, tenders, &result)

	if s.indexer != nil && len(kept) > 0 {
		if indexErr := s.indexer.Index(ctx, kept); indexErr != nil {
			log.Warn("search indexing failed", "error", indexErr.Error())
		}
	}

	log.Info("source scanned",
		"found", len(tenders),
		"new", result.New,
		"updated", result.Updated,
		"unchanged", result.Unchanged)

	return result
}

// commit classifies and persists one source's batch. A record that fails to
// persist is logged and skipped; the batch carries on.
func (s *Scanner) commit(
	ctx context.Context,
	log logger.Interface,
	src sources.Config,
	tenders []domain.Tender,
	result *domain.SourceResult,
) []domain.Tender {
	var kept []domain.Tender

	for i := range tenders {
		t := tenders[i]

		if !s.engine.Classify(&t, src.Tier) {
			continue
		}

		outcome, err := s.store.Apply(ctx, &t)
		if err != nil {
			log.Warn("could not persist tender",
				"tender_id", t.TenderID, "error", err.Error())
			continue
		}

		switch outcome {
		case database.OutcomeNew:
			result.New++
		case database.OutcomeUpdated:
			result.Updated++
		case database.OutcomeUnchanged:
			result.Unchanged++
		}

		kept = append(kept, t)
	}

	return kept
}
