// Package common builds the dependency graph shared by the CLI commands.
package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/tenderscan/internal/browser"
	"github.com/jonesrussell/tenderscan/internal/config"
	"github.com/jonesrussell/tenderscan/internal/database"
	"github.com/jonesrussell/tenderscan/internal/logger"
	"github.com/jonesrussell/tenderscan/internal/portal"
	"github.com/jonesrussell/tenderscan/internal/relevance"
	"github.com/jonesrussell/tenderscan/internal/scanner"
	"github.com/jonesrussell/tenderscan/internal/sources"
	"github.com/jonesrussell/tenderscan/internal/sources/loader"
	"github.com/jonesrussell/tenderscan/internal/storage"
)

// Deps is the assembled application graph. Close releases everything it
// owns.
type Deps struct {
	Config  *config.Config
	Logger  logger.Interface
	DB      *sqlx.DB
	Store   database.TenderStore
	Sources sources.Interface
	Pool    *browser.Pool
	Scanner *scanner.Scanner
	Indexer *storage.SearchIndexer
}

// Options tunes which parts of the graph a command needs.
type Options struct {
	// NeedBrowser connects the browser pool and waits for the grid.
	NeedBrowser bool
	// NeedScanner assembles the scanner; implies the store and sources.
	NeedScanner bool
}

// New loads configuration and builds the requested dependency graph.
func New(ctx context.Context, opts Options) (*Deps, error) {
	if err := config.InitializeViper(); err != nil {
		return nil, fmt.Errorf("initializing config: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	log, err := logger.New(cfg.GetLoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	deps := &Deps{Config: cfg, Logger: log}

	if err = deps.connectStore(ctx); err != nil {
		return nil, err
	}

	if err = deps.loadSources(); err != nil {
		deps.Close()
		return nil, err
	}

	if opts.NeedBrowser || opts.NeedScanner {
		if err = deps.connectBrowser(ctx, opts.NeedBrowser); err != nil {
			deps.Close()
			return nil, err
		}
	}

	if cfg.Search.Enabled {
		deps.Indexer, err = storage.NewSearchIndexer(cfg.GetSearchConfig(), log)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("connecting search: %w", err)
		}
		if err = deps.Indexer.EnsureIndex(ctx); err != nil {
			log.Warn("search index not ready", "error", err.Error())
		}
	}

	if opts.NeedScanner {
		if err = deps.buildScanner(); err != nil {
			deps.Close()
			return nil, err
		}
	}

	return deps, nil
}

func (d *Deps) connectStore(ctx context.Context) error {
	db, err := database.NewPostgresConnection(d.Config.GetDatabaseConfig())
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}

	if err = database.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("ensuring schema: %w", err)
	}

	d.DB = db
	d.Store = database.NewTenderRepository(db)

	return nil
}

func (d *Deps) loadSources() error {
	configs, err := loader.NewLoader(d.Config.Scan.SourcesFile).LoadSources()
	if err != nil {
		return fmt.Errorf("loading sources: %w", err)
	}

	registry, err := sources.New(configs, d.Logger)
	if err != nil {
		return fmt.Errorf("building source registry: %w", err)
	}

	d.Sources = registry
	d.Logger.Info("sources loaded", "count", len(configs))

	return nil
}

// connectBrowser creates the session pool. When the grid is required the
// call blocks until it answers health checks; otherwise an unreachable grid
// downgrades the run to feed and static sources only.
func (d *Deps) connectBrowser(ctx context.Context, required bool) error {
	pool, err := browser.NewPool(d.Config.GetGridConfig(), d.Logger)
	if err != nil {
		return fmt.Errorf("creating browser pool: %w", err)
	}

	if waitErr := pool.WaitUntilReady(ctx); waitErr != nil {
		if required {
			pool.Close()
			return fmt.Errorf("browser grid: %w", waitErr)
		}
		d.Logger.Warn("browser grid unavailable, browser sources will be skipped",
			"error", waitErr.Error())
		pool.Close()
		return nil
	}

	d.Pool = pool

	return nil
}

func (d *Deps) buildScanner() error {
	engine := relevance.New(relevance.DefaultTaxonomy(), d.Config.Scan.MinRelevanceScore)
	factory := portal.NewFactory(d.Pool, d.Logger)

	var indexer scanner.Indexer
	if d.Indexer != nil {
		indexer = d.Indexer
	}

	s, err := scanner.New(
		d.Config.GetScanConfig(),
		d.Sources,
		factory,
		engine,
		d.Store,
		indexer,
		d.Logger,
	)
	if err != nil {
		return fmt.Errorf("building scanner: %w", err)
	}

	d.Scanner = s

	return nil
}

// Close releases the browser pool and database connection.
func (d *Deps) Close() {
	if d.Pool != nil {
		d.Pool.Close()
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil && !errors.Is(err, context.Canceled) {
			d.Logger.Warn("closing database", "error", err.Error())
		}
	}
}
