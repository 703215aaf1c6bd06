// Package sources manages the configuration of procurement portals the
// scanner visits. Configurations are immutable after load; the registry
// hands out copies.
package sources

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonesrussell/tenderscan/internal/logger"
)

// Common errors returned by the sources package.
var (
	// ErrNoSources indicates no sources were found in the configuration.
	ErrNoSources = errors.New("no sources configured")
	// ErrSourceNotFound indicates the requested source does not exist.
	ErrSourceNotFound = errors.New("source not found")
)

// Strategy selects how a source's listings are acquired.
type Strategy string

const (
	// StrategyFeed fetches a structured feed (CSV or JSON) over plain HTTP.
	StrategyFeed Strategy = "feed"
	// StrategyBrowser drives a real browser session against the portal.
	StrategyBrowser Strategy = "browser"
	// StrategyHybrid tries a static HTTP fetch first and falls back to a
	// browser session when the static pass yields nothing.
	StrategyHybrid Strategy = "hybrid"
)

// Tier ranks how important a source is relative to the others.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Config describes one procurement portal. Immutable after load.
type Config struct {
	// ID is the short stable identifier, also stored on tenders as Portal.
	ID string
	// Name is the human-readable portal name.
	Name string
	// Strategy selects the acquisition adapter.
	Strategy Strategy
	// BaseURL is the portal's root URL.
	BaseURL string
	// SearchURL is the listing or search page, when distinct from BaseURL.
	SearchURL string
	// Query is an optional search term submitted on portals with a search form.
	Query string
	// RequiresBrowser forces a browser session even for a hybrid source.
	RequiresBrowser bool
	// Tier ranks the source for priority scoring.
	Tier Tier
	// MaxPages caps sequential pagination. Zero means the default ceiling.
	MaxPages int
	// RateLimit is the minimum delay between requests to this portal.
	RateLimit time.Duration
	// Enabled excludes the source from scan cycles when false.
	Enabled bool
}

// Interface defines read-only access to the configured sources.
type Interface interface {
	// GetSources returns all enabled source configurations.
	GetSources() ([]Config, error)
	// All returns every configured source, enabled or not.
	All() []Config
	// FindByID returns the source with the given ID, matching
	// case-insensitively.
	FindByID(id string) (*Config, error)
}

// Sources manages a collection of portal configurations.
type Sources struct {
	sources []Config
	logger  logger.Interface
	mu      sync.RWMutex
}

var _ Interface = (*Sources)(nil)

// New creates a registry over the given configurations. The logger
// parameter is optional and can be nil.
func New(configs []Config, log logger.Interface) (*Sources, error) {
	if len(configs) == 0 {
		return nil, ErrNoSources
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Sources{sources: configs, logger: log}, nil
}

// GetSources returns a copy of all enabled sources.
func (s *Sources) GetSources() ([]Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.sources) == 0 {
		return nil, ErrNoSources
	}

	enabled := make([]Config, 0, len(s.sources))
	for _, src := range s.sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}
	return enabled, nil
}

// All returns a copy of every source, including disabled ones.
func (s *Sources) All() []Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Config, len(s.sources))
	copy(all, s.sources)
	return all
}

// FindByID returns the source with the given ID. Exact matches win over
// case-insensitive ones.
func (s *Sources) FindByID(id string) (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.sources) == 0 {
		return nil, ErrNoSources
	}

	var available []string
	for i := range s.sources {
		available = append(available, s.sources[i].ID)
		if s.sources[i].ID == id {
			cfg := s.sources[i]
			return &cfg, nil
		}
	}
	for i := range s.sources {
		if strings.EqualFold(s.sources[i].ID, id) {
			cfg := s.sources[i]
			return &cfg, nil
		}
	}

	return nil, fmt.Errorf("%w: %s (available: %v)", ErrSourceNotFound, id, available)
}
