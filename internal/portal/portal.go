// Package portal acquires tender listings from procurement portals. Each
// source declares a strategy and the matching adapter does the work: feeds
// come over plain HTTP, static pages are crawled, and JavaScript-heavy
// portals are driven through a real browser session.
package portal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonesrussell/tenderscan/internal/browser"
	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/logger"
	"github.com/jonesrussell/tenderscan/internal/sources"
)

var (
	// ErrNavigationFailed indicates the portal could not be reached or
	// rendered after the adapter's bounded retries. A reachable page with
	// zero listings is not an error.
	ErrNavigationFailed = errors.New("portal navigation failed")

	// ErrUnsupportedStrategy indicates a source declared a strategy no
	// adapter implements.
	ErrUnsupportedStrategy = errors.New("unsupported source strategy")
)

// Adapter lists the tenders currently visible on a source.
type Adapter interface {
	List(ctx context.Context, src sources.Config) ([]domain.Tender, error)
}

// Factory selects the adapter for a source's declared strategy.
type Factory struct {
	feed    *FeedAdapter
	static  *StaticAdapter
	browser *BrowserAdapter
	hybrid  *HybridAdapter
}

// NewFactory wires the adapter set. The browser pool may be nil, in which
// case browser sources are rejected and hybrid sources run static-only.
func NewFactory(pool *browser.Pool, log logger.Interface) *Factory {
	feed := NewFeedAdapter(log)
	static := NewStaticAdapter(log)

	var browserAdapter *BrowserAdapter
	if pool != nil {
		browserAdapter = NewBrowserAdapter(pool, log)
	}

	return &Factory{
		feed:    feed,
		static:  static,
		browser: browserAdapter,
		hybrid:  NewHybridAdapter(static, browserAdapter, log),
	}
}

// ForSource returns the adapter matching the source's strategy.
func (f *Factory) ForSource(src sources.Config) (Adapter, error) {
	switch src.Strategy {
	case sources.StrategyFeed:
		return f.feed, nil
	case sources.StrategyBrowser:
		if f.browser == nil {
			return nil, fmt.Errorf("%w: %s requires a browser but no grid is configured",
				ErrUnsupportedStrategy, src.ID)
		}
		return f.browser, nil
	case sources.StrategyHybrid:
		return f.hybrid, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, src.Strategy)
	}
}

// searchTarget builds the URL an adapter should start from. A {query}
// placeholder in the search URL is substituted with the source's query, and
// a search URL ending in "=" has the query appended, matching how most
// portals accept a keyword parameter.
func searchTarget(src sources.Config) string {
	target := src.SearchURL
	if target == "" {
		return src.BaseURL
	}

	escaped := url.QueryEscape(src.Query)
	switch {
	case strings.Contains(target, "{query}"):
		return strings.ReplaceAll(target, "{query}", escaped)
	case src.Query != "" && strings.HasSuffix(target, "="):
		return target + escaped
	default:
		return target
	}
}

// dedupe drops repeated observations of the same tender within one listing.
func dedupe(tenders []domain.Tender) []domain.Tender {
	seen := make(map[domain.Key]struct{}, len(tenders))
	out := tenders[:0]

	for _, t := range tenders {
		k := t.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}

	return out
}
