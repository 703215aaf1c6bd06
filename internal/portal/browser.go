package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/tenderscan/internal/browser"
	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/extract"
	"github.com/jonesrussell/tenderscan/internal/logger"
	"github.com/jonesrussell/tenderscan/internal/sources"
)

const defaultMaxPages = 5

// BrowserAdapter drives a leased browser session against portals that only
// render their listings client-side.
type BrowserAdapter struct {
	pool   *browser.Pool
	logger logger.Interface
}

func NewBrowserAdapter(pool *browser.Pool, log logger.Interface) *BrowserAdapter {
	return &BrowserAdapter{
		pool:   pool,
		logger: log.WithComponent("browser_adapter"),
	}
}

// List navigates the portal, optionally submits the source's search query,
// and walks result pages up to the source's page ceiling. Pages that render
// without recognizable rows contribute nothing; only an unreachable portal
// is an error.
func (a *BrowserAdapter) List(ctx context.Context, src sources.Config) ([]domain.Tender, error) {
	sess, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNavigationFailed, src.ID, err)
	}
	defer sess.Release()

	target := searchTarget(src)
	if err = sess.Navigate(ctx, target); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNavigationFailed, src.ID, err)
	}

	if src.Query != "" && !strings.Contains(target, src.Query) {
		a.submitSearch(ctx, sess, src)
	}

	maxPages := src.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	var tenders []domain.Tender
	for page := 1; page <= maxPages; page++ {
		pageTenders, pageErr := a.extractPage(ctx, sess, src)
		if pageErr != nil {
			if page == 1 {
				return nil, pageErr
			}
			// Later pages are best effort.
			a.logger.Warn("abandoning pagination",
				"source", src.ID, "page", page, "error", pageErr.Error())
			break
		}
		tenders = append(tenders, pageTenders...)

		a.logger.Debug("page scraped", "source", src.ID, "page", page, "rows", len(pageTenders))

		if page == maxPages || !a.nextPage(ctx, sess, src) {
			break
		}

		if err = pause(ctx, src.RateLimit); err != nil {
			return dedupe(tenders), nil
		}
	}

	return dedupe(tenders), nil
}

// submitSearch fills the first matching search box and presses Enter. Many
// portals have no search form; that is not an error.
func (a *BrowserAdapter) submitSearch(ctx context.Context, sess *browser.Session, src sources.Config) {
	selector, err := sess.ResolveSelector(ctx, searchInputSelectors)
	if err != nil {
		if !errors.Is(err, browser.ErrNoSelectorMatched) {
			a.logger.Warn("search box probe failed", "source", src.ID, "error", err.Error())
		}
		return
	}

	if err = sess.SendKeys(ctx, selector, src.Query); err != nil {
		a.logger.Warn("could not type search query", "source", src.ID, "error", err.Error())
		return
	}

	if err = sess.Submit(ctx, selector); err != nil {
		a.logger.Warn("could not submit search", "source", src.ID, "error", err.Error())
	}
}

func (a *BrowserAdapter) extractPage(ctx context.Context, sess *browser.Session, src sources.Config) ([]domain.Tender, error) {
	html, err := sess.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: capturing %s: %w", ErrNavigationFailed, src.ID, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing %s page: %w", src.ID, err)
	}

	pageURL := src.SearchURL
	if pageURL == "" {
		pageURL = src.BaseURL
	}

	var tenders []domain.Tender
	findRows(doc.Selection).Each(func(_ int, row *goquery.Selection) {
		if t := extract.Row(src.Name, row, pageURL); t != nil {
			tenders = append(tenders, *t)
		}
	})

	return tenders, nil
}

// nextPage clicks the forward pagination control if one is present and
// enabled. Returning false ends the walk.
func (a *BrowserAdapter) nextPage(ctx context.Context, sess *browser.Session, src sources.Config) bool {
	selector, err := sess.ResolveSelector(ctx, nextPageSelectors)
	if err != nil {
		return false
	}

	if err = sess.Click(ctx, selector); err != nil {
		a.logger.Debug("next page click failed", "source", src.ID, "error", err.Error())
		return false
	}

	return true
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
