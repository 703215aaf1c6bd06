package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/extract"
	"github.com/jonesrussell/tenderscan/internal/logger"
	"github.com/jonesrussell/tenderscan/internal/sources"
)

const staticFetchTimeout = 45 * time.Second

// StaticAdapter crawls portals that render their listings server-side, so a
// plain HTTP fetch sees the same rows a browser would.
type StaticAdapter struct {
	logger logger.Interface
}

func NewStaticAdapter(log logger.Interface) *StaticAdapter {
	return &StaticAdapter{logger: log.WithComponent("static")}
}

// List fetches the source's listing page and extracts its rows. A page that
// loads but contains no recognizable rows yields an empty result, not an
// error.
func (a *StaticAdapter) List(ctx context.Context, src sources.Config) ([]domain.Tender, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(feedUserAgent),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(staticFetchTimeout)

	if src.RateLimit > 0 {
		if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: src.RateLimit}); err != nil {
			return nil, fmt.Errorf("configuring rate limit for %s: %w", src.ID, err)
		}
	}

	var (
		tenders  []domain.Tender
		fetchErr error
	)

	c.OnHTML("body", func(e *colly.HTMLElement) {
		pageURL := e.Request.URL.String()
		findRows(e.DOM).Each(func(_ int, row *goquery.Selection) {
			if t := extract.Row(src.Name, row, pageURL); t != nil {
				tenders = append(tenders, *t)
			}
		})
	})

	c.OnError(func(resp *colly.Response, err error) {
		fetchErr = fmt.Errorf("%w: fetching %s: %w", ErrNavigationFailed, resp.Request.URL, err)
	})

	target := searchTarget(src)
	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("%w: visiting %s: %w", ErrNavigationFailed, target, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}

	a.logger.Debug("static page parsed", "source", src.ID, "rows", len(tenders))

	return dedupe(tenders), nil
}
