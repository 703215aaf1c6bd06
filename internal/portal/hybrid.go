package portal

import (
	"context"

	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/logger"
	"github.com/jonesrussell/tenderscan/internal/sources"
)

// HybridAdapter tries the cheap static fetch first and falls back to a
// browser session when the static pass fails or finds nothing, which is the
// usual sign the portal renders its rows client-side.
type HybridAdapter struct {
	static  Adapter
	browser Adapter
	logger  logger.Interface
}

func NewHybridAdapter(static *StaticAdapter, browserAdapter *BrowserAdapter, log logger.Interface) *HybridAdapter {
	h := &HybridAdapter{
		static: static,
		logger: log.WithComponent("hybrid"),
	}
	if browserAdapter != nil {
		h.browser = browserAdapter
	}
	return h
}

func (a *HybridAdapter) List(ctx context.Context, src sources.Config) ([]domain.Tender, error) {
	tenders, err := a.static.List(ctx, src)
	if err == nil && len(tenders) > 0 {
		return tenders, nil
	}

	if a.browser == nil {
		return tenders, err
	}

	if err != nil {
		a.logger.Info("static pass failed, falling back to browser",
			"source", src.ID, "error", err.Error())
	} else {
		a.logger.Info("static pass found no rows, falling back to browser",
			"source", src.ID)
	}

	return a.browser.List(ctx, src)
}
