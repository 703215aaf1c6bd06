package browser

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	navigateTimeout   = 30 * time.Second
	readyPollStep     = 500 * time.Millisecond
	preNavDelayMin    = 1 * time.Second
	preNavDelayMax    = 3 * time.Second
	postNavDelayMin   = 2 * time.Second
	postNavDelayMax   = 5 * time.Second
	interactDelayMin  = 500 * time.Millisecond
	interactDelayMax  = 1500 * time.Millisecond
	elementWaitBudget = 10 * time.Second
)

// Session is a single leased browser tab. It is not safe for concurrent use.
type Session struct {
	ctx       context.Context
	cancel    context.CancelFunc
	pool      *Pool
	userAgent string
	released  sync.Once
}

// Context returns the chromedp context for custom actions.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Release closes the tab and returns the slot to the pool. Safe to call
// more than once.
func (s *Session) Release() {
	s.released.Do(func() {
		s.cancel()
		s.pool.release()
	})
}

// Navigate loads a URL with human-like pacing and waits for the document to
// finish loading.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := humanDelay(ctx, preNavDelayMin, preNavDelayMax); err != nil {
		return err
	}

	navCtx, cancel := s.scoped(ctx, navigateTimeout)
	defer cancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}

	if err := s.waitReady(navCtx); err != nil {
		return fmt.Errorf("waiting for %s to load: %w", url, err)
	}

	return humanDelay(ctx, postNavDelayMin, postNavDelayMax)
}

// waitReady polls document.readyState until the page reports complete.
func (s *Session) waitReady(ctx context.Context) error {
	for {
		var state string
		if err := chromedp.Run(ctx, chromedp.Evaluate("document.readyState", &state)); err != nil {
			return err
		}
		if state == "complete" {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readyPollStep):
		}
	}
}

// HTML returns the current document's full markup.
func (s *Session) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := s.scoped(ctx, elementWaitBudget)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("capturing page html: %w", err)
	}

	return html, nil
}

// SendKeys clears an input and types a value into it with a short pause, the
// way a person filling a search box would.
func (s *Session) SendKeys(ctx context.Context, selector, value string) error {
	runCtx, cancel := s.scoped(ctx, elementWaitBudget)
	defer cancel()

	if err := chromedp.Run(runCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("typing into %q: %w", selector, err)
	}

	return humanDelay(ctx, interactDelayMin, interactDelayMax)
}

// Submit presses Enter in the given input.
func (s *Session) Submit(ctx context.Context, selector string) error {
	runCtx, cancel := s.scoped(ctx, navigateTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx,
		chromedp.SendKeys(selector, "\r", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("submitting %q: %w", selector, err)
	}

	if err := s.waitReady(runCtx); err != nil {
		return fmt.Errorf("waiting after submit: %w", err)
	}

	return humanDelay(ctx, postNavDelayMin, postNavDelayMax)
}

// Click clicks the first element matching the selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	runCtx, cancel := s.scoped(ctx, navigateTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("clicking %q: %w", selector, err)
	}

	if err := s.waitReady(runCtx); err != nil {
		return fmt.Errorf("waiting after click: %w", err)
	}

	return humanDelay(ctx, interactDelayMin, interactDelayMax)
}

// scoped bounds an action by both the caller's context and a budget.
func (s *Session) scoped(ctx context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	merged, cancelCause := context.WithCancel(s.ctx)

	stop := context.AfterFunc(ctx, func() { cancelCause() })

	runCtx, cancelTimeout := context.WithTimeout(merged, budget)

	return runCtx, func() {
		stop()
		cancelTimeout()
		cancelCause()
	}
}

// humanDelay sleeps a random duration within the window, honoring context
// cancellation.
func humanDelay(ctx context.Context, minDelay, maxDelay time.Duration) error {
	span := maxDelay - minDelay
	wait := minDelay + time.Duration(rand.Int63n(int64(span)))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
