package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/chromedp"
)

// ErrNoSelectorMatched is returned when none of a cascade's selectors finds
// a usable element on the current page.
var ErrNoSelectorMatched = fmt.Errorf("no selector matched")

// probeScript evaluates a selector cascade in one round trip: it returns the
// first selector whose element exists, is visible, and is not disabled.
const probeScript = `(function(sels) {
	for (const s of sels) {
		try {
			const el = document.querySelector(s);
			if (el && el.offsetParent !== null && !el.disabled) {
				return s;
			}
		} catch (e) {}
	}
	return "";
})(%s)`

const countScript = `(function(s) {
	try {
		return document.querySelectorAll(s).length;
	} catch (e) {
		return 0;
	}
})(%s)`

// buildProbeScript renders the cascade probe with the candidates embedded as
// a JSON array, so selector quoting never breaks the script.
func buildProbeScript(candidates []string) (string, error) {
	encoded, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("encoding selectors: %w", err)
	}
	return fmt.Sprintf(probeScript, encoded), nil
}

// ResolveSelector returns the first selector in the cascade that matches a
// visible, enabled element on the current page.
func (s *Session) ResolveSelector(ctx context.Context, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoSelectorMatched
	}

	script, err := buildProbeScript(candidates)
	if err != nil {
		return "", err
	}

	runCtx, cancel := s.scoped(ctx, elementWaitBudget)
	defer cancel()

	var matched string
	if runErr := chromedp.Run(runCtx, chromedp.Evaluate(script, &matched)); runErr != nil {
		return "", fmt.Errorf("probing selectors: %w", runErr)
	}
	if matched == "" {
		return "", ErrNoSelectorMatched
	}

	return matched, nil
}

// Count returns how many elements match the selector on the current page.
func (s *Session) Count(ctx context.Context, selector string) (int, error) {
	encoded, err := json.Marshal(selector)
	if err != nil {
		return 0, fmt.Errorf("encoding selector: %w", err)
	}

	runCtx, cancel := s.scoped(ctx, elementWaitBudget)
	defer cancel()

	var n int
	if runErr := chromedp.Run(runCtx, chromedp.Evaluate(fmt.Sprintf(countScript, encoded), &n)); runErr != nil {
		return 0, fmt.Errorf("counting %q: %w", selector, runErr)
	}

	return n, nil
}
