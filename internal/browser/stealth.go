package browser

import (
	"context"
	"math/rand"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	viewportWidth  = 1920
	viewportHeight = 1080
)

// userAgents is rotated per session so repeated scans do not present a
// single fingerprint to the portals.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
}

// stealthScript masks the automation markers procurement portals commonly
// probe for. It runs in every new document before page scripts execute.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'languages', { get: () => ['en-CA', 'en'] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
window.chrome = window.chrome || { runtime: {} };
`

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// stealthTasks configures a fresh session to look like an interactive
// desktop browser.
func stealthTasks(userAgent string) chromedp.Tasks {
	return chromedp.Tasks{
		emulation.SetUserAgentOverride(userAgent).
			WithAcceptLanguage("en-CA,en;q=0.9"),
		emulation.SetDeviceMetricsOverride(viewportWidth, viewportHeight, 1.0, false),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
	}
}
