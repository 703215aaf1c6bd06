package portal

import "github.com/PuerkitoBio/goquery"

// maxRowsPerPage caps how many listing rows a single page contributes.
const maxRowsPerPage = 50

// rowSelectors is the listing-row cascade. The first selector with any match
// wins, so portal-specific classes are tried before the generic shapes.
var rowSelectors = []string{
	".opportunity-item",
	".tender-item",
	".bid-item",
	"tr[class*='opportunity']",
	"tr[class*='tender']",
	"tr[class*='bid']",
	".result-item",
	"div[class*='opportunity']",
	"div[class*='tender']",
	"table tbody tr",
}

// linkFallbackSelector catches listings on portals whose markup matches none
// of the row shapes: any anchor whose href looks like a tender detail page.
const linkFallbackSelector = "a[href*='tender'], a[href*='opportunity'], " +
	"a[href*='bid'], a[href*='solicitation']"

// searchInputSelectors locates a keyword box on portals with a search form.
var searchInputSelectors = []string{
	"input[name='search']",
	"input[type='search']",
	"input[placeholder*='Search']",
	"input[aria-label*='Search']",
	"input[class*='search']",
	"input[name='keywords']",
	"input[name='query']",
	"input[name='q']",
	"input[placeholder*='keyword']",
	"input[placeholder*='tender']",
	"input[placeholder*='opportunity']",
}

// nextPageSelectors locates the forward pagination control.
var nextPageSelectors = []string{
	"a[aria-label*='Next']",
	"button[aria-label*='Next']",
	"a[rel='next']",
	".pagination .next a",
	"a[href*='page']",
	"a[href*='p=']",
	"[class*='next']",
}

// findRows applies the row cascade to a parsed document and returns the
// matched rows, falling back to tender-looking links when nothing matches.
func findRows(doc *goquery.Selection) *goquery.Selection {
	for _, selector := range rowSelectors {
		if rows := doc.Find(selector); rows.Length() > 0 {
			return capRows(rows)
		}
	}

	return capRows(doc.Find(linkFallbackSelector))
}

func capRows(rows *goquery.Selection) *goquery.Selection {
	if rows.Length() > maxRowsPerPage {
		return rows.Slice(0, maxRowsPerPage)
	}
	return rows
}
