// Package extract converts raw listing markup into normalized tender fields.
// Every field is resolved through an ordered cascade of candidates; cascade
// exhaustion yields the field's zero value, never an error. Remote markup is
// not controlled by this system, so a graceful fallback chain beats a single
// brittle selector.
package extract

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/tenderscan/internal/domain"
)

// Candidate is one step in a field's extraction cascade: a CSS locator plus
// an optional attribute to read instead of the element text.
type Candidate struct {
	Selector  string
	Attribute string
}

// maxFieldLength caps extracted text fields. Anything longer is markup
// noise, not a field value.
const maxFieldLength = 2000

// maxFallbackTitle bounds the raw-text fallback when no title locator resolves.
const maxFallbackTitle = 200

// Default cascades, ordered most-specific first.
var (
	titleCandidates = []Candidate{
		{Selector: "h3 a"}, {Selector: ".tender-title a"},
		{Selector: "h2 a"}, {Selector: "h1 a"},
		{Selector: ".title a"}, {Selector: ".name a"}, {Selector: ".heading a"},
		{Selector: "a[href*='tender']"}, {Selector: "a[href*='opportunity']"},
		{Selector: "a[href*='bid']"},
		{Selector: "a"}, {Selector: ".title"}, {Selector: ".name"}, {Selector: ".heading"},
	}
	organizationCandidates = []Candidate{
		{Selector: ".organization"}, {Selector: ".buyer-name"}, {Selector: ".buyer"},
		{Selector: ".department"}, {Selector: ".agency"}, {Selector: ".client"},
		{Selector: ".company"}, {Selector: ".org"},
		{Selector: "[class*='organization']"}, {Selector: "[class*='buyer']"},
		{Selector: "[class*='department']"},
	}
	locationCandidates = []Candidate{
		{Selector: ".location"}, {Selector: ".province"}, {Selector: ".region"},
		{Selector: ".area"}, {Selector: ".city"},
		{Selector: "[class*='location']"}, {Selector: "[class*='province']"},
		{Selector: "[class*='region']"},
	}
	closingDateCandidates = []Candidate{
		{Selector: ".closing-date"}, {Selector: ".deadline"}, {Selector: ".due-date"},
		{Selector: "[class*='closing']"}, {Selector: "[class*='deadline']"},
	}
	postedDateCandidates = []Candidate{
		{Selector: ".posted-date"}, {Selector: ".published-date"}, {Selector: ".issue-date"},
		{Selector: "[class*='posted']"}, {Selector: "[class*='published']"},
	}
	valueCandidates = []Candidate{
		{Selector: ".value"}, {Selector: ".budget"}, {Selector: ".amount"},
		{Selector: "[class*='value']"}, {Selector: "[class*='budget']"},
	}
	descriptionCandidates = []Candidate{
		{Selector: ".description"}, {Selector: ".summary"}, {Selector: ".details"},
		{Selector: "[class*='description']"}, {Selector: "[class*='summary']"},
	}
	idCandidates = []Candidate{
		{Selector: ".tender-id"}, {Selector: ".reference"}, {Selector: ".ref-number"},
		{Selector: "[class*='tender-id']"}, {Selector: "[class*='reference']"},
	}
)

// First evaluates candidates in order against the selection and returns the
// first non-empty, length-valid result. Exhaustion returns "".
func First(sel *goquery.Selection, candidates []Candidate) string {
	for _, c := range candidates {
		found := sel.Find(c.Selector).First()
		if found.Length() == 0 {
			continue
		}

		var text string
		if c.Attribute != "" {
			text, _ = found.Attr(c.Attribute)
		} else {
			text = found.Text()
		}
		text = Clean(text)
		if text != "" && len(text) <= maxFieldLength {
			return text
		}
	}
	return ""
}

// FirstLink returns the text and resolved href of the first candidate that
// yields both.
func FirstLink(sel *goquery.Selection, candidates []Candidate, base string) (text, href string) {
	for _, c := range candidates {
		found := sel.Find(c.Selector).First()
		if found.Length() == 0 {
			continue
		}
		t := Clean(found.Text())
		h, _ := found.Attr("href")
		if t != "" && h != "" {
			return t, ResolveURL(base, h)
		}
	}
	return "", ""
}

// Clean collapses whitespace and trims the result.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes caps s at n runes. French portal text carries multi-byte
// characters, so the cut must land on a rune boundary.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// ResolveURL resolves href against base. A href that does not parse is
// returned as-is.
func ResolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// Row extracts a tender candidate from one listing row. The portal ID and
// page URL come from the calling adapter. Rows with no resolvable title
// yield nil.
func Row(portal string, sel *goquery.Selection, pageURL string) *domain.Tender {
	title, tenderURL := FirstLink(sel, titleCandidates, pageURL)
	if title == "" {
		// Fallback: the row's own text may be the title, and the row
		// itself may be the link.
		title = truncateRunes(Clean(sel.Text()), maxFallbackTitle)
		if href, ok := sel.Attr("href"); ok {
			tenderURL = ResolveURL(pageURL, href)
		}
	}
	if title == "" {
		return nil
	}
	if tenderURL == "" {
		tenderURL = pageURL
	}

	tenderID := First(sel, idCandidates)
	if tenderID == "" {
		tenderID = IDFromURL(tenderURL)
	}
	if tenderID == "" {
		tenderID = domain.SynthesizeTenderID(title, tenderURL)
	}

	return &domain.Tender{
		Portal:       portal,
		TenderID:     tenderID,
		Title:        title,
		Organization: First(sel, organizationCandidates),
		Location:     First(sel, locationCandidates),
		ClosingDate:  ParseDate(First(sel, closingDateCandidates)),
		PostedDate:   ParseDate(First(sel, postedDateCandidates)),
		Value:        ParseValue(First(sel, valueCandidates)),
		Description:  First(sel, descriptionCandidates),
		URL:          tenderURL,
		IsActive:     true,
		LastUpdated:  time.Now().UTC(),
	}
}

// IDFromURL pulls an identifier-looking value out of common query
// parameters and path tails.
func IDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	for _, param := range []string{"id", "tenderId", "tender_id", "solicitationId", "ref"} {
		if v := u.Query().Get(param); v != "" {
			return v
		}
	}
	return ""
}
