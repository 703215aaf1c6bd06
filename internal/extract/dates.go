package extract

import (
	"regexp"
	"strings"
	"time"
)

// dateLayouts is the ordered list of formats tried before the permissive
// fallback. Portals mix ISO, slashed, and written-out dates freely.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"02-Jan-2006",
	"02 Jan 2006",
	"January 2, 2006",
	"2 January 2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02-01-2006",
	"Jan 2, 2006",
	"02 Jan 2006 3:04 PM",
}

// embeddedDate matches a date-looking substring inside surrounding label
// text, e.g. "Closing: March 5, 2026 at 2pm".
var embeddedDate = regexp.MustCompile(
	`(\d{4}-\d{2}-\d{2})|(\d{1,2}/\d{1,2}/\d{4})|([A-Za-z]{3,9}\.? \d{1,2},? \d{4})|(\d{1,2} [A-Za-z]{3,9},? \d{4})`,
)

// ParseDate parses a date through the fixed layout list, then a permissive
// pass over any embedded date-looking substring. Unparseable input yields
// nil; the caller keeps the record and treats it as having no expiry signal.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if t := tryLayouts(s); t != nil {
		return t
	}

	// Permissive fallback: strip label text and ordinal suffixes, retry.
	candidate := embeddedDate.FindString(s)
	if candidate == "" {
		return nil
	}
	candidate = strings.ReplaceAll(candidate, ".", "")
	candidate = strings.ReplaceAll(candidate, ",", ", ")
	candidate = Clean(candidate)
	if t := tryLayouts(candidate); t != nil {
		return t
	}
	return nil
}

func tryLayouts(s string) *time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
