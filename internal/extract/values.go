package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// numericToken matches the first digit run with optional thousands
	// separators and decimal part. Punctuation from surrounding labels
	// ("approx.", "est.") never reaches the parse.
	numericToken = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	// multiplierSuffix matches a K/M/B immediately after the number,
	// e.g. "$1.5M" or "2.3 M". A multiplier elsewhere in the text is
	// label noise, not a magnitude.
	multiplierSuffix = regexp.MustCompile(`(?i)[\d.,]\s*([KMB])(?:[^A-Za-z]|$)`)
)

// ParseValue parses a monetary value out of free text: currency symbols and
// labels are stripped, thousands separators removed, and a trailing K/M/B
// multiplier applied. Unparseable input yields 0.
func ParseValue(s string) float64 {
	if s == "" {
		return 0
	}

	cleaned := strings.ReplaceAll(numericToken.FindString(s), ",", "")
	if cleaned == "" {
		return 0
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	if m := multiplierSuffix.FindStringSubmatch(s); m != nil {
		switch strings.ToUpper(m[1]) {
		case "B":
			value *= 1e9
		case "M":
			value *= 1e6
		case "K":
			value *= 1e3
		}
	}

	return value
}
