package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/tenderscan/internal/extract"
)

func TestParseDateFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"2026-03-05", "2026-03-05"},
		{"05/03/2026", "2026-03-05"},
		{"2026-03-05 14:30:00", "2026-03-05"},
		{"05-Mar-2026", "2026-03-05"},
		{"05 Mar 2026", "2026-03-05"},
		{"March 5, 2026", "2026-03-05"},
		{"5 March 2026", "2026-03-05"},
		{"2026-03-05T14:30:00Z", "2026-03-05"},
		{"Mar 5, 2026", "2026-03-05"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := extract.ParseDate(tt.input)
			require.NotNil(t, got, "expected %q to parse", tt.input)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestParseDateEmbedded(t *testing.T) {
	t.Parallel()

	got := extract.ParseDate("Closing Date: March 5, 2026 at 2:00 PM CST")
	require.NotNil(t, got)
	assert.Equal(t, "2026-03-05", got.Format("2006-01-02"))

	got = extract.ParseDate("Deadline 2026-03-05 (extended)")
	require.NotNil(t, got)
	assert.Equal(t, "2026-03-05", got.Format("2006-01-02"))
}

func TestParseDateUnparseable(t *testing.T) {
	t.Parallel()

	assert.Nil(t, extract.ParseDate(""))
	assert.Nil(t, extract.ParseDate("TBD"))
	assert.Nil(t, extract.ParseDate("see documents"))
}

func TestParseValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  float64
	}{
		{"$75,000", 75000},
		{"$75,000.50 CAD", 75000.50},
		{"1.5M", 1.5e6},
		{"$2K", 2000},
		{"approx. $3 B total", 3e9},
		{"est. $1.5M (budgetary)", 1.5e6},
		{"$1,250,000.00 CAD", 1250000},
		{"Estimated: $50,000", 50000},
		{"", 0},
		{"not disclosed", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tt.want, extract.ParseValue(tt.input), 0.001)
		})
	}
}
