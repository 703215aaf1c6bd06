package relevance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/relevance"
	"github.com/jonesrussell/tenderscan/internal/sources"
)

func TestPriorityBrackets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tender domain.Tender
		tier   sources.Tier
		want   domain.Priority
	}{
		{
			name: "large value closing soon",
			tender: domain.Tender{
				Value:       2_000_000,
				ClosingDate: daysFromNow(3),
			},
			tier: sources.TierHigh,
			want: domain.PriorityHigh,
		},
		{
			name: "course matches push over high cutoff",
			tender: domain.Tender{
				Value:           60_000,
				ClosingDate:     daysFromNow(10),
				MatchingCourses: domain.StringList{"PRINCE2 Foundation", "PMP Certification"},
			},
			tier: sources.TierLow,
			want: domain.PriorityHigh,
		},
		{
			name: "mid value mid urgency",
			tender: domain.Tender{
				Value:       600_000,
				ClosingDate: daysFromNow(25),
			},
			tier: sources.TierLow,
			want: domain.PriorityLow,
		},
		{
			name: "tier bonus reaches medium",
			tender: domain.Tender{
				Value:       600_000,
				ClosingDate: daysFromNow(25),
			},
			tier: sources.TierMedium,
			want: domain.PriorityMedium,
		},
		{
			name:   "no signals",
			tender: domain.Tender{},
			tier:   sources.TierLow,
			want:   domain.PriorityLow,
		},
		{
			name: "no closing date has no urgency points",
			tender: domain.Tender{
				Value: 2_000_000,
			},
			tier: sources.TierLow,
			want: domain.PriorityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := relevance.Priority(&tt.tender, tt.tier)
			assert.Equal(t, tt.want, got)
		})
	}
}
