package relevance

import (
	"time"

	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/sources"
)

// Priority scoring brackets and cutoffs.
const (
	valueBracket1M   = 1_000_000
	valueBracket500K = 500_000
	valueBracket100K = 100_000
	valueBracket50K  = 50_000

	closeWithinWeek    = 7
	closeWithinTwoWeek = 14
	closeWithinMonth   = 30

	courseMatchWeight = 2

	highCutoff   = 8
	mediumCutoff = 5
)

// Priority maps a tender to {high, medium, low} through an additive score:
// value bracket, days to close, source tier, and matched-course count.
// A tender with no closing date gets no urgency points but is still scored.
func Priority(t *domain.Tender, tier sources.Tier) domain.Priority {
	return priorityAt(t, tier, time.Now().UTC())
}

func priorityAt(t *domain.Tender, tier sources.Tier, now time.Time) domain.Priority {
	score := valueScore(t.Value) + urgencyScore(t.ClosingDate, now) + tierScore(tier)
	score += len(t.MatchingCourses) * courseMatchWeight

	switch {
	case score >= highCutoff:
		return domain.PriorityHigh
	case score >= mediumCutoff:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func valueScore(value float64) int {
	switch {
	case value > valueBracket1M:
		return 5
	case value > valueBracket500K:
		return 3
	case value > valueBracket100K:
		return 2
	case value > valueBracket50K:
		return 1
	default:
		return 0
	}
}

func urgencyScore(closing *time.Time, now time.Time) int {
	if closing == nil {
		return 0
	}
	days := int(closing.Sub(now).Hours() / 24)
	switch {
	case days <= closeWithinWeek:
		return 5
	case days <= closeWithinTwoWeek:
		return 3
	case days <= closeWithinMonth:
		return 1
	default:
		return 0
	}
}

func tierScore(tier sources.Tier) int {
	switch tier {
	case sources.TierHigh:
		return 3
	case sources.TierMedium:
		return 2
	default:
		return 0
	}
}
