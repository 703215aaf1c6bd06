package relevance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/relevance"
	"github.com/jonesrussell/tenderscan/internal/sources"
)

func daysFromNow(days int) *time.Time {
	t := time.Now().UTC().AddDate(0, 0, days)
	return &t
}

func TestClassifyKeepsTrainingTender(t *testing.T) {
	t.Parallel()

	engine := relevance.New(nil, 0)
	tender := &domain.Tender{
		Portal:      "merx",
		TenderID:    "1",
		Title:       "Agile and Scrum Training Services",
		Description: "Deliver scrum master certification workshops and agile coaching for staff.",
		Value:       150_000,
		ClosingDate: daysFromNow(5),
	}

	require.True(t, engine.Classify(tender, sources.TierHigh))
	assert.Contains(t, []string(tender.Categories), "agile-scrum")
	assert.NotEmpty(t, tender.Keywords)
	assert.NotEmpty(t, tender.MatchingCourses)
	assert.LessOrEqual(t, len(tender.MatchingCourses), domain.MaxMatchingCourses)
	assert.Equal(t, domain.PriorityHigh, tender.Priority)
}

func TestClassifyDropsGoodsProcurement(t *testing.T) {
	t.Parallel()

	engine := relevance.New(nil, 0)
	tender := &domain.Tender{
		Portal:      "merx",
		TenderID:    "2",
		Title:       "Forklift Equipment Supply",
		Description: "Purchase and delivery of warehouse equipment and supplies.",
		Value:       200_000,
	}

	assert.False(t, engine.Classify(tender, sources.TierHigh))
}

func TestClassifyScenarioPersistsOnlyRelevantRows(t *testing.T) {
	t.Parallel()

	engine := relevance.New(nil, 0)
	rows := []*domain.Tender{
		{Title: "Safety Training Services", Description: "Workplace training and certification courses", Value: 120_000, ClosingDate: daysFromNow(5)},
		{Title: "General Training Services", Description: "Staff training services program", Value: 90_000, ClosingDate: daysFromNow(40)},
		{Title: "Equipment Supply", Description: "Bulk equipment supply agreement", Value: 300_000, ClosingDate: daysFromNow(20)},
	}

	var kept []*domain.Tender
	for _, row := range rows {
		if engine.Classify(row, sources.TierHigh) {
			kept = append(kept, row)
		}
	}

	require.Len(t, kept, 2)
	assert.Equal(t, domain.PriorityHigh, kept[0].Priority)
	assert.Contains(t,
		[]domain.Priority{domain.PriorityMedium, domain.PriorityLow},
		kept[1].Priority,
	)
}

func TestScoreCoOccurrenceBonus(t *testing.T) {
	t.Parallel()

	engine := relevance.New(nil, 0)

	one := engine.Score("training only here", 0)
	two := engine.Score("training and certification here", 0)

	// Second high-value hit adds its weight plus the co-occurrence bonus.
	assert.Greater(t, two, one+1)
}

func TestScoreValueBand(t *testing.T) {
	t.Parallel()

	engine := relevance.New(nil, 0)

	inBand := engine.Score("training", 100_000)
	outOfBand := engine.Score("training", 5_000_000)

	assert.Greater(t, inBand, outOfBand)
}

func TestCategoriesRequireTwoKeywords(t *testing.T) {
	t.Parallel()

	engine := relevance.New(nil, 0)

	assert.Empty(t, engine.Categories("scrum without any other hint"))
	assert.Contains(t,
		[]string(engine.Categories("scrum sprint planning services")),
		"agile-scrum",
	)
}

func TestMatchCoursesCap(t *testing.T) {
	t.Parallel()

	engine := relevance.New(nil, 0)
	text := "itil cloud aws azure devops linux python java training certification"
	categories := engine.Categories(text)
	require.NotEmpty(t, categories)

	courses := engine.MatchCourses(text, categories)
	assert.LessOrEqual(t, len(courses), domain.MaxMatchingCourses)
	assert.NotEmpty(t, courses)
}

func TestKeywordsCapped(t *testing.T) {
	t.Parallel()

	engine := relevance.New(nil, 0)
	text := "prince2 pmp capm itil cloud aws azure devops docker kubernetes linux python java sql data analytics"

	keywords := engine.Keywords(text)
	assert.LessOrEqual(t, len(keywords), 10)
	assert.NotEmpty(t, keywords)
}
