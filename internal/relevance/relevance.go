package relevance

import (
	"sort"
	"strings"

	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/sources"
)

// Scoring weights and thresholds.
const (
	// minCategoryKeywords is how many of a category's keywords must occur
	// before the category attaches. One keyword is too noisy.
	minCategoryKeywords = 2
	// topCategoryKeywords is how many leading category keywords count for
	// course attachment.
	topCategoryKeywords = 5
	// maxKeywords caps the keyword hints stored on a tender.
	maxKeywords = 10

	highTermWeight      = 3
	mediumTermWeight    = 1
	coOccurrenceBonus   = 2
	valueBandBonus      = 2
	exclusionPenalty    = 3
	valueBandLow        = 10_000
	valueBandHigh       = 500_000
	DefaultMinScore     = 3
)

// highValueTerms strongly indicate a training engagement.
var highValueTerms = []string{
	"training", "formation", "certification", "course", "cours",
	"learning", "apprentissage", "coaching", "workshop", "atelier",
	"curriculum", "instructor", "e-learning", "upskilling", "reskilling",
}

// mediumValueTerms weakly indicate one.
var mediumValueTerms = []string{
	"education", "development", "seminar", "instruction", "facilitation",
	"mentoring", "tutorial", "capacity building", "skill", "professional services",
}

// exclusionTerms indicate goods procurement, not services.
var exclusionTerms = []string{
	"equipment", "construction", "supply", "supplies", "maintenance",
	"repair", "installation", "hardware purchase",
}

// Engine classifies and scores tenders against the taxonomy.
type Engine struct {
	taxonomy Taxonomy
	minScore int
}

// New creates an Engine. A non-positive minScore falls back to the default
// threshold.
func New(taxonomy Taxonomy, minScore int) *Engine {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	return &Engine{taxonomy: taxonomy, minScore: minScore}
}

// Classify attaches categories, keywords, matching courses, and priority to
// the tender, and reports whether it clears the relevance threshold.
// Tenders below the threshold are not persisted.
func (e *Engine) Classify(t *domain.Tender, tier sources.Tier) bool {
	text := searchText(t)

	if e.Score(text, t.Value) < e.minScore {
		return false
	}

	t.Categories = e.Categories(text)
	t.Keywords = e.Keywords(text)
	t.MatchingCourses = e.MatchCourses(text, t.Categories)
	t.Priority = Priority(t, tier)
	return true
}

// Score computes the additive relevance score for the given text and value.
func (e *Engine) Score(text string, value float64) int {
	score := 0
	highHits := 0
	for _, term := range highValueTerms {
		if strings.Contains(text, term) {
			score += highTermWeight
			highHits++
		}
	}
	for _, term := range mediumValueTerms {
		if strings.Contains(text, term) {
			score += mediumTermWeight
		}
	}
	if highHits >= 2 {
		score += coOccurrenceBonus
	}
	if value >= valueBandLow && value <= valueBandHigh {
		score += valueBandBonus
	}
	for _, term := range exclusionTerms {
		if strings.Contains(text, term) {
			score -= exclusionPenalty
		}
	}
	return score
}

// Categories returns every taxonomy category with at least two keyword hits
// in the text, sorted for deterministic output.
func (e *Engine) Categories(text string) domain.StringList {
	var categories []string
	for id, category := range e.taxonomy {
		hits := 0
		for _, kw := range category.Keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits >= minCategoryKeywords {
			categories = append(categories, id)
		}
	}
	sort.Strings(categories)
	return categories
}

// Keywords returns the taxonomy keywords present in the text, capped.
func (e *Engine) Keywords(text string) domain.StringList {
	seen := make(map[string]bool)
	var keywords []string

	var ids []string
	for id := range e.taxonomy {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		for _, kw := range e.taxonomy[id].Keywords {
			if !seen[kw] && strings.Contains(text, kw) {
				seen[kw] = true
				keywords = append(keywords, kw)
				if len(keywords) == maxKeywords {
					return keywords
				}
			}
		}
	}
	return keywords
}

// MatchCourses returns courses from the attached categories that the text
// supports: the full course name verbatim, any course-name word longer than
// three characters, or any of the category's top keywords. Capped at
// domain.MaxMatchingCourses.
func (e *Engine) MatchCourses(text string, categories []string) domain.StringList {
	seen := make(map[string]bool)
	var matched []string

	for _, id := range categories {
		category, ok := e.taxonomy[id]
		if !ok {
			continue
		}
		topKeywords := category.Keywords
		if len(topKeywords) > topCategoryKeywords {
			topKeywords = topKeywords[:topCategoryKeywords]
		}

		for _, course := range category.Courses {
			if seen[course] {
				continue
			}
			if courseMatches(text, course, topKeywords) {
				seen[course] = true
				matched = append(matched, course)
				if len(matched) == domain.MaxMatchingCourses {
					return matched
				}
			}
		}
	}
	return matched
}

func courseMatches(text, course string, topKeywords []string) bool {
	lower := strings.ToLower(course)
	if strings.Contains(text, lower) {
		return true
	}
	for _, word := range strings.Fields(lower) {
		if len(word) > 3 && strings.Contains(text, word) {
			return true
		}
	}
	for _, kw := range topKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// searchText builds the lowercase haystack from title, description, and any
// keyword hints already on the tender.
func searchText(t *domain.Tender) string {
	parts := []string{t.Title, t.Description}
	parts = append(parts, t.Keywords...)
	return strings.ToLower(strings.Join(parts, " "))
}
