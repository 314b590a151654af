package matcher

import (
	"math"
	"strings"

	"github.com/miguelangat/dividela/internal/catalog"
	"github.com/miguelangat/dividela/internal/model"
)

// DescriptionMatcher scans free-text descriptions against the description
// keyword table.
type DescriptionMatcher struct {
	table *catalog.DescriptionTable
}

// NewDescriptionMatcher creates a description matcher over t.
func NewDescriptionMatcher(t *catalog.DescriptionTable) *DescriptionMatcher {
	return &DescriptionMatcher{table: t}
}

// Match predicts a category from description. It only runs for users with
// some history; the history's content is not consulted.
func (m *DescriptionMatcher) Match(description string, history []model.HistoricalExpense) (model.Prediction, bool) {
	text := Normalize(description)
	if text == "" || len(history) == 0 {
		return model.Prediction{}, false
	}

	var (
		best      model.Category
		bestScore float64
		bestHits  []string
	)
	for _, set := range m.table.Sets() {
		var hits []string
		for _, kw := range set.Keywords {
			if strings.Contains(text, kw) {
				hits = append(hits, kw)
			}
		}
		if len(hits) == 0 {
			continue
		}

		score := math.Min(float64(len(hits))/3, 1)
		if score > bestScore {
			best, bestScore, bestHits = set.Category, score, hits
		}
	}

	if bestHits == nil {
		return model.Prediction{}, false
	}

	return model.Prediction{
		Category:        best,
		Confidence:      0.5 + 0.3*bestScore,
		Source:          model.SourceKeyword,
		MatchedKeywords: bestHits,
	}, true
}
