package matcher

import (
	"math"

	"github.com/miguelangat/dividela/internal/model"
	"github.com/miguelangat/dividela/internal/similarity"
)

const (
	// DefaultFuzzyThreshold is the minimum similarity rating a fuzzy merchant
	// match needs. It is calibrated against bigram Dice ratings.
	DefaultFuzzyThreshold = 0.6

	consistencyWeight = 0.7
	frequencyWeight   = 0.3
	// frequencyCap is the visit count at which frequency saturates.
	frequencyCap = 10
	// exactFloor and exactCeiling bound the exact-match confidence band.
	exactFloor   = 0.9
	exactCeiling = 0.99
	fuzzyPenalty = 0.85
)

// HistoryMatcher looks merchants up in a user's own categorized history.
type HistoryMatcher struct {
	metric    similarity.Metric
	threshold float64
}

// NewHistoryMatcher creates a history matcher. A nil metric selects bigram
// Dice; a non-positive threshold selects DefaultFuzzyThreshold.
func NewHistoryMatcher(metric similarity.Metric, fuzzyThreshold float64) *HistoryMatcher {
	if metric == nil {
		metric = similarity.NewDice()
	}
	if fuzzyThreshold <= 0 {
		fuzzyThreshold = DefaultFuzzyThreshold
	}
	return &HistoryMatcher{metric: metric, threshold: fuzzyThreshold}
}

type categoryTally struct {
	category model.Category
	count    int
}

// ExactMerchant predicts from past expenses at the same merchant, compared
// case-insensitively. ok is false when the merchant has never been seen.
func (m *HistoryMatcher) ExactMerchant(merchant string, history []model.HistoricalExpense) (model.Prediction, bool) {
	target := Normalize(merchant)
	if target == "" {
		return model.Prediction{}, false
	}

	var tallies []categoryTally
	total := 0
	for _, h := range history {
		if Normalize(h.Merchant) != target {
			continue
		}
		total++
		tallies = addTally(tallies, h.Category)
	}
	if total == 0 {
		return model.Prediction{}, false
	}

	dominant := tallies[0]
	for _, t := range tallies[1:] {
		if t.count > dominant.count {
			dominant = t
		}
	}

	return model.Prediction{
		Category:        dominant.category,
		Confidence:      exactConfidence(dominant.count, total),
		Source:          model.SourceExactMerchant,
		MatchedMerchant: merchant,
		DominantCount:   dominant.count,
		TotalMatches:    total,
	}, true
}

// addTally counts category, keeping categories in first-seen order.
func addTally(tallies []categoryTally, category model.Category) []categoryTally {
	for i := range tallies {
		if tallies[i].category == category {
			tallies[i].count++
			return tallies
		}
	}
	return append(tallies, categoryTally{category: category, count: 1})
}

// exactConfidence blends how consistently and how often the merchant was
// categorized, then compresses the blend into [0.9, 0.99].
func exactConfidence(dominant, total int) float64 {
	consistency := float64(dominant) / float64(total)
	frequency := math.Min(float64(total)/frequencyCap, 1)
	blend := consistencyWeight*consistency + frequencyWeight*frequency
	return math.Min(exactFloor+0.1*blend, exactCeiling)
}

// FuzzyMerchant finds the most similar merchant in history and predicts from
// its exact matches, discounted by the similarity rating. ok is false when
// no merchant rates at or above the fuzzy threshold.
func (m *HistoryMatcher) FuzzyMerchant(merchant string, history []model.HistoricalExpense) (model.Prediction, bool) {
	query := Normalize(merchant)
	if query == "" || len(history) == 0 {
		return model.Prediction{}, false
	}

	merchants := distinctMerchants(history)
	lowered := make([]string, len(merchants))
	for i, name := range merchants {
		lowered[i] = Normalize(name)
	}

	best, ok := similarity.BestMatch(m.metric, query, lowered)
	if !ok || best.Rating < m.threshold {
		return model.Prediction{}, false
	}

	matched := merchants[best.Index]
	exact, ok := m.ExactMerchant(matched, history)
	if !ok {
		return model.Prediction{}, false
	}

	return model.Prediction{
		Category:        exact.Category,
		Confidence:      exact.Confidence * best.Rating * fuzzyPenalty,
		Source:          model.SourceFuzzyMerchant,
		MatchedMerchant: matched,
		Similarity:      best.Rating,
		DominantCount:   exact.DominantCount,
		TotalMatches:    exact.TotalMatches,
	}, true
}

// distinctMerchants returns merchant names in first-seen order, de-duplicated
// by exact string and keeping their original casing.
func distinctMerchants(history []model.HistoricalExpense) []string {
	seen := make(map[string]bool, len(history))
	out := make([]string, 0, len(history))
	for _, h := range history {
		if seen[h.Merchant] {
			continue
		}
		seen[h.Merchant] = true
		out = append(out, h.Merchant)
	}
	return out
}
