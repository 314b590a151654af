package engine

import (
	"math"

	"github.com/miguelangat/dividela/internal/model"
)

const (
	// agreementBonus is added when more than one prediction nominated the winner.
	agreementBonus = 0.1
	// unknownSourceWeight applies to sources missing from sourceWeights.
	unknownSourceWeight = 0.5
)

var sourceWeights = map[model.Source]float64{
	model.SourceExactMerchant: 1.0,
	model.SourceFuzzyMerchant: 0.75,
	model.SourceKeyword:       0.6,
	model.SourceGeneric:       0.5,
}

// SourceWeight returns the trust weight of a prediction source.
func SourceWeight(s model.Source) float64 {
	if w, ok := sourceWeights[s]; ok {
		return w
	}
	return unknownSourceWeight
}

type categoryScore struct {
	category model.Category
	sources  []model.Source
	total    float64
	maxRaw   float64
	hits     int
}

// Aggregate combines predictions into a single decision. The winner has the
// highest weighted total; ties go to the category encountered first.
func Aggregate(predictions []model.Prediction) model.AggregateResult {
	if len(predictions) == 0 {
		return model.AggregateResult{
			Category: model.CategoryNone,
			Source:   model.SourceNone,
		}
	}

	scores := make([]*categoryScore, 0, len(predictions))
	index := make(map[model.Category]*categoryScore, len(predictions))
	for _, p := range predictions {
		s, ok := index[p.Category]
		if !ok {
			s = &categoryScore{category: p.Category}
			index[p.Category] = s
			scores = append(scores, s)
		}
		s.total += p.Confidence * SourceWeight(p.Source)
		s.hits++
		s.maxRaw = math.Max(s.maxRaw, p.Confidence)
		s.sources = append(s.sources, p.Source)
	}

	winner := scores[0]
	for _, s := range scores[1:] {
		if s.total > winner.total {
			winner = s
		}
	}

	confidence := winner.maxRaw
	if winner.hits > 1 {
		confidence += agreementBonus
	}

	return model.AggregateResult{
		Category:     winner.category,
		Source:       winner.sources[0],
		Confidence:   math.Min(confidence, 1),
		Hits:         winner.hits,
		AverageScore: winner.total / float64(winner.hits),
	}
}
