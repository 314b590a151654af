package matcher

import (
	"sort"
	"strings"

	"github.com/miguelangat/dividela/internal/catalog"
	"github.com/miguelangat/dividela/internal/model"
)

const (
	// emptyInputConfidence is reported when there is nothing to score.
	emptyInputConfidence = 0.1
	// genericMinScore is the composite score a category needs to beat the fallback.
	genericMinScore = 0.4
	// genericAltMinScore filters out runner-up categories that are mere noise.
	genericAltMinScore = 0.2
	maxAlternatives    = 3
)

// GenericMatcher scores every Rule Catalog category on keywords and amount.
// It always produces a prediction and serves as the universal fallback.
type GenericMatcher struct {
	catalog *catalog.Catalog
}

// NewGenericMatcher creates a generic matcher over c.
func NewGenericMatcher(c *catalog.Catalog) *GenericMatcher {
	return &GenericMatcher{catalog: c}
}

type categoryScore struct {
	category model.Category
	matched  []string
	score    float64
}

// Match predicts a category from merchant, amount and description alone.
func (m *GenericMatcher) Match(merchant string, amount float64, description string) model.Prediction {
	merchant, description = Normalize(merchant), Normalize(description)
	if merchant == "" && description == "" {
		return model.Prediction{
			Category:     m.catalog.Fallback(),
			Confidence:   emptyInputConfidence,
			Source:       model.SourceGeneric,
			Alternatives: model.Alternatives{},
		}
	}

	text := strings.TrimSpace(merchant + " " + description)
	ranked := m.rank(text, amount)

	top := ranked[0]
	prediction := model.Prediction{
		Category:        top.category,
		Confidence:      model.Round3(top.score),
		Source:          model.SourceGeneric,
		MatchedKeywords: top.matched,
		Alternatives:    runnersUp(ranked[1:]),
	}
	if top.score < genericMinScore {
		prediction.Category = m.catalog.Fallback()
		prediction.MatchedKeywords = nil
	}
	return prediction
}

// rank scores every category, highest first. Equal scores keep catalog order.
func (m *GenericMatcher) rank(text string, amount float64) []categoryScore {
	entries := m.catalog.Entries()
	scores := make([]categoryScore, 0, len(entries))

	for _, e := range entries {
		hits := scanKeywords(text, e.Rule.Keywords)
		amountScore := AmountScore(amount, e.Rule.AmountRange, e.Rule.TypicalAmount)
		scores = append(scores, categoryScore{
			category: e.Category,
			score:    compositeScore(hits.score, amountScore),
			matched:  hits.matched,
		})
	}

	if len(scores) == 0 {
		// An empty catalog still has to yield a fallback decision.
		scores = append(scores, categoryScore{category: m.catalog.Fallback()})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})
	return scores
}

func runnersUp(rest []categoryScore) model.Alternatives {
	alts := model.Alternatives{}
	for _, s := range rest {
		if len(alts) == maxAlternatives {
			break
		}
		if s.score > genericAltMinScore {
			alts = append(alts, model.Alternative{Category: s.category, Confidence: model.Round3(s.score)})
		}
	}
	return alts
}
