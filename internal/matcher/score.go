package matcher

import (
	"math"
	"strings"

	"github.com/miguelangat/dividela/internal/model"
)

// Amount scoring bands.
const (
	neutralAmountScore = 0.5
	inRangeFloor       = 0.7
	belowRangeFloor    = 0.3
	aboveRangeFloor    = 0.2
)

// keywordHits is the detailed outcome of a keyword scan.
type keywordHits struct {
	matched     []string
	score       float64
	totalWeight float64
	exact       bool
}

// KeywordScore rates how strongly text mentions keywords, in [0, 1].
// Longer keywords weigh more, and keywords found inside a single word get
// an extra boost.
func KeywordScore(text string, keywords []string) float64 {
	return scanKeywords(text, keywords).score
}

func scanKeywords(text string, keywords []string) keywordHits {
	text = Normalize(text)
	if text == "" {
		return keywordHits{}
	}
	tokens := strings.Fields(text)

	var hits keywordHits
	for _, kw := range keywords {
		if kw == "" || !strings.Contains(text, kw) {
			continue
		}

		weight := float64(runeLen(kw)) / 8
		for _, tok := range tokens {
			if strings.Contains(tok, kw) {
				weight *= 1.5
				hits.exact = true
				break
			}
		}

		hits.totalWeight += weight
		hits.matched = append(hits.matched, kw)
	}

	if len(hits.matched) == 0 {
		return keywordHits{}
	}

	hits.score = math.Min(hits.totalWeight/1.5, 1)
	if hits.exact {
		hits.score = math.Min(hits.score*1.2, 1)
	}
	return hits
}

// AmountScore rates how plausible amount is for a category's range, in [0, 1].
// Non-positive amounts carry no signal and score a neutral 0.5. In-range
// amounts never score below 0.7.
func AmountScore(amount float64, r model.AmountRange, typical float64) float64 {
	if amount <= 0 || math.IsNaN(amount) {
		return neutralAmountScore
	}

	switch {
	case r.Contains(amount):
		typicalScore := 1.0
		if width := r.Width(); width > 0 {
			typicalScore = 1 - math.Abs(amount-typical)/width
		}
		return math.Max(inRangeFloor, math.Min(typicalScore, 1))
	case amount < r.Min:
		return math.Max(belowRangeFloor, 0.7-(r.Min-amount)/r.Min)
	default:
		if r.Max <= 0 {
			return aboveRangeFloor
		}
		return math.Max(aboveRangeFloor, 0.7-(amount-r.Max)/r.Max)
	}
}

// compositeScore blends keyword and amount scores, trusting keywords more
// as they get stronger.
func compositeScore(keyword, amount float64) float64 {
	switch {
	case keyword > 0.7:
		return 0.85*keyword + 0.15*amount
	case keyword > 0.4:
		return 0.75*keyword + 0.25*amount
	default:
		return 0.6*keyword + 0.4*amount
	}
}
