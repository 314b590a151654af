package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miguelangat/dividela/internal/model"
	"github.com/miguelangat/dividela/internal/similarity"
)

func expenses(merchant string, categories ...model.Category) []model.HistoricalExpense {
	out := make([]model.HistoricalExpense, 0, len(categories))
	for _, c := range categories {
		out = append(out, model.HistoricalExpense{Merchant: merchant, Category: c, Amount: 42})
	}
	return out
}

func TestHistoryMatcher_ExactMerchant(t *testing.T) {
	m := NewHistoryMatcher(nil, 0)

	tests := []struct {
		name      string
		merchant  string
		history   []model.HistoricalExpense
		category  model.Category
		want      float64
		dominant  int
		total     int
		wantMatch bool
	}{
		{
			name:      "consistent merchant",
			merchant:  "Whole Foods",
			history:   expenses("Whole Foods", model.CategoryGroceries, model.CategoryGroceries, model.CategoryGroceries),
			wantMatch: true,
			category:  model.CategoryGroceries,
			want:      0.979,
			dominant:  3,
			total:     3,
		},
		{
			name:      "case and whitespace insensitive",
			merchant:  "  WHOLE FOODS ",
			history:   expenses("whole foods", model.CategoryGroceries),
			wantMatch: true,
			category:  model.CategoryGroceries,
			want:      0.9 + 0.1*(0.7+0.03),
			dominant:  1,
			total:     1,
		},
		{
			name:      "majority wins",
			merchant:  "Target",
			history:   expenses("Target", model.CategoryGroceries, model.CategoryHome, model.CategoryHome),
			wantMatch: true,
			category:  model.CategoryHome,
			want:      0.9 + 0.1*(0.7*2.0/3+0.3*0.3),
			dominant:  2,
			total:     3,
		},
		{
			name:      "ties go to first seen",
			merchant:  "Target",
			history:   expenses("Target", model.CategoryGroceries, model.CategoryHome),
			wantMatch: true,
			category:  model.CategoryGroceries,
			want:      0.941,
			dominant:  1,
			total:     2,
		},
		{
			name:      "frequent consistent merchant is capped below one",
			merchant:  "Shell",
			history:   expenses("Shell", repeat(model.CategoryTransport, 12)...),
			wantMatch: true,
			category:  model.CategoryTransport,
			want:      0.99,
			dominant:  12,
			total:     12,
		},
		{
			name:     "unknown merchant",
			merchant: "Costco",
			history:  expenses("Whole Foods", model.CategoryGroceries),
		},
		{
			name:     "empty merchant",
			merchant: " ",
			history:  expenses("", model.CategoryGroceries),
		},
		{
			name:     "empty history",
			merchant: "Whole Foods",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.ExactMerchant(tt.merchant, tt.history)
			require.Equal(t, tt.wantMatch, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, model.SourceExactMerchant, got.Source)
			assert.InDelta(t, tt.want, got.Confidence, 1e-9)
			assert.Equal(t, tt.dominant, got.DominantCount)
			assert.Equal(t, tt.total, got.TotalMatches)
		})
	}
}

func TestExactConfidence_Monotonic(t *testing.T) {
	prev := 0.0
	for total := 1; total <= 15; total++ {
		got := exactConfidence(total, total)
		assert.GreaterOrEqual(t, got, prev, "visits %d", total)
		assert.GreaterOrEqual(t, got, 0.9)
		assert.LessOrEqual(t, got, 0.99)
		prev = got
	}

	prev = 0.0
	for dominant := 1; dominant <= 5; dominant++ {
		got := exactConfidence(dominant, 5)
		assert.GreaterOrEqual(t, got, prev, "dominant %d", dominant)
		prev = got
	}
}

func TestHistoryMatcher_FuzzyMerchant(t *testing.T) {
	history := append(
		expenses("Whole Foods", model.CategoryGroceries, model.CategoryGroceries, model.CategoryGroceries),
		expenses("Shell", model.CategoryTransport)...,
	)

	stub := func(rating float64) similarity.Metric {
		return similarity.MetricFunc(func(_, b string) float64 {
			if b == "whole foods" {
				return rating
			}
			return 0.1
		})
	}

	t.Run("similar merchant", func(t *testing.T) {
		m := NewHistoryMatcher(stub(0.8), 0)
		got, ok := m.FuzzyMerchant("Whole Foods Mkt", history)
		require.True(t, ok)
		assert.Equal(t, model.CategoryGroceries, got.Category)
		assert.Equal(t, model.SourceFuzzyMerchant, got.Source)
		assert.Equal(t, "Whole Foods", got.MatchedMerchant)
		assert.Equal(t, 0.8, got.Similarity)
		assert.InDelta(t, 0.979*0.8*0.85, got.Confidence, 1e-9)

		exact, ok := m.ExactMerchant(got.MatchedMerchant, history)
		require.True(t, ok)
		assert.LessOrEqual(t, got.Confidence, exact.Confidence)
	})

	t.Run("rating at threshold is accepted", func(t *testing.T) {
		m := NewHistoryMatcher(stub(0.6), 0)
		_, ok := m.FuzzyMerchant("Whole Foods Mkt", history)
		assert.True(t, ok)
	})

	t.Run("rating below threshold is rejected", func(t *testing.T) {
		m := NewHistoryMatcher(stub(0.59), 0)
		_, ok := m.FuzzyMerchant("Whole Foods Mkt", history)
		assert.False(t, ok)
	})

	t.Run("custom threshold", func(t *testing.T) {
		m := NewHistoryMatcher(stub(0.8), 0.85)
		_, ok := m.FuzzyMerchant("Whole Foods Mkt", history)
		assert.False(t, ok)
	})

	t.Run("empty inputs", func(t *testing.T) {
		m := NewHistoryMatcher(stub(1), 0)
		_, ok := m.FuzzyMerchant("", history)
		assert.False(t, ok)
		_, ok = m.FuzzyMerchant("Whole Foods", nil)
		assert.False(t, ok)
	})

	t.Run("dice metric", func(t *testing.T) {
		m := NewHistoryMatcher(similarity.NewDice(), 0)
		got, ok := m.FuzzyMerchant("Whole Foods Market", history)
		require.True(t, ok)
		assert.Equal(t, model.CategoryGroceries, got.Category)
		assert.Equal(t, "Whole Foods", got.MatchedMerchant)

		_, ok = m.FuzzyMerchant("Netflix", history)
		assert.False(t, ok)
	})
}

func TestDistinctMerchants(t *testing.T) {
	history := []model.HistoricalExpense{
		{Merchant: "Whole Foods"},
		{Merchant: "whole foods"},
		{Merchant: "Whole Foods"},
		{Merchant: "Shell"},
	}
	assert.Equal(t, []string{"Whole Foods", "whole foods", "Shell"}, distinctMerchants(history))
}

func repeat(c model.Category, n int) []model.Category {
	out := make([]model.Category, n)
	for i := range out {
		out[i] = c
	}
	return out
}
