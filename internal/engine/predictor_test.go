package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miguelangat/dividela/internal/model"
	"github.com/miguelangat/dividela/internal/similarity"
)

func newTestPredictor(metric similarity.Metric) *Predictor {
	opts := DefaultOptions()
	opts.Similarity = metric
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPredictor(nil, nil, opts)
}

func history(merchant string, category model.Category, n int) []model.HistoricalExpense {
	out := make([]model.HistoricalExpense, n)
	for i := range out {
		out[i] = model.HistoricalExpense{Merchant: merchant, Category: category, Amount: 40}
	}
	return out
}

func TestPredictor_Predict(t *testing.T) {
	p := newTestPredictor(nil)

	tests := []struct {
		name         string
		req          Request
		category     model.Category
		source       model.Source
		confidence   float64
		alternatives model.Alternatives
		below        bool
	}{
		{
			name:         "generic keyword match without history",
			req:          Request{Merchant: "Starbucks", Amount: 6},
			category:     model.CategoryFood,
			source:       model.SourceGeneric,
			confidence:   0.991,
			alternatives: model.Alternatives{},
		},
		{
			name:         "empty input falls back to other below threshold",
			req:          Request{},
			category:     model.CategoryNone,
			source:       model.SourceGeneric,
			confidence:   0.1,
			alternatives: model.Alternatives{},
			below:        true,
		},
		{
			name: "history agreement with a description runner-up",
			req: Request{
				Merchant:    "Shell",
				Amount:      40,
				Description: "dinner",
				History:     history("Shell", model.CategoryTransport, 2),
			},
			category:     model.CategoryTransport,
			source:       model.SourceExactMerchant,
			confidence:   1,
			alternatives: model.Alternatives{{Category: model.CategoryFood, Confidence: 0.6}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Predict(tt.req)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.source, got.Source)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.alternatives, got.Alternatives)
			assert.Equal(t, tt.below, got.BelowThreshold)
		})
	}
}

func TestPredictor_ExactMerchantHistory(t *testing.T) {
	p := newTestPredictor(nil)

	got := p.Predict(Request{
		Merchant: "Whole Foods",
		Amount:   80,
		History:  history("Whole Foods", model.CategoryGroceries, 3),
	})

	assert.Equal(t, model.CategoryGroceries, got.Category)
	assert.Equal(t, model.SourceExactMerchant, got.Source)
	assert.InDelta(t, 1.0, got.Confidence, 1e-9)
	assert.False(t, got.BelowThreshold)
	assert.False(t, got.Alternatives.Contains(model.CategoryGroceries))
}

func TestPredictor_BelowThreshold(t *testing.T) {
	rating := similarity.MetricFunc(func(_, _ string) float64 { return 0.65 })
	p := newTestPredictor(rating)

	got := p.Predict(Request{
		Merchant: "Corner Store",
		History:  history("Corner Shop", model.CategoryGroceries, 1),
	})

	assert.Equal(t, model.CategoryNone, got.Category)
	assert.True(t, got.BelowThreshold)
	assert.Equal(t, model.SourceFuzzyMerchant, got.Source)
	assert.InDelta(t, 0.538, got.Confidence, 1e-9)
	assert.Equal(t, model.Alternatives{{Category: model.CategoryOther, Confidence: 0.2}}, got.Alternatives)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category":null`)
	assert.Contains(t, string(data), `"belowThreshold":true`)
}

func TestPredictor_CustomThreshold(t *testing.T) {
	rating := similarity.MetricFunc(func(_, _ string) float64 { return 0.65 })
	opts := DefaultOptions()
	opts.Similarity = rating
	opts.ConfidenceThreshold = 0.5
	p := NewPredictor(nil, nil, opts)

	got := p.Predict(Request{
		Merchant: "Corner Store",
		History:  history("Corner Shop", model.CategoryGroceries, 1),
	})

	assert.Equal(t, model.CategoryGroceries, got.Category)
	assert.False(t, got.BelowThreshold)
}

func TestPredictor_Explain(t *testing.T) {
	p := newTestPredictor(nil)

	got := p.Explain(Request{
		Merchant:    "Shell",
		Amount:      40,
		Description: "dinner",
		History:     history("Shell", model.CategoryTransport, 2),
	})

	sources := make([]model.Source, len(got.Signals))
	for i, s := range got.Signals {
		sources[i] = s.Source
	}
	assert.Equal(t, []model.Source{
		model.SourceExactMerchant,
		model.SourceFuzzyMerchant,
		model.SourceKeyword,
		model.SourceGeneric,
	}, sources)

	assert.Equal(t, 3, got.Aggregate.Hits)
	assert.Equal(t, []string{"dinner"}, got.Signals[2].MatchedKeywords)
	assert.Equal(t, "Shell", got.Signals[1].MatchedMerchant)
	assert.Equal(t, p.Predict(Request{
		Merchant:    "Shell",
		Amount:      40,
		Description: "dinner",
		History:     history("Shell", model.CategoryTransport, 2),
	}), got.Response)
}

func TestPredictor_Invariants(t *testing.T) {
	p := newTestPredictor(nil)
	hist := append(history("Whole Foods", model.CategoryGroceries, 2), history("Target", model.CategoryHome, 1)...)
	hist = append(hist, history("Target", model.CategoryGroceries, 1)...)

	reqs := []Request{
		{Merchant: "Target", Amount: 55, Description: "weekly shop and furniture", History: hist},
		{Merchant: "Whole Foods Market", Amount: -3, Description: "lunch", History: hist},
		{Merchant: "AMC", Amount: 1e6, Description: "movie tickets and drinks", History: hist},
		{Merchant: "Uber Eats", Amount: 25},
		{Description: "rent", Amount: 1200, History: hist},
		{Merchant: "???", Amount: 0},
	}

	for _, req := range reqs {
		t.Run(req.Merchant+"/"+req.Description, func(t *testing.T) {
			first := p.Predict(req)
			assert.Equal(t, first, p.Predict(req), "prediction must be idempotent")

			assert.GreaterOrEqual(t, first.Confidence, 0.0)
			assert.LessOrEqual(t, first.Confidence, 1.0)
			assert.Equal(t, model.Round3(first.Confidence), first.Confidence)
			if first.BelowThreshold {
				assert.True(t, first.Category.IsNone())
			} else {
				assert.GreaterOrEqual(t, first.Confidence, DefaultConfidenceThreshold)
			}

			require.NotNil(t, first.Alternatives)
			assert.LessOrEqual(t, len(first.Alternatives), 3)
			for i, alt := range first.Alternatives {
				if !first.Category.IsNone() {
					assert.NotEqual(t, first.Category, alt.Category)
				}
				assert.Equal(t, model.Round3(alt.Confidence), alt.Confidence)
				if i > 0 {
					assert.GreaterOrEqual(t, first.Alternatives[i-1].Confidence, alt.Confidence)
				}
			}
		})
	}
}

func TestPredictor_DoesNotMutateHistory(t *testing.T) {
	p := newTestPredictor(nil)
	hist := history("Whole Foods", model.CategoryGroceries, 3)
	snapshot := append([]model.HistoricalExpense(nil), hist...)

	p.Predict(Request{Merchant: "whole foods", Amount: 10, Description: "fruit", History: hist})
	assert.Equal(t, snapshot, hist)
}

func TestAlternatives(t *testing.T) {
	signals := []model.Prediction{
		{Category: "a", Confidence: 0.9},
		{Category: "b", Confidence: 0.3},
		{Category: "c", Confidence: 0.5},
		{Category: "b", Confidence: 0.61234},
		{Category: "d", Confidence: 0.5},
		{Category: "e", Confidence: 0.1},
	}

	got := alternatives(signals, "a")
	assert.Equal(t, model.Alternatives{
		{Category: "b", Confidence: 0.612},
		{Category: "c", Confidence: 0.5},
		{Category: "d", Confidence: 0.5},
	}, got)

	assert.Equal(t, model.Alternatives{}, alternatives(signals[:1], "a"))
}

func TestPredictor_PredictBatch(t *testing.T) {
	p := newTestPredictor(nil)
	hist := history("Shell", model.CategoryTransport, 4)
	merchants := []string{"Starbucks", "Shell", "Shell Oil", "Netflix", "Ikea", "", "Whole Foods", "Lyft"}

	reqs := make([]Request, 0, 40)
	for i := 0; i < 40; i++ {
		reqs = append(reqs, Request{
			Merchant: merchants[i%len(merchants)],
			Amount:   float64(i * 7),
			History:  hist,
		})
	}

	var done atomic.Int64
	got, err := p.PredictBatch(context.Background(), reqs, BatchOptions{
		Workers:  3,
		Progress: func() { done.Add(1) },
	})
	require.NoError(t, err)
	require.Len(t, got, len(reqs))
	assert.Equal(t, int64(len(reqs)), done.Load())

	for i, req := range reqs {
		assert.Equal(t, p.Predict(req), got[i], fmt.Sprintf("request %d", i))
	}
}

func TestPredictor_PredictBatchEmpty(t *testing.T) {
	p := newTestPredictor(nil)
	got, err := p.PredictBatch(context.Background(), nil, BatchOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPredictor_PredictBatchCancelled(t *testing.T) {
	p := newTestPredictor(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.PredictBatch(ctx, []Request{{Merchant: "Starbucks", Amount: 6}}, BatchOptions{Workers: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
