// Package engine turns matcher signals into a single category prediction.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/miguelangat/dividela/internal/catalog"
	"github.com/miguelangat/dividela/internal/matcher"
	"github.com/miguelangat/dividela/internal/model"
	"github.com/miguelangat/dividela/internal/similarity"
)

const (
	// DefaultConfidenceThreshold is the confidence below which no category is assigned.
	DefaultConfidenceThreshold = 0.55
	// DefaultWorkers is the batch concurrency used when none is configured.
	DefaultWorkers = 4

	maxAlternatives = 3
)

// Request is the input to a single prediction.
type Request struct {
	Merchant    string                    `json:"merchant"`
	Description string                    `json:"description"`
	History     []model.HistoricalExpense `json:"history,omitempty"`
	Amount      float64                   `json:"amount"`
}

// Options configures a Predictor.
type Options struct {
	Similarity          similarity.Metric
	Logger              *slog.Logger
	ConfidenceThreshold float64
	FuzzyThreshold      float64
}

// DefaultOptions returns the stock thresholds with bigram Dice similarity.
func DefaultOptions() Options {
	return Options{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		FuzzyThreshold:      matcher.DefaultFuzzyThreshold,
	}
}

// Predictor runs every matcher over a request and aggregates the results.
// It holds no mutable state and is safe for concurrent use.
type Predictor struct {
	generic     *matcher.GenericMatcher
	history     *matcher.HistoryMatcher
	description *matcher.DescriptionMatcher
	logger      *slog.Logger
	threshold   float64
}

// NewPredictor creates a predictor over the given tables. A nil table selects
// the built-in default. Zero option values select their defaults.
func NewPredictor(cat *catalog.Catalog, desc *catalog.DescriptionTable, opts Options) *Predictor {
	if cat == nil {
		cat = catalog.Default()
	}
	if desc == nil {
		desc = catalog.DefaultDescriptionTable()
	}
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Predictor{
		generic:     matcher.NewGenericMatcher(cat),
		history:     matcher.NewHistoryMatcher(opts.Similarity, opts.FuzzyThreshold),
		description: matcher.NewDescriptionMatcher(desc),
		logger:      opts.Logger,
		threshold:   opts.ConfidenceThreshold,
	}
}

// Explanation is a prediction together with the signals behind it.
type Explanation struct {
	Signals   []model.Prediction       `json:"signals"`
	Aggregate model.AggregateResult    `json:"aggregate"`
	Response  model.PredictionResponse `json:"response"`
}

// Predict returns the category prediction for req.
func (p *Predictor) Predict(req Request) model.PredictionResponse {
	return p.Explain(req).Response
}

// Explain predicts like Predict and also returns every matcher signal in the
// order it was collected.
func (p *Predictor) Explain(req Request) Explanation {
	signals := p.collect(req)
	agg := Aggregate(signals)

	resp := model.PredictionResponse{
		Category:     agg.Category,
		Source:       agg.Source,
		Confidence:   model.Round3(agg.Confidence),
		Alternatives: alternatives(signals, agg.Category),
	}
	if agg.Confidence < p.threshold {
		resp.Category = model.CategoryNone
		resp.BelowThreshold = true
	}

	p.logger.Debug("prediction complete",
		"merchant", req.Merchant,
		"signals", len(signals),
		"winner", agg.Category,
		"source", agg.Source,
		"confidence", resp.Confidence,
		"below_threshold", resp.BelowThreshold)

	return Explanation{
		Signals:   signals,
		Aggregate: agg,
		Response:  resp,
	}
}

// collect runs the matchers in trust order. The generic matcher always votes.
func (p *Predictor) collect(req Request) []model.Prediction {
	signals := make([]model.Prediction, 0, 4)
	if pred, ok := p.history.ExactMerchant(req.Merchant, req.History); ok {
		signals = append(signals, pred)
	}
	if pred, ok := p.history.FuzzyMerchant(req.Merchant, req.History); ok {
		signals = append(signals, pred)
	}
	if pred, ok := p.description.Match(req.Description, req.History); ok {
		signals = append(signals, pred)
	}
	return append(signals, p.generic.Match(req.Merchant, req.Amount, req.Description))
}

// alternatives keeps the strongest confidence per losing category.
func alternatives(signals []model.Prediction, winner model.Category) model.Alternatives {
	var alts model.Alternatives
	index := make(map[model.Category]int, len(signals))
	for _, s := range signals {
		if s.Category == winner {
			continue
		}
		if i, ok := index[s.Category]; ok {
			if s.Confidence > alts[i].Confidence {
				alts[i].Confidence = s.Confidence
			}
			continue
		}
		index[s.Category] = len(alts)
		alts = append(alts, model.Alternative{Category: s.Category, Confidence: s.Confidence})
	}
	alts.Sort()
	return alts.TopN(maxAlternatives)
}

// BatchOptions configures PredictBatch.
type BatchOptions struct {
	// Progress is called once per finished prediction. It may be called
	// from several goroutines at once.
	Progress func()
	Workers  int
}

// PredictBatch predicts every request concurrently. Results keep the order
// of reqs. It returns ctx.Err() if ctx is cancelled before all requests finish.
func (p *Predictor) PredictBatch(ctx context.Context, reqs []Request, opts BatchOptions) ([]model.PredictionResponse, error) {
	if ctx == nil {
		return nil, fmt.Errorf("failed to predict batch: nil context")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]model.PredictionResponse, len(reqs))
	work := make(chan int, len(reqs))
	for i := range reqs {
		work <- i
	}
	close(work)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers && w < len(reqs); w++ {
		workerID := w
		g.Go(func() error {
			for i := range work {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				results[i] = p.Predict(reqs[i])
				if opts.Progress != nil {
					opts.Progress()
				}
			}
			p.logger.Debug("batch worker finished", "worker_id", workerID)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to predict batch: %w", err)
	}
	return results, nil
}
