// Package similarity provides pluggable string-similarity metrics for fuzzy
// merchant matching. Every metric is symmetric and bounded to [0, 1].
package similarity

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/agnivade/levenshtein"
)

// Metric rates how similar two strings are, from 0 (unrelated) to 1 (identical).
type Metric interface {
	Compare(a, b string) float64
}

// MetricFunc adapts a plain function to Metric.
type MetricFunc func(a, b string) float64

// Compare implements Metric.
func (f MetricFunc) Compare(a, b string) float64 {
	return f(a, b)
}

// Metric names accepted by New.
const (
	MetricDice        = "dice"
	MetricLevenshtein = "levenshtein"
)

// New returns the metric registered under name.
func New(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MetricDice:
		return NewDice(), nil
	case MetricLevenshtein:
		return Levenshtein{}, nil
	default:
		return nil, fmt.Errorf("unknown similarity metric %q", name)
	}
}

// Dice is the bigram Sørensen–Dice coefficient over whitespace-stripped input.
type Dice struct {
	metric *metrics.SorensenDice
}

// NewDice creates a bigram Dice metric.
func NewDice() *Dice {
	m := metrics.NewSorensenDice()
	m.NgramSize = 2
	return &Dice{metric: m}
}

// Compare implements Metric. Identical strings rate 1; strings shorter than
// one bigram rate 0 against anything else.
func (d *Dice) Compare(a, b string) float64 {
	a, b = stripSpace(a), stripSpace(b)
	if a == b {
		return 1
	}
	if utf8.RuneCountInString(a) < 2 || utf8.RuneCountInString(b) < 2 {
		return 0
	}
	return clamp(strutil.Similarity(a, b, d.metric))
}

// Levenshtein rates 1 - editDistance / longerLength.
type Levenshtein struct{}

// Compare implements Metric.
func (Levenshtein) Compare(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	dist := levenshtein.ComputeDistance(a, b)
	return clamp(1 - float64(dist)/float64(longest))
}

// Match is the best candidate found by BestMatch.
type Match struct {
	Target string
	Index  int
	Rating float64
}

// BestMatch rates query against every candidate and returns the highest
// rated one. Ties go to the earliest candidate. ok is false when there are
// no candidates.
func BestMatch(m Metric, query string, candidates []string) (best Match, ok bool) {
	for i, candidate := range candidates {
		rating := clamp(m.Compare(query, candidate))
		if !ok || rating > best.Rating {
			best = Match{Target: candidate, Index: i, Rating: rating}
			ok = true
		}
	}
	return best, ok
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func clamp(x float64) float64 {
	switch {
	case x != x, x < 0: // NaN or negative
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
