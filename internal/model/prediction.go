package model

// Source identifies which matcher produced a Prediction.
type Source string

// Prediction sources.
const (
	SourceExactMerchant Source = "exact_merchant"
	SourceFuzzyMerchant Source = "fuzzy_merchant"
	SourceKeyword       Source = "keyword"
	SourceGeneric       Source = "generic"
	SourceNone          Source = "none"
)

// Prediction is a single matcher's vote for a category.
type Prediction struct {
	Category   Category `json:"category"`
	Source     Source   `json:"source"`
	Confidence float64  `json:"confidence"`

	// Exact and fuzzy merchant matches.
	MatchedMerchant string  `json:"matchedMerchant,omitempty"`
	Similarity      float64 `json:"similarity,omitempty"`
	DominantCount   int     `json:"dominantCount,omitempty"`
	TotalMatches    int     `json:"totalMatches,omitempty"`

	// Description keyword matches.
	MatchedKeywords []string `json:"matchedKeywords,omitempty"`

	// Generic matcher runners-up.
	Alternatives Alternatives `json:"alternatives,omitempty"`
}

// AggregateResult is the ranked decision over a list of predictions.
type AggregateResult struct {
	Category   Category `json:"category"`
	Source     Source   `json:"source"`
	Confidence float64  `json:"confidence"`
	// Hits is how many predictions nominated Category.
	Hits int `json:"hits"`
	// AverageScore is the mean weighted score of the winning category.
	// It is informational only and does not feed Confidence.
	AverageScore float64 `json:"averageScore"`
}

// PredictionResponse is the final, fully populated engine output.
type PredictionResponse struct {
	Category       Category     `json:"category"`
	Source         Source       `json:"source"`
	Alternatives   Alternatives `json:"alternatives"`
	Confidence     float64      `json:"confidence"`
	BelowThreshold bool         `json:"belowThreshold"`
}
