package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round3 rounds a score to three decimal places, half away from zero.
// NaN and infinities are returned unchanged.
func Round3(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(3).InexactFloat64()
}

// Clamp01 bounds x to [0, 1]. NaN maps to 0.
func Clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
