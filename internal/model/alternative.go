package model

import "sort"

// Alternative is a runner-up category guess.
type Alternative struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

// Alternatives is an ordered list of runner-up guesses.
type Alternatives []Alternative

// Len implements sort.Interface.
func (a Alternatives) Len() int {
	return len(a)
}

// Less implements sort.Interface - higher confidence comes first.
func (a Alternatives) Less(i, j int) bool {
	return a[i].Confidence > a[j].Confidence
}

// Swap implements sort.Interface.
func (a Alternatives) Swap(i, j int) {
	a[i], a[j] = a[j], a[i]
}

// Sort orders by descending confidence. Equal confidences keep their
// insertion order.
func (a Alternatives) Sort() {
	sort.Stable(a)
}

// TopN returns a rounded copy of the first n entries. It never returns nil
// so the list always encodes as a JSON array.
func (a Alternatives) TopN(n int) Alternatives {
	if n <= 0 {
		return Alternatives{}
	}
	if n > len(a) {
		n = len(a)
	}

	result := make(Alternatives, n)
	for i := 0; i < n; i++ {
		result[i] = Alternative{
			Category:   a[i].Category,
			Confidence: Round3(a[i].Confidence),
		}
	}
	return result
}

// Contains reports whether the list mentions category.
func (a Alternatives) Contains(category Category) bool {
	for _, alt := range a {
		if alt.Category == category {
			return true
		}
	}
	return false
}
