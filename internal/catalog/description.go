package catalog

import (
	"errors"
	"fmt"

	"github.com/miguelangat/dividela/internal/model"
)

// KeywordSet lists the description keywords that point at one category.
type KeywordSet struct {
	Category model.Category `json:"category"`
	Keywords []string       `json:"keywords"`
}

// DescriptionTable is the ordered, read-only keyword-to-category table used
// on free-text descriptions. It is independent of the Rule Catalog.
type DescriptionTable struct {
	sets []KeywordSet
}

// NewDescriptionTable builds a table in declaration order.
func NewDescriptionTable(sets ...KeywordSet) (*DescriptionTable, error) {
	var errs []error
	seen := make(map[model.Category]bool, len(sets))
	copied := make([]KeywordSet, 0, len(sets))

	for i, s := range sets {
		if s.Category.IsNone() {
			errs = append(errs, fmt.Errorf("%w: keyword set %d has no category", ErrInvalidCatalog, i))
			continue
		}
		if seen[s.Category] {
			errs = append(errs, fmt.Errorf("%w: duplicate keyword set for %q", ErrInvalidCatalog, s.Category))
			continue
		}
		seen[s.Category] = true

		keywords := normalizeKeywords(s.Keywords)
		for _, kw := range keywords {
			if kw == "" {
				errs = append(errs, fmt.Errorf("%w: empty description keyword for %q", ErrInvalidCatalog, s.Category))
				break
			}
		}
		copied = append(copied, KeywordSet{Category: s.Category, Keywords: keywords})
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &DescriptionTable{sets: copied}, nil
}

// Len returns the number of keyword sets.
func (t *DescriptionTable) Len() int {
	return len(t.sets)
}

// Sets returns a deep copy of the keyword sets in declaration order.
func (t *DescriptionTable) Sets() []KeywordSet {
	out := make([]KeywordSet, len(t.sets))
	for i, s := range t.sets {
		out[i] = KeywordSet{Category: s.Category, Keywords: append([]string(nil), s.Keywords...)}
	}
	return out
}
