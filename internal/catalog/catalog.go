// Package catalog holds the immutable category configuration the prediction
// engine scores against: the Rule Catalog and the description keyword table.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/miguelangat/dividela/internal/model"
)

// ErrInvalidCatalog indicates a catalog or keyword table that cannot be scored.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Entry binds a category to its scoring rule.
type Entry struct {
	Category model.Category
	Rule     model.CategoryRule
}

// Catalog is the ordered, read-only Rule Catalog. Declaration order is the
// tie-break order for every ranking built from it.
type Catalog struct {
	fallback model.Category
	entries  []Entry
}

// New builds a catalog from entries in declaration order. Keywords are
// lowercased, trimmed and de-duplicated; the inputs are copied.
func New(fallback model.Category, entries ...Entry) (*Catalog, error) {
	var errs []error

	if fallback.IsNone() {
		errs = append(errs, fmt.Errorf("%w: fallback category is required", ErrInvalidCatalog))
	}

	seen := make(map[model.Category]bool, len(entries))
	copied := make([]Entry, 0, len(entries))

	for i, e := range entries {
		switch {
		case e.Category.IsNone():
			errs = append(errs, fmt.Errorf("%w: entry %d has no category", ErrInvalidCatalog, i))
			continue
		case e.Category == fallback:
			errs = append(errs, fmt.Errorf("%w: fallback category %q cannot carry a rule", ErrInvalidCatalog, e.Category))
			continue
		case seen[e.Category]:
			errs = append(errs, fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, e.Category))
			continue
		}
		seen[e.Category] = true

		rule := e.Rule
		rule.Keywords = normalizeKeywords(e.Rule.Keywords)
		if err := rule.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: category %q: %w", ErrInvalidCatalog, e.Category, err))
			continue
		}
		if !rule.TypicalInRange() {
			slog.Warn("Typical amount outside of amount range",
				"category", e.Category,
				"typical", rule.TypicalAmount,
				"min", rule.AmountRange.Min,
				"max", rule.AmountRange.Max)
		}

		copied = append(copied, Entry{Category: e.Category, Rule: rule})
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &Catalog{fallback: fallback, entries: copied}, nil
}

// Fallback returns the category emitted when no rule scores high enough.
func (c *Catalog) Fallback() model.Category {
	return c.fallback
}

// Len returns the number of rules.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a deep copy of the rules in declaration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = Entry{Category: e.Category, Rule: copyRule(e.Rule)}
	}
	return out
}

// Categories returns the rule categories in declaration order.
func (c *Catalog) Categories() []model.Category {
	out := make([]model.Category, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Category
	}
	return out
}

// Rule looks up the rule for category.
func (c *Catalog) Rule(category model.Category) (model.CategoryRule, bool) {
	for _, e := range c.entries {
		if e.Category == category {
			return copyRule(e.Rule), true
		}
	}
	return model.CategoryRule{}, false
}

func copyRule(r model.CategoryRule) model.CategoryRule {
	r.Keywords = append([]string(nil), r.Keywords...)
	return r
}

// normalizeKeywords lowercases and trims keywords, dropping duplicates while
// keeping first-seen order. Empty keywords are kept so validation reports them.
func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}
