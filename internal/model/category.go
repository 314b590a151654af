// Package model defines the core domain models used throughout the application.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Category labels a type of spending. The zero value means "no category".
type Category string

// Built-in categories.
const (
	CategoryNone      Category = ""
	CategoryGroceries Category = "groceries"
	CategoryFood      Category = "food"
	CategoryTransport Category = "transport"
	CategoryHome      Category = "home"
	CategoryFun       Category = "fun"
	CategoryOther     Category = "other"
)

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsNone reports whether c carries no category.
func (c Category) IsNone() bool {
	return c == CategoryNone
}

// MarshalJSON encodes CategoryNone as null.
func (c Category) MarshalJSON() ([]byte, error) {
	if c.IsNone() {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

// UnmarshalJSON decodes null into CategoryNone.
func (c *Category) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = CategoryNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode category: %w", err)
	}
	*c = Category(s)
	return nil
}

// AmountRange is the plausible amount band for a category.
type AmountRange struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

// Contains reports whether amount lies within the inclusive range.
func (r AmountRange) Contains(amount float64) bool {
	return amount >= r.Min && amount <= r.Max
}

// Width returns Max - Min.
func (r AmountRange) Width() float64 {
	return r.Max - r.Min
}

// CategoryRule is the static scoring configuration for one category.
type CategoryRule struct {
	Keywords      []string    `json:"keywords"`
	AmountRange   AmountRange `json:"amount_range"`
	TypicalAmount float64     `json:"typical_amount"`
}

// Rule validation errors.
var (
	ErrEmptyKeyword       = errors.New("keyword cannot be empty")
	ErrKeywordNotLower    = errors.New("keyword must be lowercase")
	ErrInvalidAmountRange = errors.New("invalid amount range")
)

// Validate ensures the rule can be scored without dividing by zero.
// The typical amount is allowed to fall outside the range; see TypicalInRange.
func (r *CategoryRule) Validate() error {
	var errs []error

	for i, kw := range r.Keywords {
		if strings.TrimSpace(kw) == "" {
			errs = append(errs, fmt.Errorf("%w at index %d", ErrEmptyKeyword, i))
			continue
		}
		if kw != strings.ToLower(strings.TrimSpace(kw)) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrKeywordNotLower, kw))
		}
	}

	if r.AmountRange.Min < 0 {
		errs = append(errs, fmt.Errorf("%w: min %.2f is negative", ErrInvalidAmountRange, r.AmountRange.Min))
	}
	if r.AmountRange.Max <= r.AmountRange.Min {
		errs = append(errs, fmt.Errorf("%w: max %.2f must exceed min %.2f",
			ErrInvalidAmountRange, r.AmountRange.Max, r.AmountRange.Min))
	}

	return errors.Join(errs...)
}

// TypicalInRange reports whether Min < TypicalAmount < Max.
func (r *CategoryRule) TypicalInRange() bool {
	return r.AmountRange.Min < r.TypicalAmount && r.TypicalAmount < r.AmountRange.Max
}
