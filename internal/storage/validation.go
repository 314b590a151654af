package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/miguelangat/dividela/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrEmptySlice      = errors.New("slice cannot be empty")
	ErrInvalidExpense  = errors.New("invalid expense")
	ErrInvalidPageSize = errors.New("page size must not be negative")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExpenses validates a slice of expenses.
func validateExpenses(expenses []model.Expense) error {
	if len(expenses) == 0 {
		return fmt.Errorf("%w: expenses", ErrEmptySlice)
	}

	for i := range expenses {
		if err := validateExpense(&expenses[i]); err != nil {
			return fmt.Errorf("expense at index %d: %w", i, err)
		}
	}
	return nil
}

// validateExpense validates a single expense.
func validateExpense(e *model.Expense) error {
	if strings.TrimSpace(e.AccountID) == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidExpense)
	}
	if e.Category.IsNone() {
		return fmt.Errorf("%w: missing category", ErrInvalidExpense)
	}
	if strings.TrimSpace(e.Merchant) == "" && strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("%w: needs a merchant or a description", ErrInvalidExpense)
	}
	return nil
}
