package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/miguelangat/dividela/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	assert.NoError(t, validateString("acc", "accountID"))
	assert.ErrorIs(t, validateString("", "accountID"), ErrEmptyString)
	assert.ErrorIs(t, validateString(" \t", "accountID"), ErrEmptyString)
	assert.ErrorContains(t, validateString("", "accountID"), "accountID")
}

func TestValidateExpenses(t *testing.T) {
	valid := model.Expense{AccountID: "acc", Merchant: "Shell", Category: model.CategoryTransport}

	tests := []struct {
		name     string
		expenses []model.Expense
		wantErr  error
		contains string
	}{
		{
			name:     "valid",
			expenses: []model.Expense{valid},
		},
		{
			name:     "description only",
			expenses: []model.Expense{{AccountID: "acc", Description: "rent", Category: model.CategoryHome}},
		},
		{
			name:    "empty slice",
			wantErr: ErrEmptySlice,
		},
		{
			name:     "missing account",
			expenses: []model.Expense{valid, {Merchant: "Shell", Category: model.CategoryTransport}},
			wantErr:  ErrInvalidExpense,
			contains: "index 1",
		},
		{
			name:     "missing category",
			expenses: []model.Expense{{AccountID: "acc", Merchant: "Shell"}},
			wantErr:  ErrInvalidExpense,
			contains: "category",
		},
		{
			name:     "nothing to match on",
			expenses: []model.Expense{{AccountID: "acc", Category: model.CategoryFood}},
			wantErr:  ErrInvalidExpense,
			contains: "merchant or a description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateExpenses(tt.expenses)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.contains != "" {
				assert.ErrorContains(t, err, tt.contains)
			}
		})
	}
}
