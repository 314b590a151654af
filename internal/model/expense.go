package model

import "time"

// HistoricalExpense is a past, already categorized expense supplied by the host.
type HistoricalExpense struct {
	Merchant    string   `json:"merchant"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
	Amount      float64  `json:"amount"`
}

// Expense is a stored expense record owned by an account.
type Expense struct {
	Date        time.Time
	ID          string
	AccountID   string
	Merchant    string
	Category    Category
	Description string
	Amount      float64
}

// Historical projects the record onto the engine's history shape.
func (e Expense) Historical() HistoricalExpense {
	return HistoricalExpense{
		Merchant:    e.Merchant,
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount,
	}
}

// StatementLine is one transaction read from a bank statement, awaiting a category.
type StatementLine struct {
	Date        time.Time
	ID          string
	AccountID   string
	Merchant    string
	Description string
	Type        string
	Amount      float64
	// Credit marks money flowing into the account.
	Credit bool
}
