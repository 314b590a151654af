package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/miguelangat/dividela/internal/model"
)

// SaveExpenses stores expenses and returns how many were inserted. Expenses
// without an ID get a random one; expenses whose ID already exists are skipped.
// A zero date is stored as the current time.
func (s *SQLiteStorage) SaveExpenses(ctx context.Context, expenses []model.Expense) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateExpenses(expenses); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO expenses (
			id, account_id, merchant, category, amount, description, date
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	inserted := 0
	for _, e := range expenses {
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		date := e.Date
		if date.IsZero() {
			date = now
		}

		res, execErr := stmt.ExecContext(ctx,
			id,
			strings.TrimSpace(e.AccountID),
			strings.TrimSpace(e.Merchant),
			string(e.Category),
			e.Amount,
			strings.TrimSpace(e.Description),
			date.UTC(),
		)
		if execErr != nil {
			return 0, fmt.Errorf("failed to save expense %s: %w", id, execErr)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit expenses: %w", err)
	}

	if skipped := len(expenses) - inserted; skipped > 0 {
		slog.Debug("Skipped duplicate expenses", "skipped", skipped)
	}
	return inserted, nil
}

// ListExpenses returns an account's expenses, oldest first. A limit of zero
// returns every expense.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, accountID string, limit int) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, ErrInvalidPageSize
	}

	query := `
		SELECT id, account_id, merchant, category, amount, description, date
		FROM expenses
		WHERE account_id = ?
		ORDER BY date ASC, rowid ASC`
	args := []any{accountID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		e, scanErr := scanExpense(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// GetHistory returns an account's expenses in the shape the predictor consumes.
// An account with no expenses yields an empty, non-nil history.
func (s *SQLiteStorage) GetHistory(ctx context.Context, accountID string) ([]model.HistoricalExpense, error) {
	expenses, err := s.ListExpenses(ctx, accountID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	history := make([]model.HistoricalExpense, len(expenses))
	for i, e := range expenses {
		history[i] = e.Historical()
	}
	return history, nil
}

// CountExpenses returns how many expenses an account has.
func (s *SQLiteStorage) CountExpenses(ctx context.Context, accountID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE account_id = ?`, accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

// DeleteAccountExpenses removes every expense of an account and returns how
// many were removed.
func (s *SQLiteStorage) DeleteAccountExpenses(ctx context.Context, accountID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE account_id = ?`, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expenses: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted expenses: %w", err)
	}
	return int(n), nil
}

func scanExpense(rows *sql.Rows) (model.Expense, error) {
	var (
		e        model.Expense
		category string
	)
	if err := rows.Scan(&e.ID, &e.AccountID, &e.Merchant, &category, &e.Amount, &e.Description, &e.Date); err != nil {
		return model.Expense{}, fmt.Errorf("failed to scan expense: %w", err)
	}
	e.Category = model.Category(category)
	return e, nil
}
