package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/miguelangat/dividela/internal/model"
)

// CSV import errors.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidRecord = errors.New("invalid record")
)

// Column names understood in a history CSV header.
const (
	ColumnMerchant    = "merchant"
	ColumnCategory    = "category"
	ColumnAmount      = "amount"
	ColumnDescription = "description"
	ColumnDate        = "date"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02.01.2006",
}

// HistoryReader reads categorized expenses from CSV. The first row is a
// header naming the columns; merchant, category and amount are required.
type HistoryReader struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// NewHistoryReader creates a comma-separated history reader.
func NewHistoryReader() *HistoryReader {
	return &HistoryReader{Comma: ','}
}

type columns map[string]int

func (c columns) get(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Read parses every row into an expense for accountID. Row numbers in
// errors are 1-based and count the header.
func (h *HistoryReader) Read(ctx context.Context, r io.Reader, accountID string) ([]model.Expense, error) {
	if ctx == nil {
		return nil, fmt.Errorf("failed to read history: nil context")
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if h.Comma != 0 {
		cr.Comma = h.Comma
	}

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var expenses []model.Expense
	for row := 2; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, readErr := cr.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", row, readErr)
		}
		if isBlankRecord(rec) {
			continue
		}

		e, parseErr := parseRecord(cols, rec, accountID)
		if parseErr != nil {
			return nil, fmt.Errorf("row %d: %w", row, parseErr)
		}
		expenses = append(expenses, e)
	}

	return expenses, nil
}

func parseHeader(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	var missing []string
	for _, required := range []string{ColumnMerchant, ColumnCategory, ColumnAmount} {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRecord(cols columns, rec []string, accountID string) (model.Expense, error) {
	e := model.Expense{
		AccountID:   accountID,
		Merchant:    cols.get(rec, ColumnMerchant),
		Category:    model.Category(strings.ToLower(cols.get(rec, ColumnCategory))),
		Description: cols.get(rec, ColumnDescription),
	}

	if e.Category.IsNone() {
		return model.Expense{}, fmt.Errorf("%w: category required", ErrInvalidRecord)
	}
	if e.Merchant == "" && e.Description == "" {
		return model.Expense{}, fmt.Errorf("%w: merchant or description required", ErrInvalidRecord)
	}

	amount, err := ParseAmount(cols.get(rec, ColumnAmount))
	if err != nil {
		return model.Expense{}, err
	}
	e.Amount = amount

	if raw := cols.get(rec, ColumnDate); raw != "" {
		date, dateErr := parseDate(raw)
		if dateErr != nil {
			return model.Expense{}, dateErr
		}
		e.Date = date
	}

	return e, nil
}

// ParseAmount parses a money amount such as "1,234.50", "$12" or "(8.20)".
// The result is the magnitude rounded to cents.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: amount required", ErrInvalidRecord)
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", " ", "").Replace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidRecord, raw)
	}
	return d.Abs().Round(2).InexactFloat64(), nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidRecord, raw)
}

func isBlankRecord(rec []string) bool {
	for _, field := range rec {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
