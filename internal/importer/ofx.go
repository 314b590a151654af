// Package importer reads expense history and bank statements from files.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/miguelangat/dividela/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// merchantPrefixes are card-processor prefixes stripped from statement names.
var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// genericNames are statement names too vague to identify a merchant.
var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// StatementReader reads OFX/QFX bank and credit card statements.
type StatementReader struct{}

// NewStatementReader creates a new OFX statement reader.
func NewStatementReader() *StatementReader {
	return &StatementReader{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (r *StatementReader) parse(ctx context.Context, reader io.Reader) (*ofxgo.Response, error) {
	if ctx == nil {
		return nil, fmt.Errorf("failed to read statement: nil context")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// Read parses an OFX/QFX statement and returns its lines in file order.
func (r *StatementReader) Read(ctx context.Context, reader io.Reader) ([]model.StatementLine, error) {
	resp, err := r.parse(ctx, reader)
	if err != nil {
		return nil, err
	}

	var lines []model.StatementLine
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			lines = append(lines, convertTransactions(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			lines = append(lines, convertTransactions(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))...)
		}
	}

	slog.Info("Parsed OFX file",
		"total_lines", len(lines),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return lines, nil
}

// Accounts returns the sorted, unique account IDs in a statement.
func (r *StatementReader) Accounts(ctx context.Context, reader io.Reader) ([]string, error) {
	resp, err := r.parse(ctx, reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			seen[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			seen[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(seen))
	for acct := range seen {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}

func convertTransactions(list *ofxgo.TransactionList, accountID string) []model.StatementLine {
	if list == nil {
		return nil
	}

	lines := make([]model.StatementLine, 0, len(list.Transactions))
	for _, tx := range list.Transactions {
		lines = append(lines, convertTransaction(tx, accountID))
	}
	return lines
}

// convertTransaction maps an OFX transaction to a statement line. OFX debits
// are negative; the line keeps the magnitude and records the direction.
func convertTransaction(tx ofxgo.Transaction, accountID string) model.StatementLine {
	amount, _ := tx.TrnAmt.Float64()
	credit := amount > 0
	if amount < 0 {
		amount = -amount
	}

	return model.StatementLine{
		ID:          string(tx.FiTID),
		AccountID:   accountID,
		Date:        tx.DtPosted.Time,
		Merchant:    extractMerchantName(tx),
		Description: strings.TrimSpace(string(tx.Memo)),
		Type:        fmt.Sprintf("%v", tx.TrnType),
		Amount:      amount,
		Credit:      credit,
	}
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}

	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}
