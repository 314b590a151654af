package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/miguelangat/dividela/internal/cli"
	"github.com/miguelangat/dividela/internal/common"
	"github.com/miguelangat/dividela/internal/engine"
	"github.com/miguelangat/dividela/internal/importer"
	"github.com/miguelangat/dividela/internal/model"
)

// batchLine is one statement line and its prediction in JSON output.
type batchLine struct {
	Prediction  model.PredictionResponse `json:"prediction"`
	Date        string                   `json:"date,omitempty"`
	ID          string                   `json:"id"`
	Merchant    string                   `json:"merchant"`
	Description string                   `json:"description,omitempty"`
	Amount      float64                  `json:"amount"`
}

func batchCmd() *cobra.Command {
	var (
		account        string
		workers        int
		asJSON         bool
		includeCredits bool
		save           bool
		quiet          bool
	)

	cmd := &cobra.Command{
		Use:   "batch <statement.ofx>",
		Short: "Predict categories for every line of an OFX/QFX statement",
		Long: `Read a bank or credit card statement and predict a category for each debit,
using the account's categorized history.

With --save, lines that received a category are added to the history so
future predictions learn from them.

Examples:
  dividela batch ~/Downloads/checking_march.qfx
  dividela batch statement.ofx --account household --save
  dividela batch statement.ofx --json > predictions.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Batch.Workers
			}

			predictor, err := newPredictor(cfg)
			if err != nil {
				return err
			}

			lines, err := readStatement(cmd, args[0], includeCredits)
			if err != nil {
				return err
			}

			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return common.NewUserError("Could not open history database", err)
			}
			defer func() { _ = store.Close() }()

			history, err := store.GetHistory(cmd.Context(), account)
			if err != nil {
				return err
			}

			reqs := make([]engine.Request, len(lines))
			for i, line := range lines {
				reqs[i] = engine.Request{
					Merchant:    line.Merchant,
					Description: line.Description,
					Amount:      line.Amount,
					History:     history,
				}
			}

			interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Batch prediction")
			ctx := interrupts.HandleInterrupts(cmd.Context())
			defer interrupts.Stop()

			opts := engine.BatchOptions{Workers: workers}
			if !asJSON && !quiet && len(reqs) > 0 {
				opts.Progress = cli.ProgressFunc(cli.NewBatchProgress(cmd.ErrOrStderr(), len(reqs)))
			}

			resps, err := predictor.PredictBatch(ctx, reqs, opts)
			if err != nil {
				if interrupts.WasInterrupted() {
					return nil
				}
				return err
			}

			if save {
				saved, err := saveCategorized(cmd, store, account, lines, resps)
				if err != nil {
					return err
				}
				common.LogInfo("Saved categorized lines to history", common.Fields{
					"account": account,
					"saved":   saved,
				})
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), batchJSON(lines, resps))
			}
			return cli.RenderBatch(cmd.OutOrStdout(), lines, resps, cfg.Prediction.ConfidenceThreshold)
		},
	}

	cmd.Flags().StringVar(&account, "account", defaultAccount, "account whose history informs predictions")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "number of parallel predictions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&includeCredits, "include-credits", false, "also predict deposits and refunds")
	cmd.Flags().BoolVar(&save, "save", false, "add categorized lines to the account history")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")

	return cmd
}

func readStatement(cmd *cobra.Command, path string, includeCredits bool) ([]model.StatementLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewUserError("Could not open statement "+path, err)
	}
	defer func() { _ = f.Close() }()

	all, err := importer.NewStatementReader().Read(cmd.Context(), f)
	if err != nil {
		return nil, common.NewUserError("Could not read statement "+path, err)
	}

	if includeCredits {
		return all, nil
	}
	lines := make([]model.StatementLine, 0, len(all))
	for _, line := range all {
		if !line.Credit {
			lines = append(lines, line)
		}
	}
	if skipped := len(all) - len(lines); skipped > 0 {
		slog.Debug("Skipped credit lines", "count", skipped)
	}
	return lines, nil
}

type expenseSaver interface {
	SaveExpenses(ctx context.Context, expenses []model.Expense) (int, error)
}

// saveCategorized stores every line that received a category. Statement
// transaction IDs keep repeated imports from duplicating history.
func saveCategorized(cmd *cobra.Command, store expenseSaver, account string, lines []model.StatementLine, resps []model.PredictionResponse) (int, error) {
	var expenses []model.Expense
	for i, line := range lines {
		if resps[i].Category.IsNone() {
			continue
		}
		id := ""
		if line.ID != "" {
			id = fmt.Sprintf("%s:%s:%s", account, line.AccountID, line.ID)
		}
		expenses = append(expenses, model.Expense{
			ID:          id,
			AccountID:   account,
			Merchant:    line.Merchant,
			Category:    resps[i].Category,
			Description: line.Description,
			Amount:      line.Amount,
			Date:        line.Date,
		})
	}
	if len(expenses) == 0 {
		return 0, nil
	}

	saved, err := store.SaveExpenses(cmd.Context(), expenses)
	if err != nil {
		return 0, fmt.Errorf("failed to save categorized lines: %w", err)
	}
	return saved, nil
}

func batchJSON(lines []model.StatementLine, resps []model.PredictionResponse) []batchLine {
	out := make([]batchLine, len(lines))
	for i, line := range lines {
		out[i] = batchLine{
			ID:          line.ID,
			Merchant:    line.Merchant,
			Description: line.Description,
			Amount:      line.Amount,
			Prediction:  resps[i],
		}
		if !line.Date.IsZero() {
			out[i].Date = line.Date.Format("2006-01-02")
		}
	}
	return out
}
