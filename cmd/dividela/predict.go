package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/miguelangat/dividela/internal/cli"
	"github.com/miguelangat/dividela/internal/common"
	"github.com/miguelangat/dividela/internal/engine"
	"github.com/miguelangat/dividela/internal/model"
)

func predictCmd() *cobra.Command {
	var (
		merchant    string
		description string
		account     string
		amount      float64
		explain     bool
		asJSON      bool
		noHistory   bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the category of one expense",
		Long: `Predict a category from an expense's merchant, amount and description,
using the account's categorized history when available.

Examples:
  dividela predict --merchant "Starbucks" --amount 6
  dividela predict --merchant "Whole Foods" --amount 80 --account household --explain
  dividela predict --description "dinner with friends" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			predictor, err := newPredictor(cfg)
			if err != nil {
				return err
			}

			req := engine.Request{
				Merchant:    merchant,
				Description: description,
				Amount:      amount,
			}

			if !noHistory {
				store, err := initStorage(cmd.Context(), cfg)
				if err != nil {
					return common.NewUserError("Could not open history database", err)
				}
				defer func() { _ = store.Close() }()

				history, err := store.GetHistory(cmd.Context(), account)
				if err != nil {
					return err
				}
				req.History = history
			}

			exp := predictor.Explain(req)
			common.LogDebug("Predicted category", common.Fields{
				"merchant": merchant,
				"account":  account,
				"result":   responseSummary(exp.Response),
			})

			out := cmd.OutOrStdout()
			switch {
			case asJSON && explain:
				return writeJSON(out, exp)
			case asJSON:
				return writeJSON(out, exp.Response)
			case explain:
				return cli.RenderExplanation(out, merchant, exp, cfg.Prediction.ConfidenceThreshold)
			default:
				return cli.RenderPrediction(out, merchant, exp.Response, cfg.Prediction.ConfidenceThreshold)
			}
		},
	}

	cmd.Flags().StringVarP(&merchant, "merchant", "m", "", "merchant name")
	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "expense amount (0 or less means unknown)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "free-text description")
	cmd.Flags().StringVar(&account, "account", defaultAccount, "account whose history informs the prediction")
	cmd.Flags().BoolVar(&explain, "explain", false, "show every signal behind the prediction")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a styled summary")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "ignore stored history")

	return cmd
}

// responseSummary is a one-line description used in logs.
func responseSummary(resp model.PredictionResponse) string {
	if resp.BelowThreshold {
		return fmt.Sprintf("uncategorized (%.3f via %s)", resp.Confidence, resp.Source)
	}
	return fmt.Sprintf("%s (%.3f via %s)", resp.Category, resp.Confidence, resp.Source)
}
