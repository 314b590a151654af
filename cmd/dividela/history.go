package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/miguelangat/dividela/internal/cli"
	"github.com/miguelangat/dividela/internal/common"
	"github.com/miguelangat/dividela/internal/importer"
	"github.com/miguelangat/dividela/internal/model"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the categorized expense history",
		Long: `The history holds expenses you already categorized. Predictions for an
account learn from that account's history.`,
	}

	cmd.AddCommand(historyImportCmd())
	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyClearCmd())

	return cmd
}

func historyImportCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "import <expenses.csv>",
		Short: "Import categorized expenses from a CSV file",
		Long: `Import categorized expenses from a CSV file with a header row.

Required columns: merchant, category, amount.
Optional columns: id, date, description.

Rows whose id was imported before are skipped.

Examples:
  dividela history import expenses.csv
  dividela history import shared.csv --account household`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return common.NewUserError("Could not open "+args[0], err)
			}
			defer func() { _ = f.Close() }()

			expenses, err := importer.NewHistoryReader().Read(cmd.Context(), f, account)
			if err != nil {
				return common.NewUserError("Could not read "+args[0], err)
			}

			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return common.NewUserError("Could not open history database", err)
			}
			defer func() { _ = store.Close() }()

			saved, err := store.SaveExpenses(cmd.Context(), expenses)
			if err != nil {
				return fmt.Errorf("failed to import history: %w", err)
			}

			common.LogInfo("Imported history", common.Fields{
				"account": account,
				"read":    len(expenses),
				"saved":   saved,
			})

			msg := fmt.Sprintf("Imported %d of %d expenses into %q", saved, len(expenses), account)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return err
		},
	}

	cmd.Flags().StringVar(&account, "account", defaultAccount, "account to import into")
	return cmd
}

func historyListCmd() *cobra.Command {
	var (
		account string
		limit   int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return common.NewUserError("--limit cannot be negative", common.ErrInvalidInput)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return common.NewUserError("Could not open history database", err)
			}
			defer func() { _ = store.Close() }()

			expenses, err := store.ListExpenses(cmd.Context(), account, limit)
			if err != nil {
				return err
			}

			if asJSON {
				history := make([]model.HistoricalExpense, len(expenses))
				for i, e := range expenses {
					history[i] = e.Historical()
				}
				return writeJSON(cmd.OutOrStdout(), history)
			}
			return cli.RenderHistory(cmd.OutOrStdout(), expenses)
		},
	}

	cmd.Flags().StringVar(&account, "account", defaultAccount, "account to list")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of expenses to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the history as JSON")
	return cmd
}

func historyClearCmd() *cobra.Command {
	var (
		account string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored expense of an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				return common.NewUserError(
					fmt.Sprintf("Refusing to delete the history of %q without --force", account),
					common.ErrInvalidInput)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return common.NewUserError("Could not open history database", err)
			}
			defer func() { _ = store.Close() }()

			deleted, err := store.DeleteAccountExpenses(cmd.Context(), account)
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Deleted %d expenses from %q", deleted, account)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return err
		},
	}

	cmd.Flags().StringVar(&account, "account", defaultAccount, "account to clear")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "delete without confirmation")
	return cmd
}
