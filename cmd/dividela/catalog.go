package main

import (
	"github.com/spf13/cobra"

	"github.com/miguelangat/dividela/internal/catalog"
	"github.com/miguelangat/dividela/internal/cli"
	"github.com/miguelangat/dividela/internal/model"
)

type catalogRuleJSON struct {
	Category model.Category `json:"category"`
	model.CategoryRule
}

type catalogJSON struct {
	Fallback    model.Category       `json:"fallback"`
	Rules       []catalogRuleJSON    `json:"rules"`
	Description []catalog.KeywordSet `json:"descriptionKeywords"`
}

func catalogCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the category rules and description keywords in use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			tables, err := loadTables(cfg)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tablesJSON(tables))
			}
			return cli.RenderCatalog(cmd.OutOrStdout(), tables.Catalog, tables.Descriptions)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tables as JSON")
	return cmd
}

func tablesJSON(tables catalog.Tables) catalogJSON {
	out := catalogJSON{
		Fallback:    tables.Catalog.Fallback(),
		Description: tables.Descriptions.Sets(),
	}
	for _, e := range tables.Catalog.Entries() {
		out.Rules = append(out.Rules, catalogRuleJSON{Category: e.Category, CategoryRule: e.Rule})
	}
	return out
}
