package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/miguelangat/dividela/internal/catalog"
	"github.com/miguelangat/dividela/internal/common"
	"github.com/miguelangat/dividela/internal/config"
	"github.com/miguelangat/dividela/internal/engine"
	"github.com/miguelangat/dividela/internal/similarity"
	"github.com/miguelangat/dividela/internal/storage"
)

const defaultAccount = "default"

// loadConfig reads the validated configuration from the global viper instance.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, common.NewUserError("Invalid configuration", err)
	}
	return cfg, nil
}

// initStorage opens the history database and applies migrations.
func initStorage(ctx context.Context, cfg config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadTables returns the configured category tables, or the built-in ones.
func loadTables(cfg config.Config) (catalog.Tables, error) {
	if cfg.Catalog.Path == "" {
		return catalog.DefaultTables(), nil
	}
	tables, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return catalog.Tables{}, common.NewUserError("Could not load catalog "+cfg.Catalog.Path, err)
	}
	return tables, nil
}

// newPredictor builds a predictor from configuration.
func newPredictor(cfg config.Config) (*engine.Predictor, error) {
	tables, err := loadTables(cfg)
	if err != nil {
		return nil, err
	}

	metric, err := similarity.New(cfg.Prediction.SimilarityMetric)
	if err != nil {
		return nil, common.NewUserError("Invalid configuration", err)
	}

	return engine.NewPredictor(tables.Catalog, tables.Descriptions, engine.Options{
		Similarity:          metric,
		ConfidenceThreshold: cfg.Prediction.ConfidenceThreshold,
		FuzzyThreshold:      cfg.Prediction.FuzzyThreshold,
	}), nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
