package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/miguelangat/dividela/internal/common"
)

// EnvPrefix prefixes environment variable overrides, e.g. DIVIDELA_BATCH_WORKERS.
const EnvPrefix = "DIVIDELA"

// Configuration keys.
const (
	KeyLogLevel            = "logging.level"
	KeyLogFormat           = "logging.format"
	KeyDatabasePath        = "database.path"
	KeyCatalogPath         = "catalog.path"
	KeyConfidenceThreshold = "prediction.confidence_threshold"
	KeyFuzzyThreshold      = "prediction.fuzzy_threshold"
	KeySimilarityMetric    = "prediction.similarity_metric"
	KeyBatchWorkers        = "batch.workers"
)

// Config is the application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Batch      BatchConfig      `mapstructure:"batch"`
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig locates the expense history database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CatalogConfig optionally replaces the built-in category tables.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// PredictionConfig tunes the predictor.
type PredictionConfig struct {
	SimilarityMetric    string  `mapstructure:"similarity_metric"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	FuzzyThreshold      float64 `mapstructure:"fuzzy_threshold"`
}

// BatchConfig tunes statement batch prediction.
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// DefaultDatabasePath returns the default history database location.
func DefaultDatabasePath() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "dividela", "dividela.db")
	}
	return ExpandPath("~/.local/share/dividela/dividela.db")
}

// SetDefaults registers default values and environment overrides on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, common.LogFormatConsole)
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath())
	v.SetDefault(KeyCatalogPath, "")
	v.SetDefault(KeyConfidenceThreshold, 0.55)
	v.SetDefault(KeyFuzzyThreshold, 0.6)
	v.SetDefault(KeySimilarityMetric, "dice")
	v.SetDefault(KeyBatchWorkers, 4)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load applies defaults to v, decodes it and validates the result.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Catalog.Path = ExpandPath(cfg.Catalog.Path)
	cfg.Prediction.SimilarityMetric = strings.ToLower(strings.TrimSpace(cfg.Prediction.SimilarityMetric))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case common.LogFormatConsole, common.LogFormatJSON:
	default:
		return fmt.Errorf("%w: %s must be console or json, got %q", common.ErrInvalidConfig, KeyLogFormat, c.Logging.Format)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	if c.Prediction.ConfidenceThreshold <= 0 || c.Prediction.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: %s must be within (0, 1], got %g", common.ErrInvalidConfig, KeyConfidenceThreshold, c.Prediction.ConfidenceThreshold)
	}
	if err := checkUnit(KeyFuzzyThreshold, c.Prediction.FuzzyThreshold); err != nil {
		return err
	}
	switch c.Prediction.SimilarityMetric {
	case "dice", "levenshtein":
	default:
		return fmt.Errorf("%w: %s must be dice or levenshtein, got %q", common.ErrInvalidConfig, KeySimilarityMetric, c.Prediction.SimilarityMetric)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("%w: %s must be at least 1, got %d", common.ErrInvalidConfig, KeyBatchWorkers, c.Batch.Workers)
	}
	return nil
}

func checkUnit(key string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be within [0, 1], got %g", common.ErrInvalidConfig, key, v)
	}
	return nil
}
