package catalog

import (
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/miguelangat/dividela/internal/model"
)

// Tables bundles the two read-only configuration tables the engine needs.
type Tables struct {
	Catalog      *Catalog
	Descriptions *DescriptionTable
}

// DefaultTables returns the built-in tables.
func DefaultTables() Tables {
	return Tables{
		Catalog:      Default(),
		Descriptions: DefaultDescriptionTable(),
	}
}

type ruleFile struct {
	Category      string            `mapstructure:"category"`
	Keywords      []string          `mapstructure:"keywords"`
	AmountRange   model.AmountRange `mapstructure:"amount_range"`
	TypicalAmount float64           `mapstructure:"typical_amount"`
}

type keywordFile struct {
	Category string   `mapstructure:"category"`
	Keywords []string `mapstructure:"keywords"`
}

type tablesFile struct {
	Fallback            string        `mapstructure:"fallback"`
	Rules               []ruleFile    `mapstructure:"rules"`
	DescriptionKeywords []keywordFile `mapstructure:"description_keywords"`
}

// LoadFile reads tables from a YAML, TOML or JSON file. Sections that are
// absent fall back to the built-in tables.
func LoadFile(path string) (Tables, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Tables{}, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return fromViper(v)
}

// Parse reads tables in the given format ("yaml", "toml", "json") from r.
func Parse(r io.Reader, format string) (Tables, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return Tables{}, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Tables, error) {
	var raw tablesFile
	if err := v.Unmarshal(&raw); err != nil {
		return Tables{}, fmt.Errorf("failed to decode catalog: %w", err)
	}

	tables := DefaultTables()

	if len(raw.Rules) > 0 || raw.Fallback != "" {
		fallback := model.Category(raw.Fallback)
		if fallback.IsNone() {
			fallback = model.CategoryOther
		}

		entries := DefaultEntries()
		if len(raw.Rules) > 0 {
			entries = make([]Entry, 0, len(raw.Rules))
			for _, r := range raw.Rules {
				entries = append(entries, Entry{
					Category: model.Category(r.Category),
					Rule: model.CategoryRule{
						Keywords:      r.Keywords,
						AmountRange:   r.AmountRange,
						TypicalAmount: r.TypicalAmount,
					},
				})
			}
		}

		c, err := New(fallback, entries...)
		if err != nil {
			return Tables{}, err
		}
		tables.Catalog = c
	}

	if len(raw.DescriptionKeywords) > 0 {
		sets := make([]KeywordSet, 0, len(raw.DescriptionKeywords))
		for _, k := range raw.DescriptionKeywords {
			sets = append(sets, KeywordSet{Category: model.Category(k.Category), Keywords: k.Keywords})
		}
		t, err := NewDescriptionTable(sets...)
		if err != nil {
			return Tables{}, err
		}
		tables.Descriptions = t
	}

	return tables, nil
}
