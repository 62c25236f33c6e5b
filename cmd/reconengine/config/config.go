// Package config loads CLI configuration from file, environment and flags
// via viper.
package config

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"report-reconciliation-engine/internal/reconciler"
	engerrors "report-reconciliation-engine/pkg/errors"
)

// Config is the merged CLI configuration.
type Config struct {
	Tolerance     float64 `mapstructure:"tolerance"`
	Unit          string  `mapstructure:"unit"`
	OutputFormat  string  `mapstructure:"output_format"`
	MinSimilarity float64 `mapstructure:"min_similarity"`
	MaxFeatures   int     `mapstructure:"max_features"`
	Verbose       bool    `mapstructure:"verbose"`
}

// SetDefaults registers the defaults with viper. Called once from the root
// command before any config file is read.
func SetDefaults() {
	viper.SetDefault("tolerance", 2.0)
	viper.SetDefault("unit", string(reconciler.UnitYuan))
	viper.SetDefault("output_format", "text")
	viper.SetDefault("min_similarity", 0.05)
	viper.SetDefault("max_features", 500)

	viper.SetEnvPrefix("RECONENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Load unmarshals the merged configuration and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, engerrors.Wrap(err, engerrors.CategoryConfiguration,
			engerrors.CodeInvalidConfig, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the merged values.
func (c *Config) Validate() error {
	if c.Tolerance < 0 {
		return engerrors.NewConfigError(engerrors.CodeInvalidTolerance,
			"tolerance cannot be negative, got %f", c.Tolerance)
	}
	if !reconciler.Unit(c.Unit).IsValid() {
		return engerrors.NewConfigError(engerrors.CodeUnknownUnit,
			"unknown currency unit %q", c.Unit).
			WithSuggestion(`use "yuan" or "minor"`)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return engerrors.NewConfigError(engerrors.CodeInvalidConfig,
			"min similarity must be in [0,1], got %f", c.MinSimilarity)
	}
	if c.MaxFeatures <= 0 {
		return engerrors.NewConfigError(engerrors.CodeInvalidConfig,
			"max features must be positive, got %d", c.MaxFeatures)
	}
	return nil
}

// EngineConfig converts to the engine's configuration type.
func (c *Config) EngineConfig() *reconciler.Config {
	return &reconciler.Config{
		Tolerance: decimal.NewFromFloat(c.Tolerance),
		Unit:      reconciler.Unit(c.Unit),
	}
}
