package reconciler

import (
	"github.com/shopspring/decimal"

	engerrors "report-reconciliation-engine/pkg/errors"
)

// Unit declares the currency unit the input data is expressed in. Severity
// thresholds are defined in major units (yuan), so the unit must be explicit
// or absolute thresholds silently become a hundred times too strict or too
// loose.
type Unit string

const (
	// UnitYuan means amounts are in whole yuan.
	UnitYuan Unit = "yuan"
	// UnitMinor means amounts are in minor units (fen, 1/100 yuan).
	UnitMinor Unit = "minor"
)

// Factor returns the multiplier from major units to the declared unit.
func (u Unit) Factor() decimal.Decimal {
	if u == UnitMinor {
		return decimal.NewFromInt(100)
	}
	return decimal.NewFromInt(1)
}

// IsValid checks if the unit is one of the known values.
func (u Unit) IsValid() bool {
	return u == UnitYuan || u == UnitMinor
}

// Config holds the engine options for one reconciliation run.
type Config struct {
	// Tolerance is the maximum same-period difference, in the declared
	// unit, that is still considered a match. Cross-period checks ignore it
	// and require exact equality.
	Tolerance decimal.Decimal
	// Unit is the currency unit of the input data.
	Unit Unit
}

// DefaultConfig matches the operational defaults: two yuan of tolerance.
func DefaultConfig() *Config {
	return &Config{
		Tolerance: decimal.NewFromFloat(2.0),
		Unit:      UnitYuan,
	}
}

// StrictConfig tolerates only a rounding fen.
func StrictConfig() *Config {
	return &Config{
		Tolerance: decimal.NewFromFloat(0.01),
		Unit:      UnitYuan,
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Tolerance.IsNegative() {
		return engerrors.NewConfigError(engerrors.CodeInvalidTolerance,
			"tolerance cannot be negative, got %s", c.Tolerance.String())
	}
	if !c.Unit.IsValid() {
		return engerrors.NewConfigError(engerrors.CodeUnknownUnit,
			"unknown currency unit %q", c.Unit).
			WithSuggestion(`use "yuan" or "minor"`)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
