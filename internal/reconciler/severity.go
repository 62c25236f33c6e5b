package reconciler

import (
	"github.com/shopspring/decimal"

	"report-reconciliation-engine/internal/models"
)

// Severity thresholds, in major currency units. Scaled by the configured
// unit's factor before comparison.
var (
	highAbsThreshold   = decimal.NewFromInt(1000)
	mediumAbsThreshold = decimal.NewFromInt(100)
	highRateThreshold  = decimal.NewFromFloat(0.01)
	midRateThreshold   = decimal.NewFromFloat(0.001)
)

// ClassifySeverity ranks a difference against its base value.
//
// High: relative difference above 1% or absolute difference above 1000 major
// units. Medium: above 0.1% or above 100 major units. Low otherwise. A zero
// base has no meaningful rate, so it is High above 100 major units and
// Medium below — never Low, because an unanchored absolute difference is
// never negligible.
func ClassifySeverity(diff, base decimal.Decimal, unit Unit) models.Severity {
	factor := unit.Factor()
	diff = diff.Abs()

	if base.IsZero() {
		if diff.GreaterThan(mediumAbsThreshold.Mul(factor)) {
			return models.SeverityHigh
		}
		return models.SeverityMedium
	}

	rate := diff.Div(base.Abs())
	switch {
	case rate.GreaterThan(highRateThreshold) || diff.GreaterThan(highAbsThreshold.Mul(factor)):
		return models.SeverityHigh
	case rate.GreaterThan(midRateThreshold) || diff.GreaterThan(mediumAbsThreshold.Mul(factor)):
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// differenceRate returns diff/base as a float, guarded to 0 for a zero base.
func differenceRate(diff, base decimal.Decimal) float64 {
	if base.IsZero() {
		return 0
	}
	return diff.Div(base.Abs()).InexactFloat64()
}
