package reconciler

import (
	"testing"

	"github.com/shopspring/decimal"

	"report-reconciliation-engine/internal/models"
)

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		name string
		diff float64
		base float64
		unit Unit
		want models.Severity
	}{
		{"negligible difference", 50, 100000, UnitYuan, models.SeverityLow},
		{"rate above 0.1 percent", 150, 100000, UnitYuan, models.SeverityMedium},
		{"rate above 1 percent", 1500, 100000, UnitYuan, models.SeverityHigh},
		{"small rate, large absolute", 1200, 10000000, UnitYuan, models.SeverityHigh},
		{"small rate, medium absolute", 150, 10000000, UnitYuan, models.SeverityMedium},
		{"negative difference uses magnitude", -1500, 100000, UnitYuan, models.SeverityHigh},
		{"negative base uses magnitude", 150, -100000, UnitYuan, models.SeverityMedium},

		// Zero base: no rate, never Low.
		{"zero base small diff", 50, 0, UnitYuan, models.SeverityMedium},
		{"zero base at threshold", 100, 0, UnitYuan, models.SeverityMedium},
		{"zero base large diff", 150, 0, UnitYuan, models.SeverityHigh},

		// Minor units scale the absolute thresholds by 100.
		{"same figures in yuan are high", 5000, 10000000, UnitYuan, models.SeverityHigh},
		{"minor units keep small diff low", 5000, 10000000, UnitMinor, models.SeverityLow},
		{"minor units high absolute", 150000, 10000000, UnitMinor, models.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySeverity(decimal.NewFromFloat(tt.diff), decimal.NewFromFloat(tt.base), tt.unit)
			if got != tt.want {
				t.Errorf("ClassifySeverity(%v, %v, %s) = %s, want %s",
					tt.diff, tt.base, tt.unit, got, tt.want)
			}
		})
	}
}

func TestClassifySeverityMonotonic(t *testing.T) {
	// For a fixed base, a larger difference never gets a lower severity.
	base := decimal.NewFromInt(100000)
	diffs := []float64{0, 10, 50, 150, 500, 1500, 50000, 1000000}

	lastRank := 0
	for _, d := range diffs {
		severity := ClassifySeverity(decimal.NewFromFloat(d), base, UnitYuan)
		if severity.Rank() < lastRank {
			t.Fatalf("severity dropped to %s at diff %v", severity, d)
		}
		lastRank = severity.Rank()
	}
}

func TestDifferenceRate(t *testing.T) {
	if got := differenceRate(decimal.NewFromInt(10), decimal.NewFromInt(1000)); got != 0.01 {
		t.Errorf("rate = %v, want 0.01", got)
	}
	if got := differenceRate(decimal.NewFromInt(10), decimal.Zero); got != 0 {
		t.Errorf("zero base rate = %v, want 0", got)
	}
	if got := differenceRate(decimal.NewFromInt(10), decimal.NewFromInt(-1000)); got != 0.01 {
		t.Errorf("negative base rate = %v, want 0.01", got)
	}
}
