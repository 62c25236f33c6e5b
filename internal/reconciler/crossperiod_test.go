package reconciler

import (
	"testing"

	"github.com/shopspring/decimal"

	"report-reconciliation-engine/internal/models"
)

func filing(year, currentTotal, priorTotal string) *models.Report {
	return &models.Report{
		Year: year,
		Tables: map[string]*models.Table{
			"资产负债表": models.NewTable("资产负债表", []string{"项目", "本期金额", "上年金额"}, [][]string{
				{"资产总计", currentTotal, priorTotal},
				{"负债总计", "400,000", "350,000"},
			}),
		},
	}
}

func TestReconcileCrossPeriodConsistent(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	current := filing("2023", "1,100,000", "1,000,000")
	prior := filing("2022", "1,000,000", "900,000")

	diffs := engine.ReconcileCrossPeriod(current, prior, []string{"资产总计"})
	if len(diffs) != 0 {
		t.Errorf("consistent restatement reported: %v", diffs)
	}
}

func TestReconcileCrossPeriodExact(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	// The 0.5 drift is inside the same-period tolerance, but cross-period
	// comparison requires exact equality.
	current := filing("2023", "1,100,000", "1,000,000.50")
	prior := filing("2022", "1,000,000", "900,000")

	diffs := engine.ReconcileCrossPeriod(current, prior, []string{"资产总计"})
	if len(diffs) != 1 {
		t.Fatalf("got %d discrepancies, want 1", len(diffs))
	}

	d := diffs[0]
	if d.Kind != models.KindCrossPeriod {
		t.Errorf("kind = %s, want cross_period", d.Kind)
	}
	if d.Severity != models.SeverityHigh {
		t.Errorf("severity = %s, want High regardless of magnitude", d.Severity)
	}
	if !d.Difference.Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("difference = %s, want 0.5", d.Difference.String())
	}
	if !d.Values["current_report_restated"].Equal(decimal.NewFromFloat(1000000.50)) {
		t.Errorf("restated value = %s", d.Values["current_report_restated"].String())
	}
	if !d.Values["prior_report_reported"].Equal(decimal.NewFromInt(1000000)) {
		t.Errorf("reported value = %s", d.Values["prior_report_reported"].String())
	}
}

func TestReconcileCrossPeriodSkipsAbsentItems(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	current := filing("2023", "1,100,000", "1,000,000")
	prior := filing("2022", "1,000,000", "900,000")

	// 净利润 appears in neither filing; the item is skipped, not zeroed.
	diffs := engine.ReconcileCrossPeriod(current, prior, []string{"净利润", "资产总计"})
	if len(diffs) != 0 {
		t.Errorf("absent item produced discrepancies: %v", diffs)
	}
}

func TestReconcileCrossPeriodMultipleItems(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	// 资产总计 drifts by 7; 负债总计 is restated as 350,000 while the 2022
	// filing reported 400,000.
	current := filing("2023", "1,100,000", "1,000,007")
	prior := filing("2022", "1,000,000", "900,000")

	diffs := engine.ReconcileCrossPeriod(current, prior, []string{"资产总计", "负债总计"})
	if len(diffs) != 2 {
		t.Fatalf("got %d discrepancies, want 2: %v", len(diffs), diffs)
	}
	for _, d := range diffs {
		if d.Severity != models.SeverityHigh {
			t.Errorf("%s severity = %s, want High", d.Items[0], d.Severity)
		}
	}
}
