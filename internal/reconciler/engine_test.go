package reconciler

import (
	"testing"

	"github.com/shopspring/decimal"

	"report-reconciliation-engine/internal/models"
	engerrors "report-reconciliation-engine/pkg/errors"
)

func newTestEngine(t *testing.T, config *Config) *Engine {
	t.Helper()
	engine, err := NewEngine(config, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func tolerance(v float64) *Config {
	return &Config{Tolerance: decimal.NewFromFloat(v), Unit: UnitYuan}
}

func TestNewEngineDefaults(t *testing.T) {
	engine := newTestEngine(t, nil)
	if !engine.Config().Tolerance.Equal(decimal.NewFromFloat(2.0)) {
		t.Errorf("default tolerance = %s, want 2", engine.Config().Tolerance.String())
	}
	if engine.Config().Unit != UnitYuan {
		t.Errorf("default unit = %s, want yuan", engine.Config().Unit)
	}
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	_, err := NewEngine(&Config{Tolerance: decimal.NewFromInt(-1), Unit: UnitYuan}, nil, nil)
	if err == nil {
		t.Fatal("expected error for negative tolerance")
	}
	if !engerrors.IsCategory(err, engerrors.CategoryConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}

	_, err = NewEngine(&Config{Tolerance: decimal.Zero, Unit: Unit("euro")}, nil, nil)
	if err == nil {
		t.Fatal("expected error for unknown unit")
	}
}

func mainTable() *models.Table {
	return models.NewTable("资产负债表主表", []string{"项目", "金额"}, [][]string{
		{"资产总计", "1,000,000"},
		{"负债总计", "400,000"},
		{"货币资金", "50,000"},
	})
}

func TestReconcileTablesMatchWithinTolerance(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	note := models.NewTable("资产明细附注", []string{"项目", "金额"}, [][]string{
		{"资产合计", "1000001.50"},
		{"银行存款", "50,000"},
	})

	diffs := engine.ReconcileTables(mainTable(), note)
	if len(diffs) != 0 {
		t.Errorf("differences within tolerance reported: %v", diffs)
	}
}

func TestReconcileTablesDetectsDifference(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	note := models.NewTable("资产明细附注", []string{"项目", "金额"}, [][]string{
		{"资产合计", "1,000,010"},
	})

	diffs := engine.ReconcileTables(mainTable(), note)
	if len(diffs) != 1 {
		t.Fatalf("got %d discrepancies, want 1", len(diffs))
	}

	d := diffs[0]
	if d.Kind != models.KindReconciliation {
		t.Errorf("kind = %s, want reconciliation", d.Kind)
	}
	if !d.Difference.Equal(decimal.NewFromInt(10)) {
		t.Errorf("difference = %s, want 10", d.Difference.String())
	}
	if len(d.Items) != 2 || d.Items[0] != "资产总计" || d.Items[1] != "资产合计" {
		t.Errorf("items = %v", d.Items)
	}
	if !d.Severity.IsValid() {
		t.Errorf("severity %q not classified", d.Severity)
	}
}

func TestReconcileTablesIdenticalLabels(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	// The footnote uses the canonical label itself, not an alias.
	note := models.NewTable("附注", []string{"项目", "金额"}, [][]string{
		{"资产总计", "1,000,500"},
	})

	diffs := engine.ReconcileTables(mainTable(), note)
	if len(diffs) != 1 {
		t.Fatalf("got %d discrepancies, want 1", len(diffs))
	}
}

func TestReconcileTablesToleranceMonotonic(t *testing.T) {
	// Raising the tolerance never surfaces more discrepancies.
	note := models.NewTable("附注", []string{"项目", "金额"}, [][]string{
		{"资产合计", "1,000,010"},
		{"负债合计", "400,300"},
		{"银行存款", "50,001"},
	})

	last := -1
	for _, tol := range []float64{0.5, 5, 100, 1000} {
		engine := newTestEngine(t, tolerance(tol))
		count := len(engine.ReconcileTables(mainTable(), note))
		if last >= 0 && count > last {
			t.Fatalf("tolerance %v produced %d discrepancies, more than a stricter run's %d", tol, count, last)
		}
		last = count
	}
}

func TestReconcileTablesSkipsAbsentValues(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	// Absent values on either side are skipped, not treated as zero.
	main := models.NewTable("主表", []string{"项目", "金额"}, [][]string{
		{"资产总计", "-"},
	})
	note := models.NewTable("附注", []string{"项目", "金额"}, [][]string{
		{"资产合计", "1,000,000"},
	})
	if diffs := engine.ReconcileTables(main, note); len(diffs) != 0 {
		t.Errorf("absent main value produced discrepancies: %v", diffs)
	}

	main = mainTable()
	note = models.NewTable("附注", []string{"项目", "金额"}, [][]string{
		{"资产合计", "None"},
	})
	if diffs := engine.ReconcileTables(main, note); len(diffs) != 0 {
		t.Errorf("absent note value produced discrepancies: %v", diffs)
	}
}

func TestReconcileTablesEmptyInputs(t *testing.T) {
	engine := newTestEngine(t, nil)
	if diffs := engine.ReconcileTables(&models.Table{}, mainTable()); len(diffs) != 0 {
		t.Errorf("empty main table produced discrepancies: %v", diffs)
	}
	if diffs := engine.ReconcileTables(mainTable(), &models.Table{}); len(diffs) != 0 {
		t.Errorf("empty note table produced discrepancies: %v", diffs)
	}
}

func TestSmartReconcilePairsByKeyword(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	report := &models.Report{
		Year: "2023",
		Tables: map[string]*models.Table{
			"资产负债表主表": mainTable(),
			"资产明细附注": models.NewTable("资产明细附注", []string{"项目", "金额"}, [][]string{
				{"资产合计", "1,000,010"},
			}),
			// Revenue note must not be paired with the balance sheet.
			"收入明细附注": models.NewTable("收入明细附注", []string{"项目", "金额"}, [][]string{
				{"收入合计", "999"},
			}),
		},
	}

	diffs := engine.SmartReconcile(report)
	if len(diffs) != 1 {
		t.Fatalf("got %d discrepancies, want 1", len(diffs))
	}
	if diffs[0].TableName != "资产负债表主表 / 资产明细附注" {
		t.Errorf("table name = %q", diffs[0].TableName)
	}
}

func TestSmartReconcileNilReport(t *testing.T) {
	engine := newTestEngine(t, nil)
	if diffs := engine.SmartReconcile(nil); len(diffs) != 0 {
		t.Errorf("nil report produced discrepancies: %v", diffs)
	}
}

func TestSummarize(t *testing.T) {
	discrepancies := []models.DiscrepancyRecord{
		{Kind: models.KindReconciliation, Severity: models.SeverityHigh},
		{Kind: models.KindReconciliation, Severity: models.SeverityLow},
		{Kind: models.KindCrossPeriod, Severity: models.SeverityHigh},
	}

	summary := Summarize(discrepancies)
	if summary.TotalDifferences != 3 {
		t.Errorf("total = %d, want 3", summary.TotalDifferences)
	}
	if summary.BySeverity[models.SeverityHigh] != 2 || summary.BySeverity[models.SeverityLow] != 1 {
		t.Errorf("by severity = %v", summary.BySeverity)
	}
	if summary.ByKind[models.KindReconciliation] != 2 || summary.ByKind[models.KindCrossPeriod] != 1 {
		t.Errorf("by kind = %v", summary.ByKind)
	}
}

func TestValidateAll(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	statement := func(restatedPrior string) *models.Table {
		return models.NewTable("资产负债表主表", []string{"项目", "本期", "上年"}, [][]string{
			{"资产总计", "1,100,000", restatedPrior},
		})
	}

	reports := map[string]*models.Report{
		"2022": {Year: "2022", Tables: map[string]*models.Table{
			"资产负债表主表": models.NewTable("资产负债表主表", []string{"项目", "本期", "上年"}, [][]string{
				{"资产总计", "1,000,000", "900,000"},
			}),
		}},
		// The 2023 filing restates 2022's total with a 0.5 drift.
		"2023": {Year: "2023", Tables: map[string]*models.Table{
			"资产负债表主表": statement("1,000,000.50"),
		}},
	}

	all, summary := engine.ValidateAll(reports)
	if summary.TotalDifferences != len(all) {
		t.Fatalf("summary total %d != %d records", summary.TotalDifferences, len(all))
	}
	if summary.ByKind[models.KindCrossPeriod] != 1 {
		t.Fatalf("cross-period count = %d, want 1 (records: %v)", summary.ByKind[models.KindCrossPeriod], all)
	}
	if all[0].Severity != models.SeverityHigh {
		t.Errorf("cross-period severity = %s, want High", all[0].Severity)
	}
}
