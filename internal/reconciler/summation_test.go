package reconciler

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"report-reconciliation-engine/internal/models"
)

func balanceSheetTable(total string) *models.Table {
	return models.NewTable("资产负债表", []string{"项目", "本期金额", "上期金额"}, [][]string{
		{"资产总计", total, "900,000"},
		{"流动资产", "600,000", "500,000"},
		{"非流动资产", "400,000", "400,000"},
	})
}

func assetRules() SummationRules {
	return SummationRules{
		"资产总计": {"流动资产", "非流动资产"},
	}
}

func TestValidateSummationHolds(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	diffs := engine.ValidateSummation(balanceSheetTable("1,000,000"), assetRules())
	if len(diffs) != 0 {
		t.Errorf("closed total reported: %v", diffs)
	}
}

func TestValidateSummationDetectsPerturbation(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	// Total perturbed by 10: the reported difference must equal the
	// perturbation exactly.
	diffs := engine.ValidateSummation(balanceSheetTable("1,000,010"), assetRules())
	if len(diffs) != 1 {
		t.Fatalf("got %d discrepancies, want 1", len(diffs))
	}

	d := diffs[0]
	if d.Kind != models.KindSummation {
		t.Errorf("kind = %s, want summation", d.Kind)
	}
	if !d.Difference.Equal(decimal.NewFromInt(10)) {
		t.Errorf("difference = %s, want 10", d.Difference.String())
	}
	if !d.Values["calculated_total"].Equal(decimal.NewFromInt(1000000)) {
		t.Errorf("calculated total = %s, want 1000000", d.Values["calculated_total"].String())
	}
	if d.TableName != "资产负债表" {
		t.Errorf("table name = %q", d.TableName)
	}
}

func TestValidateSummationExcludesAbsentSubItems(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	table := models.NewTable("t", []string{"项目", "金额"}, [][]string{
		{"资产总计", "600,000"},
		{"流动资产", "600,000"},
		{"非流动资产", "-"}, // absent, excluded from the sum
	})

	diffs := engine.ValidateSummation(table, assetRules())
	if len(diffs) != 0 {
		t.Errorf("absent sub-item treated as zero: %v", diffs)
	}
}

func TestValidateSummationSkipsUncheckableRules(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))
	table := balanceSheetTable("1,000,000")

	// Absent total.
	diffs := engine.ValidateSummation(table, SummationRules{"负债总计": {"流动负债"}})
	if len(diffs) != 0 {
		t.Errorf("absent total produced discrepancies: %v", diffs)
	}

	// Total present, every sub-item absent.
	diffs = engine.ValidateSummation(table, SummationRules{"资产总计": {"货币资金", "应收款项"}})
	if len(diffs) != 0 {
		t.Errorf("rule with no extractable sub-items produced discrepancies: %v", diffs)
	}
}

func TestSuggestSummationRules(t *testing.T) {
	table := models.NewTable("资产负债表", []string{"项目", "金额"}, [][]string{
		{"货币资金", "100"},
		{"应收账款", "200"},
		{"流动资产合计", "300"},
		{"固定资产", "400"},
		{"无形资产", "500"},
		{"非流动资产合计", "900"},
		{"资产总计", "1200"},
	})

	got := SuggestSummationRules(table)
	want := SummationRules{
		"流动资产合计":  {"货币资金", "应收账款"},
		"非流动资产合计": {"固定资产", "无形资产"},
	}
	// 资产总计 sits directly under another total, so it claims nothing.
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SuggestSummationRules = %v, want %v", got, want)
	}
}

func TestSuggestSummationRulesSkipsNoise(t *testing.T) {
	table := models.NewTable("t", []string{"项目", "金额"}, [][]string{
		{"货币资金", "100"},
		{"", "0"},
		{"123.45", "0"},
		{"应收账款", "200"},
		{"流动资产合计", "300"},
	})

	got := SuggestSummationRules(table)
	want := SummationRules{"流动资产合计": {"货币资金", "应收账款"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SuggestSummationRules = %v, want %v", got, want)
	}
}

func TestSuggestSummationRulesEmptyTable(t *testing.T) {
	if got := SuggestSummationRules(&models.Table{}); len(got) != 0 {
		t.Errorf("empty table suggested rules: %v", got)
	}
}

func TestAutoValidateSummation(t *testing.T) {
	engine := newTestEngine(t, tolerance(2.0))

	report := &models.Report{
		Year: "2023",
		Tables: map[string]*models.Table{
			"资产明细": models.NewTable("资产明细", []string{"项目", "金额"}, [][]string{
				{"货币资金", "100"},
				{"应收账款", "200"},
				{"流动资产合计", "350"}, // off by 50
			}),
			"负债明细": models.NewTable("负债明细", []string{"项目", "金额"}, [][]string{
				{"应付账款", "80"},
				{"流动负债合计", "80"},
			}),
		},
	}

	diffs := engine.AutoValidateSummation(report)
	if len(diffs) != 1 {
		t.Fatalf("got %d discrepancies, want 1: %v", len(diffs), diffs)
	}
	if diffs[0].TableName != "资产明细" {
		t.Errorf("table name = %q, want 资产明细", diffs[0].TableName)
	}
	if !diffs[0].Difference.Equal(decimal.NewFromInt(50)) {
		t.Errorf("difference = %s, want 50", diffs[0].Difference.String())
	}
}

func TestLooksNumeric(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"123", true},
		{"1,234.56", true},
		{"货币资金", false},
		{"注1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := looksNumeric(tt.label); got != tt.want {
			t.Errorf("looksNumeric(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}
