package reconciler

import (
	"strings"

	"github.com/shopspring/decimal"

	"report-reconciliation-engine/internal/extract"
	"report-reconciliation-engine/internal/models"
)

// Statement layouts put the current figure in the third column and the
// comparative in the fourth; the statement of changes keys its totals off
// the last column.
const (
	currentFigureColumn = 2
	priorFigureColumn   = 3
)

var balanceSheetItems = []string{
	"资产总计", "负债合计", "净资产合计", "实收基金", "未分配利润",
	"负债和净资产总计", "交易性金融资产", "股票投资", "基金投资", "债券投资",
	"资产支持证券投资", "贵金属投资", "其他投资",
}

var incomeStatementItems = []string{
	"营业总收入", "营业总支出", "利润总额", "净利润", "所得税费用",
	"其他综合收益的税后净额", "综合收益总额",
}

var netAssetChangeItems = []string{
	"本期期初净资产", "本期期末净资产", "本期增减变动额", "综合收益总额", "本期分配利润",
}

// ExtractStatementValues pulls the rule-relevant figures out of a report's
// statement tables into a flat name-to-value map, the shape the rule
// evaluator consumes.
//
// Each figure is stored under its canonical name and under period-prefixed
// variants (期末/期初/本期/上期/上年度可比区间) so both the internal
// identities and the cross-period checks find what they need. Absent lines
// are simply not present in the map.
func (e *Engine) ExtractStatementValues(report *models.Report) map[string]decimal.Decimal {
	values := make(map[string]decimal.Decimal)
	if report == nil {
		return values
	}

	for _, table := range report.TablesMatching("资产负债表") {
		e.extractBalanceSheet(table, values)
	}
	for _, table := range report.TablesMatching("利润表") {
		e.extractIncomeStatement(table, values)
	}
	for _, table := range report.TablesMatching("净资产变动表") {
		e.extractNetAssetChanges(table, values)
	}
	return values
}

func (e *Engine) extractBalanceSheet(table *models.Table, values map[string]decimal.Decimal) {
	for _, item := range balanceSheetItems {
		if value, ok := e.extractAliased(table, item, extract.ColumnAt(currentFigureColumn)); ok {
			values[item] = value
			values["期末"+item] = value
		}
		if value, ok := e.extractAliased(table, item, extract.ColumnAt(priorFigureColumn)); ok {
			values["期初"+item] = value
			values["上年度可比区间"+item] = value
		}
	}
}

func (e *Engine) extractIncomeStatement(table *models.Table, values map[string]decimal.Decimal) {
	for _, item := range incomeStatementItems {
		if value, ok := e.extractAliased(table, item, extract.ColumnAt(currentFigureColumn)); ok {
			values[item] = value
			values["本期"+item] = value
		}
		if value, ok := e.extractAliased(table, item, extract.ColumnAt(priorFigureColumn)); ok {
			values["上期"+item] = value
		}
	}
}

func (e *Engine) extractNetAssetChanges(table *models.Table, values map[string]decimal.Decimal) {
	for _, item := range netAssetChangeItems {
		value, ok := e.extractAliased(table, item, extract.ColumnAt(-1))
		if !ok {
			continue
		}
		values[item] = value
		if trimmed := strings.TrimPrefix(item, "本期"); trimmed != item {
			values[trimmed] = value
		}
	}

	// The opening/closing rows carry the paid-in fund in the second column
	// and retained earnings in the third.
	fundColumns := map[string]extract.ColumnSelector{
		"实收基金":  extract.ColumnAt(1),
		"未分配利润": extract.ColumnAt(2),
	}
	periodRows := map[string]string{
		"期初": "本期期初净资产",
		"期末": "本期期末净资产",
	}
	for component, column := range fundColumns {
		for prefix, row := range periodRows {
			if value, ok := e.extractAliased(table, row, column); ok {
				values[prefix+component] = value
			}
		}
	}

	for _, component := range []string{"实收基金", "未分配利润"} {
		opening, okOpen := values["期初"+component]
		closing, okClose := values["期末"+component]
		if okOpen && okClose {
			values["本期"+component+"变动"] = closing.Sub(opening)
		}
	}
}

// extractAliased tries the item's canonical name first, then each registered
// alias, until one resolves in the table.
func (e *Engine) extractAliased(table *models.Table, item string, selector extract.ColumnSelector) (decimal.Decimal, bool) {
	if value, ok := e.extractor.FromTable(table, item, selector); ok {
		return value, true
	}
	for _, alias := range e.resolver.Aliases(item) {
		if alias == item {
			continue
		}
		if value, ok := e.extractor.FromTable(table, alias, selector); ok {
			return value, true
		}
	}
	return decimal.Zero, false
}
