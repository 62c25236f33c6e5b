// Package extract parses semantic numbers out of raw statement cells and
// locates line-item values inside tables.
//
// Extraction is deliberately forgiving: unparsable cells and missing rows
// yield an absent value rather than an error. Absent and zero are distinct —
// an absent value marks a rule or pair as not applicable, a zero is a real
// comparable number.
package extract

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"

	"report-reconciliation-engine/internal/models"
	"report-reconciliation-engine/pkg/logger"
)

// numberPattern matches the first contiguous run of digits with at most one
// decimal point. Anything around it (currency suffixes, annotations) is
// ignored.
var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)

// absentSentinels are cell contents that mean "no value", not zero.
var absentSentinels = map[string]bool{
	"":     true,
	"None": true,
	"nan":  true,
	"NaN":  true,
	"-":    true,
	"—":    true,
}

// ParseNumber parses a semantic number from a raw cell string.
//
// It strips thousands separators and whitespace, treats a leading minus sign
// or parentheses as a negative marker, and extracts the first numeric run.
// The second return value is false when the cell carries no usable number.
func ParseNumber(raw string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(raw)
	if absentSentinels[trimmed] {
		return decimal.Zero, false
	}

	cleaned := strings.NewReplacer(",", "", " ", "").Replace(trimmed)
	if cleaned == "" {
		return decimal.Zero, false
	}

	negative := strings.HasPrefix(cleaned, "-") || strings.HasPrefix(cleaned, "(")
	if negative {
		cleaned = strings.NewReplacer("-", "", "(", "", ")", "").Replace(cleaned)
	}

	match := numberPattern.FindString(cleaned)
	if match == "" {
		return decimal.Zero, false
	}

	value, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, false
	}

	if negative {
		value = value.Neg()
	}
	return value, true
}

// ColumnSelector picks the column to read a value from once the row has
// been located.
type ColumnSelector interface {
	// Select returns the column index to read, or -1 when no column of the
	// table qualifies.
	Select(table *models.Table) int
}

// ColumnAt selects a fixed column index. Negative indices count from the
// right, so ColumnAt(-1) reads the last column.
type ColumnAt int

// Select implements ColumnSelector.
func (c ColumnAt) Select(table *models.Table) int {
	idx := int(c)
	if idx < 0 {
		idx = len(table.Columns) + idx
	}
	if idx < 0 || idx >= len(table.Columns) {
		return -1
	}
	return idx
}

// ColumnWithKeyword selects the first column whose header contains any of
// the keywords.
type ColumnWithKeyword []string

// Select implements ColumnSelector.
func (c ColumnWithKeyword) Select(table *models.Table) int {
	return table.ColumnIndex(c...)
}

// PriorPeriodColumn matches the "prior period" column headers used by
// Chinese statement layouts (上年/上期).
func PriorPeriodColumn() ColumnSelector {
	return ColumnWithKeyword{"上年", "上期"}
}

// CurrentPeriodColumn matches the "current period" column headers
// (本期/期末/本年).
func CurrentPeriodColumn() ColumnSelector {
	return ColumnWithKeyword{"本期", "期末", "本年"}
}

// FirstNumericColumn scans columns 1 through 3 of the located row and takes
// the first cell that parses. This mirrors the common statement layout where
// the amount sits in the second or third column.
type FirstNumericColumn struct{}

// Select implements ColumnSelector. FirstNumericColumn resolves per row, so
// this only reports whether the table has any value columns at all.
func (FirstNumericColumn) Select(table *models.Table) int {
	if len(table.Columns) > 1 {
		return 1
	}
	return -1
}

// Extractor locates line items in tables and parses their values.
type Extractor struct {
	log logger.Logger
}

// NewExtractor creates an extractor. A nil logger falls back to the global
// logger.
func NewExtractor(log logger.Logger) *Extractor {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Extractor{log: log.WithComponent("extract")}
}

// FromTable finds the row for itemName and parses its value from the column
// chosen by the selector.
//
// Row selection is an explicit two-stage policy rather than first-match-wins:
// a row whose trimmed label equals itemName exactly is always preferred;
// otherwise, among rows whose label contains itemName, the label closest to
// itemName by edit distance wins, with earlier rows breaking ties. This keeps
// "资产" from silently binding to "其他资产" when "资产总计" is present too.
func (e *Extractor) FromTable(table *models.Table, itemName string, selector ColumnSelector) (decimal.Decimal, bool) {
	row := e.findRow(table, itemName)
	if row < 0 {
		return decimal.Zero, false
	}

	if _, scan := selector.(FirstNumericColumn); scan {
		return e.scanRowValue(table.Rows[row])
	}

	col := selector.Select(table)
	if col < 0 {
		e.log.WithField("item", itemName).Debug("no matching value column")
		return decimal.Zero, false
	}
	if col >= len(table.Rows[row]) {
		return decimal.Zero, false
	}
	return ParseNumber(table.Rows[row][col])
}

// LineItem extracts itemName as a models.LineItem, recording provenance.
func (e *Extractor) LineItem(table *models.Table, itemName string, selector ColumnSelector, period models.Period) models.LineItem {
	value, ok := e.FromTable(table, itemName, selector)
	return models.LineItem{
		Name:        itemName,
		Value:       value,
		HasValue:    ok,
		SourceTable: table.Name,
		Period:      period,
	}
}

// FromReport searches a report's statement tables (balance sheet and income
// statement) for itemName, reading the column picked by the selector. The
// first table that yields a value wins.
func (e *Extractor) FromReport(report *models.Report, itemName string, selector ColumnSelector) (decimal.Decimal, bool) {
	if report == nil {
		return decimal.Zero, false
	}
	for _, table := range report.TablesMatching("资产负债表", "利润表") {
		if value, ok := e.FromTable(table, itemName, selector); ok {
			return value, ok
		}
	}
	return decimal.Zero, false
}

// findRow returns the index of the row whose label binds to itemName under
// the exact-first, closest-containment-second policy, or -1.
func (e *Extractor) findRow(table *models.Table, itemName string) int {
	if table.IsEmpty() || itemName == "" {
		return -1
	}

	best := -1
	bestDistance := 0
	for i, label := range table.Labels() {
		if label == itemName {
			return i
		}
		if !strings.Contains(label, itemName) {
			continue
		}
		distance := levenshtein.ComputeDistance(label, itemName)
		if best < 0 || distance < bestDistance {
			best = i
			bestDistance = distance
		}
	}

	if best >= 0 && bestDistance > 0 {
		e.log.WithFields(logger.Fields{
			"item":  itemName,
			"label": table.Rows[best][0],
		}).Debug("resolved item through containment match")
	}
	return best
}

// scanRowValue walks columns 1..3 of a row and returns the first parsable
// value.
func (e *Extractor) scanRowValue(row []string) (decimal.Decimal, bool) {
	limit := len(row)
	if limit > 4 {
		limit = 4
	}
	for col := 1; col < limit; col++ {
		if value, ok := ParseNumber(row[col]); ok {
			return value, true
		}
	}
	return decimal.Zero, false
}
