package reconciler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"report-reconciliation-engine/internal/extract"
	"report-reconciliation-engine/internal/models"
	"report-reconciliation-engine/pkg/logger"
)

// totalKeywords mark a row label as a total or subtotal line.
var totalKeywords = []string{"合计", "总计", "总额", "小计"}

// SummationRules maps a total line item to the sub-items expected to sum to
// it.
type SummationRules map[string][]string

// ValidateSummation checks each total against the sum of its sub-items.
//
// Sub-items whose value cannot be extracted are excluded from the sum rather
// than treated as zero; a rule can therefore under-detect on sparse tables,
// but it never raises a spurious difference from a missing line. A total
// with no extractable sub-items at all is skipped.
func (e *Engine) ValidateSummation(table *models.Table, rules SummationRules) []models.DiscrepancyRecord {
	var discrepancies []models.DiscrepancyRecord
	if table.IsEmpty() {
		return discrepancies
	}

	totals := make([]string, 0, len(rules))
	for total := range rules {
		totals = append(totals, total)
	}
	sort.Strings(totals)

	for _, totalItem := range totals {
		subItems := rules[totalItem]

		totalValue, ok := e.extractor.FromTable(table, totalItem, extract.FirstNumericColumn{})
		if !ok {
			e.log.WithField("item", totalItem).Debug("total value absent, rule skipped")
			continue
		}

		calculated := decimal.Zero
		found := 0
		values := map[string]decimal.Decimal{totalItem: totalValue}
		for _, subItem := range subItems {
			value, ok := e.extractor.FromTable(table, subItem, extract.FirstNumericColumn{})
			if !ok {
				continue
			}
			calculated = calculated.Add(value)
			values[subItem] = value
			found++
		}
		if found == 0 {
			continue
		}

		diff := totalValue.Sub(calculated).Abs()
		if diff.LessThanOrEqual(e.config.Tolerance) {
			continue
		}

		values["calculated_total"] = calculated
		discrepancies = append(discrepancies, models.DiscrepancyRecord{
			Kind:           models.KindSummation,
			Category:       "加总错误",
			TableName:      table.Name,
			Items:          append([]string{totalItem}, subItems...),
			Values:         values,
			Difference:     diff,
			DifferenceRate: differenceRate(diff, totalValue),
			Severity:       ClassifySeverity(diff, totalValue, e.config.Unit),
			Description: fmt.Sprintf("%s 报告值 %s 与分项合计 %s 不符",
				totalItem, totalValue.StringFixed(2), calculated.StringFixed(2)),
		})
		e.log.WithFields(logger.Fields{
			"total": totalItem,
			"diff":  diff.StringFixed(2),
		}).Info("summation difference")
	}
	return discrepancies
}

// SuggestSummationRules infers total-to-sub-item groupings from a table's
// row order: each row labeled with a total keyword claims the contiguous
// non-total rows above it, back to the previous total or the top of the
// table.
//
// This is a layout heuristic, not a guaranteed parse. The result is a
// best-effort suggestion for an operator to review; it is never fed into
// ValidateSummation automatically.
func SuggestSummationRules(table *models.Table) SummationRules {
	rules := make(SummationRules)
	if table.IsEmpty() {
		return rules
	}

	labels := table.Labels()
	for idx, label := range labels {
		if !containsAny(label, totalKeywords) {
			continue
		}

		var subItems []string
		for i := idx - 1; i >= 0; i-- {
			above := labels[i]
			if containsAny(above, totalKeywords[:3]) {
				break
			}
			if above == "" || looksNumeric(above) {
				continue
			}
			subItems = append(subItems, above)
		}
		if len(subItems) == 0 {
			continue
		}

		// Collected bottom-up; restore the table's top-to-bottom order.
		for i, j := 0, len(subItems)-1; i < j; i, j = i+1, j-1 {
			subItems[i], subItems[j] = subItems[j], subItems[i]
		}
		rules[label] = subItems
	}
	return rules
}

// AutoValidateSummation runs the suggestion heuristic over every table in
// the report and validates whatever groupings it finds, tagging each
// discrepancy with the source table. Results inherit the heuristic's
// best-effort nature.
func (e *Engine) AutoValidateSummation(report *models.Report) []models.DiscrepancyRecord {
	var all []models.DiscrepancyRecord
	if report == nil {
		return all
	}

	names := make([]string, 0, len(report.Tables))
	for name := range report.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		table := report.Tables[name]
		suggested := SuggestSummationRules(table)
		if len(suggested) == 0 {
			continue
		}
		e.log.WithFields(logger.Fields{
			"table": name,
			"rules": len(suggested),
		}).Debug("derived summation groupings")

		diffs := e.ValidateSummation(table, suggested)
		for i := range diffs {
			if diffs[i].TableName == "" {
				diffs[i].TableName = name
			}
		}
		all = append(all, diffs...)
	}
	return all
}

// looksNumeric reports whether a label is just a number, which the
// suggestion scan skips as a non-item row.
func looksNumeric(label string) bool {
	stripped := strings.NewReplacer(".", "", ",", "").Replace(label)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
