// Package reconciler orchestrates the cross-table, cross-period and
// summation checks over financial statement tables, producing discrepancy
// records with severity classification.
//
// The engine is a pure function of its inputs plus injected configuration:
// no state survives a run, so concurrent runs over different reports need no
// coordination.
package reconciler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"report-reconciliation-engine/internal/extract"
	"report-reconciliation-engine/internal/models"
	"report-reconciliation-engine/internal/rules"
	"report-reconciliation-engine/internal/terms"
	"report-reconciliation-engine/pkg/logger"
)

// Engine runs reconciliation checks. Construct once, reuse across runs.
type Engine struct {
	config    *Config
	resolver  *terms.Resolver
	extractor *extract.Extractor
	log       logger.Logger
}

// NewEngine creates an engine. A nil config uses DefaultConfig, a nil
// resolver uses the built-in synonym tables.
func NewEngine(config *Config, resolver *terms.Resolver, log logger.Logger) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if resolver == nil {
		resolver = terms.DefaultResolver()
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("reconciler")

	return &Engine{
		config:    config,
		resolver:  resolver,
		extractor: extract.NewExtractor(log),
		log:       log,
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// ReconcileTables checks every main-table line item against its footnote
// counterparts.
//
// For each non-empty main label, the synonym resolver proposes footnote
// labels; each pair with two present values and a difference beyond
// tolerance becomes a discrepancy. Items with no footnote match or an absent
// value are skipped at debug level, per the engine's silence-over-failure
// policy on sparse input.
func (e *Engine) ReconcileTables(mainTable, noteTable *models.Table) []models.DiscrepancyRecord {
	var discrepancies []models.DiscrepancyRecord
	if mainTable.IsEmpty() || noteTable.IsEmpty() {
		return discrepancies
	}

	noteLabels := noteTable.Labels()
	for _, mainItem := range mainTable.Labels() {
		if mainItem == "" {
			continue
		}

		noteMatches := e.resolver.FindMatches(mainItem, noteLabels)
		if len(noteMatches) == 0 {
			continue
		}

		mainValue, ok := e.extractor.FromTable(mainTable, mainItem, extract.FirstNumericColumn{})
		if !ok {
			e.log.WithField("item", mainItem).Debug("main value absent, pair skipped")
			continue
		}

		for _, noteItem := range noteMatches {
			noteValue, ok := e.extractor.FromTable(noteTable, noteItem, extract.FirstNumericColumn{})
			if !ok {
				e.log.WithField("item", noteItem).Debug("note value absent, pair skipped")
				continue
			}

			diff := mainValue.Sub(noteValue).Abs()
			if diff.LessThanOrEqual(e.config.Tolerance) {
				continue
			}

			discrepancies = append(discrepancies, models.DiscrepancyRecord{
				Kind:     models.KindReconciliation,
				Category: "勾稽差异",
				Items:    []string{mainItem, noteItem},
				Values: map[string]decimal.Decimal{
					mainItem: mainValue,
					noteItem: noteValue,
				},
				Difference:     diff,
				DifferenceRate: differenceRate(diff, mainValue),
				Severity:       ClassifySeverity(diff, mainValue, e.config.Unit),
				Description: fmt.Sprintf("%s (%s) 与 %s (%s) 不符",
					mainItem, mainValue.StringFixed(2), noteItem, noteValue.StringFixed(2)),
			})
			e.log.WithFields(logger.Fields{
				"main": mainItem,
				"note": noteItem,
				"diff": diff.StringFixed(2),
			}).Info("reconciliation difference")
		}
	}
	return discrepancies
}

// SmartReconcile pairs a report's main statements with their footnote tables
// by name keywords and reconciles each pairing: the balance sheet against
// asset/liability notes, the income statement against revenue/expense/P&L
// notes.
func (e *Engine) SmartReconcile(report *models.Report) []models.DiscrepancyRecord {
	var discrepancies []models.DiscrepancyRecord
	if report == nil {
		return discrepancies
	}

	mainTables := report.TablesMatching("主表")
	noteTables := report.TablesMatching("附注", "明细")
	e.log.WithFields(logger.Fields{
		"main_tables": len(mainTables),
		"note_tables": len(noteTables),
	}).Info("pairing main statements with footnotes")

	pairings := []struct {
		mainKeyword  string
		noteKeywords []string
	}{
		{"资产负债表", []string{"资产", "负债"}},
		{"利润表", []string{"收入", "费用", "损益"}},
	}

	for mainName, mainTable := range mainTables {
		for _, pairing := range pairings {
			if !strings.Contains(mainName, pairing.mainKeyword) {
				continue
			}
			for noteName, noteTable := range noteTables {
				if !containsAny(noteName, pairing.noteKeywords) {
					continue
				}
				diffs := e.ReconcileTables(mainTable, noteTable)
				for i := range diffs {
					diffs[i].TableName = mainName + " / " + noteName
				}
				discrepancies = append(discrepancies, diffs...)
			}
		}
	}
	return discrepancies
}

// EvaluateRules extracts the statement values from a report and evaluates
// the given arithmetic identities against them.
func (e *Engine) EvaluateRules(report *models.Report, ruleSet []rules.Rule) []rules.EvaluationResult {
	values := e.ExtractStatementValues(report)
	results := rules.EvaluateAll(ruleSet, values, e.config.Tolerance)
	for _, result := range results {
		if result.Outcome == rules.OutcomeNotApplicable {
			e.log.WithFields(logger.Fields{
				"rule":    result.RuleID,
				"missing": result.MissingItems,
			}).Debug("rule not applicable")
		}
	}
	return results
}

// RunSummary aggregates one run's discrepancies.
type RunSummary struct {
	TotalDifferences int                            `json:"total_differences"`
	BySeverity       map[models.Severity]int        `json:"by_severity"`
	ByKind           map[models.DiscrepancyKind]int `json:"by_kind"`
}

// Summarize counts discrepancies by severity and kind.
func Summarize(discrepancies []models.DiscrepancyRecord) RunSummary {
	summary := RunSummary{
		TotalDifferences: len(discrepancies),
		BySeverity:       make(map[models.Severity]int),
		ByKind:           make(map[models.DiscrepancyKind]int),
	}
	for _, d := range discrepancies {
		summary.BySeverity[d.Severity]++
		summary.ByKind[d.Kind]++
	}
	return summary
}

// ValidateAll runs the full check suite over a set of filings keyed by year:
// cross-period consistency between consecutive years, then per-report
// main-vs-footnote reconciliation and auto-derived summation validation.
func (e *Engine) ValidateAll(reports map[string]*models.Report) ([]models.DiscrepancyRecord, RunSummary) {
	var all []models.DiscrepancyRecord

	years := sortedYears(reports)
	for i := 0; i+1 < len(years); i++ {
		prior, current := reports[years[i]], reports[years[i+1]]
		all = append(all, e.ReconcileCrossPeriod(current, prior, terms.CrossYearItems())...)
	}

	for _, year := range years {
		report := reports[year]
		e.log.WithField("year", year).Info("validating report internals")
		all = append(all, e.SmartReconcile(report)...)
		all = append(all, e.AutoValidateSummation(report)...)
	}

	summary := Summarize(all)
	e.log.WithField("total", summary.TotalDifferences).Info("validation complete")
	return all, summary
}

func sortedYears(reports map[string]*models.Report) []string {
	years := make([]string, 0, len(reports))
	for year := range reports {
		years = append(years, year)
	}
	sort.Strings(years)
	return years
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
