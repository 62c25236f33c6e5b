package reconciler

import (
	"fmt"

	"github.com/shopspring/decimal"

	"report-reconciliation-engine/internal/extract"
	"report-reconciliation-engine/internal/models"
	"report-reconciliation-engine/pkg/logger"
)

// ReconcileCrossPeriod verifies that the comparative figures restated in the
// current filing equal what the prior filing actually reported.
//
// For each item, the prior-period column of the current report is compared
// against the current-period column of the prior report. These values must
// match exactly: a restated comparative that drifted is a compliance signal,
// not a rounding nuisance, so any nonzero difference is High severity
// regardless of magnitude and the configured tolerance does not apply.
// Items that cannot be extracted from either side are skipped.
func (e *Engine) ReconcileCrossPeriod(currentReport, priorReport *models.Report, items []string) []models.DiscrepancyRecord {
	var discrepancies []models.DiscrepancyRecord

	e.log.WithFields(logger.Fields{
		"current": yearOf(currentReport),
		"prior":   yearOf(priorReport),
	}).Info("cross-period comparison")

	for _, item := range items {
		restated, okRestated := e.extractor.FromReport(currentReport, item, extract.PriorPeriodColumn())
		reported, okReported := e.extractor.FromReport(priorReport, item, extract.CurrentPeriodColumn())

		if !okRestated || !okReported {
			e.log.WithField("item", item).Debug("cross-period value absent, item skipped")
			continue
		}

		if restated.Equal(reported) {
			continue
		}

		diff := restated.Sub(reported).Abs()
		discrepancies = append(discrepancies, models.DiscrepancyRecord{
			Kind:     models.KindCrossPeriod,
			Category: "跨年不一致",
			Items:    []string{item},
			Values: map[string]decimal.Decimal{
				"current_report_restated": restated,
				"prior_report_reported":   reported,
			},
			Difference:     diff,
			DifferenceRate: differenceRate(diff, reported),
			Severity:       models.SeverityHigh,
			Description: fmt.Sprintf("%s: 本年报告的上年数 %s 与上年报告数 %s 不一致",
				item, restated.StringFixed(2), reported.StringFixed(2)),
		})
		e.log.WithFields(logger.Fields{
			"item": item,
			"diff": diff.StringFixed(2),
		}).Warn("cross-period inconsistency")
	}
	return discrepancies
}

func yearOf(report *models.Report) string {
	if report == nil {
		return ""
	}
	return report.Year
}
