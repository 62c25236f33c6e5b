// Package reporter renders reconciliation results for operators: a readable
// text summary, machine-readable JSON, or CSV for spreadsheet review.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"report-reconciliation-engine/internal/models"
	"report-reconciliation-engine/internal/reconciler"
	"report-reconciliation-engine/internal/rules"
	engerrors "report-reconciliation-engine/pkg/errors"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name from config or flags.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", engerrors.NewConfigError(engerrors.CodeInvalidConfig,
			"unknown output format %q", s).
			WithSuggestion("use text, json or csv")
	}
}

// Reporter writes reconciliation results to a single destination.
type Reporter struct {
	format Format
	out    io.Writer
}

// New creates a reporter writing the given format to out.
func New(format Format, out io.Writer) *Reporter {
	return &Reporter{format: format, out: out}
}

// Result bundles everything one run produced.
type Result struct {
	Discrepancies []models.DiscrepancyRecord `json:"discrepancies"`
	RuleResults   []rules.EvaluationResult   `json:"rule_results,omitempty"`
	Summary       reconciler.RunSummary      `json:"summary"`
}

// Render writes the result in the reporter's format.
func (r *Reporter) Render(result Result) error {
	switch r.format {
	case FormatJSON:
		return r.renderJSON(result)
	case FormatCSV:
		return r.renderCSV(result)
	default:
		return r.renderText(result)
	}
}

func (r *Reporter) renderJSON(result Result) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func (r *Reporter) renderCSV(result Result) error {
	w := csv.NewWriter(r.out)
	if err := w.Write([]string{"kind", "severity", "items", "difference", "difference_rate", "description"}); err != nil {
		return err
	}
	for _, d := range result.Discrepancies {
		record := []string{
			string(d.Kind),
			string(d.Severity),
			strings.Join(d.Items, "|"),
			d.Difference.StringFixed(2),
			strconv.FormatFloat(d.DifferenceRate, 'f', 6, 64),
			d.Description,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (r *Reporter) renderText(result Result) error {
	fmt.Fprintf(r.out, "Reconciliation result: %d difference(s)\n", result.Summary.TotalDifferences)
	if result.Summary.TotalDifferences > 0 {
		fmt.Fprintf(r.out, "  High: %d  Medium: %d  Low: %d\n",
			result.Summary.BySeverity[models.SeverityHigh],
			result.Summary.BySeverity[models.SeverityMedium],
			result.Summary.BySeverity[models.SeverityLow])
	}

	sorted := make([]models.DiscrepancyRecord, len(result.Discrepancies))
	copy(sorted, result.Discrepancies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() > sorted[j].Severity.Rank()
	})
	for _, d := range sorted {
		fmt.Fprintf(r.out, "  [%s] %-6s %s (diff=%s)\n",
			d.Kind, d.Severity, d.Description, d.Difference.StringFixed(2))
	}

	if len(result.RuleResults) > 0 {
		fmt.Fprintln(r.out, "Rule evaluations:")
		for _, res := range result.RuleResults {
			switch res.Outcome {
			case rules.OutcomePass:
				fmt.Fprintf(r.out, "  PASS %s (%s)\n", res.Name, res.Formula)
			case rules.OutcomeFail:
				fmt.Fprintf(r.out, "  FAIL %s (%s) diff=%s\n",
					res.Name, res.Formula, res.Difference.StringFixed(2))
			case rules.OutcomeNotApplicable:
				fmt.Fprintf(r.out, "  N/A  %s (missing: %s)\n",
					res.Name, strings.Join(res.MissingItems, ", "))
			}
		}
	}
	return nil
}

// RenderSimilar writes ranked similarity candidates.
func (r *Reporter) RenderSimilar(candidates []models.SimilarityCandidate) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	case FormatCSV:
		w := csv.NewWriter(r.out)
		if err := w.Write([]string{"target_id", "score"}); err != nil {
			return err
		}
		for _, c := range candidates {
			if err := w.Write([]string{c.TargetID, strconv.FormatFloat(c.Score, 'f', 4, 64)}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	default:
		fmt.Fprintf(r.out, "%d similar case(s)\n", len(candidates))
		for i, c := range candidates {
			fmt.Fprintf(r.out, "  %d. %s (score %.4f)\n", i+1, c.TargetID, c.Score)
		}
		return nil
	}
}

// RenderDuplicates writes suspected duplicate groups.
func (r *Reporter) RenderDuplicates(groups []models.DuplicateGroup) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	default:
		fmt.Fprintf(r.out, "%d suspected duplicate group(s)\n", len(groups))
		for _, g := range groups {
			fmt.Fprintf(r.out, "  %s: records %v\n", g.PartitionKey, g.MemberIndices)
		}
		return nil
	}
}
