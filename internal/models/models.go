// Package models defines the core data types shared by the reconciliation
// engine: tabular inputs, extracted line items, and the discrepancy and
// similarity records produced by a reconciliation run.
//
// All entities are plain values owned by the call that produced them. The
// engine keeps no state between runs, so none of these types carry identity
// across invocations.
package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Period identifies which reporting period a value belongs to.
type Period string

const (
	// PeriodCurrent is the period the report under review covers.
	PeriodCurrent Period = "current"
	// PeriodPrior is the comparative period restated inside the report.
	PeriodPrior Period = "prior"
)

// IsValid checks if the period is one of the known values.
func (p Period) IsValid() bool {
	return p == PeriodCurrent || p == PeriodPrior
}

// Table is an in-memory tabular dataset: a header row of column labels and
// data rows whose first cell is the row label (the line-item name).
// Producing a Table from a spreadsheet or extracted PDF is the caller's
// concern; the engine only ever sees this shape.
type Table struct {
	Name    string     `json:"name,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewTable creates a table with the given name, column headers and rows.
func NewTable(name string, columns []string, rows [][]string) *Table {
	return &Table{Name: name, Columns: columns, Rows: rows}
}

// IsEmpty reports whether the table has no data rows.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// Labels returns the first-column row labels, in row order. Rows with no
// cells contribute an empty string so indices stay aligned with Rows.
func (t *Table) Labels() []string {
	if t == nil {
		return nil
	}
	labels := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) > 0 {
			labels[i] = strings.TrimSpace(row[0])
		}
	}
	return labels
}

// ColumnIndex returns the index of the first column whose header contains
// any of the given keywords, or -1 when none matches.
func (t *Table) ColumnIndex(keywords ...string) int {
	if t == nil {
		return -1
	}
	for i, col := range t.Columns {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(col, kw) {
				return i
			}
		}
	}
	return -1
}

// Report groups the named tables of one filing, keyed by table name
// (e.g. "资产负债表主表", "资产明细附注").
type Report struct {
	Year   string            `json:"year"`
	Tables map[string]*Table `json:"tables"`
}

// TablesMatching returns the tables whose name contains any of the given
// keywords, keyed by their original names.
func (r *Report) TablesMatching(keywords ...string) map[string]*Table {
	matched := make(map[string]*Table)
	if r == nil {
		return matched
	}
	for name, table := range r.Tables {
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				matched[name] = table
				break
			}
		}
	}
	return matched
}

// LineItem is a single extracted statement line: a label, the parsed value,
// and where it came from. Immutable once extracted.
type LineItem struct {
	Name        string          `json:"name"`
	Value       decimal.Decimal `json:"value"`
	HasValue    bool            `json:"has_value"`
	SourceTable string          `json:"source_table,omitempty"`
	Period      Period          `json:"period,omitempty"`
}

// String returns a short human-readable form of the line item.
func (li LineItem) String() string {
	if !li.HasValue {
		return fmt.Sprintf("LineItem{%s: <absent>}", li.Name)
	}
	return fmt.Sprintf("LineItem{%s: %s}", li.Name, li.Value.String())
}

// Severity is the coarse ranking of how concerning a discrepancy is.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// IsValid checks if the severity is one of the known levels.
func (s Severity) IsValid() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}

// Rank orders severities for sorting: High > Medium > Low.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// DiscrepancyKind tags the check that produced a discrepancy.
type DiscrepancyKind string

const (
	// KindReconciliation marks a main-table vs footnote mismatch.
	KindReconciliation DiscrepancyKind = "reconciliation"
	// KindCrossPeriod marks a restated comparative that differs from the
	// prior filing.
	KindCrossPeriod DiscrepancyKind = "cross_period"
	// KindSummation marks a reported total that does not equal the sum of
	// its component lines.
	KindSummation DiscrepancyKind = "summation"
)

// DiscrepancyRecord is one reported mismatch. Records are created fresh per
// run and have no identity across runs.
type DiscrepancyRecord struct {
	Kind           DiscrepancyKind            `json:"kind"`
	RuleID         string                     `json:"rule_id,omitempty"`
	Category       string                     `json:"category,omitempty"`
	TableName      string                     `json:"table_name,omitempty"`
	Items          []string                   `json:"items"`
	Values         map[string]decimal.Decimal `json:"values"`
	Difference     decimal.Decimal            `json:"difference"`
	DifferenceRate float64                    `json:"difference_rate"`
	Severity       Severity                   `json:"severity"`
	Description    string                     `json:"description"`
}

// String returns a one-line summary of the discrepancy.
func (d *DiscrepancyRecord) String() string {
	return fmt.Sprintf("[%s/%s] %s (diff=%s)",
		d.Kind, d.Severity, d.Description, d.Difference.StringFixed(2))
}

// MarshalJSON renders decimal values as plain strings so downstream
// consumers never see float rounding artifacts.
func (d *DiscrepancyRecord) MarshalJSON() ([]byte, error) {
	values := make(map[string]string, len(d.Values))
	for name, v := range d.Values {
		values[name] = v.String()
	}
	type Alias DiscrepancyRecord
	return json.Marshal(&struct {
		Values     map[string]string `json:"values"`
		Difference string            `json:"difference"`
		*Alias
	}{
		Values:     values,
		Difference: d.Difference.String(),
		Alias:      (*Alias)(d),
	})
}

// SimilarityCandidate is a scored near-match between a query and one corpus
// record. Produced transiently by the retrieval component; never persisted.
type SimilarityCandidate struct {
	SourceID      string   `json:"source_id"`
	TargetID      string   `json:"target_id"`
	Score         float64  `json:"score"`
	MatchedFields []string `json:"matched_fields,omitempty"`
}

// DuplicateGroup reports a cluster of records in one partition that look
// like duplicates of each other.
type DuplicateGroup struct {
	PartitionKey  string `json:"partition_key"`
	MemberIndices []int  `json:"member_indices"`
	Size          int    `json:"size"`
}

// String returns a short human-readable form of the duplicate group.
func (g DuplicateGroup) String() string {
	return fmt.Sprintf("DuplicateGroup{%s: %d records}", g.PartitionKey, g.Size)
}
