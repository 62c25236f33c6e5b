// Package tableio loads tabular inputs into the models.Table shape the
// engine consumes. Only CSV is handled here; spreadsheet and PDF extraction
// live upstream and deliver the same shape.
package tableio

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"report-reconciliation-engine/internal/models"
	"report-reconciliation-engine/internal/similarity"
	engerrors "report-reconciliation-engine/pkg/errors"
)

// LoadTable reads a CSV file into a Table. The first record is the header
// row; every following record is a data row. The table name defaults to the
// file name without extension.
func LoadTable(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, engerrors.NewFileError(err, path)
	}
	defer f.Close()

	table, err := ReadTable(f, tableName(path))
	if err != nil {
		return nil, err
	}
	return table, nil
}

// ReadTable parses CSV content from a reader into a named Table.
func ReadTable(r io.Reader, name string) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, engerrors.NewParseError(err, "malformed CSV in "+name)
	}
	if len(records) == 0 {
		return nil, engerrors.New(engerrors.CategoryValidation, engerrors.CodeEmptyTable,
			"table %s has no rows", name).
			WithSuggestion("check that the file is not empty")
	}

	return models.NewTable(name, records[0], records[1:]), nil
}

// LoadReport loads a set of CSV files as one filing. Each file becomes a
// table keyed by its base name, so naming conventions (主表/附注 keywords)
// drive the smart pairing downstream.
func LoadReport(year string, paths []string) (*models.Report, error) {
	report := &models.Report{
		Year:   year,
		Tables: make(map[string]*models.Table),
	}
	for _, path := range paths {
		table, err := LoadTable(path)
		if err != nil {
			return nil, err
		}
		report.Tables[table.Name] = table
	}
	return report, nil
}

// LoadCases reads a case-library CSV with at least "case_id" and one or
// more text columns, concatenating the text columns into each case's
// retrievable text.
func LoadCases(path string) ([]similarity.Case, error) {
	table, err := LoadTable(path)
	if err != nil {
		return nil, err
	}

	idCol := -1
	for i, col := range table.Columns {
		if strings.EqualFold(strings.TrimSpace(col), "case_id") {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return nil, engerrors.New(engerrors.CategoryParse, engerrors.CodeMissingColumn,
			"case file %s has no case_id column", path)
	}

	cases := make([]similarity.Case, 0, len(table.Rows))
	for _, row := range table.Rows {
		if idCol >= len(row) {
			continue
		}
		var parts []string
		for i, cell := range row {
			if i == idCol {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				parts = append(parts, cell)
			}
		}
		cases = append(cases, similarity.Case{
			ID:   strings.TrimSpace(row[idCol]),
			Text: strings.Join(parts, " "),
		})
	}
	return cases, nil
}

// LoadTrades reads settlement trade records for duplicate detection. The
// header must name id, account, security, amount and settlement_date
// columns; unparsable amounts or dates leave the zero value in place so one
// bad row does not sink the file.
func LoadTrades(path string) ([]similarity.TradeRecord, error) {
	table, err := LoadTable(path)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(table.Columns))
	for i, col := range table.Columns {
		columns[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"id", "account", "security", "amount", "settlement_date"} {
		if _, ok := columns[required]; !ok {
			return nil, engerrors.New(engerrors.CategoryParse, engerrors.CodeMissingColumn,
				"trade file %s is missing column %q", path, required)
		}
	}

	cell := func(row []string, name string) string {
		if i := columns[name]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	trades := make([]similarity.TradeRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := similarity.TradeRecord{
			ID:       cell(row, "id"),
			Account:  cell(row, "account"),
			Security: cell(row, "security"),
		}
		if amount, err := decimal.NewFromString(strings.ReplaceAll(cell(row, "amount"), ",", "")); err == nil {
			record.Amount = amount
		}
		if date, err := time.Parse("2006-01-02", cell(row, "settlement_date")); err == nil {
			record.SettlementDate = date
		}
		trades = append(trades, record)
	}
	return trades, nil
}

func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
