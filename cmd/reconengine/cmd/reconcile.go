package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"report-reconciliation-engine/cmd/reconengine/config"
	"report-reconciliation-engine/internal/reconciler"
	"report-reconciliation-engine/internal/reporter"
	"report-reconciliation-engine/internal/rules"
	"report-reconciliation-engine/internal/tableio"
	"report-reconciliation-engine/internal/terms"
	"report-reconciliation-engine/pkg/logger"
)

var (
	reconcileMainFile  string
	reconcileNoteFile  string
	reconcileReportFiles []string
	reconcileWithRules bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a main statement table against its footnote table",
	Long: `Reconcile checks each line item of the main table against matching
footnote items, validates summation groupings derived from row layout, and
optionally evaluates the built-in arithmetic identities over a full report.

Examples:
  reconengine reconcile --main 资产负债表主表.csv --note 资产明细附注.csv
  reconengine reconcile --report 2023_资产负债表主表.csv --report 2023_资产明细附注.csv --rules`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runReconcile())
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&reconcileMainFile, "main", "", "main statement CSV file")
	reconcileCmd.Flags().StringVar(&reconcileNoteFile, "note", "", "footnote CSV file")
	reconcileCmd.Flags().StringArrayVar(&reconcileReportFiles, "report", nil, "report table CSV files (repeatable)")
	reconcileCmd.Flags().BoolVar(&reconcileWithRules, "rules", false, "also evaluate the built-in arithmetic identities")
}

func runReconcile() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	resolver := terms.DefaultResolver()
	ruleSet := rules.AllBuiltin()
	if err := rules.ValidateCoverage(ruleSet, resolver); err != nil {
		return err
	}

	engine, err := reconciler.NewEngine(cfg.EngineConfig(), resolver, logger.GetGlobalLogger())
	if err != nil {
		return err
	}

	result := reporter.Result{}

	if reconcileMainFile != "" && reconcileNoteFile != "" {
		mainTable, err := tableio.LoadTable(reconcileMainFile)
		if err != nil {
			return err
		}
		noteTable, err := tableio.LoadTable(reconcileNoteFile)
		if err != nil {
			return err
		}
		result.Discrepancies = append(result.Discrepancies, engine.ReconcileTables(mainTable, noteTable)...)
		result.Discrepancies = append(result.Discrepancies,
			engine.ValidateSummation(mainTable, reconciler.SuggestSummationRules(mainTable))...)
	}

	if len(reconcileReportFiles) > 0 {
		report, err := tableio.LoadReport("", reconcileReportFiles)
		if err != nil {
			return err
		}
		result.Discrepancies = append(result.Discrepancies, engine.SmartReconcile(report)...)
		result.Discrepancies = append(result.Discrepancies, engine.AutoValidateSummation(report)...)
		if reconcileWithRules {
			result.RuleResults = engine.EvaluateRules(report, ruleSet)
		}
	}

	result.Summary = reconciler.Summarize(result.Discrepancies)

	format, err := reporter.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}
	return reporter.New(format, os.Stdout).Render(result)
}
