package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"report-reconciliation-engine/cmd/reconengine/config"
	"report-reconciliation-engine/internal/reporter"
	"report-reconciliation-engine/internal/similarity"
	"report-reconciliation-engine/internal/tableio"
	"report-reconciliation-engine/pkg/logger"
)

var dupesTradesFile string

var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "Detect suspected duplicate trades per account",
	Long: `Dupes clusters each account's trades over amount, settlement date and
security, and reports clusters of near-identical records as suspected
duplicates.

Example:
  reconengine dupes --trades settlement_trades.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runDupes())
	},
}

func init() {
	rootCmd.AddCommand(dupesCmd)

	dupesCmd.Flags().StringVar(&dupesTradesFile, "trades", "", "trade records CSV file")
	dupesCmd.MarkFlagRequired("trades")
}

func runDupes() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	trades, err := tableio.LoadTrades(dupesTradesFile)
	if err != nil {
		return err
	}

	detector := similarity.NewDuplicateDetector(logger.GetGlobalLogger())
	groups := detector.Detect(trades, similarity.ByAccount)

	format, err := reporter.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}
	return reporter.New(format, os.Stdout).RenderDuplicates(groups)
}
