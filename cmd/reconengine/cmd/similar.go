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

var (
	similarCasesFile string
	similarQuery     string
	similarTopN      int
)

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Retrieve historical cases similar to a query",
	Long: `Similar segments the query and a case library, vectorizes both with
TF-IDF, and returns the closest cases by cosine similarity.

Example:
  reconengine similar --cases case_library.csv --query "债券投资估值差异" --top 5`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runSimilar())
	},
}

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().StringVar(&similarCasesFile, "cases", "", "case library CSV file")
	similarCmd.Flags().StringVar(&similarQuery, "query", "", "free-text query")
	similarCmd.Flags().IntVar(&similarTopN, "top", 5, "maximum number of results")
	similarCmd.MarkFlagRequired("cases")
	similarCmd.MarkFlagRequired("query")
}

func runSimilar() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cases, err := tableio.LoadCases(similarCasesFile)
	if err != nil {
		return err
	}

	retriever, err := similarity.NewRetriever(&similarity.RetrieverConfig{
		MaxFeatures:   cfg.MaxFeatures,
		MinSimilarity: cfg.MinSimilarity,
	}, cases, logger.GetGlobalLogger())
	if err != nil {
		return err
	}

	candidates := retriever.FindSimilar(similarQuery, similarTopN)

	format, err := reporter.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}
	return reporter.New(format, os.Stdout).RenderSimilar(candidates)
}
