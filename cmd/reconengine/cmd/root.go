package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"report-reconciliation-engine/cmd/reconengine/config"
	"report-reconciliation-engine/pkg/logger"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reconengine",
	Short: "Financial report reconciliation and fuzzy-match engine",
	Long: `Reconengine checks financial statement tables for internal consistency:
main-table vs footnote reconciliation, cross-period comparative checks,
summation validation, and similarity-based duplicate and case retrieval.

Examples:
  reconengine reconcile --main balance_主表.csv --note assets_附注.csv
  reconengine crosscheck --current 2023/*.csv --prior 2022/*.csv
  reconengine dupes --trades trades.csv
  reconengine similar --cases case_library.csv --query "债券投资估值差异"`,
	Version: version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("output-format", "text", "output format: text, json or csv")
	rootCmd.PersistentFlags().Float64("tolerance", 2.0, "same-period difference tolerance, in the configured unit")
	rootCmd.PersistentFlags().String("unit", "yuan", "currency unit of the input data: yuan or minor")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("output_format", rootCmd.PersistentFlags().Lookup("output-format"))
	viper.BindPFlag("tolerance", rootCmd.PersistentFlags().Lookup("tolerance"))
	viper.BindPFlag("unit", rootCmd.PersistentFlags().Lookup("unit"))
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	config.SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(1)
		}
	}

	if viper.GetBool("verbose") {
		if l, err := logger.New(logger.DebugConfig()); err == nil {
			logger.SetGlobalLogger(l)
		}
	}
}
