package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"stocktagger/cmd"
	"stocktagger/internal"
	"stocktagger/internal/app"
	"stocktagger/internal/logger"
	"stocktagger/internal/repository"
	"stocktagger/internal/util"

	"github.com/spf13/cobra"
)

var (
	configPath string
	symbols    string
)

var rootCmd = &cobra.Command{
	Use:           "pipeline",
	Short:         "Batch stages that build features, labels and the model",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var fetchPricesCmd = &cobra.Command{
	Use:   "fetch-prices",
	Short: "Download daily adjusted closes into the raw prices file",
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		list := parseSymbols(symbols)
		if len(list) == 0 {
			return fmt.Errorf("--symbols is required")
		}
		return internal.IngestPrices(
			newContext(),
			list,
			internal.FetchYahooPrices,
			repository.NewAdjustedPriceRepository(cfg.PricesPath()),
		)
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run every stage in order",
	RunE: func(c *cobra.Command, args []string) error {
		return runStages(app.Stages()...)
	},
}

func stageCmd(stage app.Stage, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(stage),
		Short: short,
		RunE: func(c *cobra.Command, args []string) error {
			return runStages(stage)
		},
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (defaults to the STOCKTAGGER_ENV config)")
	fetchPricesCmd.Flags().StringVar(&symbols, "symbols", "", "comma separated symbols to download")

	rootCmd.AddCommand(
		fetchPricesCmd,
		stageCmd(app.StagePriceFeatures, "Compute rolling volatility and momentum per symbol"),
		stageCmd(app.StageFundamentals, "Pivot and clean raw fundamentals"),
		stageCmd(app.StageCombine, "Join fundamentals with price features"),
		stageCmd(app.StageTrain, "Derive labels, train and save the model"),
		allCmd,
	)
}

func loadConfig() (*util.Config, error) {
	if configPath != "" {
		return util.LoadConfigFile(configPath)
	}
	return util.LoadConfig()
}

func newContext() context.Context {
	return logger.WithLogger(context.Background(), logger.New())
}

func runStages(stages ...app.Stage) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return cmd.InitializePipeline(*cfg).Run(newContext(), stages...)
}

func parseSymbols(s string) []string {
	out := []string{}
	for _, symbol := range strings.Split(s, ",") {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol != "" {
			out = append(out, symbol)
		}
	}
	return out
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
