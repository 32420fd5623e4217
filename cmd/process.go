// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/repoviz/repoviz/internal/store"
	"github.com/repoviz/repoviz/internal/usecase"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Normalizes the raw data file and derives analytics columns",
	Long: `Reads the raw CSV file produced by fetch, coerces timestamps,
normalizes the language field, derives activity and popularity metrics,
and writes the processed CSV file consumed by the visualization tool.
Records failing shape validation are excluded and counted in the run
summary.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := loadConfig(cmd)

		if cmd.Flags().Changed("input") {
			cfg.RawPath, _ = cmd.Flags().GetString("input")
		}
		if cmd.Flags().Changed("output") {
			cfg.ProcessedPath, _ = cmd.Flags().GetString("output")
		}

		processor := usecase.NewProcessor(store.NewCSVStore(log), time.Now().UTC(), log)

		summary, err := processor.Run(cfg.RawPath, cfg.ProcessedPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to process data: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Processed %d of %d repositories (%d excluded) to %s\n",
			summary.Processed, summary.Loaded, summary.Excluded, cfg.ProcessedPath)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringP("input", "i", "", "Raw data file path (overrides config)")
	processCmd.Flags().StringP("output", "o", "", "Processed data file path (overrides config)")
}
