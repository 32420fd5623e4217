// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "repoviz",
	Short: "A CLI tool to collect and prepare GitHub repository metadata.",
	Long: `repoviz is a two-stage batch pipeline. "fetch" pulls repository
metadata above a star threshold from the GitHub search API into a raw
CSV file; "process" normalizes that file and derives analytics columns
for an external visualization tool.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Persistent flags shared by fetch and process.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "Path to the YAML configuration file")
}
