// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/repoviz/repoviz/internal/config"
	"github.com/repoviz/repoviz/internal/gateway"
	"github.com/repoviz/repoviz/internal/logger"
	"github.com/repoviz/repoviz/internal/store"
	"github.com/repoviz/repoviz/internal/usecase"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches repository metadata from the GitHub search API",
	Long: `Fetches repositories above the configured star threshold, sorted by
stars descending, page by page, and writes them to the raw CSV file.
The GITHUB_TOKEN environment variable must hold a valid API token.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, log := loadConfig(cmd)

		// The token check happens before any request is made.
		if err := cfg.LoadToken(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		applyFetchFlags(cmd, cfg)

		githubGateway, err := gateway.NewGitHubGateway(cfg.Token, cfg.Retry.Attempts, cfg.Retry.Backoff(), log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		collector := usecase.NewCollector(githubGateway, store.NewCSVStore(log), log)

		count, err := collector.Run(ctx, cfg.MinStars, cfg.PageSize, cfg.MaxPages, cfg.RawPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch repositories: %v\n", err)
			os.Exit(1)
		}

		if count == 0 {
			fmt.Println("No repositories fetched.")
			return
		}
		fmt.Printf("Fetched %d repositories to %s\n", count, cfg.RawPath)
	},
}

// loadConfig reads the shared flags, loads the YAML config, and builds
// the logger. Fatal configuration errors exit here.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger) {
	cfgPath, _ := cmd.InheritedFlags().GetString("config")
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return cfg, logger.New(os.Stderr, cfg.LogLevel, verbose)
}

func applyFetchFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("min-stars") {
		cfg.MinStars, _ = cmd.Flags().GetInt("min-stars")
	}
	if cmd.Flags().Changed("page-size") {
		cfg.PageSize, _ = cmd.Flags().GetInt("page-size")
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.MaxPages, _ = cmd.Flags().GetInt("max-pages")
	}
	if cmd.Flags().Changed("output") {
		cfg.RawPath, _ = cmd.Flags().GetString("output")
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().Int("min-stars", 0, "Minimum star count (overrides config)")
	fetchCmd.Flags().Int("page-size", 0, "Results per page, at most 100 (overrides config)")
	fetchCmd.Flags().Int("max-pages", 0, "Maximum number of pages to fetch (overrides config)")
	fetchCmd.Flags().StringP("output", "o", "", "Raw data file path (overrides config)")
}
