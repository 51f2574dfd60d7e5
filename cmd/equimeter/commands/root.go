package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/equimeter/pkg/config"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "equimeter",
	Short: "Equimeter - NSE/BSE 종목 종합 점수 서비스",
	Long: `Equimeter Unified CLI

Indian equities analysis backend.
Scrapes fundamentals, pulls prices and news, and folds
valuation, technical, fundamental, shareholding and sentiment
signals into one 0-100 score.

Usage:
  go run ./cmd/equimeter [command]

Examples:
  go run ./cmd/equimeter api
  go run ./cmd/equimeter score TCS
  go run ./cmd/equimeter symbols tata
  go run ./cmd/equimeter scheduler run
  go run ./cmd/equimeter test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig reads the environment and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
