// Package main provides the rentscore CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rentscore/rentscore/pkg/config"
)

var version = "dev"

// cfg is loaded by the root command before any subcommand runs.
var cfg *config.Config

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "rentscore",
		Short: "Tenant risk scoring and rent collection forecasting",
		Long: `Rentscore scores tenants and renters, forecasts rent collection across a
portfolio, and rates a renter's negotiating position on a lease renewal.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := config.InitLogger(loaded.Log); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: search for .rentscore/config.yaml)")

	rootCmd.AddCommand(
		newScoreCmd(),
		newCalculatorsCmd(),
		newRosterCmd(),
		newMigrateCmd(),
		newInitCmd(),
	)
	return rootCmd
}

// firstNonEmpty returns the first non-empty string from the arguments.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
