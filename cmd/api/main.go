package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/config"
	"github.com/01moynul/finmanager-golang/internal/logging"
)

var (
	// Global flags
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd serves the API when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "finmanager",
	Short: "FinManager AI - personal finance dashboard API",
	Long: `FinManager serves the dashboard API: sign-in, subscriptions,
the daily AI allowance and the finance assistant.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 0. --- Load Environment Variables (.env) ---
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		// 1. --- Logger ---
		level := cfg.App.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(plansCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
