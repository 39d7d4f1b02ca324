package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "spendctl",
		Short: "CLI tool for the spendboard API",
		Long: `spendctl is a CLI tool for the spendboard JSON API.

It covers the leaderboard, purchase administration, the pending approval
queue, store search, and the batch triggers (library sync, return detection
and month close).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: SPENDBOARD_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: SPENDBOARD_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: SPENDBOARD_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.CronSecret, "cron-secret", cfg.CronSecret, "Trigger secret for sync and close-month (env: SPENDBOARD_CRON_SECRET)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newTrophiesCmd())
	rootCmd.AddCommand(newPurchaseCmd())
	rootCmd.AddCommand(newPendingCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newCloseMonthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		NewOutput(cfg.Output).PrintError(err, cfg.Verbose)
		os.Exit(1)
	}
}
