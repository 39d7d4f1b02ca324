package cli

import (
	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile libraries (requires login or --cron-secret)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "libraries",
		Short: "Queue newly acquired paid games for approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SyncResult

			if err := client.WithToken(cfg.TriggerToken()).Post("/api/v1/sync/libraries", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "returns",
		Short: "Remove purchases for games no longer owned",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ReturnsResult

			if err := client.WithToken(cfg.TriggerToken()).Post("/api/v1/sync/returns", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	return cmd
}

func newCloseMonthCmd() *cobra.Command {
	var month, year int

	cmd := &cobra.Command{
		Use:   "close-month",
		Short: "Award trophies for a month (default: the previous month)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if month != 0 || year != 0 {
				body = map[string]int{"month": month, "year": year}
			}

			var result CloseResult
			if err := client.WithToken(cfg.TriggerToken()).Post("/api/v1/months/close", body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&month, "month", 0, "Month (1-12)")
	cmd.Flags().IntVar(&year, "year", 0, "Year")

	return cmd
}
