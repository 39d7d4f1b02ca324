package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Pending purchase queue",
	}

	cmd.AddCommand(newPendingListCmd())
	cmd.AddCommand(newPendingSuggestCmd())
	cmd.AddCommand(newPendingApproveCmd())
	cmd.AddCommand(newPendingRejectCmd())

	return cmd
}

func newPendingListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending purchases, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PendingList

			if err := client.Get("/api/v1/pending", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPendingSuggestCmd() *cobra.Command {
	var (
		participant int64
		game        string
		appID       int64
		price       float64
		currency    string
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest a purchase for approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"participant_id": participant,
				"game_name":      game,
				"price":          price,
				"currency":       currency,
			}
			if appID > 0 {
				req["game_appid"] = appID
			}

			var result Pending
			if err := client.Post("/api/v1/pending", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&participant, "participant", 0, "Participant id (required)")
	cmd.Flags().StringVar(&game, "game", "", "Game name (required)")
	cmd.Flags().Int64Var(&appID, "appid", 0, "Steam app id")
	cmd.Flags().Float64Var(&price, "price", 0, "Price (required)")
	cmd.Flags().StringVar(&currency, "currency", "USD", "Price currency")
	_ = cmd.MarkFlagRequired("participant")
	_ = cmd.MarkFlagRequired("game")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func newPendingApproveCmd() *cobra.Command {
	var price float64

	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending purchase (requires login)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var body any
			if cmd.Flags().Changed("price") {
				body = map[string]float64{"price": price}
			}

			var result Purchase
			if err := client.Post(fmt.Sprintf("/api/v1/pending/%d/approve", id), body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().Float64Var(&price, "price", 0, "Override the detected price (USD)")

	return cmd
}

func newPendingRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending purchase (requires login)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := client.Delete(fmt.Sprintf("/api/v1/pending/%d", id)); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Pending purchase %d rejected", id))
			return nil
		},
	}
}
