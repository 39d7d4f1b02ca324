package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPurchaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Purchase administration (requires login)",
	}

	cmd.AddCommand(newPurchaseAddCmd())
	cmd.AddCommand(newPurchasePriceCmd())
	cmd.AddCommand(newPurchaseDeleteCmd())

	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func newPurchaseAddCmd() *cobra.Command {
	var (
		participant int64
		game        string
		appID       int64
		price       float64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a purchase",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"participant_id": participant,
				"game_name":      game,
				"price":          price,
			}
			if appID > 0 {
				req["game_appid"] = appID
			}

			var result Purchase
			if err := client.Post("/api/v1/purchases", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&participant, "participant", 0, "Participant id (required)")
	cmd.Flags().StringVar(&game, "game", "", "Game name (required)")
	cmd.Flags().Int64Var(&appID, "appid", 0, "Steam app id")
	cmd.Flags().Float64Var(&price, "price", 0, "Price in USD (required)")
	_ = cmd.MarkFlagRequired("participant")
	_ = cmd.MarkFlagRequired("game")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func newPurchasePriceCmd() *cobra.Command {
	var price float64

	cmd := &cobra.Command{
		Use:   "price <id>",
		Short: "Change a purchase's price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := client.Patch(fmt.Sprintf("/api/v1/purchases/%d", id), map[string]float64{"price": price}, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Purchase %d updated", id))
			return nil
		},
	}

	cmd.Flags().Float64Var(&price, "price", 0, "New price in USD (required)")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func newPurchaseDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a purchase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := client.Delete(fmt.Sprintf("/api/v1/purchases/%d", id)); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Purchase %d deleted", id))
			return nil
		},
	}
}
