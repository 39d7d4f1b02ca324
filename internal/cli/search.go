package cli

import (
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the store with prices in USD",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("q", strings.Join(args, " "))
			if region != "" {
				q.Set("cc", region)
			}

			var result SearchResults
			if err := client.Get("/api/v1/catalog/search?"+q.Encode(), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "cc", "", "Store region (default US)")

	return cmd
}
