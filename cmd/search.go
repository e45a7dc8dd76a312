package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vzahanych/weather-lookup/internal/config"
)

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "List reference cities matching a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(config.GetConfig(), nil)

			cities, err := a.client.SearchCity(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			for _, c := range cities {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%.4f, %.4f)\n", c.Label(), c.Lat, c.Lon)
			}
			return nil
		},
	}
}
