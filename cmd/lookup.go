package cmd

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vzahanych/weather-lookup/internal/config"
)

func lookupCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "lookup <city>",
		Short: "Look up the weather of a city and print the resulting state",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			a := newApp(cfg, nil)

			if cmd.Flags().Changed("days") {
				a.store.Dispatch(cmd.Context(), a.actions.SetForecastDays(days))
			}

			city := strings.Join(args, " ")
			a.store.Dispatch(cmd.Context(), a.actions.GetWeather(city, a.store.GetState().ForecastDays))

			state := a.store.GetState()
			if state.Error != "" {
				return errors.New(state.Error)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "forecast days (clamped to 3..10)")
	return cmd
}
