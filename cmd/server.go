package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/internal/debounce"
	"github.com/vzahanych/weather-lookup/internal/scheduler"
	"github.com/vzahanych/weather-lookup/internal/server"
	"github.com/vzahanych/weather-lookup/internal/server/handlers"
)

func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the weather lookup HTTP server",
		Long:  `Start the HTTP server exposing the weather state, lookups and typeahead suggestions.`,
		Args:  cobra.NoArgs,
		RunE:  runServer,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	log.Info("Starting weather lookup server",
		zap.String("config_path", configPath),
		zap.String("environment", cfg.Environment),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port))

	metrics := handlers.NewMetricsHandler(log.Logger)
	a := newApp(cfg, metrics, metrics.EventMiddleware())

	refresh := scheduler.New(
		time.Duration(cfg.App.RefreshInterval)*time.Second,
		a.store,
		a.actions.LoadInitialCities,
		log.Logger,
	)
	if err := refresh.Start(); err != nil {
		return err
	}
	defer refresh.Stop()

	srv := server.NewServer(cfg.Server, server.Deps{
		Store:     a.store,
		Actions:   a.actions,
		Client:    a.client,
		Debouncer: debounce.New(time.Duration(cfg.App.SuggestionDebounceMs) * time.Millisecond),
		Metrics:   metrics,
		Checks: []handlers.ReadinessCheck{
			{Name: a.client.Name(), Check: a.client.Ready},
		},
	}, log.Logger, tele)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Error("Server error", zap.Error(err))
		}
		return err
	case <-cmd.Context().Done():
		log.Info("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
