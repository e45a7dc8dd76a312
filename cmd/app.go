package cmd

import (
	"github.com/vzahanych/weather-lookup/internal/actions"
	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/internal/service"
	"github.com/vzahanych/weather-lookup/internal/store"
)

// app is the core shared by every subcommand: provider client, state store
// and the dispatchers bound to them.
type app struct {
	client  *service.OpenWeatherService
	store   *store.Store
	actions *actions.Actions
}

func newApp(cfg *config.Config, recorder service.MetricsRecorder, middlewares ...store.Middleware) *app {
	client := service.NewOpenWeatherServiceWithConfig(cfg.Provider, log.Logger, tele)
	if recorder != nil {
		client.SetMetricsRecorder(recorder)
	}

	middlewares = append([]store.Middleware{store.LoggingMiddleware(log.Logger)}, middlewares...)
	initial := store.InitialState()
	initial.ForecastDays = service.ClampForecastDays(cfg.App.DefaultForecastDays)

	return &app{
		client:  client,
		store:   store.New(store.Reduce, initial, log.Logger, middlewares...),
		actions: actions.New(client, cfg.App.InitialCities, log.Logger, tele),
	}
}
