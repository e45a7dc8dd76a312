package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-lookup/internal/actions"
	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/internal/debounce"
	"github.com/vzahanych/weather-lookup/internal/server/handlers"
	"github.com/vzahanych/weather-lookup/internal/server/middlewares"
	"github.com/vzahanych/weather-lookup/internal/service"
	"github.com/vzahanych/weather-lookup/internal/store"
	"github.com/vzahanych/weather-lookup/pkg/telemetry"
)

// Deps are the collaborators the HTTP facade serves.
type Deps struct {
	Store     *store.Store
	Actions   *actions.Actions
	Client    service.WeatherClient
	Debouncer *debounce.Debouncer
	Metrics   *handlers.MetricsHandler
	Checks    []handlers.ReadinessCheck
}

type Server struct {
	engine *gin.Engine
	server *http.Server
	deps   Deps
	logger *zap.Logger
	tele   *telemetry.Telemetry
}

func NewServer(cfg config.ServerConfig, deps Deps, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	if deps.Metrics == nil {
		deps.Metrics = handlers.NewMetricsHandler(logger)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	httpMetrics := middlewares.NewMetricsMiddleware(logger, tele)
	deps.Metrics.SetHTTPSource(httpMetrics)

	engine.Use(middlewares.RequestIDMiddleware(logger))
	engine.Use(middlewares.LoggingMiddleware(logger, true, "/health", "/health/live", "/health/ready", "/metrics"))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(httpMetrics.Handler())

	s := &Server{
		engine: engine,
		deps:   deps,
		logger: logger,
		tele:   tele,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	weather := handlers.NewWeatherHandler(s.deps.Store, s.deps.Actions, s.deps.Client, s.deps.Debouncer, s.logger)

	// Business endpoints
	api := s.engine.Group("/api/v1")
	api.GET("/state", weather.GetState)
	api.POST("/weather", weather.GetWeather)
	api.PUT("/forecast-days", weather.SetForecastDays)
	api.GET("/suggestions", weather.GetSuggestions)
	api.POST("/suggestions/input", weather.SuggestionInput)
	api.POST("/cities/initial", weather.LoadInitialCities)
	api.GET("/cities/search", weather.SearchCities)

	// Health endpoints (Kubernetes friendly)
	health := handlers.NewHealthHandler(s.logger, s.deps.Checks...)
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", s.deps.Metrics.ServeMetrics)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.deps.Debouncer != nil {
		s.deps.Debouncer.Stop()
	}
	return s.server.Shutdown(ctx)
}
