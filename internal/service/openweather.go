package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/pkg/telemetry"
)

const serviceName = "openweathermap"

// OpenWeatherService talks to an OpenWeatherMap-compatible API.
type OpenWeatherService struct {
	baseURL       string
	iconBaseURL   string
	apiKey        string
	units         string
	forecastCount int
	client        *http.Client
	circuit       *gobreaker.CircuitBreaker
	backoff       BackoffConfig
	logger        *zap.Logger
	tele          *telemetry.Telemetry
	metrics       MetricsRecorder
}

var _ WeatherClient = (*OpenWeatherService)(nil)

func NewOpenWeatherServiceWithConfig(cfg config.ProviderConfig, logger *zap.Logger, tele *telemetry.Telemetry) *OpenWeatherService {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	forecastCount := cfg.ForecastCount
	if forecastCount <= 0 {
		forecastCount = 40
	}

	if cfg.APIKey == "" {
		logger.Warn("OpenWeatherMap API key is not configured; provider calls will be rejected")
	}

	return &OpenWeatherService{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		iconBaseURL:   strings.TrimRight(cfg.IconBaseURL, "/"),
		apiKey:        cfg.APIKey,
		units:         cfg.Units,
		forecastCount: forecastCount,
		client: &http.Client{
			Timeout: timeout,
		},
		circuit: newCircuitBreaker(serviceName),
		backoff: BackoffConfig{
			MaxRetries:      max(cfg.Retries, 0),
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		logger: logger,
		tele:   tele,
	}
}

// SetMetricsRecorder sets the recorder notified after every provider call.
func (s *OpenWeatherService) SetMetricsRecorder(metrics MetricsRecorder) {
	s.metrics = metrics
}

func (s *OpenWeatherService) Name() string {
	return serviceName
}

// FetchWeather fetches current conditions and the forecast concurrently and
// normalizes both. The forecast holds at most days entries, one per date.
func (s *OpenWeatherService) FetchWeather(ctx context.Context, city string, days int) (*WeatherPayload, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "openweathermap.FetchWeather")
	defer span.End()

	days = ClampForecastDays(days)
	span.SetAttributes(
		attribute.String("city", city),
		attribute.Int("days", days),
	)

	var (
		current  *CurrentConditions
		forecast ForecastSet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.FetchCurrent(gctx, city)
		return err
	})
	g.Go(func() error {
		var err error
		forecast, err = s.fetchForecast(gctx, city, days)
		return err
	})

	if err := g.Wait(); err != nil {
		s.tele.RecordError(ctx, err, map[string]interface{}{"city": city, "days": days})
		s.logger.Warn("Failed to fetch weather",
			zap.String("city", city),
			zap.Int("days", days),
			zap.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("forecast_entries", len(forecast)))
	s.logger.Debug("Weather fetched",
		zap.String("city", city),
		zap.Int("forecast_entries", len(forecast)))

	return &WeatherPayload{
		Current:  current,
		Forecast: forecast,
	}, nil
}

func (s *OpenWeatherService) FetchCurrent(ctx context.Context, city string) (*CurrentConditions, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "openweathermap.FetchCurrent")
	defer span.End()
	span.SetAttributes(attribute.String("city", city))

	body, err := s.get(ctx, "weather", url.Values{"q": {city}})
	if err != nil {
		s.tele.RecordError(ctx, err, map[string]interface{}{"city": city})
		return nil, err
	}

	current, err := s.normalizeCurrent(body)
	if err != nil {
		s.tele.RecordError(ctx, err, map[string]interface{}{"city": city, "stage": "decode"})
		return nil, err
	}
	return current, nil
}

func (s *OpenWeatherService) fetchForecast(ctx context.Context, city string, days int) (ForecastSet, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "openweathermap.fetchForecast")
	defer span.End()

	// cnt counts 3-hour slots, not days; always ask for everything available.
	body, err := s.get(ctx, "forecast", url.Values{
		"q":   {city},
		"cnt": {strconv.Itoa(s.forecastCount)},
	})
	if err != nil {
		s.tele.RecordError(ctx, err, map[string]interface{}{"city": city})
		return nil, err
	}

	return s.normalizeForecast(body, days)
}

// FetchMultipleCurrent fetches every city concurrently. Failed cities are
// logged and left out; the order of successful cities is preserved.
func (s *OpenWeatherService) FetchMultipleCurrent(ctx context.Context, cities []string) ([]CurrentConditions, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "openweathermap.FetchMultipleCurrent")
	defer span.End()
	span.SetAttributes(attribute.Int("cities_requested", len(cities)))

	results := make([]*CurrentConditions, len(cities))
	var wg sync.WaitGroup

	for i, city := range cities {
		wg.Add(1)
		go func() {
			defer wg.Done()

			current, err := s.FetchCurrent(ctx, city)
			if err != nil {
				s.logger.Warn("Failed to fetch current weather, skipping city",
					zap.String("city", city),
					zap.Error(err))
				return
			}
			results[i] = current
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]CurrentConditions, 0, len(cities))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}

	span.SetAttributes(attribute.Int("cities_fetched", len(out)))
	return out, nil
}

func (s *OpenWeatherService) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		u, err := url.Parse(fmt.Sprintf("%s/%s", s.baseURL, endpoint))
		if err != nil {
			return nil, err
		}

		q := u.Query()
		for key, values := range params {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		q.Set("appid", s.apiKey)
		if s.units != "" {
			q.Set("units", s.units)
		}
		u.RawQuery = q.Encode()

		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}

	body, err := doRequest(ctx, s.client, s.circuit, s.backoff, endpoint, buildRequest)

	if s.metrics != nil {
		s.metrics.RecordWeatherServiceCall(ctx, s.Name(), err == nil)
	}
	return body, err
}

// Ready reports ErrCircuitOpen while the provider circuit breaker is open.
func (s *OpenWeatherService) Ready() error {
	if s.circuit.State() == gobreaker.StateOpen {
		return ErrCircuitOpen
	}
	return nil
}
