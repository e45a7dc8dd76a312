package actions

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-lookup/internal/debounce"
	"github.com/vzahanych/weather-lookup/internal/service"
	"github.com/vzahanych/weather-lookup/internal/store"
	"github.com/vzahanych/weather-lookup/pkg/telemetry"
)

const (
	minQueryLength  = 2
	maxSuggestions  = 6
	fallbackMessage = "Something went wrong"
)

// DefaultInitialCities is used when no initial list is configured.
var DefaultInitialCities = []string{"London", "New York", "Tokyo", "Delhi", "Sydney", "Paris"}

// Actions builds the intents the presentation layer dispatches into the store.
type Actions struct {
	client        service.WeatherClient
	initialCities []string
	logger        *zap.Logger
	tele          *telemetry.Telemetry
}

func New(client service.WeatherClient, initialCities []string, logger *zap.Logger, tele *telemetry.Telemetry) *Actions {
	if len(initialCities) == 0 {
		initialCities = DefaultInitialCities
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Actions{
		client:        client,
		initialCities: append([]string(nil), initialCities...),
		logger:        logger,
		tele:          tele,
	}
}

// GetWeather fetches weather for city. Faults end up in AppState.Error.
func (a *Actions) GetWeather(city string, days int) store.Intent {
	return func(ctx context.Context, dispatch store.DispatchFunc, _ store.GetStateFunc) {
		ctx, span := a.tele.GetTracer().Start(ctx, "actions.GetWeather")
		defer span.End()
		span.SetAttributes(attribute.String("city", city), attribute.Int("days", days))

		dispatch(ctx, store.FetchStart{})

		payload, err := a.client.FetchWeather(ctx, city, days)
		if superseded(ctx) {
			a.logger.Debug("Dropping superseded weather result", zap.String("city", city))
			return
		}

		if err != nil {
			a.tele.RecordError(ctx, err, map[string]interface{}{"city": city, "days": days})
			dispatch(ctx, store.FetchError{Message: ErrorMessage(err)})
			return
		}

		dispatch(ctx, store.FetchSuccess{Payload: payload})
		if payload != nil && payload.Current != nil {
			dispatch(ctx, store.AddRecentCity{City: *payload.Current})
		}
	}
}

// GetCitySuggestions searches the reference list and loads current
// conditions for up to six matches. Faults only clear the suggestions.
func (a *Actions) GetCitySuggestions(query string) store.Intent {
	return func(ctx context.Context, dispatch store.DispatchFunc, _ store.GetStateFunc) {
		query = strings.TrimSpace(query)
		if len([]rune(query)) < minQueryLength {
			dispatch(ctx, store.SetSuggestions{Suggestions: []store.Suggestion{}})
			return
		}

		ctx, span := a.tele.GetTracer().Start(ctx, "actions.GetCitySuggestions")
		defer span.End()
		span.SetAttributes(attribute.String("query", query))

		dispatch(ctx, store.SuggestionsLoading{})

		results, err := a.suggest(ctx, query)
		if superseded(ctx) {
			a.logger.Debug("Dropping superseded suggestions", zap.String("query", query))
			return
		}

		if err != nil {
			a.tele.RecordError(ctx, err, map[string]interface{}{"query": query})
			a.logger.Debug("Suggestion lookup failed", zap.String("query", query), zap.Error(err))
			dispatch(ctx, store.SuggestionsError{})
			dispatch(ctx, store.SetSuggestions{Suggestions: []store.Suggestion{}})
			return
		}

		span.SetAttributes(attribute.Int("suggestions", len(results)))
		dispatch(ctx, store.SetSuggestions{Suggestions: results})
	}
}

func (a *Actions) suggest(ctx context.Context, query string) ([]store.Suggestion, error) {
	cities, err := a.client.SearchCity(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(cities) == 0 {
		return []store.Suggestion{}, nil
	}
	if len(cities) > maxSuggestions {
		cities = cities[:maxSuggestions]
	}

	labels := make([]string, 0, len(cities))
	for _, c := range cities {
		labels = append(labels, c.Label())
	}

	current, err := a.client.FetchMultipleCurrent(ctx, labels)
	if err != nil {
		return nil, err
	}
	return store.SuggestionsFrom(current), nil
}

// LoadInitialCities fills the suggestions with the configured start-screen
// cities. A fault dispatches nothing.
func (a *Actions) LoadInitialCities() store.Intent {
	return func(ctx context.Context, dispatch store.DispatchFunc, _ store.GetStateFunc) {
		ctx, span := a.tele.GetTracer().Start(ctx, "actions.LoadInitialCities")
		defer span.End()

		current, err := a.client.FetchMultipleCurrent(ctx, a.initialCities)
		if err != nil {
			a.logger.Debug("Initial cities not loaded", zap.Error(err))
			return
		}
		if superseded(ctx) {
			return
		}

		dispatch(ctx, store.SetSuggestions{Suggestions: store.SuggestionsFrom(current)})
	}
}

// SetForecastDays stores n clamped to the supported range.
func (a *Actions) SetForecastDays(n int) store.Intent {
	return func(ctx context.Context, dispatch store.DispatchFunc, _ store.GetStateFunc) {
		dispatch(ctx, store.SetForecastDays{Days: service.ClampForecastDays(n)})
	}
}

// ErrorMessage picks the text shown for a failed lookup: the provider's
// nested error message, then its top-level message, then the error text.
func ErrorMessage(err error) string {
	if err == nil {
		return fallbackMessage
	}

	var fault *service.ProviderFault
	if errors.As(err, &fault) {
		if fault.Detail != "" {
			return fault.Detail
		}
		if fault.Message != "" {
			return fault.Message
		}
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "Request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackMessage
}

// superseded reports whether newer input replaced the request that ctx
// belongs to. Other cancellations still settle the state.
func superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), debounce.ErrSuperseded)
}
