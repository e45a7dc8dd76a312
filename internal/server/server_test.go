package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vzahanych/weather-lookup/internal/actions"
	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/internal/debounce"
	"github.com/vzahanych/weather-lookup/internal/server/handlers"
	"github.com/vzahanych/weather-lookup/internal/service"
	"github.com/vzahanych/weather-lookup/internal/store"
)

type stubClient struct {
	mu          sync.Mutex
	days        []int
	queries     []string
	weatherErr  error
	searchCalls int
}

func (c *stubClient) FetchWeather(_ context.Context, city string, days int) (*service.WeatherPayload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.days = append(c.days, days)
	if c.weatherErr != nil {
		return nil, c.weatherErr
	}
	return &service.WeatherPayload{
		Current:  &service.CurrentConditions{ID: 1, CityName: city, CountryCode: "GB"},
		Forecast: service.ForecastSet{{DateKey: "2024-01-01"}},
	}, nil
}

func (c *stubClient) FetchCurrent(_ context.Context, city string) (*service.CurrentConditions, error) {
	return &service.CurrentConditions{CityName: city}, nil
}

func (c *stubClient) FetchMultipleCurrent(_ context.Context, cities []string) ([]service.CurrentConditions, error) {
	out := make([]service.CurrentConditions, 0, len(cities))
	for i, city := range cities {
		out = append(out, service.CurrentConditions{ID: int64(i + 1), CityName: city})
	}
	return out, nil
}

func (c *stubClient) SearchCity(_ context.Context, query string) ([]service.City, error) {
	c.mu.Lock()
	c.searchCalls++
	c.queries = append(c.queries, query)
	c.mu.Unlock()
	if strings.Contains("london", strings.ToLower(strings.TrimSpace(query))) {
		return []service.City{{Name: "London", Region: "England", Country: "GB"}}, nil
	}
	return []service.City{}, nil
}

func (c *stubClient) calls() (int, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchCalls, append([]string(nil), c.queries...)
}

type testEnv struct {
	client *stubClient
	store  *store.Store
	server *Server
}

func newTestEnv(t *testing.T, checks ...handlers.ReadinessCheck) *testEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)

	client := &stubClient{}
	metrics := handlers.NewMetricsHandler(logger)
	st := store.New(store.Reduce, store.InitialState(), logger, store.LoggingMiddleware(logger), metrics.EventMiddleware())
	deb := debounce.New(20 * time.Millisecond)
	t.Cleanup(deb.Stop)

	srv := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, Deps{
		Store:     st,
		Actions:   actions.New(client, nil, logger, nil),
		Client:    client,
		Debouncer: deb,
		Metrics:   metrics,
		Checks:    checks,
	}, logger, nil)

	return &testEnv{client: client, store: st, server: srv}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) store.AppState {
	t.Helper()
	var state store.AppState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func TestGetState(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeState(t, w)
	assert.Equal(t, 3, state.ForecastDays)
	assert.Nil(t, state.Weather)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGetWeather(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/weather", `{"city":"London"}`)
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeState(t, w)
	require.NotNil(t, state.Weather)
	assert.Equal(t, "London", state.Weather.Current.CityName)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
	require.Len(t, state.Recent, 1)
	assert.Equal(t, []int{3}, env.client.days)
}

func TestGetWeather_UsesStoredForecastDays(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/api/v1/forecast-days", `{"days":7}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, decodeState(t, w).ForecastDays)

	env.do(t, http.MethodPost, "/api/v1/weather", `{"city":"Paris"}`)
	env.do(t, http.MethodPost, "/api/v1/weather", `{"city":"Paris","days":5}`)
	assert.Equal(t, []int{7, 5}, env.client.days)
}

func TestGetWeather_ProviderError(t *testing.T) {
	env := newTestEnv(t)
	env.client.weatherErr = &service.ProviderFault{StatusCode: 404, Message: "city not found"}

	w := env.do(t, http.MethodPost, "/api/v1/weather", `{"city":"Atlantis"}`)
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeState(t, w)
	assert.Equal(t, "city not found", state.Error)
	assert.False(t, state.Loading)
}

func TestGetWeather_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{`{"city":"L0nd0n!"}`, `{"city":""}`, `{`, `{"city":"` + strings.Repeat("a", 101) + `"}`} {
		w := env.do(t, http.MethodPost, "/api/v1/weather", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)

		var resp handlers.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_PARAMS", resp.Code)
	}
	assert.Empty(t, env.client.days)
}

func TestSetForecastDays_Clamped(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/api/v1/forecast-days", `{"days":42}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, decodeState(t, w).ForecastDays)

	w = env.do(t, http.MethodPut, "/api/v1/forecast-days", `{"days":-1}`)
	assert.Equal(t, 3, decodeState(t, w).ForecastDays)
}

func TestGetSuggestions(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/suggestions?q=L", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeState(t, w).Suggestions)
	calls, _ := env.client.calls()
	assert.Zero(t, calls)

	w = env.do(t, http.MethodGet, "/api/v1/suggestions?q=lon", "")
	state := decodeState(t, w)
	require.Len(t, state.Suggestions, 1)
	assert.Equal(t, "London, England, GB", state.Suggestions[0].CityName)
	assert.False(t, state.LoadingSuggestions)
}

func TestSuggestionInput_Debounced(t *testing.T) {
	env := newTestEnv(t)

	for _, q := range []string{"l", "lo", "lon"} {
		w := env.do(t, http.MethodPost, "/api/v1/suggestions/input", `{"query":"`+q+`"}`, "X-Session-ID", "typing-1")
		require.Equal(t, http.StatusAccepted, w.Code)

		var resp handlers.SuggestionInputResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "typing-1", resp.Session)
		assert.Equal(t, int64(20), resp.DelayMs)
	}

	require.Eventually(t, func() bool {
		return len(env.store.GetState().Suggestions) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	calls, queries := env.client.calls()
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"lon"}, queries)
}

func TestLoadInitialCities(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/cities/initial", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeState(t, w).Suggestions, len(actions.DefaultInitialCities))
}

func TestSearchCities(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/cities/search?q=lon", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.CitySearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Cities, 1)
	assert.Equal(t, "London", resp.Cities[0].Name)
	assert.Equal(t, "London, England, GB", resp.Cities[0].Label)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		w := env.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestReadiness_FailingCheck(t *testing.T) {
	env := newTestEnv(t, handlers.ReadinessCheck{
		Name:  "provider",
		Check: func() error { return errors.New("circuit breaker open") },
	})

	w := env.do(t, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp handlers.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unavailable", resp.Status)
	assert.Equal(t, "circuit breaker open", resp.Checks["provider"])

	w = env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded"`)
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/v1/weather", `{"city":"London"}`)

	w := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `store_events_total{event="FETCH_START"} 1`)
	assert.Contains(t, body, `store_events_total{event="ADD_RECENT_CITY"} 1`)
	assert.Contains(t, body, `http_requests_total{route_status="POST /api/v1/weather_200"} 1`)
}

func TestRequestIDPropagation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/state", "", "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = env.do(t, http.MethodGet, "/api/v1/state", "", "X-Request-ID", "bad id with spaces")
	assert.NotEqual(t, "bad id with spaces", w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
