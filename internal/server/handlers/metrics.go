package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-lookup/internal/server/middlewares"
	"github.com/vzahanych/weather-lookup/internal/store"
)

// HTTPMetricsSource supplies the HTTP counters kept by the metrics middleware.
type HTTPMetricsSource interface {
	Snapshot() middlewares.HTTPSnapshot
}

// AppMetrics holds application-level metrics (provider calls, store events)
type AppMetrics struct {
	mutex                sync.RWMutex
	weatherServiceCalls  map[string]int64
	weatherServiceErrors map[string]int64
	eventsDispatched     map[string]int64
}

type MetricsHandler struct {
	logger     *zap.Logger
	appMetrics *AppMetrics
	http       HTTPMetricsSource
}

func NewMetricsHandler(logger *zap.Logger) *MetricsHandler {
	return &MetricsHandler{
		logger: logger,
		appMetrics: &AppMetrics{
			weatherServiceCalls:  make(map[string]int64),
			weatherServiceErrors: make(map[string]int64),
			eventsDispatched:     make(map[string]int64),
		},
	}
}

// SetHTTPSource attaches the HTTP counters. The server calls it once the
// middleware exists.
func (h *MetricsHandler) SetHTTPSource(src HTTPMetricsSource) {
	h.appMetrics.mutex.Lock()
	h.http = src
	h.appMetrics.mutex.Unlock()
}

// RecordWeatherServiceCall records a weather service API call
func (h *MetricsHandler) RecordWeatherServiceCall(_ context.Context, service string, success bool) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.weatherServiceCalls[service]++
	if !success {
		h.appMetrics.weatherServiceErrors[service]++
	}
	h.appMetrics.mutex.Unlock()
}

// EventMiddleware counts every event reaching the store, by name.
func (h *MetricsHandler) EventMiddleware() store.Middleware {
	return func(next store.DispatchFunc) store.DispatchFunc {
		return func(ctx context.Context, action store.Action) {
			if ev, ok := action.(store.Event); ok {
				h.appMetrics.mutex.Lock()
				h.appMetrics.eventsDispatched[ev.EventName()]++
				h.appMetrics.mutex.Unlock()
			}
			next(ctx, action)
		}
	}
}

// ServeMetrics exposes metrics in Prometheus text format
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	h.appMetrics.mutex.RLock()
	defer h.appMetrics.mutex.RUnlock()

	var b strings.Builder

	if h.http != nil {
		snap := h.http.Snapshot()

		writeHeader(&b, "http_requests_total", "Total number of HTTP requests", "counter")
		writeLabeled(&b, "http_requests_total", "route_status", snap.RequestsTotal)

		writeHeader(&b, "http_request_duration_seconds_avg", "Average duration of HTTP requests", "gauge")
		b.WriteString("http_request_duration_seconds_avg " + strconv.FormatFloat(snap.AvgDuration, 'f', 6, 64) + "\n")

		writeHeader(&b, "http_active_requests", "Number of active HTTP requests", "gauge")
		b.WriteString("http_active_requests " + strconv.FormatInt(snap.ActiveRequests, 10) + "\n")
	}

	writeHeader(&b, "weather_service_calls_total", "Total weather service calls", "counter")
	writeLabeled(&b, "weather_service_calls_total", "service", h.appMetrics.weatherServiceCalls)

	writeHeader(&b, "weather_service_errors_total", "Total weather service errors", "counter")
	writeLabeled(&b, "weather_service_errors_total", "service", h.appMetrics.weatherServiceErrors)

	writeHeader(&b, "store_events_total", "Total events applied to the state store", "counter")
	writeLabeled(&b, "store_events_total", "event", h.appMetrics.eventsDispatched)

	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

func writeHeader(b *strings.Builder, name, help, kind string) {
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString("# HELP " + name + " " + help + "\n")
	b.WriteString("# TYPE " + name + " " + kind + "\n")
}

func writeLabeled(b *strings.Builder, name, label string, values map[string]int64) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteString(name + "{" + label + "=\"" + k + "\"} " + strconv.FormatInt(values[k], 10) + "\n")
	}
}
