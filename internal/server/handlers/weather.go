package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-lookup/internal/actions"
	"github.com/vzahanych/weather-lookup/internal/debounce"
	"github.com/vzahanych/weather-lookup/internal/server/utils"
	"github.com/vzahanych/weather-lookup/internal/service"
	"github.com/vzahanych/weather-lookup/internal/store"
)

// WeatherHandler exposes the store and its dispatchers over HTTP. Mutating
// endpoints dispatch synchronously and answer with the resulting AppState.
type WeatherHandler struct {
	store     *store.Store
	actions   *actions.Actions
	client    service.WeatherClient
	debouncer *debounce.Debouncer
	logger    *zap.Logger
}

func NewWeatherHandler(
	st *store.Store,
	acts *actions.Actions,
	client service.WeatherClient,
	debouncer *debounce.Debouncer,
	logger *zap.Logger,
) *WeatherHandler {
	return &WeatherHandler{
		store:     st,
		actions:   acts,
		client:    client,
		debouncer: debouncer,
		logger:    logger,
	}
}

func (h *WeatherHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.GetState())
}

func (h *WeatherHandler) GetWeather(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := h.requestLogger(c)

	var req WeatherRequest
	if !h.bind(c, &req) {
		return
	}

	days := h.store.GetState().ForecastDays
	if req.Days != nil {
		days = *req.Days
	}
	city := strings.TrimSpace(req.City)

	reqLogger.Info("Processing weather request",
		zap.String("city", city),
		zap.Int("days", days))

	h.store.Dispatch(ctx, h.actions.GetWeather(city, days))

	state := h.store.GetState()
	if state.Error != "" {
		reqLogger.Warn("Weather lookup failed", zap.String("city", city), zap.String("error", state.Error))
	}
	c.JSON(http.StatusOK, state)
}

func (h *WeatherHandler) SetForecastDays(c *gin.Context) {
	var req ForecastDaysRequest
	if !h.bind(c, &req) {
		return
	}

	h.store.Dispatch(utils.GetContextFromGinContext(c), h.actions.SetForecastDays(req.Days))
	c.JSON(http.StatusOK, h.store.GetState())
}

// GetSuggestions runs a suggestion lookup immediately for ?q=.
func (h *WeatherHandler) GetSuggestions(c *gin.Context) {
	query := c.Query("q")
	if len(query) > 100 {
		h.badRequest(c, "Query too long", nil)
		return
	}

	h.store.Dispatch(utils.GetContextFromGinContext(c), h.actions.GetCitySuggestions(query))
	c.JSON(http.StatusOK, h.store.GetState())
}

// SuggestionInput debounces typeahead input per session. Only the last input
// of a burst triggers a lookup; the caller polls /state for the result.
func (h *WeatherHandler) SuggestionInput(c *gin.Context) {
	var req SuggestionInputRequest
	if !h.bind(c, &req) {
		return
	}

	session := utils.GetSessionID(c)
	query := req.Query
	logger := h.logger.With(zap.String("session_id", session))

	h.debouncer.Schedule(session, func(ctx context.Context) {
		logger.Debug("Running debounced suggestion lookup", zap.String("query", query))
		h.store.Dispatch(ctx, h.actions.GetCitySuggestions(query))
	})

	c.JSON(http.StatusAccepted, SuggestionInputResponse{
		Session: session,
		DelayMs: h.debouncer.Delay().Milliseconds(),
	})
}

func (h *WeatherHandler) LoadInitialCities(c *gin.Context) {
	h.store.Dispatch(utils.GetContextFromGinContext(c), h.actions.LoadInitialCities())
	c.JSON(http.StatusOK, h.store.GetState())
}

func (h *WeatherHandler) SearchCities(c *gin.Context) {
	query := c.Query("q")

	cities, err := h.client.SearchCity(utils.GetContextFromGinContext(c), query)
	if err != nil {
		h.requestLogger(c).Error("City search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "City search failed",
			Code:  "SEARCH_ERROR",
		})
		return
	}

	results := make([]CityResult, 0, len(cities))
	for _, city := range cities {
		results = append(results, CityResult{City: city, Label: city.Label()})
	}
	c.JSON(http.StatusOK, CitySearchResponse{Query: query, Cities: results})
}

// bind decodes the JSON body into req and validates it, answering 400 on
// failure.
func (h *WeatherHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.requestLogger(c).Warn("Invalid request body", zap.Error(err))
		h.badRequest(c, "Invalid request body", err.Error())
		return false
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		h.requestLogger(c).Warn("Request validation failed", zap.Any("errors", errs))
		h.badRequest(c, "Invalid request parameters", errs)
		return false
	}
	return true
}

func (h *WeatherHandler) badRequest(c *gin.Context, msg string, details interface{}) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   msg,
		Code:    "INVALID_PARAMS",
		Details: details,
	})
}

func (h *WeatherHandler) requestLogger(c *gin.Context) *zap.Logger {
	return h.logger.With(zap.String("request_id", utils.GetRequestIDFromGinContext(c)))
}
