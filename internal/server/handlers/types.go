package handlers

import "github.com/vzahanych/weather-lookup/internal/service"

// WeatherRequest asks for current conditions and forecast of a city. Days
// defaults to the stored forecast length and is clamped, never rejected.
type WeatherRequest struct {
	City string `json:"city" validate:"required,min=1,max=100,city"`
	Days *int   `json:"days,omitempty"`
}

type ForecastDaysRequest struct {
	Days int `json:"days"`
}

// SuggestionInputRequest carries one keystroke of the typeahead box.
type SuggestionInputRequest struct {
	Query string `json:"query" validate:"max=100"`
}

type SuggestionInputResponse struct {
	Session string `json:"session"`
	DelayMs int64  `json:"delay_ms"`
}

type CityResult struct {
	service.City
	Label string `json:"label"`
}

type CitySearchResponse struct {
	Query  string       `json:"query"`
	Cities []CityResult `json:"cities"`
}

// ErrorResponse represents an error response with validation
type ErrorResponse struct {
	Error   string      `json:"error" validate:"required,min=1,max=500"`
	Code    string      `json:"code,omitempty" validate:"omitempty,min=1,max=50"`
	Details interface{} `json:"details,omitempty"`
}

// HealthResponse represents health check response with validation
type HealthResponse struct {
	Status    string            `json:"status" validate:"required,oneof=ok alive ready degraded unavailable"`
	Uptime    string            `json:"uptime" validate:"required"`
	Timestamp string            `json:"timestamp,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Checks    map[string]string `json:"checks,omitempty"`
}
