package service

import (
	"encoding/json"
	"strings"
)

const (
	MinForecastDays     = 3
	MaxForecastDays     = 10
	DefaultForecastDays = 3
)

// CurrentConditions is the normalized current-weather observation for a city.
type CurrentConditions struct {
	ID          int64           `json:"id"`
	CityName    string          `json:"city_name"`
	CountryCode string          `json:"country_code"`
	ObservedAt  int64           `json:"observed_at"`
	Temperature float64         `json:"temperature"`
	TempMax     float64         `json:"temp_max"`
	TempMin     float64         `json:"temp_min"`
	Humidity    float64         `json:"humidity"`
	FeelsLike   float64         `json:"feels_like"`
	IconRef     string          `json:"icon_ref,omitempty"`
	Glyph       string          `json:"glyph,omitempty"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// ForecastEntry is the first provider slot seen for a calendar day (UTC).
type ForecastEntry struct {
	DateKey     string          `json:"date_key"`
	Epoch       int64           `json:"epoch"`
	Temperature float64         `json:"temperature"`
	TempMax     float64         `json:"temp_max"`
	TempMin     float64         `json:"temp_min"`
	Humidity    float64         `json:"humidity"`
	FeelsLike   float64         `json:"feels_like"`
	IconRef     string          `json:"icon_ref,omitempty"`
	Glyph       string          `json:"glyph,omitempty"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// ForecastSet is ordered by provider order and holds at most one entry per DateKey.
type ForecastSet []ForecastEntry

type WeatherPayload struct {
	Current  *CurrentConditions `json:"current"`
	Forecast ForecastSet        `json:"forecast"`
}

// City is an entry of the reference city list used for search.
type City struct {
	Name    string  `json:"name"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Label joins the non-empty name, region and country with ", ".
func (c City) Label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Name, c.Region, c.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// ClampForecastDays bounds n to [MinForecastDays, MaxForecastDays].
func ClampForecastDays(n int) int {
	return max(MinForecastDays, min(MaxForecastDays, n))
}
