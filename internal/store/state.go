package store

import "github.com/vzahanych/weather-lookup/internal/service"

const maxRecent = 6

// Suggestion is a compact city card shown while the user types or on the
// start screen.
type Suggestion struct {
	ID          int64   `json:"id"`
	CityName    string  `json:"city_name"`
	CountryCode string  `json:"country_code"`
	Temperature float64 `json:"temperature"`
	IconRef     string  `json:"icon_ref,omitempty"`
	Glyph       string  `json:"glyph,omitempty"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

func SuggestionFrom(c service.CurrentConditions) Suggestion {
	return Suggestion{
		ID:          c.ID,
		CityName:    c.CityName,
		CountryCode: c.CountryCode,
		Temperature: c.Temperature,
		IconRef:     c.IconRef,
		Glyph:       c.Glyph,
		Description: c.Description,
		Category:    c.Category,
	}
}

func SuggestionsFrom(list []service.CurrentConditions) []Suggestion {
	out := make([]Suggestion, 0, len(list))
	for _, c := range list {
		out = append(out, SuggestionFrom(c))
	}
	return out
}

// AppState is the single snapshot read by the presentation layer. A
// published AppState and its slices are never mutated; every transition
// produces a new value. An empty Error means no error.
type AppState struct {
	Loading            bool                        `json:"loading"`
	LoadingSuggestions bool                        `json:"loading_suggestions"`
	Weather            *service.WeatherPayload     `json:"weather"`
	Error              string                      `json:"error"`
	Suggestions        []Suggestion                `json:"suggestions"`
	Recent             []service.CurrentConditions `json:"recent"`
	ForecastDays       int                         `json:"forecast_days"`
}

func InitialState() AppState {
	return AppState{
		Suggestions:  []Suggestion{},
		Recent:       []service.CurrentConditions{},
		ForecastDays: service.DefaultForecastDays,
	}
}
