package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type owmCondition struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Main        string `json:"main"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	TempMax   float64 `json:"temp_max"`
	TempMin   float64 `json:"temp_min"`
	Humidity  float64 `json:"humidity"`
	FeelsLike float64 `json:"feels_like"`
}

type owmCurrent struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Dt      int64          `json:"dt"`
	Main    owmMain        `json:"main"`
	Weather []owmCondition `json:"weather"`
}

type owmForecastItem struct {
	Dt      int64          `json:"dt"`
	Main    owmMain        `json:"main"`
	Weather []owmCondition `json:"weather"`
}

type owmForecast struct {
	List []json.RawMessage `json:"list"`
}

// owmError covers {"message": ...} and {"error": {"message": ...}}; some
// gateways send "error" as a plain string instead.
type owmError struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

var errMalformedPayload = errors.New("malformed provider payload")

func firstCondition(items []owmCondition) owmCondition {
	if len(items) == 0 {
		return owmCondition{}
	}
	return items[0]
}

func (s *OpenWeatherService) normalizeCurrent(body []byte) (*CurrentConditions, error) {
	var raw owmCurrent
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode current weather: %w", err)
	}
	if raw.ID == 0 && raw.Name == "" {
		return nil, fmt.Errorf("decode current weather: %w: missing id and name", errMalformedPayload)
	}

	cond := firstCondition(raw.Weather)
	iconRef := s.IconURL(cond.Icon)
	return &CurrentConditions{
		ID:          raw.ID,
		CityName:    raw.Name,
		CountryCode: raw.Sys.Country,
		ObservedAt:  raw.Dt,
		Temperature: raw.Main.Temp,
		TempMax:     raw.Main.TempMax,
		TempMin:     raw.Main.TempMin,
		Humidity:    raw.Main.Humidity,
		FeelsLike:   raw.Main.FeelsLike,
		IconRef:     iconRef,
		Glyph:       fallbackGlyph(iconRef, cond.Main),
		Description: cond.Description,
		Category:    cond.Main,
		Raw:         json.RawMessage(body),
	}, nil
}

// normalizeForecast keeps the first slot of each UTC calendar day and stops
// after days distinct dates.
func (s *OpenWeatherService) normalizeForecast(body []byte, days int) (ForecastSet, error) {
	var raw owmForecast
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	out := make(ForecastSet, 0, days)
	seen := make(map[string]struct{}, days)

	for _, itemJSON := range raw.List {
		if len(out) >= days {
			break
		}

		var item owmForecastItem
		if err := json.Unmarshal(itemJSON, &item); err != nil {
			return nil, fmt.Errorf("decode forecast entry: %w", err)
		}

		key := time.Unix(item.Dt, 0).UTC().Format(time.DateOnly)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		cond := firstCondition(item.Weather)
		iconRef := s.IconURL(cond.Icon)
		out = append(out, ForecastEntry{
			DateKey:     key,
			Epoch:       item.Dt,
			Temperature: item.Main.Temp,
			TempMax:     item.Main.TempMax,
			TempMin:     item.Main.TempMin,
			Humidity:    item.Main.Humidity,
			FeelsLike:   item.Main.FeelsLike,
			IconRef:     iconRef,
			Glyph:       fallbackGlyph(iconRef, cond.Main),
			Description: cond.Description,
			Category:    cond.Main,
			Raw:         itemJSON,
		})
	}

	return out, nil
}

func parseProviderFault(status int, body []byte) *ProviderFault {
	fault := &ProviderFault{StatusCode: status}

	var payload owmError
	if err := json.Unmarshal(body, &payload); err != nil {
		return fault
	}
	fault.Message = payload.Message

	var nested struct {
		Message string `json:"message"`
	}
	if len(payload.Error) > 0 && payload.Error[0] == '{' {
		if err := json.Unmarshal(payload.Error, &nested); err == nil {
			fault.Detail = nested.Message
		}
	}
	return fault
}
