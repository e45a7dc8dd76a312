package service

import "strings"

// IconURL resolves a provider icon code. An empty code resolves to "" and the
// caller is expected to fall back to Glyph.
func (s *OpenWeatherService) IconURL(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	return s.iconBaseURL + "/" + code + "@2x.png"
}

// Glyph names a built-in symbol for a condition category.
func Glyph(category string) string {
	switch category {
	case "Clear":
		return "sunny"
	case "Clouds":
		return "cloudy"
	case "Rain", "Drizzle":
		return "rainy"
	case "Snow":
		return "snow"
	case "Thunderstorm":
		return "thunderstorm"
	case "Mist", "Fog", "Haze", "Smoke":
		return "fog"
	default:
		return "partly-sunny"
	}
}

// fallbackGlyph is set only when there is no icon to show.
func fallbackGlyph(iconRef, category string) string {
	if iconRef != "" {
		return ""
	}
	return Glyph(category)
}
