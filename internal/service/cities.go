package service

import (
	"context"
	"strings"
)

const maxSearchResults = 6

// The provider's free tier has no search endpoint, so lookups run against
// this fixed list.
var referenceCities = []City{
	{Name: "London", Region: "England", Country: "GB", Lat: 51.5085, Lon: -0.1257},
	{Name: "New York", Region: "New York", Country: "US", Lat: 40.7128, Lon: -74.006},
	{Name: "Tokyo", Region: "Tokyo", Country: "JP", Lat: 35.6762, Lon: 139.6503},
	{Name: "Paris", Region: "Île-de-France", Country: "FR", Lat: 48.8566, Lon: 2.3522},
	{Name: "Berlin", Region: "Berlin", Country: "DE", Lat: 52.52, Lon: 13.405},
	{Name: "Madrid", Region: "Madrid", Country: "ES", Lat: 40.4168, Lon: -3.7038},
	{Name: "Rome", Region: "Lazio", Country: "IT", Lat: 41.9028, Lon: 12.4964},
	{Name: "Amsterdam", Region: "North Holland", Country: "NL", Lat: 52.374, Lon: 4.8897},
	{Name: "Singapore", Region: "Singapore", Country: "SG", Lat: 1.3521, Lon: 103.8198},
	{Name: "Sydney", Region: "New South Wales", Country: "AU", Lat: -33.8688, Lon: 151.2093},
	{Name: "Dubai", Region: "Dubai", Country: "AE", Lat: 25.2048, Lon: 55.2708},
	{Name: "Bangkok", Region: "Bangkok", Country: "TH", Lat: 13.7563, Lon: 100.5018},
	{Name: "Mumbai", Region: "Maharashtra", Country: "IN", Lat: 19.076, Lon: 72.8777},
	{Name: "Delhi", Region: "Delhi", Country: "IN", Lat: 28.7041, Lon: 77.1025},
	{Name: "Toronto", Region: "Ontario", Country: "CA", Lat: 43.6532, Lon: -79.3832},
}

// SearchCity matches query case-insensitively against city names and country
// codes. It never fails.
func (s *OpenWeatherService) SearchCity(_ context.Context, query string) ([]City, error) {
	return searchReferenceCities(query), nil
}

func searchReferenceCities(query string) []City {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []City{}
	}

	out := make([]City, 0, maxSearchResults)
	for _, c := range referenceCities {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Country), q) {
			out = append(out, c)
			if len(out) == maxSearchResults {
				break
			}
		}
	}
	return out
}
