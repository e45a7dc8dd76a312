package service

import "context"

// WeatherClient is the contract the dispatchers depend on.
type WeatherClient interface {
	FetchWeather(ctx context.Context, city string, days int) (*WeatherPayload, error)
	FetchCurrent(ctx context.Context, city string) (*CurrentConditions, error)
	FetchMultipleCurrent(ctx context.Context, cities []string) ([]CurrentConditions, error)
	SearchCity(ctx context.Context, query string) ([]City, error)
}

// MetricsRecorder receives one call per provider request.
type MetricsRecorder interface {
	RecordWeatherServiceCall(ctx context.Context, service string, success bool)
}
