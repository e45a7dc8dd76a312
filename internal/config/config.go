package config

import (
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	cfg, _ := configValue.Load().(*Config)
	if cfg == nil {
		return NewDefaultConfig()
	}
	return cfg
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Provider    ProviderConfig  `mapstructure:"provider"`
	App         AppConfig       `mapstructure:"app"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// ProviderConfig describes the OpenWeatherMap-compatible upstream.
type ProviderConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	IconBaseURL   string `mapstructure:"icon_base_url"`
	APIKey        string `mapstructure:"api_key"`
	Units         string `mapstructure:"units"`
	Timeout       int    `mapstructure:"timeout"`
	Retries       int    `mapstructure:"retries"`
	ForecastCount int    `mapstructure:"forecast_count"`
}

type AppConfig struct {
	InitialCities        []string `mapstructure:"initial_cities"`
	DefaultForecastDays  int      `mapstructure:"default_forecast_days"`
	SuggestionDebounceMs int      `mapstructure:"suggestion_debounce_ms"`
	RefreshInterval      int      `mapstructure:"refresh_interval"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Provider: ProviderConfig{
			BaseURL:       "https://api.openweathermap.org/data/2.5",
			IconBaseURL:   "https://openweathermap.org/img/wn",
			APIKey:        "",
			Units:         "metric",
			Timeout:       10,
			Retries:       2,
			ForecastCount: 40,
		},
		App: AppConfig{
			InitialCities:        []string{"London", "New York", "Tokyo", "Delhi", "Sydney", "Paris"},
			DefaultForecastDays:  3,
			SuggestionDebounceMs: 400,
			RefreshInterval:      900,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "tempo:4317",
		},
	}
}
