package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"filmdash/internal/charts"
	"filmdash/internal/errors"

	"github.com/tidwall/gjson"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Auth      AuthConfig
	Data      DataConfig
	Charts    ChartsConfig
	Profiling ProfilingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver string // postgres or sqlite3
	URL    string
	Reset  bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret      string
	SessionTimeout time.Duration
	RememberFor    time.Duration
	CookieName     string
	SecureCookie   bool
}

// DataConfig holds dataset settings
type DataConfig struct {
	DatasetFile     string
	PreferredGenres []string
}

// ChartsConfig holds timeline settings
type ChartsConfig struct {
	TimelineYMax  float64
	TimelineBands []charts.Band
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// MinSecretLength is the shortest JWT_SECRET accepted
const MinSecretLength = 32

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database:  *loadDatabaseConfig(),
		Server:    *loadServerConfig(),
		Auth:      *loadAuthConfig(),
		Data:      *loadDataConfig(),
		Profiling: *loadProfilingConfig(),
	}

	chartsConfig, err := loadChartsConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load chart configuration")
	}
	config.Charts = *chartsConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// ChartOptions turns the configuration into builder options
func (c *Config) ChartOptions() charts.Options {
	opts := charts.DefaultOptions()
	if len(c.Data.PreferredGenres) > 0 {
		opts.PreferredGenres = c.Data.PreferredGenres
	}
	if c.Charts.TimelineYMax > 0 {
		opts.TimelineYMax = c.Charts.TimelineYMax
	}
	if c.Charts.TimelineBands != nil {
		opts.TimelineBands = c.Charts.TimelineBands
	}
	return opts
}

func loadDatabaseConfig() *DatabaseConfig {
	url := os.Getenv("DATABASE_URL")
	return &DatabaseConfig{
		Driver: getEnvOrDefault("DATABASE_DRIVER", InferDriver(url)),
		URL:    url,
		Reset:  getEnvBoolOrDefault("DATABASE_RESET", false),
	}
}

// InferDriver picks lib/pq for postgres URLs and SQLite for anything else
func InferDriver(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadAuthConfig() *AuthConfig {
	return &AuthConfig{
		JWTSecret:      os.Getenv("JWT_SECRET"),
		SessionTimeout: getEnvDurationOrDefault("SESSION_TIMEOUT", 2*time.Hour),
		RememberFor:    getEnvDurationOrDefault("REMEMBER_FOR", 30*24*time.Hour),
		CookieName:     getEnvOrDefault("SESSION_COOKIE", "filmdash_session"),
		SecureCookie:   getEnvBoolOrDefault("SECURE_COOKIE", false),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		DatasetFile:     os.Getenv("DATASET_FILE"),
		PreferredGenres: getEnvListOrDefault("PREFERRED_GENRES", []string{"History", "Romance", "Action"}),
	}
}

func loadChartsConfig() (*ChartsConfig, error) {
	cfg := &ChartsConfig{
		TimelineYMax: getEnvFloatOrDefault("TIMELINE_Y_MAX", 2.9e9),
	}
	raw := os.Getenv("TIMELINE_BANDS")
	if raw == "" {
		cfg.TimelineBands = charts.DefaultTimelineBands()
		return cfg, nil
	}
	bands, err := parseBands(raw)
	if err != nil {
		return nil, err
	}
	cfg.TimelineBands = bands
	return cfg, nil
}

// parseBands reads a JSON array of
// {"name","start","end","color","position"} objects with YYYY-MM-DD dates
func parseBands(raw string) ([]charts.Band, error) {
	if !gjson.Valid(raw) {
		return nil, errors.ConfigInvalid("TIMELINE_BANDS is not valid JSON")
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsArray() {
		return nil, errors.ConfigInvalid("TIMELINE_BANDS must be a JSON array")
	}

	bands := []charts.Band{}
	var parseErr error
	parsed.ForEach(func(_, item gjson.Result) bool {
		start, err := time.Parse("2006-01-02", item.Get("start").String())
		if err != nil {
			parseErr = errors.ConfigInvalid(fmt.Sprintf("band %q: bad start date", item.Get("name").String()))
			return false
		}
		end, err := time.Parse("2006-01-02", item.Get("end").String())
		if err != nil {
			parseErr = errors.ConfigInvalid(fmt.Sprintf("band %q: bad end date", item.Get("name").String()))
			return false
		}
		position := item.Get("position").String()
		if position == "" {
			position = "top left"
		}
		bands = append(bands, charts.Band{
			Name:     item.Get("name").String(),
			Start:    start,
			End:      end,
			Color:    item.Get("color").String(),
			Position: position,
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return bands, nil
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Database.Driver != "postgres" && config.Database.Driver != "sqlite3" {
		return errors.ConfigInvalid(fmt.Sprintf("unsupported database driver %q", config.Database.Driver))
	}
	if config.Data.DatasetFile == "" {
		return errors.ConfigInvalid("DATASET_FILE is required")
	}
	if len(config.Auth.JWTSecret) < MinSecretLength {
		return errors.ConfigInvalid(fmt.Sprintf("JWT_SECRET must be at least %d characters", MinSecretLength))
	}
	if config.Auth.SessionTimeout <= 0 || config.Auth.RememberFor <= 0 {
		return errors.ConfigInvalid("session lifetimes must be positive")
	}
	if err := config.ChartOptions().Validate(); err != nil {
		return err
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma separated value, dropping blanks
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
