// Package config loads application configuration from a JSON file with
// environment-variable overrides for secrets.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Ephemeris EphemerisConfig `json:"ephemeris"`
	Geocoder  GeocoderConfig  `json:"geocoder"`
	Auth      AuthConfig      `json:"auth"`
	Chart     ChartConfig     `json:"chart"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port"`

	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host"`

	// AllowedOrigins lists CORS origins permitted to call the API
	AllowedOrigins []string `json:"allowed_origins"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	// Host is the database server hostname
	Host string `json:"host"`

	// Port is the database server port
	Port int `json:"port"`

	// Database is the database name
	Database string `json:"database"`

	// Username for database authentication
	Username string `json:"username"`

	// Password for database authentication (should be loaded from environment)
	Password string `json:"password"`

	// SSLMode for PostgreSQL connections (disable, require, verify-ca, verify-full)
	SSLMode string `json:"ssl_mode"`

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int `json:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int `json:"max_idle_conns"`
}

// EphemerisConfig selects the planetary position source.
type EphemerisConfig struct {
	// Provider is "jpl" (DE file) or "table" (built-in reference dates)
	Provider string `json:"provider"`

	// DEFilePath is the path to a JPL DE ephemeris binary (DE405, DE421,
	// DE440, ...). Required when Provider is "jpl".
	DEFilePath string `json:"de_file_path"`
}

// GeocoderConfig contains forward-geocoding settings.
type GeocoderConfig struct {
	// BaseURL of the OpenCage geocoding API
	BaseURL string `json:"base_url"`

	// APIKey for the geocoding service (should be loaded from environment)
	APIKey string `json:"api_key,omitempty"`

	// RateLimitSeconds is the minimum time between API calls.
	// OpenCage free tier allows 1 request/second.
	RateLimitSeconds float64 `json:"rate_limit_seconds"`

	// TimeoutSeconds is the per-request HTTP timeout
	TimeoutSeconds int `json:"timeout_seconds"`
}

// AuthConfig contains JWT session settings.
type AuthConfig struct {
	// JWTSecret signs session tokens (should be loaded from environment)
	JWTSecret string `json:"jwt_secret,omitempty"`

	// TokenDurationHours is how long issued tokens stay valid
	TokenDurationHours int `json:"token_duration_hours"`
}

// ChartConfig carries the default chart conventions. These are explicit,
// selectable parameters: different traditions expect different answers
// from the same birth data.
type ChartConfig struct {
	// HouseSystem is "whole_sign", "equal_house" or "placidus"
	HouseSystem string `json:"house_system"`

	// Ayanamsa is "lahiri" or "krishnamurti"
	Ayanamsa string `json:"ayanamsa"`

	// AscendantMethod selects the rising-point formula. Only "spherical"
	// (the quadrant-safe atan2 form) is currently supported; the field
	// exists so charts saved under a future method stay attributable.
	AscendantMethod string `json:"ascendant_method"`
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, returns a default configuration.
func Load(path string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	return &cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Host:           "0.0.0.0",
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			Database:     "natalscope",
			Username:     "natalscope",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Ephemeris: EphemerisConfig{
			Provider:   "table",
			DEFilePath: "",
		},
		Geocoder: GeocoderConfig{
			BaseURL:          "https://api.opencagedata.com/geocode/v1/json",
			RateLimitSeconds: 1.0,
			TimeoutSeconds:   10,
		},
		Auth: AuthConfig{
			TokenDurationHours: 24,
		},
		Chart: ChartConfig{
			HouseSystem:     "whole_sign",
			Ayanamsa:        "lahiri",
			AscendantMethod: "spherical",
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides.
// This keeps secrets like passwords and API keys out of config files.
func (c *Config) applyEnvironmentOverrides() {
	if port := os.Getenv("NATALSCOPE_PORT"); port != "" {
		c.Server.Port = port
	}
	if dbPassword := os.Getenv("NATALSCOPE_DB_PASSWORD"); dbPassword != "" {
		c.Database.Password = dbPassword
	}
	if apiKey := os.Getenv("NATALSCOPE_OPENCAGE_API_KEY"); apiKey != "" {
		c.Geocoder.APIKey = apiKey
	}
	if secret := os.Getenv("NATALSCOPE_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if dePath := os.Getenv("NATALSCOPE_DE_FILE"); dePath != "" {
		c.Ephemeris.DEFilePath = dePath
		c.Ephemeris.Provider = "jpl"
	}
}
