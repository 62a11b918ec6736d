// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Matching MatchingConfig `yaml:"matching"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	APIToken       string   `yaml:"api_token"` // empty = auth disabled
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// MatchingConfig holds the default matching tolerances. Callers can override
// them per request; these are the per-deployment defaults (e.g. a bank whose
// feed posts with a two-day delay can widen the date window here).
//
// The numeric knobs are pointers because zero is a legal setting for each of
// them (accept-everything threshold, same-day-only window); nil means unset
// and takes the default.
type MatchingConfig struct {
	MinConfidence       *float64 `yaml:"min_confidence"`
	DateWindowDays      *int     `yaml:"date_window_days"`
	AmountEpsilon       string   `yaml:"amount_epsilon"` // decimal string, e.g. "0.01"
	EnableFuzzy         bool     `yaml:"enable_fuzzy"`
	SimilarityThreshold *float64 `yaml:"similarity_threshold"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${RECON_API_TOKEN})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnvInt("RECON_PORT", 8080),
			APIToken: os.Getenv("RECON_API_TOKEN"),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("RECON_DB_PATH", "reconcile.db"),
		},
		Matching: MatchingConfig{
			MinConfidence:       floatPtr(getEnvFloat("RECON_MIN_CONFIDENCE", 0.5)),
			DateWindowDays:      intPtr(getEnvInt("RECON_DATE_WINDOW_DAYS", 3)),
			AmountEpsilon:       getEnv("RECON_AMOUNT_EPSILON", "0.01"),
			EnableFuzzy:         getEnv("RECON_ENABLE_FUZZY", "") == "true",
			SimilarityThreshold: floatPtr(getEnvFloat("RECON_SIMILARITY_THRESHOLD", 0.4)),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from the specified path, falls back to
// environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// applyDefaults fills in zero values left by a sparse YAML file
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "reconcile.db"
	}
	if c.Matching.MinConfidence == nil {
		c.Matching.MinConfidence = floatPtr(0.5)
	}
	if c.Matching.DateWindowDays == nil {
		c.Matching.DateWindowDays = intPtr(3)
	}
	if c.Matching.AmountEpsilon == "" {
		c.Matching.AmountEpsilon = "0.01"
	}
	if c.Matching.SimilarityThreshold == nil {
		c.Matching.SimilarityThreshold = floatPtr(0.4)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable with a fallback default
func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		var result float64
		if _, err := fmt.Sscanf(val, "%g", &result); err == nil {
			return result
		}
	}
	return fallback
}
