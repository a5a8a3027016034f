// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback), after loading a .env file if present
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	serviceKey := cfg.ServiceKey()
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/realestate-detective-backend/internal/adapters/providers/molit"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/matcher"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

// Environment variable names checked for the MOLIT service key, in order
var serviceKeyEnvVars = []string{"MOLIT_SERVICE_KEY", "NEXT_PUBLIC_API_KEY_MOLIT"}

// Config represents the entire application configuration
type Config struct {
	Molit         MolitConfig         `yaml:"molit"`
	Matching      MatchingConfig      `yaml:"matching"`
	Storage       StorageConfig       `yaml:"storage"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// MolitConfig holds data.go.kr API settings
type MolitConfig struct {
	ServiceKey        string  `yaml:"service_key"`
	FeedBaseURL       string  `yaml:"feed_base_url"`
	RegistryBaseURL   string  `yaml:"registry_base_url"`
	Timeout           string  `yaml:"timeout"` // Go duration, e.g. "10s"
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	RowsPerPage       int     `yaml:"rows_per_page"`
}

// PolicyConfig overrides the tolerances of one property type
type PolicyConfig struct {
	LandTolerance  *float64 `yaml:"land_tolerance"`
	BuildTolerance *float64 `yaml:"build_tolerance"`
	Combine        string   `yaml:"combine"` // "any" or "all"
}

// MatchingConfig holds reconciliation settings
type MatchingConfig struct {
	RegistryTimeout string                  `yaml:"registry_timeout"`
	MaxConcurrency  int                     `yaml:"max_concurrency"`
	MaxParallel     int                     `yaml:"max_parallel_batches"` // range-search batches fetched at once
	Policies        map[string]PolicyConfig `yaml:"policies"` // keyed by property type tag
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
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

	// Expand environment variables (e.g., ${MOLIT_SERVICE_KEY})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Molit: MolitConfig{
			ServiceKey:        firstEnv(serviceKeyEnvVars...),
			FeedBaseURL:       getEnv("MOLIT_FEED_BASE_URL", molit.DefaultFeedBaseURL),
			RegistryBaseURL:   getEnv("MOLIT_REGISTRY_BASE_URL", molit.DefaultRegistryBaseURL),
			Timeout:           getEnv("MOLIT_TIMEOUT", "10s"),
			RequestsPerSecond: getEnvFloat("MOLIT_REQUESTS_PER_SECOND", 10),
			Burst:             getEnvInt("MOLIT_BURST", 5),
			RowsPerPage:       getEnvInt("MOLIT_ROWS_PER_PAGE", 1000),
		},
		Matching: MatchingConfig{
			RegistryTimeout: getEnv("MATCHING_REGISTRY_TIMEOUT", "10s"),
			MaxConcurrency:  getEnvInt("MATCHING_MAX_CONCURRENCY", 8),
			MaxParallel:     getEnvInt("MATCHING_MAX_PARALLEL_BATCHES", 4),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("DETECTIVE_DB_PATH", "detective.db"),
		},
		Server: ServerConfig{
			Port: getEnvInt("PORT", 8080),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables.
// A .env file in the working directory is loaded first; existing variables win.
func LoadOrEnvWithPath(path string) *Config {
	_ = godotenv.Load()

	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Molit.FeedBaseURL == "" {
		c.Molit.FeedBaseURL = molit.DefaultFeedBaseURL
	}
	if c.Molit.RegistryBaseURL == "" {
		c.Molit.RegistryBaseURL = molit.DefaultRegistryBaseURL
	}
	if c.Molit.Timeout == "" {
		c.Molit.Timeout = "10s"
	}
	if c.Matching.RegistryTimeout == "" {
		c.Matching.RegistryTimeout = "10s"
	}
	if c.Matching.MaxConcurrency <= 0 {
		c.Matching.MaxConcurrency = 8
	}
	if c.Matching.MaxParallel <= 0 {
		c.Matching.MaxParallel = 4
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "detective.db"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Molit.Timeout); err != nil {
		return fmt.Errorf("molit.timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Matching.RegistryTimeout); err != nil {
		return fmt.Errorf("matching.registry_timeout: %w", err)
	}
	for tag, p := range c.Matching.Policies {
		if _, err := transaction.ParsePropertyType(tag); err != nil {
			return fmt.Errorf("matching.policies: %w", err)
		}
		switch matcher.Combine(p.Combine) {
		case "", matcher.CombineAny, matcher.CombineAll:
		default:
			return fmt.Errorf("matching.policies.%s.combine: must be %q or %q", tag, matcher.CombineAny, matcher.CombineAll)
		}
	}
	return nil
}

// ServiceKey resolves the MOLIT key from config, then the environment
func (c *Config) ServiceKey() string {
	return c.GetAPIKey(c.Molit.ServiceKey, serviceKeyEnvVars...)
}

// ClientConfig converts the molit section for the HTTP clients
func (c *Config) ClientConfig() molit.ClientConfig {
	timeout, _ := time.ParseDuration(c.Molit.Timeout)
	return molit.ClientConfig{
		ServiceKey:        c.ServiceKey(),
		FeedBaseURL:       c.Molit.FeedBaseURL,
		RegistryBaseURL:   c.Molit.RegistryBaseURL,
		Timeout:           timeout,
		RequestsPerSecond: c.Molit.RequestsPerSecond,
		Burst:             c.Molit.Burst,
		RowsPerPage:       c.Molit.RowsPerPage,
	}
}

// MatcherConfig converts the matching section, layering overrides on the defaults
func (c *Config) MatcherConfig() matcher.Config {
	mc := matcher.DefaultConfig()
	if d, err := time.ParseDuration(c.Matching.RegistryTimeout); err == nil && d > 0 {
		mc.RegistryTimeout = d
	}

	for tag, override := range c.Matching.Policies {
		pt, err := transaction.ParsePropertyType(tag)
		if err != nil {
			continue
		}
		policy := mc.PolicyFor(pt)
		if override.LandTolerance != nil {
			policy.LandTolerance = *override.LandTolerance
		}
		if override.BuildTolerance != nil {
			policy.BuildTolerance = *override.BuildTolerance
		}
		if override.Combine != "" {
			policy.Combine = matcher.Combine(override.Combine)
		}
		mc.Policies[pt] = policy
	}

	return mc
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
		if result, err := strconv.Atoi(val); err == nil {
			return result
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if result, err := strconv.ParseFloat(val, 64); err == nil {
			return result
		}
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if val := os.Getenv(k); val != "" {
			return val
		}
	}
	return ""
}

// GetAPIKey retrieves an API key from config first, then tries multiple environment variable names
// Usage: GetAPIKey(cfg.Molit.ServiceKey, "MOLIT_SERVICE_KEY", "NEXT_PUBLIC_API_KEY_MOLIT")
func (c *Config) GetAPIKey(configValue string, envVarNames ...string) string {
	// First, try the config value
	if configValue != "" {
		return configValue
	}

	// Then try each environment variable in order
	for _, envVar := range envVarNames {
		if val := os.Getenv(envVar); val != "" {
			return val
		}
	}

	return ""
}
