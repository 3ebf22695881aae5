package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tarnished-tactics/api/internal/database"
	"github.com/tarnished-tactics/api/internal/llm"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string          `yaml:"port"`
	Env            string          `yaml:"env"`
	ReadTimeout    time.Duration   `yaml:"read_timeout"`
	WriteTimeout   time.Duration   `yaml:"write_timeout"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Rate       int           `yaml:"rate"`
	Window     time.Duration `yaml:"window"`
	Burst      int           `yaml:"burst"`
	TrustProxy bool          `yaml:"trust_proxy"`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	URL          string        `yaml:"url"`
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	Namespace    string        `yaml:"namespace"`
	Database     string        `yaml:"database"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
	Migrate      bool          `yaml:"migrate"`
}

// LLMConfig holds guide generation settings. An empty APIKey disables
// generation.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Defaults returns the configuration used when neither a file nor the
// environment says otherwise.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "5000",
			Env:            "development",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   90 * time.Second,
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				Rate:    100,
				Window:  time.Minute,
				Burst:   20,
			},
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         "8000",
			Namespace:    "tarnished",
			Database:     "tactics",
			User:         "root",
			Password:     "root",
			QueryTimeout: 10 * time.Second,
			Migrate:      true,
		},
		LLM: LLMConfig{
			Provider:    llm.ProviderOpenAI,
			Timeout:     60 * time.Second,
			MaxTokens:   2000,
			Temperature: 0.7,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration. Values come from, in increasing priority:
// Defaults, the YAML file named by CONFIG_FILE, environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	s := &c.Server
	s.Port = getEnv("PORT", s.Port)
	s.Env = getEnv("SERVER_ENV", s.Env)
	s.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", s.ReadTimeout)
	s.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", s.WriteTimeout)
	s.AllowedOrigins = getSliceEnv("CORS_ALLOWED_ORIGINS", s.AllowedOrigins)
	s.RateLimit.Enabled = getBoolEnv("RATE_LIMIT_ENABLED", s.RateLimit.Enabled)
	s.RateLimit.Rate = getIntEnv("RATE_LIMIT_RATE", s.RateLimit.Rate)
	s.RateLimit.Window = getDurationEnv("RATE_LIMIT_WINDOW", s.RateLimit.Window)
	s.RateLimit.Burst = getIntEnv("RATE_LIMIT_BURST", s.RateLimit.Burst)
	s.RateLimit.TrustProxy = getBoolEnv("RATE_LIMIT_TRUST_PROXY", s.RateLimit.TrustProxy)

	d := &c.Database
	d.URL = getEnv("DB_URL", d.URL)
	d.Host = getEnv("DB_HOST", d.Host)
	d.Port = getEnv("DB_PORT", d.Port)
	d.Namespace = getEnv("DB_NAMESPACE", d.Namespace)
	d.Database = getEnv("DB_DATABASE", d.Database)
	d.User = getEnv("DB_USER", d.User)
	d.Password = getEnv("DB_PASSWORD", d.Password)
	d.QueryTimeout = getDurationEnv("DB_QUERY_TIMEOUT", d.QueryTimeout)
	d.Migrate = getBoolEnv("DB_MIGRATE", d.Migrate)

	l := &c.LLM
	l.Provider = strings.ToLower(getEnv("LLM_PROVIDER", l.Provider))
	l.APIKey = getEnv("LLM_API_KEY", l.APIKey)
	if l.APIKey == "" {
		switch l.Provider {
		case llm.ProviderOpenAI:
			l.APIKey = os.Getenv("OPENAI_API_KEY")
		case llm.ProviderGemini:
			l.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	l.Model = getEnv("LLM_MODEL", l.Model)
	l.BaseURL = getEnv("LLM_BASE_URL", l.BaseURL)
	l.Timeout = getDurationEnv("LLM_TIMEOUT", l.Timeout)
	l.MaxTokens = getIntEnv("LLM_MAX_TOKENS", l.MaxTokens)
	l.Temperature = getFloatEnv("LLM_TEMPERATURE", l.Temperature)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	} else if p, err := strconv.Atoi(c.Server.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a valid TCP port, got '%s'", c.Server.Port))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}
	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.Rate <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_RATE must be positive"))
		}
		if c.Server.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
		}
	}

	// Database validation
	if c.Database.URL == "" {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required when DB_URL is not set"))
		}
		if c.Database.Port == "" {
			errs = append(errs, errors.New("DB_PORT is required when DB_URL is not set"))
		}
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// LLM validation
	if c.LLM.Provider != llm.ProviderOpenAI && c.LLM.Provider != llm.ProviderGemini {
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be '%s' or '%s', got '%s'", llm.ProviderOpenAI, llm.ProviderGemini, c.LLM.Provider))
	}
	if c.LLM.MaxTokens < 0 {
		errs = append(errs, errors.New("LLM_MAX_TOKENS must not be negative"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %v", c.LLM.Temperature))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Connection converts the settings into a database client configuration
func (d DatabaseConfig) Connection() database.Config {
	return database.Config{
		URL:          d.URL,
		Host:         d.Host,
		Port:         d.Port,
		User:         d.User,
		Password:     d.Password,
		Namespace:    d.Namespace,
		Database:     d.Database,
		QueryTimeout: d.QueryTimeout,
	}
}

// Client converts the settings into an llm client configuration
func (l LLMConfig) Client() llm.Config {
	return llm.Config{
		Provider:    l.Provider,
		APIKey:      l.APIKey,
		Model:       l.Model,
		BaseURL:     l.BaseURL,
		Timeout:     l.Timeout,
		MaxTokens:   l.MaxTokens,
		Temperature: l.Temperature,
	}
}

// Enabled reports whether an API key is configured
func (l LLMConfig) Enabled() bool {
	return l.APIKey != ""
}

// SlogLevel parses Level (debug, info, warn, error)
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got '%s'", l.Level)
	}
	return level, nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
