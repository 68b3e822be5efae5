package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAllowedOrigins are the CORS origin patterns used outside debug mode
var DefaultAllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}

// Config holds all configuration for the agent
type Config struct {
	// Server settings
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Security
	AllowedOrigins []string
	RateLimitRPS   int

	// Debug allows every CORS origin and enables verbose logging
	Debug bool

	// Logging
	LogLevel  string
	LogFormat string

	EnvFile string
}

// Load reads configuration from environment variables, after loading
// envFile (or ENV_FILE, or ./.env) into the environment if it exists.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = getEnv("ENV_FILE", ".env")
	}

	// Variables already set in the environment win over the file
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{
		Port:           getEnvInt("PORT", 8000),
		Host:           getEnv("HOST", "127.0.0.1"),
		ReadTimeout:    time.Duration(getEnvInt("READ_TIMEOUT_SECONDS", 30)) * time.Second,
		WriteTimeout:   time.Duration(getEnvInt("WRITE_TIMEOUT_SECONDS", 30)) * time.Second,
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", DefaultAllowedOrigins),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 0),
		Debug:          getEnvBool("DEBUG", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		EnvFile:        envFile,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithDefaults loads config with defaults for testing
func LoadWithDefaults() *Config {
	return &Config{
		Port:           8000,
		Host:           "127.0.0.1",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		AllowedOrigins: DefaultAllowedOrigins,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Validate checks the values that would make the server misbehave
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 0 and 65535, got %d", c.Port)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %d", c.RateLimitRPS)
	}
	// cpu_average holds its response for a full second
	if c.WriteTimeout > 0 && c.WriteTimeout <= time.Second {
		return fmt.Errorf("WRITE_TIMEOUT_SECONDS must exceed the 1s cpu sampling window")
	}
	return nil
}

// Addr returns the server address string
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CORSOrigins returns the origin patterns the CORS middleware should accept
func (c *Config) CORSOrigins() []string {
	if c.Debug {
		return []string{"*"}
	}
	return c.AllowedOrigins
}

// EffectiveLogLevel is LogLevel, forced to debug in debug mode
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
