// Package config has the configuration for the app
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment is the deployment environment
type Environment int

const (
	EnvDevelopment Environment = iota
	EnvStaging
	EnvProduction
	EnvTest
)

func (e Environment) String() string {
	switch e {
	case EnvStaging:
		return "staging"
	case EnvProduction:
		return "prod"
	case EnvTest:
		return "test"
	}
	return "dev"
}

// ParseEnvironment accepts the short and long names of each environment
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	}
	return EnvDevelopment, fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", s)
}

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               Environment
	LogLevel          string
	LogDir            string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	Provider ProviderConfig

	PromptLanguage string
	DedupeInFlight bool
	RequestTimeout time.Duration // Bound applied by HTTP handlers to each query
	ProbeInterval  time.Duration // 0 disables the provider probe
}

// ProviderConfig configures the text-generation provider client.
// An empty APIKey is allowed at load time; every call then fails with a
// configuration error.
type ProviderConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration

	BreakerFailures int           // Consecutive failures that open the breaker, 0 disables it
	BreakerCooldown time.Duration // Time the breaker stays open before a trial request
}

// HasCredential reports whether a provider API key is configured
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.Provider.APIKey) != ""
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	env, err := ParseEnvironment(getEnvWithDefault("ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid ENV: %w", err)
	}

	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               env,
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogDir:            getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),         // 4 weeks default
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default

		Provider: ProviderConfig{
			APIKey:      getEnvWithDefault("PROVIDER_API_KEY", os.Getenv("GAPGPT_API_KEY")),
			BaseURL:     strings.TrimRight(getEnvWithDefault("PROVIDER_BASE_URL", "https://api.gapgpt.app/v1"), "/"),
			Model:       getEnvWithDefault("PROVIDER_MODEL", "gpt-4o"),
			Temperature: getFloatEnvWithDefault("PROVIDER_TEMPERATURE", 0.3),
			MaxTokens:   getIntEnvWithDefault("PROVIDER_MAX_TOKENS", 4000),
			Timeout:     time.Duration(getIntEnvWithDefault("PROVIDER_TIMEOUT_SECONDS", 120)) * time.Second,

			BreakerFailures: getIntEnvWithDefault("PROVIDER_BREAKER_FAILURES", 0),
			BreakerCooldown: time.Duration(getIntEnvWithDefault("PROVIDER_BREAKER_COOLDOWN_SECONDS", 30)) * time.Second,
		},

		PromptLanguage: getEnvWithDefault("PROMPT_LANGUAGE", "فارسی"),
		DedupeInFlight: getBoolEnvWithDefault("DEDUPE_INFLIGHT", false),
		RequestTimeout: time.Duration(getIntEnvWithDefault("REQUEST_TIMEOUT_SECONDS", 90)) * time.Second,
		ProbeInterval:  time.Duration(getIntEnvWithDefault("PROBE_INTERVAL_MINUTES", 0)) * time.Minute,
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if cfg.LogRetentionWeeks <= 0 || cfg.LogRetentionWeeks > 52 {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: must be between 1 and 52, got: %d", cfg.LogRetentionWeeks)
	}

	if cfg.MaxLogFileSize < 1024*1024 || cfg.MaxLogFileSize > 1024*1024*1024 {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: must be between 1MB and 1GB, got: %d bytes", cfg.MaxLogFileSize)
	}

	if err := validateProvider(cfg.Provider); err != nil {
		return fmt.Errorf("invalid provider settings: %w", err)
	}

	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("invalid REQUEST_TIMEOUT_SECONDS: must be positive")
	}

	if cfg.ProbeInterval < 0 {
		return fmt.Errorf("invalid PROBE_INTERVAL_MINUTES: must not be negative")
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	switch strings.ToLower(logLevel) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("LOG_LEVEL must be one of: [debug info warn error], got: %s", logLevel)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// validateProvider validates the PROVIDER_* environment variables
func validateProvider(p ProviderConfig) error {
	u, err := url.Parse(p.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("PROVIDER_BASE_URL must be an absolute http(s) URL, got: %s", p.BaseURL)
	}

	if strings.TrimSpace(p.Model) == "" {
		return fmt.Errorf("PROVIDER_MODEL cannot be empty")
	}

	if p.Temperature < 0 || p.Temperature > 1 {
		return fmt.Errorf("PROVIDER_TEMPERATURE must be between 0 and 1, got: %v", p.Temperature)
	}

	if p.MaxTokens < 256 || p.MaxTokens > 16384 {
		return fmt.Errorf("PROVIDER_MAX_TOKENS must be between 256 and 16384, got: %d", p.MaxTokens)
	}

	if p.Timeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT_SECONDS must be positive")
	}

	if p.BreakerFailures < 0 || p.BreakerFailures > 100 {
		return fmt.Errorf("PROVIDER_BREAKER_FAILURES must be between 0 and 100, got: %d", p.BreakerFailures)
	}

	if p.BreakerFailures > 0 && p.BreakerCooldown <= 0 {
		return fmt.Errorf("PROVIDER_BREAKER_COOLDOWN_SECONDS must be positive when the breaker is enabled")
	}

	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnvWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnvWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"PROVIDER_API_KEY",
		"GAPGPT_API_KEY",
		"PROVIDER_BASE_URL",
		"PROVIDER_MODEL",
		"PROVIDER_TEMPERATURE",
		"PROVIDER_MAX_TOKENS",
		"PROVIDER_TIMEOUT_SECONDS",
		"PROVIDER_BREAKER_FAILURES",
		"PROVIDER_BREAKER_COOLDOWN_SECONDS",
		"PROMPT_LANGUAGE",
		"DEDUPE_INFLIGHT",
		"REQUEST_TIMEOUT_SECONDS",
		"PROBE_INTERVAL_MINUTES",
	}
}
