package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the helpmap configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Notices   NoticesConfig   `yaml:"notices"`
	Summary   SummaryConfig   `yaml:"summary"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the shared cache/lock store settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, goredis, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// GeocodingConfig holds the geocoding provider chain settings.
// An empty endpoint disables that provider.
type GeocodingConfig struct {
	Endpoint         string `yaml:"endpoint"`
	FallbackEndpoint string `yaml:"fallback_endpoint"`
	CountryCodes     string `yaml:"country_codes"`
	UserAgent        string `yaml:"user_agent"`
	TimeoutSec       int    `yaml:"timeout_sec"`
}

// NoticesConfig holds the Commu notice backend settings.
type NoticesConfig struct {
	Endpoint        string `yaml:"endpoint"`
	BearerToken     string `yaml:"bearer_token"`
	DistanceKm      int    `yaml:"distance_km"`
	PageSize        int    `yaml:"page_size"`
	RecentDays      int    `yaml:"recent_days"`
	CacheTTLSeconds *int   `yaml:"cache_ttl_seconds"` // nil = default, 0 = caching disabled
	RetryAttempts   int    `yaml:"retry_attempts"`
	RetrySleepMs    *int   `yaml:"retry_sleep_ms"` // nil = default, 0 = no delay
	TimeoutSec      int    `yaml:"timeout_sec"`
}

// SummaryConfig holds area summary generation settings.
type SummaryConfig struct {
	Provider        string        `yaml:"provider"` // bedrock, openai (default: bedrock)
	ModelID         string        `yaml:"model_id"`
	MaxTokens       int           `yaml:"max_tokens"`
	Temperature     *float64      `yaml:"temperature"`
	TopK            int           `yaml:"top_k"`
	CacheTTLSeconds *int          `yaml:"cache_ttl_seconds"` // nil = default, at least 60
	PromptVersion   string        `yaml:"prompt_version"`
	RetryAttempts   int           `yaml:"retry_attempts"`
	RetrySleepMs    *int          `yaml:"retry_sleep_ms"` // nil = default, 0 = no delay
	LockWaitSeconds int           `yaml:"lock_wait_seconds"`
	TimeoutSec      int           `yaml:"timeout_sec"`
	Bedrock         BedrockConfig `yaml:"bedrock"`
	OpenAI          OpenAIConfig  `yaml:"openai"`
}

// BedrockConfig holds AWS Bedrock Runtime credentials.
// Empty keys fall back to the default AWS credential chain.
type BedrockConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// OpenAIConfig holds settings for an OpenAI-compatible chat completion API.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// NoticeCacheTTL returns the notice cache TTL; zero disables caching.
func (c NoticesConfig) NoticeCacheTTL() time.Duration {
	if c.CacheTTLSeconds == nil || *c.CacheTTLSeconds < 0 {
		return 0
	}
	return time.Duration(*c.CacheTTLSeconds) * time.Second
}

// RetrySleep returns the fixed delay between notice query attempts.
func (c NoticesConfig) RetrySleep() time.Duration {
	return millis(c.RetrySleepMs)
}

// RetrySleep returns the fixed delay between generation attempts.
func (c SummaryConfig) RetrySleep() time.Duration {
	return millis(c.RetrySleepMs)
}

// Timeout returns the per-request generator timeout.
func (c SummaryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

func millis(ms *int) time.Duration {
	if ms == nil || *ms < 0 {
		return 0
	}
	return time.Duration(*ms) * time.Millisecond
}

// LockWait returns how long a caller waits for the summary lock.
func (c SummaryConfig) LockWait() time.Duration {
	return time.Duration(c.LockWaitSeconds) * time.Second
}

// CacheTTL returns the summary cache TTL.
func (c SummaryConfig) CacheTTL() time.Duration {
	if c.CacheTTLSeconds == nil {
		return 0
	}
	return time.Duration(*c.CacheTTLSeconds) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded into the process
// environment first so that ${VAR} references can resolve against it.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables in raw YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	if c.Geocoding.UserAgent == "" {
		c.Geocoding.UserAgent = "helpmap/1.0 (contact@example.com)"
	}
	if c.Geocoding.TimeoutSec <= 0 {
		c.Geocoding.TimeoutSec = 10
	}

	c.Notices.applyDefaults()
	c.Summary.applyDefaults()
}

func (c *NoticesConfig) applyDefaults() {
	if c.DistanceKm <= 0 {
		c.DistanceKm = 25
	}
	if c.PageSize <= 0 {
		c.PageSize = 25
	}
	if c.RecentDays <= 0 {
		c.RecentDays = 30
	}
	if c.CacheTTLSeconds == nil {
		ttl := 180
		c.CacheTTLSeconds = &ttl
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 2
	}
	c.RetrySleepMs = atLeast(c.RetrySleepMs, 200, 0)
	if c.TimeoutSec <= 0 {
		c.TimeoutSec = 15
	}
}

func (c *SummaryConfig) applyDefaults() {
	if c.Provider == "" {
		c.Provider = "bedrock"
	}
	if c.ModelID == "" {
		c.ModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 220
	}
	if c.Temperature == nil {
		t := 0.2
		c.Temperature = &t
	}
	if c.TopK <= 0 {
		c.TopK = 250
	}
	c.CacheTTLSeconds = atLeast(c.CacheTTLSeconds, 21600, 60)
	if c.PromptVersion == "" {
		c.PromptVersion = "v1"
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 2
	}
	c.RetrySleepMs = atLeast(c.RetrySleepMs, 300, 0)
	if c.LockWaitSeconds <= 0 {
		c.LockWaitSeconds = 3
	}
	if c.TimeoutSec <= 0 {
		c.TimeoutSec = 30
	}
	if c.Bedrock.Region == "" {
		c.Bedrock.Region = "eu-central-1"
	}
}

// atLeast returns def when v is unset, otherwise v raised to floor.
// An explicit value equal to floor is kept.
func atLeast(v *int, def, floor int) *int {
	n := def
	if v != nil {
		n = max(*v, floor)
	}
	return &n
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "redis", "valkey", "goredis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case "memory":
		// ok
	default:
		return fmt.Errorf(
			"database.driver must be one of redis, valkey, goredis, memory, got %q",
			c.Database.Driver,
		)
	}
	switch c.Summary.Provider {
	case "bedrock":
		// ok
	case "openai":
		if c.Summary.OpenAI.APIKey == "" {
			return fmt.Errorf("summary.openai.api_key is required for provider \"openai\"")
		}
	default:
		return fmt.Errorf("summary.provider must be \"bedrock\" or \"openai\", got %q", c.Summary.Provider)
	}
	if c.Geocoding.CountryCodes != "" && strings.ContainsAny(c.Geocoding.CountryCodes, " \t") {
		return fmt.Errorf("geocoding.country_codes must not contain whitespace, got %q", c.Geocoding.CountryCodes)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
