package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can use human readable
// values like "15s" instead of nanosecond integers.
type Duration time.Duration

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler, accepting both "15s" strings
// and raw nanosecond integers
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value %q", value.Value)
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration value %s", data)
	}
	*d = Duration(n)
	return nil
}

// Config holds all configuration options for the Pinterest scraper
type Config struct {
	// Pinterest session settings
	Pinterest PinterestConfig `yaml:"pinterest" json:"pinterest"`

	// Scrape settings
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry configuration
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PinterestConfig holds Pinterest-specific configuration
type PinterestConfig struct {
	SessionCookie string `yaml:"session_cookie" json:"session_cookie"`
	CSRFToken     string `yaml:"csrf_token" json:"csrf_token"`
	CookieFile    string `yaml:"cookie_file" json:"cookie_file"`
	UserAgent     string `yaml:"user_agent" json:"user_agent"`
	BaseURL       string `yaml:"base_url" json:"base_url"`
}

// ScrapeConfig holds search and extraction configuration
type ScrapeConfig struct {
	MaxPins            int           `yaml:"max_pins" json:"max_pins"`
	PageSize           int           `yaml:"page_size" json:"page_size"`
	ConcurrentExtracts int           `yaml:"concurrent_extracts" json:"concurrent_extracts"`
	RequestTimeout     Duration      `yaml:"request_timeout" json:"request_timeout"`
	MaxEmptyPages      int           `yaml:"max_empty_pages" json:"max_empty_pages"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int  `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int  `yaml:"burst_size" json:"burst_size"`
	Enabled           bool `yaml:"enabled" json:"enabled"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxAttempts       int      `yaml:"max_attempts" json:"max_attempts"`
	InitialBackoff    Duration `yaml:"initial_backoff" json:"initial_backoff"`
	MaxBackoff        Duration `yaml:"max_backoff" json:"max_backoff"`
	BackoffMultiplier float64  `yaml:"backoff_multiplier" json:"backoff_multiplier"`
}

// OutputConfig holds export output configuration
type OutputConfig struct {
	Directory string   `yaml:"directory" json:"directory"`
	Formats   []string `yaml:"formats" json:"formats"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultUserAgent mirrors the desktop browser profile the scraper presents
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Pinterest: PinterestConfig{
			UserAgent: DefaultUserAgent,
			BaseURL:   "https://www.pinterest.com",
		},
		Scrape: ScrapeConfig{
			MaxPins:            100,
			PageSize:           25,
			ConcurrentExtracts: 5,
			RequestTimeout:     Duration(15 * time.Second),
			MaxEmptyPages:      5,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			BurstSize:         10,
			Enabled:           true,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    Duration(time.Second),
			MaxBackoff:        Duration(60 * time.Second),
			BackoffMultiplier: 2.0,
		},
		Output: OutputConfig{
			Directory: "./output",
			Formats:   []string{"excel"},
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// ValidFormats lists the export formats the scraper understands.
// "both" is the historical alias for excel+json.
var ValidFormats = map[string]bool{
	"excel": true,
	"json":  true,
	"csv":   true,
	"both":  true,
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if session := os.Getenv("PINSCRAPER_SESSION_COOKIE"); session != "" {
		c.Pinterest.SessionCookie = session
	}
	if csrf := os.Getenv("PINSCRAPER_CSRF_TOKEN"); csrf != "" {
		c.Pinterest.CSRFToken = csrf
	}
	if cookieFile := os.Getenv("PINSCRAPER_COOKIE_FILE"); cookieFile != "" {
		c.Pinterest.CookieFile = cookieFile
	}
	if userAgent := os.Getenv("PINSCRAPER_USER_AGENT"); userAgent != "" {
		c.Pinterest.UserAgent = userAgent
	}

	if maxPins := os.Getenv("PINSCRAPER_MAX_PINS"); maxPins != "" {
		var val int
		fmt.Sscanf(maxPins, "%d", &val)
		if val > 0 {
			c.Scrape.MaxPins = val
		}
	}
	if concurrent := os.Getenv("PINSCRAPER_CONCURRENT_EXTRACTS"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Scrape.ConcurrentExtracts = val
		}
	}

	if rpm := os.Getenv("PINSCRAPER_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if outputDir := os.Getenv("PINSCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if formats := os.Getenv("PINSCRAPER_OUTPUT_FORMATS"); formats != "" {
		c.Output.Formats = splitFormats(formats)
	}

	if logLevel := os.Getenv("PINSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// splitFormats parses a comma separated format list
func splitFormats(s string) []string {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(strings.ToLower(f))
		if f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".pinscraper.yaml",
		".pinscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "pinscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "pinscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".pinscraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".pinscraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Pinterest.BaseURL == "" {
		errs = append(errs, errors.New("pinterest base URL is required"))
	}

	if c.Scrape.MaxPins <= 0 {
		errs = append(errs, errors.New("max pins must be positive"))
	}
	if c.Scrape.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if c.Scrape.ConcurrentExtracts <= 0 {
		errs = append(errs, errors.New("concurrent extracts must be positive"))
	}
	if c.Scrape.ConcurrentExtracts > 10 {
		errs = append(errs, errors.New("concurrent extracts should not exceed 10"))
	}
	if c.Scrape.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Scrape.MaxEmptyPages <= 0 {
		errs = append(errs, errors.New("max empty pages must be positive"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}

	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max retry attempts cannot be negative"))
	}
	if c.Retry.InitialBackoff <= 0 {
		errs = append(errs, errors.New("initial backoff must be positive"))
	}
	if c.Retry.MaxBackoff < c.Retry.InitialBackoff {
		errs = append(errs, errors.New("max backoff must not be smaller than initial backoff"))
	}
	if c.Retry.BackoffMultiplier < 1 {
		errs = append(errs, errors.New("backoff multiplier must be at least 1"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if len(c.Output.Formats) == 0 {
		errs = append(errs, errors.New("at least one output format is required"))
	}
	for _, format := range c.Output.Formats {
		if !ValidFormats[strings.ToLower(format)] {
			errs = append(errs, fmt.Errorf("invalid output format: %s", format))
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if session, ok := flags["session-cookie"].(string); ok && session != "" {
		c.Pinterest.SessionCookie = session
	}
	if csrf, ok := flags["csrf-token"].(string); ok && csrf != "" {
		c.Pinterest.CSRFToken = csrf
	}
	if cookieFile, ok := flags["cookies"].(string); ok && cookieFile != "" {
		c.Pinterest.CookieFile = cookieFile
	}
	if maxPins, ok := flags["limit"].(int); ok && maxPins > 0 {
		c.Scrape.MaxPins = maxPins
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Output.Formats = splitFormats(format)
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Scrape.ConcurrentExtracts = concurrent
	}
	if rateLimit, ok := flags["rate-limit"].(int); ok && rateLimit > 0 {
		c.RateLimit.RequestsPerMinute = rateLimit
	}
	if maxRetries, ok := flags["max-retries"].(int); ok && maxRetries >= 0 {
		c.Retry.MaxAttempts = maxRetries
	}
	if timeout, ok := flags["timeout"].(int); ok && timeout > 0 {
		c.Scrape.RequestTimeout = Duration(time.Duration(timeout) * time.Second)
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".pinscraper.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
