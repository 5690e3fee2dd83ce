// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when neither the config file nor the environment sets a value.
const (
	DefaultPort           = 8080
	DefaultMaxUploadBytes = 10 << 20
	DefaultSessionTTL     = 2 * time.Hour
	DefaultPDFConcurrency = 2
	DefaultChromeTimeout  = 30 * time.Second
	DefaultLogLevel       = "info"
)

// Duration is a time.Duration that reads from JSON as a Go duration string ("90m").
type Duration time.Duration

// UnmarshalJSON accepts either a duration string or a number of seconds.
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
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("duration must be a string or a number of seconds")
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config is the server configuration. It can be loaded from a JSON file and is
// then overridden by environment variables.
type Config struct {
	Port           int      `json:"port,omitempty"`
	MaxUploadBytes int64    `json:"max_upload_bytes,omitempty"` // Upload size limit for resume files
	GeminiAPIKey   string   `json:"gemini_api_key,omitempty"`   // Narrative generation is disabled when empty
	SessionTTL     Duration `json:"session_ttl,omitempty"`      // Idle time before a workflow session is dropped
	CORSOrigins    []string `json:"cors_origins,omitempty"`
	PDFConcurrency int      `json:"pdf_concurrency,omitempty"` // Headless browsers allowed at once
	ChromeTimeout  Duration `json:"chrome_timeout,omitempty"`
	LogLevel       string   `json:"log_level,omitempty"`
}

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Port:           DefaultPort,
		MaxUploadBytes: DefaultMaxUploadBytes,
		SessionTTL:     Duration(DefaultSessionTTL),
		CORSOrigins:    []string{"*"},
		PDFConcurrency: DefaultPDFConcurrency,
		ChromeTimeout:  Duration(DefaultChromeTimeout),
		LogLevel:       DefaultLogLevel,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load builds the effective configuration: defaults, then the optional file at
// path, then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		file, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = file.MergeWithDefaults(cfg)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from PORT, MAX_UPLOAD_BYTES, GEMINI_API_KEY,
// SESSION_TTL, CORS_ORIGINS, PDF_CONCURRENCY, CHROME_TIMEOUT and LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = port
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_BYTES: %v", err)
		}
		c.MaxUploadBytes = n
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL: %v", err)
		}
		c.SessionTTL = Duration(d)
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("PDF_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PDF_CONCURRENCY: %v", err)
		}
		c.PDFConcurrency = n
	}
	if v := os.Getenv("CHROME_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CHROME_TIMEOUT: %v", err)
		}
		c.ChromeTimeout = Duration(d)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxUploadBytes < 1 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be positive")
	}
	if time.Duration(c.SessionTTL) < time.Minute {
		return fmt.Errorf("config error: 'session_ttl' must be at least 1m, got %s", time.Duration(c.SessionTTL))
	}
	if c.PDFConcurrency < 1 {
		return fmt.Errorf("config error: 'pdf_concurrency' must be at least 1")
	}
	if time.Duration(c.ChromeTimeout) <= 0 {
		return fmt.Errorf("config error: 'chrome_timeout' must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: 'log_level' must be one of debug, info, warn, error")
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.SessionTTL == 0 {
		result.SessionTTL = defaults.SessionTTL
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}
	if result.PDFConcurrency == 0 {
		result.PDFConcurrency = defaults.PDFConcurrency
	}
	if result.ChromeTimeout == 0 {
		result.ChromeTimeout = defaults.ChromeTimeout
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	return result
}

// AllowsOrigin reports whether origin may make cross-origin requests.
func (c *Config) AllowsOrigin(origin string) bool {
	for _, o := range c.CORSOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
