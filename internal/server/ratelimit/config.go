package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Tier names
const (
	TierDefault   = "default"
	TierNarrative = "narrative"
	TierUpload    = "upload"
	TierExport    = "export"
)

// EndpointConfig is the limit applied to one group of endpoints. Requests from a
// client to any endpoint of the same tier draw from one bucket.
type EndpointConfig struct {
	Tier   string        // Bucket name shared by the endpoints of this tier
	Path   string        // Endpoint path; a trailing "/" matches by prefix
	Method string        // HTTP method
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig loads rate limiting configuration from environment variables:
// RATE_LIMIT_ENABLED, RATE_LIMIT_DEFAULT_LIMIT (per minute), RATE_LIMIT_NARRATIVE_LIMIT,
// RATE_LIMIT_UPLOAD_LIMIT, RATE_LIMIT_EXPORT_LIMIT, RATE_LIMIT_CLEANUP_INTERVAL,
// RATE_LIMIT_WHITELIST and RATE_LIMIT_BLACKLIST.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 60),
		DefaultWindow:   time.Minute,
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(getEnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: EndpointConfigs(
			getEnvInt("RATE_LIMIT_NARRATIVE_LIMIT", 2),
			getEnvInt("RATE_LIMIT_UPLOAD_LIMIT", 10),
			getEnvInt("RATE_LIMIT_EXPORT_LIMIT", 10),
		),
	}
}

// DefaultEndpointConfigs returns the tiers with their default per-minute limits.
func DefaultEndpointConfigs() []EndpointConfig {
	return EndpointConfigs(2, 10, 10)
}

// EndpointConfigs builds the endpoint tiers with the given per-minute limits.
func EndpointConfigs(narrative, upload, export int) []EndpointConfig {
	tier := func(name, method, path string, limit int) EndpointConfig {
		return EndpointConfig{Tier: name, Path: path, Method: method, Limit: limit, Window: time.Minute, Burst: limit}
	}
	return []EndpointConfig{
		// Model calls are the most expensive
		tier(TierNarrative, "POST", "/api/narrative", narrative),
		tier(TierNarrative, "POST", "/api/session/narrative", narrative),

		// Document parsing
		tier(TierUpload, "POST", "/api/parse-resume", upload),
		tier(TierUpload, "POST", "/api/session/upload", upload),

		// Exports may start a headless browser
		tier(TierExport, "POST", "/api/export/", export),
		tier(TierExport, "GET", "/api/session/export/", export),
	}
}

func getEnvString(key string, defaultValue string) string {
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
