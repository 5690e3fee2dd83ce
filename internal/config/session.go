package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"
)

// SessionConfig holds configuration for signing workflow session tokens.
type SessionConfig struct {
	Secret          string
	ExpirationHours int
	// Ephemeral is set when no SESSION_SECRET was configured and a random
	// secret was generated; tokens do not survive a restart.
	Ephemeral bool
}

// NewSessionConfig creates a session token configuration from environment variables.
// It reads SESSION_SECRET and SESSION_EXPIRATION_HOURS (default: 24). Without a
// secret a random one is generated, which is fine because sessions are held in
// memory and die with the process anyway.
func NewSessionConfig() (*SessionConfig, error) {
	cfg := &SessionConfig{Secret: os.Getenv("SESSION_SECRET")}
	if cfg.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Secret = secret
		cfg.Ephemeral = true
	}

	expirationStr := os.Getenv("SESSION_EXPIRATION_HOURS")
	if expirationStr == "" {
		expirationStr = "24"
	}

	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_EXPIRATION_HOURS: %v", err)
	}
	cfg.ExpirationHours = expirationHours

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Expiration returns the token lifetime.
func (c *SessionConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

func (c *SessionConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("SESSION_SECRET cannot be empty")
	}
	if len(c.Secret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 characters")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("SESSION_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
