package ratelimit

import (
	"strings"
)

// unlimited is returned for probes and scrapes.
var unlimited = EndpointConfig{Tier: "unlimited"}

// MatchEndpoint returns the tier configuration for a request, or nil when the
// default limit applies. Exact paths win over prefix ("/api/export/") matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && (path == "/health" || path == "/metrics") {
		u := unlimited
		return &u
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			return config
		}
	}

	return nil
}
