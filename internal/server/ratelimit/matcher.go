package ratelimit

import (
	"strings"
)

// unlimited marks an endpoint that bypasses rate limiting entirely.
var unlimited = EndpointConfig{}

// MatchEndpoint finds the rate limit configuration for a request path and
// method. Exact path matches win over prefix matches; configs whose Path
// ends in "/" match any path under that prefix (so "/farmers/" covers
// "/farmers/{id}"). Returns nil when no config applies and the caller
// should fall back to the global default.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// The health check must stay reachable even for throttled clients.
	if path == "/health" && method == "GET" {
		return &unlimited
	}

	for i := range configs {
		if configs[i].Method == method && configs[i].Path == path {
			return &configs[i]
		}
	}

	for i := range configs {
		if configs[i].Method != method || !strings.HasSuffix(configs[i].Path, "/") {
			continue
		}
		if strings.HasPrefix(path, configs[i].Path) {
			return &configs[i]
		}
	}

	return nil
}
