// env.go applies environment variable overrides to a loaded config.

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvHubURL       = "HUB_URL"
	EnvHubAPIKey    = "HUB_API_KEY"
	EnvPort         = "MCP_SERVER_PORT"
	EnvHTTPToken    = "MCP_TOKEN"
	EnvExecTimeout  = "HUBTOOLS_EXEC_TIMEOUT"
	EnvProfile      = "HUBTOOLS_PROFILE"
	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides config values from the environment. Empty variables
// are ignored. The result is validated.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvHubURL); ok {
		c.Hub.URL = strings.TrimRight(v, "/")
	}
	if v, ok := get(EnvHubAPIKey); ok {
		c.Hub.APIKey = v
	}
	if v, ok := get(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil || port < 0 || port > 65535 {
			return fmt.Errorf("%w: %s must be a port number, got %q", ErrInvalidValue, EnvPort, v)
		}
		c.HTTP.Addr = ":" + v
	}
	if v, ok := get(EnvHTTPToken); ok {
		c.HTTP.Token = v
	}
	if v, ok := get(EnvExecTimeout); ok {
		c.Exec.Timeout = v
	}
	if v, ok := get(EnvProfile); ok {
		c.Profile = v
	}
	if v, ok := get(EnvOTLPEndpoint); ok {
		c.Telemetry.Endpoint = v
	}
	return c.Validate()
}
