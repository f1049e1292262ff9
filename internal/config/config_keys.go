// config_keys.go provides key-value access to configuration settings.
//
// The CLI reads and writes config by dotted string keys (e.g. "hub.url")
// while config.go owns the YAML structure. Credentials are masked whenever
// a value is read back for display.
//
// Design: RequireKey is a pointer so "not set" (nil) is distinguishable
// from "explicitly false". Defaults only apply to unset values.

package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Masked replaces secret values in Get and All output.
const Masked = "********"

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"hub.url", "hub.api_key", "hub.require_key",
		"http.addr", "http.token",
		"exec.timeout",
		"log.level",
		"profile",
		"telemetry.endpoint",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// IsSecret reports whether a key holds a credential.
func IsSecret(key string) bool {
	return key == "hub.api_key" || key == "http.token"
}

func mask(v string) string {
	if v == "" {
		return ""
	}
	return Masked
}

// Get returns the value of a configuration key as a string. Secrets are
// masked.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "hub.url":
		return c.HubURL(), nil
	case "hub.api_key":
		return mask(c.Hub.APIKey), nil
	case "hub.require_key":
		return strconv.FormatBool(c.RequireKey()), nil
	case "http.addr":
		return c.HTTPAddr(), nil
	case "http.token":
		return mask(c.HTTP.Token), nil
	case "exec.timeout":
		return c.ExecTimeout().String(), nil
	case "log.level":
		return strings.ToLower(c.LogLevel().String()), nil
	case "profile":
		return c.ProfileName(), nil
	case "telemetry.endpoint":
		return c.Telemetry.Endpoint, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key. The value is validated
// before it is stored.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "hub.url":
		next.Hub.URL = strings.TrimRight(value, "/")
	case "hub.api_key":
		next.Hub.APIKey = value
	case "hub.require_key":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: hub.require_key must be true or false", ErrInvalidValue)
		}
		next.Hub.RequireKey = &b
	case "http.addr":
		next.HTTP.Addr = value
	case "http.token":
		next.HTTP.Token = value
	case "exec.timeout":
		next.Exec.Timeout = value
	case "log.level":
		next.Log.Level = strings.ToLower(value)
	case "profile":
		next.Profile = value
	case "telemetry.endpoint":
		next.Telemetry.Endpoint = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// All returns all configuration values as a map. Secrets are masked.
func (c *Config) All() map[string]string {
	out := make(map[string]string, len(ValidKeys()))
	for _, k := range ValidKeys() {
		v, _ := c.Get(k)
		out[k] = v
	}
	return out
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "hub.url":
		return c.Hub.URL != ""
	case "hub.api_key":
		return c.Hub.APIKey != ""
	case "hub.require_key":
		return c.Hub.RequireKey != nil
	case "http.addr":
		return c.HTTP.Addr != ""
	case "http.token":
		return c.HTTP.Token != ""
	case "exec.timeout":
		return c.Exec.Timeout != ""
	case "log.level":
		return c.Log.Level != ""
	case "profile":
		return c.Profile != ""
	case "telemetry.endpoint":
		return c.Telemetry.Endpoint != ""
	default:
		return false
	}
}
