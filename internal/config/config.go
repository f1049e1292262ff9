// Package config provides reading and writing of hubtools configuration.
// Supports both global (~/.hubtools/config.yaml) and local (.hubtools/config.yaml).
// Reading: uses local if it exists, otherwise global.
// Writing: defaults to global, use --local for local.
//
// The server resolves its runtime configuration with [Resolve], which also
// loads an optional .env file and applies environment overrides on top of
// the file values. Overrides are never written back by Save.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jpl-au/hubtools/internal/duration"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.hubtools/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is directory-specific config in .hubtools/config.yaml
	ScopeLocal
)

// Defaults applied when a value is not configured.
const (
	DefaultHubURL   = "http://localhost:9004"
	DefaultHTTPAddr = ":3000"
	DefaultProfile  = "fs"
)

// Profiles lists the tool set names accepted by the profile key.
var Profiles = []string{"fs", "hub"}

// Hub holds the remote hub connection settings.
type Hub struct {
	URL        string `yaml:"url,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
	RequireKey *bool  `yaml:"require_key,omitempty"`
}

// HTTP holds the HTTP surface settings.
type HTTP struct {
	Addr  string `yaml:"addr,omitempty"`
	Token string `yaml:"token,omitempty"`
}

// Exec holds handler execution settings.
type Exec struct {
	// Timeout is a duration such as "30s" or a number of seconds. Unset or
	// zero means no timeout.
	Timeout string `yaml:"timeout,omitempty"`
}

// Log holds runtime logging settings.
type Log struct {
	Level string `yaml:"level,omitempty"`
}

// Telemetry holds OpenTelemetry export settings.
type Telemetry struct {
	Endpoint string `yaml:"endpoint,omitempty"`
}

// Config contains configuration for hubtools.
type Config struct {
	Hub       Hub       `yaml:"hub,omitempty"`
	HTTP      HTTP      `yaml:"http,omitempty"`
	Exec      Exec      `yaml:"exec,omitempty"`
	Log       Log       `yaml:"log,omitempty"`
	Profile   string    `yaml:"profile,omitempty"`
	Telemetry Telemetry `yaml:"telemetry,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are acceptable.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if c.Hub.URL != "" {
		u, err := url.Parse(c.Hub.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: hub.url must be an http or https URL, got %q", ErrInvalidValue, c.Hub.URL)
		}
	}
	if c.HTTP.Addr != "" {
		if _, _, err := net.SplitHostPort(c.HTTP.Addr); err != nil {
			return fmt.Errorf("%w: http.addr must be host:port, got %q", ErrInvalidValue, c.HTTP.Addr)
		}
	}
	if c.Exec.Timeout != "" {
		if _, err := duration.Parse(c.Exec.Timeout); err != nil {
			return fmt.Errorf("%w: exec.timeout: %v", ErrInvalidValue, err)
		}
	}
	if c.Log.Level != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
			return fmt.Errorf("%w: log.level must be debug, info, warn or error, got %q", ErrInvalidValue, c.Log.Level)
		}
	}
	if c.Profile != "" && !slices.Contains(Profiles, c.Profile) {
		return fmt.Errorf("%w: profile must be one of %v, got %q", ErrInvalidValue, Profiles, c.Profile)
	}
	if c.Telemetry.Endpoint != "" {
		if u, err := url.Parse(c.Telemetry.Endpoint); err != nil || u.Host == "" {
			return fmt.Errorf("%w: telemetry.endpoint must be a URL, got %q", ErrInvalidValue, c.Telemetry.Endpoint)
		}
	}
	return nil
}

// HubURL returns the hub base URL (defaults to http://localhost:9004).
func (c *Config) HubURL() string {
	if c.Hub.URL == "" {
		return DefaultHubURL
	}
	return c.Hub.URL
}

// APIKey returns the hub API key. Empty when none is configured; there is
// no fallback key.
func (c *Config) APIKey() string {
	return c.Hub.APIKey
}

// RequireKey reports whether serving without an API key is an error
// (defaults to false).
func (c *Config) RequireKey() bool {
	return c.Hub.RequireKey != nil && *c.Hub.RequireKey
}

// HTTPAddr returns the HTTP listen address (defaults to :3000).
func (c *Config) HTTPAddr() string {
	if c.HTTP.Addr == "" {
		return DefaultHTTPAddr
	}
	return c.HTTP.Addr
}

// HTTPToken returns the bearer token guarding /tools, if any.
func (c *Config) HTTPToken() string {
	return c.HTTP.Token
}

// ExecTimeout returns the per-call timeout (defaults to 0, no timeout).
func (c *Config) ExecTimeout() time.Duration {
	if c.Exec.Timeout == "" {
		return 0
	}
	d, err := duration.Parse(c.Exec.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// LogLevel returns the runtime log level (defaults to info).
func (c *Config) LogLevel() slog.Level {
	var l slog.Level
	if c.Log.Level == "" || l.UnmarshalText([]byte(c.Log.Level)) != nil {
		return slog.LevelInfo
	}
	return l
}

// ProfileName returns the tool set to serve (defaults to fs).
func (c *Config) ProfileName() string {
	if c.Profile == "" {
		return DefaultProfile
	}
	return c.Profile
}

// TelemetryEndpoint returns the OTLP/HTTP endpoint, empty when disabled.
func (c *Config) TelemetryEndpoint() string {
	return c.Telemetry.Endpoint
}

// LocalPath returns the path to the local config file.
func LocalPath() string {
	return filepath.Join(".hubtools", "config.yaml")
}

// GlobalPath returns the path to the global (user) config file: ~/.hubtools/config.yaml
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hubtools", "config.yaml")
}

// Load reads configuration: uses local if it exists, otherwise global.
func Load() (*Config, error) {
	if _, err := os.Stat(LocalPath()); err == nil {
		return LoadScope(ScopeLocal)
	}
	return LoadScope(ScopeGlobal)
}

// Resolve returns the runtime configuration: an optional .env file is
// loaded into the environment, the config file is read with [Load], and
// environment overrides are applied on top.
func Resolve(dotenv string) (*Config, error) {
	if err := LoadDotEnv(dotenv); err != nil {
		return nil, fmt.Errorf("load %s: %w", dotenv, err)
	}
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// Variables already set are left alone. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope) (*Config, error) {
	path := pathForScope(scope)
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// SaveScope writes the configuration to the specified scope.
func (c *Config) SaveScope(scope Scope) error {
	path := pathForScope(scope)
	if path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(path)
}

// saveToPath writes configuration to a specific filesystem path. The file
// may hold credentials, so it is created readable by the owner only.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
