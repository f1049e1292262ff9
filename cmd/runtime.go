/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// runtime.go resolves configuration and builds the dispatcher shared by
// serve, tools and call.

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jpl-au/hubtools/internal/config"
	"github.com/jpl-au/hubtools/internal/dispatch"
	"github.com/jpl-au/hubtools/internal/hub"
	"github.com/jpl-au/hubtools/internal/profile"
	"github.com/jpl-au/hubtools/internal/telemetry"
)

// runtimeConfig loads config with .env and environment overrides applied,
// then applies the --profile flag.
func runtimeConfig() (*config.Config, error) {
	cfg, err := config.Resolve(envFile)
	if err != nil {
		return nil, err
	}
	if profileName != "" {
		if err := cfg.Set("profile", profileName); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newLogger returns the runtime logger. It writes to stderr because stdout
// carries the MCP channel.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newDispatcher builds the configured profile's catalog and a dispatcher
// over it.
func newDispatcher(cfg *config.Config, logger *slog.Logger) (*dispatch.Dispatcher, error) {
	reg, handlers, err := profile.Build(cfg.ProfileName(), profile.Settings{
		HubURL: cfg.HubURL(),
		APIKey: cfg.APIKey(),
	})
	if err != nil {
		return nil, err
	}
	obs, err := telemetry.Global()
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	return dispatch.New(reg, handlers,
		dispatch.WithTimeout(cfg.ExecTimeout()),
		dispatch.WithObserver(obs),
		dispatch.WithLogger(logger),
	), nil
}

// checkKey enforces hub.require_key for the hub profile and warns when no
// key is configured.
func checkKey(cfg *config.Config, logger *slog.Logger) error {
	if cfg.ProfileName() != "hub" {
		return nil
	}
	c := hub.New(cfg.HubURL(), cfg.APIKey(), nil)
	if c.HasKey() {
		return nil
	}
	if cfg.RequireKey() {
		return fmt.Errorf("hub api key not configured and hub.require_key is set\n\nRun: hubtools config hub.api_key <key>\nor set %s", config.EnvHubAPIKey)
	}
	logger.Warn("hub api key not configured; hub tools will fail", "hub", c.BaseURL(), "hint", "set hub.api_key or "+config.EnvHubAPIKey)
	return nil
}
