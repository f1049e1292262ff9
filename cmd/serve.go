/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// serve.go implements the "hubtools serve" command.
//
// Unlike other commands that run and exit, serve blocks while handling
// requests on the MCP channel (stdio) and the HTTP surface. Both surfaces
// share one dispatcher, so exclusivity holds across them.
//
// Design: when the stdio channel reaches EOF the client has gone away, so
// serve stops the HTTP surface too and exits. With --no-stdio it runs until
// a signal arrives.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpl-au/hubtools/internal/httpapi"
	"github.com/jpl-au/hubtools/internal/log"
	"github.com/jpl-au/hubtools/internal/mcp"
	"github.com/jpl-au/hubtools/internal/telemetry"
	"github.com/jpl-au/hubtools/internal/version"
)

func newServeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve tools over stdio (MCP) and HTTP",
		Long: `Serve the tool catalog on an MCP channel over stdio and on HTTP.

  hubtools serve                     # fs profile, stdio + HTTP on :3000
  hubtools serve --profile hub       # hub tools
  hubtools serve --no-http           # stdio only (MCP clients)
  hubtools serve --no-stdio --http :8080

Logs go to stderr; stdout belongs to the MCP channel.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	c.Flags().String("http", "", "HTTP listen address (default from http.addr)")
	c.Flags().Bool("no-stdio", false, "Do not serve the MCP channel on stdio")
	c.Flags().Bool("no-http", false, "Do not serve HTTP")
	return c
}

func runServe(c *cobra.Command, _ []string) error {
	noStdio, _ := c.Flags().GetBool("no-stdio")
	noHTTP, _ := c.Flags().GetBool("no-http")
	if noStdio && noHTTP {
		return errors.New("nothing to serve: --no-stdio and --no-http both set")
	}

	cfg, err := runtimeConfig()
	if err != nil {
		return err
	}
	if addr, _ := c.Flags().GetString("http"); addr != "" {
		if err := cfg.Set("http.addr", addr); err != nil {
			return err
		}
	}

	logger := newLogger(cfg.LogLevel())
	if err := checkKey(cfg, logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.TelemetryEndpoint(), version.Short())
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	d, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("serving",
		"profile", cfg.ProfileName(),
		"tools", d.Registry().Len(),
		"stdio", !noStdio,
		"http", !noHTTP,
		"addr", cfg.HTTPAddr(),
		"version", version.Short(),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 2)
	running := 0
	if !noHTTP {
		running++
		srv := httpapi.New(d, httpapi.Config{Token: cfg.HTTPToken(), Logger: logger})
		go func() {
			errc <- srv.ListenAndServe(ctx, cfg.HTTPAddr())
		}()
	}
	if !noStdio {
		running++
		ch := mcp.NewChannel(mcp.NewServer(d, version.Short()), d, logger)
		go func() {
			err := ch.Serve(ctx, c.InOrStdin(), Out())
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			errc <- err
		}()
	}

	var first error
	for range running {
		if err := <-errc; err != nil && first == nil {
			first = err
		}
		cancel()
	}

	log.Event("cli:serve", "serve").
		Detail("profile", cfg.ProfileName()).
		Detail("stdio", !noStdio).
		Detail("http", !noHTTP).
		Write(first)
	logger.Info("stopped")
	return first
}
