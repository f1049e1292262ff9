/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// log.go implements the "hubtools log" command, which lists recent audit
// entries.

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpl-au/hubtools/internal/duration"
	"github.com/jpl-au/hubtools/internal/log"
)

func newLogCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "log",
		Short: "Show recent audit log entries",
		Long: `Show recent tool calls and config changes, newest first.

  hubtools log          # last 20 entries
  hubtools log -n 100
  hubtools log --since 1h     # also 30m, 7d, 2w
  hubtools log -o json

Entries are stored in ~/.hubtools/log/hubtools-log.db (HUBTOOLS_LOG_DB
overrides the location). Argument values are never recorded.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			n, _ := c.Flags().GetInt("lines")
			if n <= 0 {
				return PrintJSONError(fmt.Errorf("-n must be positive, got %d", n))
			}
			var since time.Time
			if v, _ := c.Flags().GetString("since"); v != "" {
				d, err := duration.Parse(v)
				if err != nil {
					return PrintJSONError(fmt.Errorf("--since: %w", err))
				}
				since = time.Now().Add(-d)
			}
			entries, err := log.RecentSince(n, since)
			if err != nil {
				return PrintJSONError(fmt.Errorf("read log: %w", err))
			}

			if JSON() {
				if entries == nil {
					entries = []log.Entry{}
				}
				return PrintJSON(entries)
			}
			for _, e := range entries {
				fmt.Fprintln(Out(), formatEntry(e))
			}
			return nil
		},
	}
	c.Flags().IntP("lines", "n", 20, "Number of entries to show")
	c.Flags().String("since", "", "Only entries newer than this (e.g. 1h, 7d)")
	return c
}

func formatEntry(e log.Entry) string {
	var b strings.Builder
	ts := time.UnixMilli(e.Start).Format(time.DateTime)
	status := "ok"
	if !e.Success {
		status = "FAIL"
		if e.Kind != "" {
			status += " " + e.Kind
		}
	}
	fmt.Fprintf(&b, "%s  %-28s %-6s %-4s %6s", ts, e.Source, e.Action, status, e.Duration().Round(time.Millisecond))
	if e.RequestID != "" {
		fmt.Fprintf(&b, "  id=%s", e.RequestID)
	}
	if len(e.Args) > 0 {
		fmt.Fprintf(&b, "  args=%s", strings.Join(e.Args, ","))
	}
	if e.Error != "" {
		fmt.Fprintf(&b, "  error=%q", e.Error)
	}
	return b.String()
}
