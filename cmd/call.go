/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// call.go implements the "hubtools call" command, which runs one tool
// in-process through the same dispatcher the servers use.

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpl-au/hubtools/internal/tool"
)

// errToolFailed is returned when the result has isError set, so the
// process exits non-zero after the result text has been printed.
var errToolFailed = errors.New("tool call failed")

// Transport is the request transport name recorded for CLI calls.
const Transport = "cli"

func newCallCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "call <tool>",
		Short: "Call a tool once and print the result",
		Long: `Call a tool in-process and print its result text.

  hubtools call list_directory --arg path=.
  hubtools call read_file --arg path=go.mod --arg start_line=0 --arg end_line=3
  hubtools call ask_being --profile hub --args '{"being_id":"jon","message":"hi"}'
  hubtools call run_bash_command --arg command="uname -a" -o json

--arg values are passed as strings; use --args for typed JSON. --arg is
applied after --args. The exit status is non-zero when the result is an
error.`,
		Args: cobra.ExactArgs(1),
		RunE: runCall,
	}
	c.Flags().String("args", "", "Arguments as a JSON object")
	c.Flags().StringArray("arg", nil, "Argument as key=value (repeatable)")
	return c
}

func runCall(c *cobra.Command, args []string) error {
	rawJSON, _ := c.Flags().GetString("args")
	pairs, _ := c.Flags().GetStringArray("arg")

	toolArgs, err := parseCallArgs(rawJSON, pairs)
	if err != nil {
		return PrintJSONError(err)
	}

	cfg, err := runtimeConfig()
	if err != nil {
		return PrintJSONError(err)
	}
	d, err := newDispatcher(cfg, newLogger(cfg.LogLevel()))
	if err != nil {
		return PrintJSONError(err)
	}

	res := d.Dispatch(c.Context(), tool.Request{
		Tool:      args[0],
		Arguments: toolArgs,
		Transport: Transport,
	})

	if JSON() {
		if err := PrintJSON(res); err != nil {
			return err
		}
	} else {
		text := res.String()
		fmt.Fprint(Out(), text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(Out())
		}
	}
	if res.IsError {
		c.SilenceErrors = true
		return errToolFailed
	}
	return nil
}

// parseCallArgs merges a JSON object and key=value pairs into tool.Args.
func parseCallArgs(rawJSON string, pairs []string) (tool.Args, error) {
	a := tool.Args{}
	if strings.TrimSpace(rawJSON) != "" {
		if err := json.Unmarshal([]byte(rawJSON), &a); err != nil {
			return nil, fmt.Errorf("--args must be a JSON object: %w", err)
		}
		if a == nil {
			a = tool.Args{}
		}
	}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--arg %q: expected key=value", p)
		}
		a[k] = v
	}
	return a, nil
}
