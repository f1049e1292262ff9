/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// tools.go implements the "hubtools tools" command, which prints the
// catalog of the selected profile.
//
// Design: the catalog is rendered as markdown. Terminal output gets
// glamour rendering; pipe/redirect gets the raw markdown so it can be
// pasted into an agent's context.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jpl-au/hubtools/internal/tool"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools of a profile",
		Long: `List the tools served by the selected profile with their arguments.

  hubtools tools                  # configured profile
  hubtools tools --profile hub
  hubtools tools -o json          # same shape as GET /tools`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := runtimeConfig()
			if err != nil {
				return PrintJSONError(err)
			}
			d, err := newDispatcher(cfg, newLogger(cfg.LogLevel()))
			if err != nil {
				return PrintJSONError(err)
			}
			tools := d.Registry().List()

			if JSON() {
				return PrintJSON(map[string]any{"profile": cfg.ProfileName(), "tools": tools})
			}

			md := catalogMarkdown(cfg.ProfileName(), tools)
			if out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd())) {
				if rendered, err := glamour.Render(md, "dark"); err == nil {
					fmt.Fprint(Out(), rendered)
					return nil
				}
			}
			fmt.Fprint(Out(), md)
			return nil
		},
	}
}

// catalogMarkdown renders tools as one section per tool with an argument
// table.
func catalogMarkdown(profile string, tools []tool.Descriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tools (%s)\n", profile)
	for _, t := range tools {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", t.Name, t.Description)
		if t.Exclusive != "" {
			fmt.Fprintf(&b, "\nOne call at a time in category `%s`.\n", t.Exclusive)
		}
		if len(t.Fields) == 0 {
			continue
		}
		b.WriteString("\n| argument | type | required | description |\n|---|---|---|---|\n")
		for _, f := range t.Fields {
			req := "no"
			if f.Required {
				req = "yes"
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", f.Name, f.Type, req, f.Description)
		}
	}
	return b.String()
}
