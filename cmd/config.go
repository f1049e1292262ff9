/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// config.go implements the "hubtools config" command.
//
// Design: config follows a cascade model similar to git: local config
// (.hubtools/config.yaml) takes precedence over global
// (~/.hubtools/config.yaml). The --local flag forces local config even if
// it doesn't exist yet. Environment overrides are not shown or saved here;
// this command edits the file only.

package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jpl-au/hubtools/internal/config"
	"github.com/jpl-au/hubtools/internal/log"
)

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or set config values",
		Long: `View or set config values.

  hubtools config                    # show config
  hubtools config hub.url            # show hub.url
  hubtools config profile hub        # set profile

Configuration locations:
  Global: ~/.hubtools/config.yaml
  Local:  .hubtools/config.yaml

Uses local config if it exists, otherwise global.
Writes go to the same place reads come from.
Use --local to use local config instead.
Secrets (hub.api_key, http.token) are masked when shown.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}
	c.Flags().Bool("local", false, "Use local config (.hubtools/config.yaml)")
	return c
}

func runConfig(c *cobra.Command, args []string) error {
	forceLocal, _ := c.Flags().GetBool("local")

	var cfg *config.Config
	var err error
	if forceLocal {
		cfg, err = config.LoadScope(config.ScopeLocal)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return PrintJSONError(fmt.Errorf("config load: %w", err))
	}

	scopeName := "global"
	if cfg.Scope() == config.ScopeLocal {
		scopeName = "local"
	}

	switch len(args) {
	case 0:
		all := cfg.All()
		log.Event("cli:config", "list").Write(nil)
		if JSON() {
			return PrintJSON(all)
		}
		keys := config.ValidKeys()
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(Out(), "%s: %s\n", k, all[k])
		}

	case 1:
		v, err := cfg.Get(args[0])
		log.Event("cli:config", "get").Detail("key", args[0]).Write(err)
		if err != nil {
			return PrintJSONError(fmt.Errorf("config get %q: %w", args[0], err))
		}
		if JSON() {
			return PrintJSON(map[string]string{args[0]: v})
		}
		fmt.Fprintln(Out(), v)

	case 2:
		if err := cfg.Set(args[0], args[1]); err != nil {
			log.Event("cli:config", "set").Detail("key", args[0]).Write(err)
			return PrintJSONError(fmt.Errorf("config set %q: %w", args[0], err))
		}

		saveErr := cfg.Save()
		// The value is not logged; it may be a credential.
		log.Event("cli:config", "set").Detail("key", args[0]).Detail("scope", scopeName).Write(saveErr)
		if saveErr != nil {
			return PrintJSONError(fmt.Errorf("config save: %w", saveErr))
		}

		shown, _ := cfg.Get(args[0])
		if JSON() {
			return PrintJSON(map[string]string{"key": args[0], "value": shown, "scope": scopeName})
		}
		fmt.Fprintf(Out(), "%s = %s (%s)\n", args[0], shown, scopeName)
	}
	return nil
}
