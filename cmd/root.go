/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// root.go defines the root command and CLI execution entry point.
//
// Design: the audit log is opened once in Execute and closed before exit,
// so every command (and every dispatched tool call) can write to it without
// managing its lifecycle. Commands that need the tool catalog resolve config
// and build a dispatcher themselves through runtime.go.

package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jpl-au/hubtools/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "hubtools",
	Short: "Tool server for agent clients over MCP and HTTP",
	Long: `hubtools serves a fixed catalog of tools to agent clients.

The same tools are available on an MCP channel over stdio and as one HTTP
endpoint per tool. Run 'hubtools guide' for an overview.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if output != "" && !slices.Contains(validOutputFormats, output) {
			return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
		}
		if JSON() {
			cmd.SilenceErrors = true
		}
		return nil
	},
}

// Execute runs the root command and handles process lifecycle. Exit code 1
// indicates error.
func Execute() {
	// Initialise audit logger (warn if it fails, but continue)
	if err := log.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable at %s: %v\n", log.DBPath(), err)
	}

	err := rootCmd.Execute()
	log.Close()

	if err != nil {
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.AddCommand(
		newServeCmd(),
		newToolsCmd(),
		newCallCmd(),
		newConfigCmd(),
		newGuideCmd(),
		newLogCmd(),
		newVersionCmd(),
	)
}
