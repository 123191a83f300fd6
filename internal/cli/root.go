// Package cli provides the Cobra command structure for goscramble.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/goscramble/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root goscramble command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "goscramble",
		Short: "A scrambling web proxy that turns pages into pronounceable gibberish",
		Long: `goscramble fetches web pages and replaces every word with pronounceable
gibberish while leaving the markup intact. Layout, links, images and forms
all keep working; only the human-readable text is shuffled, letter class
by letter class, so the page still "reads" like language.

Run it as a proxy server with 'goscramble serve', or scramble a single
page to stdout with 'goscramble fetch'.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newFetchCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newEnvCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
