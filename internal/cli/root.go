// Package cli implements the roadmap command-line interface.
//
// # Commands
//
// The main commands are:
//   - layout: Pack a board file into rows and write layout.json
//   - render: Render a board or layout to SVG, JSON, DOT, PNG, or PDF
//   - fetch: Build a board file for one PI from JIRA
//   - preview: Browse a board's rows in the terminal
//   - serve: Run the HTTP API
//   - pis: Print the PI calendar
//   - cache: Manage the local cache
//
// # Configuration
//
// Settings are read from ~/.config/roadmap/config.toml (see [Config]) and
// the JIRA_* and ROADMAP_* environment variables; flags win over both.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs pipeline and cache events through [observability.NewLogHooks].
package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/buildinfo"
	"github.com/matzehuels/roadmap/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Roadmap lays out delivery boards as sprint timelines",
		Long: `Roadmap packs the tasks of a program increment into non-overlapping rows
on a sprint timeline and renders the board as SVG, JSON, or a Graphviz
overlap diagram. Boards come from JIRA or from JSON, TOML, and YAML files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetPipelineHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/roadmap/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.pisCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
