package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/internal/api"
	"github.com/matzehuels/roadmap/pkg/pipeline"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		backend string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Serves saved positions and PI state under /api/positions and /api/pi-state,
layouts under /api/layout, and the PI calendar under /api/pis. When JIRA is
configured, /api/boards, /api/jira and /api/mep are served too.

Positions are kept in the store selected by [store] in the config file
(file by default; ROADMAP_MONGO_URI selects MongoDB).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.Config.Server.Addr = addr
			}
			if backend != "" {
				c.Config.Store.Backend = backend
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr or :3002)")
	cmd.Flags().StringVar(&backend, "store", "", "position store: file, memory, mongo (default: store.backend)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// newServer wires the API server from the config.
func (c *CLI) newServer(ctx context.Context, noCache bool) (*api.Server, error) {
	s, err := c.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("initialize runner: %w", err)
	}

	srv := api.New(s, runner, c.Logger)
	srv.Calendar = c.Config.Board.CalendarOptions
	srv.Layout = c.Config.LayoutOptions()
	srv.Layout.Today = pipeline.TodayNow

	if client, err := c.newJIRAClient(runner, false); err == nil {
		srv.JIRA = client
	} else {
		c.Logger.Warn("JIRA routes disabled", "reason", err)
	}
	return srv, nil
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	srv, err := c.newServer(ctx, noCache)
	if err != nil {
		return err
	}
	defer srv.Runner.Close()
	defer srv.Store.Close(context.WithoutCancel(ctx))

	addr := c.Config.Server.Addr
	if addr == "" {
		addr = api.DefaultAddr
	}
	printKeyValue("Listening", addr)
	printKeyValue("Store", storeLabel(c.Config))
	printKeyValue("JIRA", jiraLabel(srv.JIRA != nil, c.Config.JIRA.BaseURL))
	printNewline()

	return srv.ListenAndServe(ctx, addr)
}

func storeLabel(cfg Config) string {
	if cfg.Store.Backend == "" {
		return "file"
	}
	return cfg.Store.Backend
}

func jiraLabel(enabled bool, baseURL string) string {
	if !enabled {
		return StyleDim.Render("disabled")
	}
	return StyleLink.Render(baseURL)
}
