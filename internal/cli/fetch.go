package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/boardio"
	rerrors "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/pipeline"
)

// fetchOpts holds the flags of the fetch command.
type fetchOpts struct {
	projects []string
	pi       string
	year     int
	output   string
	releases bool
	columns  int
	refresh  bool
	noCache  bool
}

// fetchCommand creates the fetch command for building a board from JIRA.
func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOpts

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Build a board file for one PI from JIRA",
		Long: `Build a board file for one PI from JIRA.

For each project, fetch reads the issues of the active sprints on the board
named after the project (or the open-sprints JQL when there is none), adds
the issues parked in refinement sprints, and drops tests, bugs, and
abandoned issues. With --releases the fix versions shipped during the PI
become release markers.

Connection settings come from the [jira] config section or the
JIRA_BASE_URL, JIRA_EMAIL, and JIRA_API_TOKEN environment variables.`,
		Example: `  roadmap fetch -p TVSMART --pi pi1
  roadmap fetch -p TVSMART,TVFREE --pi pi2 -o pi2.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), &opts)
		},
	}

	fl := cmd.Flags()
	fl.StringSliceVarP(&opts.projects, "projects", "p", nil, "JIRA project keys (default: jira.project_key)")
	fl.StringVar(&opts.pi, "pi", "pi1", "PI identifier (pi1..pi8)")
	fl.IntVar(&opts.year, "year", 0, "calendar year (default: board.year)")
	fl.StringVarP(&opts.output, "output", "o", "", "output file, .json/.toml/.yaml (default: <projects>-<pi>.json)")
	fl.BoolVar(&opts.releases, "releases", true, "include the releases shipped during the PI")
	fl.IntVar(&opts.columns, "columns", 0, "timeline columns used for provisional placement")
	fl.BoolVar(&opts.refresh, "refresh", false, "ignore cached JIRA responses and boards")
	fl.BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runFetch fetches the board and writes it.
func (c *CLI) runFetch(ctx context.Context, opts *fetchOpts) error {
	projects := opts.projects
	if len(projects) == 0 && c.Config.JIRA.ProjectKey != "" {
		projects = []string{c.Config.JIRA.ProjectKey}
	}
	if len(projects) == 0 {
		return fmt.Errorf("no project: pass --projects or set jira.project_key")
	}
	for _, p := range projects {
		if err := rerrors.ValidateProjectKey(p); err != nil {
			return err
		}
	}
	if err := rerrors.ValidatePIID(opts.pi); err != nil {
		return err
	}

	cal := c.Config.Board.CalendarOptions
	if opts.year > 0 {
		cal = cal.ForYear(opts.year)
	}
	pi, ok := board.FindPI(board.GeneratePIs(cal), opts.pi)
	if !ok {
		return fmt.Errorf("unknown PI %q", opts.pi)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	client, err := c.newJIRAClient(runner, opts.refresh)
	if err != nil {
		return err
	}

	pipeOpts := pipeline.Options{
		Columns:  opts.columns,
		Releases: opts.releases,
		Refresh:  opts.refresh,
	}
	if pipeOpts.Columns == 0 {
		pipeOpts.Columns = c.Config.Board.Columns
	}

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching %s %s...", strings.Join(projects, ", "), pi.Name))
	spinner.Start()

	f, cacheHit, err := runner.Fetch(ctx, client, pi, projects, pipeOpts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return fmt.Errorf("fetch %s: %w", pi.Name, err)
	}
	spinner.Stop()
	prog.done("fetched board", "pi", pi.ID, "tasks", f.TaskCount(), "cached", cacheHit)

	output := opts.output
	if output == "" {
		output = fmt.Sprintf("%s-%s.json", strings.Join(projects, "+"), pi.ID)
	}
	if err := boardio.ExportBoard(f, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Fetched %s", pi.Name)
	printFile(output)
	printDetail("%d tasks · %d releases · %s", f.TaskCount(), len(f.Releases), cacheLabel(cacheHit))
	printNewline()
	printNextStep("Layout", appName+" layout "+output)
	return nil
}

func cacheLabel(hit bool) string {
	if hit {
		return iconCached
	}
	return iconFresh
}
