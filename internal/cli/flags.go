package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/pipeline"
)

// layoutFlags are the layout options shared by layout, render, fetch and
// preview. Zero values keep the config file's defaults.
type layoutFlags struct {
	mode      string
	columns   int
	rowHeight float64
	rowGap    float64
	today     string
	projects  []string
	hidden    []string
	saved     string
	refresh   bool
	noCache   bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.mode, "mode", "", "layout mode: chronological (default), manual")
	fl.IntVar(&f.columns, "columns", 0, "timeline columns (default 6, two per sprint)")
	fl.Float64Var(&f.rowHeight, "row-height", 0, "row height in pixels (default 95)")
	fl.Float64Var(&f.rowGap, "row-gap", 0, "gap between rows in pixels (default 10)")
	fl.StringVar(&f.today, "today", pipeline.TodayNow, `today marker date (YYYY-MM-DD), "now", or "" to omit`)
	fl.StringSliceVarP(&f.projects, "projects", "p", nil, "only show these projects (comma-separated)")
	fl.StringSliceVar(&f.hidden, "hide", nil, "JIRA keys to hide (comma-separated)")
	fl.StringVar(&f.saved, "saved", "", "apply saved positions and hidden tasks of PROJECT/PI from the store")
	fl.BoolVar(&f.refresh, "refresh", false, "ignore cached results")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options overlays the flags on the config defaults.
func (f *layoutFlags) options(cfg Config) pipeline.Options {
	opts := cfg.LayoutOptions()
	if f.mode != "" {
		opts.Mode = f.mode
	}
	if f.columns > 0 {
		opts.Columns = f.columns
	}
	if f.rowHeight > 0 {
		opts.RowHeight = f.rowHeight
	}
	if f.rowGap > 0 {
		opts.RowGap = f.rowGap
	}
	opts.Today = f.today
	opts.Projects = f.projects
	opts.Hidden = append(opts.Hidden, f.hidden...)
	opts.Refresh = f.refresh
	return opts
}

// parseBoardRef splits "PROJECT/pi1".
func parseBoardRef(ref string) (project, pi string, err error) {
	project, pi, ok := strings.Cut(ref, "/")
	if !ok || project == "" || pi == "" {
		return "", "", fmt.Errorf("invalid board reference %q (want PROJECT/PI, e.g. TVSMART/pi1)", ref)
	}
	return project, pi, nil
}

// layoutOptions resolves the flags, loading saved state when --saved is set.
// Saved positions switch to manual mode unless --mode was given.
func (c *CLI) layoutOptions(ctx context.Context, f *layoutFlags) (pipeline.Options, error) {
	opts := f.options(c.Config)
	opts.Logger = c.Logger
	if f.saved == "" {
		return opts, nil
	}

	project, pi, err := parseBoardRef(f.saved)
	if err != nil {
		return opts, err
	}
	s, err := c.openStore(ctx)
	if err != nil {
		return opts, fmt.Errorf("open store: %w", err)
	}
	defer s.Close(ctx)

	st, err := s.State(ctx, project, pi)
	if err != nil {
		return opts, err
	}
	positions, err := s.Positions(ctx, project, pi)
	if err != nil {
		return opts, err
	}
	opts.Hidden = append(opts.Hidden, st.HiddenJiraKeys...)
	opts.Positions = positions
	if f.mode == "" && len(positions) > 0 {
		opts.Mode = board.ModeManual
	}
	c.Logger.Debug("loaded saved state", "board", f.saved, "positions", len(positions), "hidden", len(st.HiddenJiraKeys))
	return opts, nil
}

// renderFlags are the output options of render and fetch.
type renderFlags struct {
	formats   string
	output    string
	width     float64
	legend    bool
	noMarkers bool
	browseURL string
	pngScale  float64
}

func (f *renderFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), json, dot, overlap, png, pdf (comma-separated)")
	fl.StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	fl.Float64Var(&f.width, "width", 0, "SVG width in pixels (default 1200)")
	fl.BoolVar(&f.legend, "legend", false, "draw a project legend")
	fl.BoolVar(&f.noMarkers, "no-markers", false, "omit today and release markers")
	fl.StringVar(&f.browseURL, "browse-url", "", "link tasks to <url>/browse/<key> (default: jira.base_url)")
	fl.Float64Var(&f.pngScale, "png-scale", 0, "PNG scale factor (default 2)")
}

// apply copies the render flags into opts and validates the formats.
func (f *renderFlags) apply(opts *pipeline.Options) error {
	opts.Formats = parseFormats(f.formats)
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	if f.width > 0 {
		opts.Width = f.width
	}
	if f.legend {
		opts.Legend = true
	}
	opts.NoMarkers = f.noMarkers
	if f.browseURL != "" {
		opts.BrowseURL = f.browseURL
	}
	if f.pngScale > 0 {
		opts.PNGScale = f.pngScale
	}
	return nil
}

// parseFormats parses a comma-separated format string, defaulting to svg.
func parseFormats(s string) []string {
	if formats := pipeline.ParseFormats(s); len(formats) > 0 {
		return formats
	}
	return []string{pipeline.FormatSVG}
}
