// Package pipeline runs the board pipeline shared by the CLI and the API.
//
// # Architecture
//
// The pipeline has three stages:
//
//  1. Fetch: build a board file from JIRA (optional; files can be read
//     from disk with boardio instead)
//  2. Layout: filter, hide, apply saved positions, and pack rows
//  3. Render: produce SVG, JSON, DOT, PNG, or PDF output
//
// Each stage can be run on its own. [Runner] adds caching keyed by content
// hash, so an unchanged board is neither re-packed nor re-rendered.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, file, pipeline.Options{
//	    Formats: []string{"svg", "json"},
//	    Today:   "now",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/cache"
	rerrors "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultMode is the default layout mode.
const DefaultMode = board.ModeChronological

// DefaultWidth is the default SVG width in pixels.
const DefaultWidth = render.DefaultWidth

// TodayNow is the Today value that places the marker at the current date.
const TodayNow = "now"

// Format constants for output formats.
const (
	FormatSVG     = "svg"
	FormatJSON    = "json"
	FormatDOT     = "dot"
	FormatOverlap = "overlap"
	FormatPNG     = "png"
	FormatPDF     = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:     true,
	FormatJSON:    true,
	FormatDOT:     true,
	FormatOverlap: true,
	FormatPNG:     true,
	FormatPDF:     true,
}

// ValidModes is the set of supported layout modes.
var ValidModes = map[string]bool{
	board.ModeChronological: true,
	board.ModeManual:        true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the board pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Mode      string           `json:"mode,omitempty"`
	Columns   int              `json:"columns,omitempty"`
	RowHeight float64          `json:"row_height,omitempty"`
	RowGap    float64          `json:"row_gap,omitempty"`
	Projects  []string         `json:"projects,omitempty"`   // keep only these projects
	Hidden    []string         `json:"hidden,omitempty"`     // JIRA keys to drop
	Positions []board.Position `json:"positions,omitempty"`  // saved placements
	Today     string           `json:"today,omitempty"`      // "YYYY-MM-DD", "now", or "" for no marker
	Refresh   bool             `json:"refresh,omitempty"`    // bypass cached layouts and artifacts
	Releases  bool             `json:"releases,omitempty"`   // fetch: include releases
	PNGScale  float64          `json:"png_scale,omitempty"`  // png: scale factor
	BrowseURL string           `json:"browse_url,omitempty"` // svg: link tasks to JIRA
	NoMarkers bool             `json:"no_markers,omitempty"` // svg: omit markers
	Legend    bool             `json:"legend,omitempty"`     // svg: project legend
	Width     float64          `json:"width,omitempty"`      // svg: width in pixels
	Formats   []string         `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// now is the resolved Today date; zero means no marker.
	now time.Time
	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// BoardHash is the content hash of the prepared board file.
	BoardHash string

	// Layout is the computed layout.
	Layout board.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TaskCount  int
	RowCount   int
	Conflicts  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return rerrors.New(rerrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMode checks that a layout mode is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return rerrors.New(rerrors.ErrCodeInvalidMode, "invalid mode: %q (must be one of: chronological, manual)", mode)
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.Columns <= 0 {
		o.Columns = board.DefaultColumns
	}
	if o.RowHeight <= 0 {
		o.RowHeight = board.DefaultRowHeight
	}
	if o.RowGap <= 0 {
		o.RowGap = board.DefaultRowGap
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	for _, p := range o.Projects {
		if err := rerrors.ValidateProjectKey(p); err != nil {
			return err
		}
	}
	switch o.Today {
	case "":
		o.now = time.Time{}
	case TodayNow:
		if o.now.IsZero() {
			o.now = time.Now().UTC()
		}
	default:
		d, err := board.ParseDate(o.Today)
		if err != nil {
			return rerrors.Wrap(rerrors.ErrCodeInvalidInput, err, "invalid today date %q", o.Today)
		}
		// Midday keeps the marker inside the day.
		o.now = d.Add(12 * time.Hour)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.PNGScale <= 0 {
		o.PNGScale = 2
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.BrowseURL != "" {
		return rerrors.ValidateURL(o.BrowseURL)
	}
	return nil
}

// Geometry returns the board geometry described by the options.
func (o *Options) Geometry() board.Geometry {
	return board.Geometry{
		Columns:   o.Columns,
		RowHeight: o.RowHeight,
		RowGap:    o.RowGap,
	}.WithDefaults()
}

// todayKey is the date string of the resolved today marker, or "".
func (o *Options) todayKey() string {
	if o.now.IsZero() {
		return ""
	}
	return o.now.Format(board.DateLayout)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Mode:      o.Mode,
		Columns:   o.Columns,
		RowHeight: o.RowHeight,
		RowGap:    o.RowGap,
		Projects:  o.Projects,
		Today:     o.todayKey(),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG, FormatPNG, FormatPDF:
		k.Width = o.Width
		k.Markers = !o.NoMarkers
		k.Legend = o.Legend
		k.BrowseURL = o.BrowseURL
	}
	if format == FormatPNG {
		k.Width *= o.PNGScale
	}
	return k
}
