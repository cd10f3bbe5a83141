package board

import (
	"fmt"
	"regexp"
	"time"
)

// Calendar defaults: 2026 planning starts on Monday 19 January, with eight
// PIs of three two-week sprints.
const (
	DefaultSprintDays   = 14
	DefaultSprintsPerPI = 3
	DefaultPIsPerYear   = 8
)

// DefaultCalendarStart is the first sprint start of the default calendar.
var DefaultCalendarStart = NewDate(2026, time.January, 19)

// CalendarOptions configures [GeneratePIs].
type CalendarOptions struct {
	Year         int  `toml:"year"`
	Start        Date `toml:"pi_start"`
	PIs          int  `toml:"pis_per_year"`
	SprintsPerPI int  `toml:"sprints_per_pi"`
	SprintDays   int  `toml:"sprint_days"`
}

func (o CalendarOptions) withDefaults() CalendarOptions {
	if o.Start.IsZero() {
		o.Start = DefaultCalendarStart
	}
	if o.Year == 0 {
		o.Year = o.Start.Year()
	}
	if o.PIs <= 0 {
		o.PIs = DefaultPIsPerYear
	}
	if o.SprintsPerPI <= 0 {
		o.SprintsPerPI = DefaultSprintsPerPI
	}
	if o.SprintDays <= 0 {
		o.SprintDays = DefaultSprintDays
	}
	return o
}

// ForYear moves the calendar start to the same weekday in year, keeping
// the day of year as close as possible.
func (o CalendarOptions) ForYear(year int) CalendarOptions {
	start := o.Start
	if start.IsZero() {
		start = DefaultCalendarStart
	}
	o.Year = year
	if start.Year() == year {
		o.Start = start
		return o
	}
	shifted := start.AddDate(year-start.Year(), 0, 0)
	for shifted.Weekday() != start.Weekday() {
		shifted = shifted.AddDate(0, 0, 1)
	}
	o.Start = Date{shifted}
	return o
}

// GeneratePIs builds a year of back-to-back PIs. Sprint n of PI p is
// identified "pi<p>-s<n>" and named "S<n> PI <p> <year>"; each sprint ends
// the day before the next one starts.
func GeneratePIs(opts CalendarOptions) []PI {
	opts = opts.withDefaults()
	pis := make([]PI, 0, opts.PIs)
	cur := opts.Start
	for p := 1; p <= opts.PIs; p++ {
		sprints := make([]Sprint, 0, opts.SprintsPerPI)
		for s := 1; s <= opts.SprintsPerPI; s++ {
			sprints = append(sprints, Sprint{
				ID:    fmt.Sprintf("pi%d-s%d", p, s),
				Name:  fmt.Sprintf("S%d PI %d %d", s, p, opts.Year),
				Start: cur,
				End:   cur.AddDays(opts.SprintDays - 1),
			})
			cur = cur.AddDays(opts.SprintDays)
		}
		pis = append(pis, PI{
			ID:      fmt.Sprintf("pi%d", p),
			Name:    fmt.Sprintf("PI %d %d", p, opts.Year),
			Sprints: sprints,
		})
	}
	return pis
}

// FindPI returns the PI with the given ID.
func FindPI(pis []PI, id string) (PI, bool) {
	for _, pi := range pis {
		if pi.ID == id {
			return pi, true
		}
	}
	return PI{}, false
}

var piNameRe = regexp.MustCompile(`(?i)PI\s+\d+\s+\d{4}`)

// PIName extracts "PI <n> <year>" from a sprint name such as "S1 PI 1 2026".
// It returns "" when the name carries no PI reference.
func PIName(sprintName string) string {
	return piNameRe.FindString(sprintName)
}

// DateRange returns the first sprint start and last sprint end.
func DateRange(sprints []Sprint) (start, end Date, ok bool) {
	if len(sprints) == 0 {
		return Date{}, Date{}, false
	}
	return sprints[0].Start, sprints[len(sprints)-1].End, true
}

// =============================================================================
// Markers
// =============================================================================

// Marker kinds.
const (
	MarkerToday   = "today"
	MarkerRelease = "release"
)

// Marker is a vertical line at a point in time.
type Marker struct {
	Kind    string  `json:"kind"`
	Label   string  `json:"label"`
	Detail  string  `json:"detail,omitempty"`
	Column  float64 `json:"column"`
	LeftPct float64 `json:"left_pct"`
}

// ColumnAt converts t to a fractional column position in [0, cols] within
// the PI spanned by sprints. It reports false when t falls outside the PI.
func ColumnAt(t time.Time, sprints []Sprint, cols int) (float64, bool) {
	start, end, ok := DateRange(sprints)
	if !ok || t.Before(start.Time) || t.After(end.Time) {
		return 0, false
	}
	total := end.Sub(start.Time).Hours() / 24
	if total <= 0 {
		return 0, true
	}
	elapsed := t.Sub(start.Time).Hours() / 24
	pos := elapsed / total * float64(cols)
	return min(max(pos, 0), float64(cols)), true
}

// TodayMarker places a marker at now, if now falls inside the PI.
func TodayMarker(now time.Time, sprints []Sprint, cols int) (Marker, bool) {
	col, ok := ColumnAt(now, sprints, cols)
	if !ok {
		return Marker{}, false
	}
	return Marker{
		Kind:    MarkerToday,
		Label:   "Today",
		Column:  col,
		LeftPct: col / float64(cols) * 100,
	}, true
}

// ReleaseMarkers places one marker per scheduled release inside the PI.
// Releases dated "TBD", undated, or outside the PI are skipped.
func ReleaseMarkers(releases []Release, sprints []Sprint, cols int) []Marker {
	var out []Marker
	for _, r := range releases {
		if r.Date == "" || r.Date == "TBD" {
			continue
		}
		d, err := ParseDate(r.Date)
		if err != nil {
			continue
		}
		col, ok := ColumnAt(d.Time, sprints, cols)
		if !ok {
			continue
		}
		out = append(out, Marker{
			Kind:    MarkerRelease,
			Label:   r.Version,
			Detail:  d.Format("02/01"),
			Column:  col,
			LeftPct: col / float64(cols) * 100,
		})
	}
	return out
}
