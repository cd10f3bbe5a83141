package board

import (
	"time"

	"github.com/matzehuels/roadmap/pkg/packer"
)

// Layout modes.
const (
	// ModeChronological packs every task into rows with the first-fit packer,
	// ignoring any saved rows.
	ModeChronological = "chronological"

	// ModeManual keeps each task's own row (saved positions or defaults).
	ModeManual = "manual"
)

// PlacedTask is a task with its final row and drawing placement.
type PlacedTask struct {
	Task
	Placement
}

// Layout is a fully computed board, ready for rendering.
type Layout struct {
	PIName    string       `json:"pi_name,omitempty"`
	Mode      string       `json:"mode"`
	Sprints   []Sprint     `json:"sprints"`
	Geometry  Geometry     `json:"geometry"`
	Rows      int          `json:"rows"`
	Height    float64      `json:"height"`
	Tasks     []PlacedTask `json:"tasks"`
	Markers   []Marker     `json:"markers,omitempty"`
	Conflicts int          `json:"conflicts,omitempty"`
}

// Projects returns the distinct projects present in the layout, in order of
// first appearance.
func (l Layout) Projects() []ProjectKey {
	seen := make(map[ProjectKey]bool)
	var out []ProjectKey
	for _, t := range l.Tasks {
		if t.ProjectID != "" && !seen[t.ProjectID] {
			seen[t.ProjectID] = true
			out = append(out, t.ProjectID)
		}
	}
	return out
}

// BuildOptions configures [Build].
type BuildOptions struct {
	Mode     string
	Geometry Geometry
	// Now positions the today marker. The zero value omits it.
	Now time.Time
}

// Chronological merges the project task lists and packs them into rows.
// Each returned task carries its assigned Row; the order is the packing
// order (by start column, then end column).
func Chronological(groups []ProjectTasks) []Task {
	tasks := Merge(groups)
	items := make([]packer.Interval[Task], len(tasks))
	for i, t := range tasks {
		t = Normalize(t)
		items[i] = packer.Interval[Task]{Start: t.Start(), End: t.End(), Data: t}
	}

	placed := packer.Pack(items)
	out := make([]Task, len(placed))
	for i, p := range placed {
		t := p.Data.WithColumns(p.Start, p.End)
		t.Row = p.Row
		out[i] = t
	}
	return out
}

// Build computes the layout of a board file.
func Build(f File, opts BuildOptions) Layout {
	geom := opts.Geometry.WithDefaults()
	mode := opts.Mode
	if mode == "" {
		mode = ModeChronological
	}

	var tasks []Task
	conflicts := 0
	if mode == ModeManual {
		tasks = Merge(f.Projects)
		for i := range tasks {
			tasks[i] = Normalize(tasks[i])
		}
		conflicts = countConflicts(tasks)
	} else {
		tasks = Chronological(f.Projects)
	}

	l := Layout{
		PIName:    f.PI,
		Mode:      mode,
		Sprints:   f.Sprints,
		Geometry:  geom,
		Tasks:     make([]PlacedTask, len(tasks)),
		Conflicts: conflicts,
	}
	if l.PIName == "" && len(f.Sprints) > 0 {
		l.PIName = PIName(f.Sprints[0].Name)
	}

	for i, t := range tasks {
		l.Rows = max(l.Rows, t.Row+1)
		l.Tasks[i] = PlacedTask{Task: t, Placement: geom.Place(t.Start(), t.End(), t.Row)}
	}
	l.Height = geom.MinHeight(l.Rows)

	if !opts.Now.IsZero() {
		if m, ok := TodayMarker(opts.Now, f.Sprints, geom.Columns); ok {
			l.Markers = append(l.Markers, m)
		}
	}
	l.Markers = append(l.Markers, ReleaseMarkers(f.Releases, f.Sprints, geom.Columns)...)
	return l
}

// countConflicts reports how many tasks overlap a kept task in their row.
func countConflicts(tasks []Task) int {
	placed := make([]packer.Placed[struct{}], len(tasks))
	for i, t := range tasks {
		placed[i] = packer.Placed[struct{}]{
			Interval: packer.Normalize(packer.Interval[struct{}]{Start: t.Start(), End: t.End()}),
			Row:      t.Row,
		}
	}
	n := 0
	for len(placed) > 0 {
		c := packer.Check(placed)
		if c == nil {
			break
		}
		n++
		placed = append(placed[:c.B], placed[c.B+1:]...)
	}
	return n
}
