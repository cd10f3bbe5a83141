package board

// Default board geometry, matching the delivery board: two columns per
// sprint over a three-sprint PI.
const (
	DefaultColumns    = 6
	DefaultRowHeight  = 95.0
	DefaultRowGap     = 10.0
	DefaultBaseOffset = 20.0
)

// Geometry maps column/row coordinates to rendering offsets.
// Horizontal offsets are percentages of the timeline width; vertical
// offsets are in pixels.
type Geometry struct {
	Columns    int     `json:"columns" toml:"columns"`
	RowHeight  float64 `json:"row_height" toml:"row_height"`
	RowGap     float64 `json:"row_gap" toml:"row_gap"`
	BaseOffset float64 `json:"base_offset" toml:"base_offset"`
}

// DefaultGeometry returns the standard six-column geometry.
func DefaultGeometry() Geometry {
	return Geometry{
		Columns:    DefaultColumns,
		RowHeight:  DefaultRowHeight,
		RowGap:     DefaultRowGap,
		BaseOffset: DefaultBaseOffset,
	}
}

// WithDefaults returns g with zero fields replaced by defaults.
func (g Geometry) WithDefaults() Geometry {
	d := DefaultGeometry()
	if g.Columns <= 0 {
		g.Columns = d.Columns
	}
	if g.RowHeight <= 0 {
		g.RowHeight = d.RowHeight
	}
	if g.RowGap <= 0 {
		g.RowGap = d.RowGap
	}
	if g.BaseOffset <= 0 {
		g.BaseOffset = d.BaseOffset
	}
	return g
}

// Placement is where a task is drawn.
type Placement struct {
	LeftPct  float64 `json:"left_pct"`
	WidthPct float64 `json:"width_pct"`
	Top      float64 `json:"top"`
}

// Place computes the placement of the span [start, end) in row.
func (g Geometry) Place(start, end, row int) Placement {
	cols := float64(g.Columns)
	return Placement{
		LeftPct:  float64(start) / cols * 100,
		WidthPct: float64(end-start) / cols * 100,
		Top:      g.BaseOffset + float64(row)*g.RowHeight,
	}
}

// MinHeight returns the timeline height needed to show rows rows.
func (g Geometry) MinHeight(rows int) float64 {
	rows = max(rows, 1)
	return float64(rows)*(g.RowHeight+g.RowGap) + 20
}

// SprintDividers returns the left offsets (percent) of the inner column
// dividers.
func (g Geometry) SprintDividers() []float64 {
	if g.Columns < 2 {
		return nil
	}
	out := make([]float64, g.Columns-1)
	for i := range out {
		out[i] = float64(i+1) / float64(g.Columns) * 100
	}
	return out
}
