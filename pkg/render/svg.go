package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/roadmap/pkg/board"
)

// SVG dimensions in pixels.
const (
	DefaultWidth  = 1200.0
	headerHeight  = 56.0
	legendHeight  = 36.0
	blockPad      = 4.0
	blockFontSize = 13.0
	badgeFontSize = 10.0
)

const boardCSS = `
    .sprint-name { font: 600 14px sans-serif; fill: #1f2937; }
    .sprint-dates { font: 11px sans-serif; fill: #6b7280; }
    .divider { stroke: #e5e7eb; stroke-width: 1; }
    .sprint-divider { stroke: #9ca3af; stroke-width: 1.5; }
    .task { stroke: #d1d5db; stroke-width: 1; }
    .task:hover { stroke: #1f2937; stroke-width: 2; }
    .task-title { font: 13px sans-serif; fill: #111827; }
    .badge-text { font: 600 10px sans-serif; }
    .status-text { font: 600 10px sans-serif; fill: #fff; }
    .marker-today { stroke: #ef4444; stroke-width: 2; stroke-dasharray: 6 4; }
    .marker-release { stroke: #16a34a; stroke-width: 2; }
    .marker-label { font: 600 11px sans-serif; }
    .legend { font: 12px sans-serif; fill: #374151; }`

// SVGOption configures [SVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width     float64
	markers   bool
	legend    bool
	browseURL string
	title     string
}

// WithWidth sets the drawing width in pixels.
func WithWidth(px float64) SVGOption { return func(r *svgRenderer) { r.width = px } }

// WithoutMarkers omits today and release markers.
func WithoutMarkers() SVGOption { return func(r *svgRenderer) { r.markers = false } }

// WithLegend adds a project legend under the board.
func WithLegend() SVGOption { return func(r *svgRenderer) { r.legend = true } }

// WithBrowseURL links each task with a JIRA key to <url>/browse/<key>.
func WithBrowseURL(url string) SVGOption {
	return func(r *svgRenderer) { r.browseURL = strings.TrimRight(url, "/") }
}

// WithTitle sets the document title. It defaults to the PI name.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{width: DefaultWidth, markers: true}
	for _, opt := range opts {
		opt(&r)
	}
	if r.width <= 0 {
		r.width = DefaultWidth
	}
	return r
}

// SVG renders l as a standalone SVG document.
func SVG(l board.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	geom := l.Geometry.WithDefaults()
	projects := l.Projects()

	height := headerHeight + l.Height
	if r.legend && len(projects) > 0 {
		height += legendHeight
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, height, r.width, height)
	title := r.title
	if title == "" {
		title = l.PIName
	}
	if title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(title))
	}
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", boardCSS)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="#ffffff"/>`+"\n", r.width, height)

	r.renderHeader(&buf, l, geom)
	r.renderDividers(&buf, l, geom, height)
	for _, t := range l.Tasks {
		r.renderTask(&buf, t, geom)
	}
	if r.markers {
		for _, m := range l.Markers {
			r.renderMarker(&buf, m, headerHeight+l.Height)
		}
	}
	if r.legend && len(projects) > 0 {
		r.renderLegend(&buf, projects, headerHeight+l.Height)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) x(pct float64) float64 { return pct / 100 * r.width }

func (r svgRenderer) renderHeader(buf *bytes.Buffer, l board.Layout, geom board.Geometry) {
	if len(l.Sprints) == 0 {
		return
	}
	span := r.width / float64(len(l.Sprints))
	for i, s := range l.Sprints {
		cx := span*float64(i) + span/2
		fmt.Fprintf(buf, `  <text class="sprint-name" x="%.1f" y="22" text-anchor="middle">%s</text>`+"\n",
			cx, escapeXML(s.Name))
		if !s.Start.IsZero() {
			fmt.Fprintf(buf, `  <text class="sprint-dates" x="%.1f" y="40" text-anchor="middle">%s – %s</text>`+"\n",
				cx, s.Start.Format("02/01"), s.End.Format("02/01"))
		}
	}
}

func (r svgRenderer) renderDividers(buf *bytes.Buffer, l board.Layout, geom board.Geometry, height float64) {
	perSprint := 0
	if len(l.Sprints) > 0 && geom.Columns%len(l.Sprints) == 0 {
		perSprint = geom.Columns / len(l.Sprints)
	}
	for i, pct := range geom.SprintDividers() {
		class := "divider"
		if perSprint > 0 && (i+1)%perSprint == 0 {
			class = "sprint-divider"
		}
		x := r.x(pct)
		fmt.Fprintf(buf, `  <line class="%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n",
			class, x, headerHeight-8, x, height)
	}
}

func (r svgRenderer) renderTask(buf *bytes.Buffer, t board.PlacedTask, geom board.Geometry) {
	x := r.x(t.LeftPct) + blockPad
	w := max(r.x(t.WidthPct)-2*blockPad, 1)
	y := headerHeight + t.Top
	h := geom.RowHeight - geom.RowGap

	url := ""
	if r.browseURL != "" && t.JiraKey != "" {
		url = r.browseURL + "/browse/" + t.JiraKey
	}
	wrapURL(buf, url, func() {
		fmt.Fprintf(buf, `  <g id="task-%s">`+"\n", escapeXML(t.ID))
		fmt.Fprintf(buf, `    <rect class="task" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="%s"/>`+"\n",
			x, y, w, h, TaskFill(t.Task))

		textY := y + 18
		if t.ProjectID != "" {
			c := ProjectBadge(t.ProjectID)
			bw := float64(len(t.ProjectID))*badgeFontSize*0.65 + 8
			fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="14" rx="3" fill="%s"/>`+"\n", x+6, y+6, bw, c.Background)
			fmt.Fprintf(buf, `    <text class="badge-text" x="%.1f" y="%.1f" fill="%s">%s</text>`+"\n",
				x+10, y+17, c.Text, escapeXML(string(t.ProjectID)))
			textY = y + 36
		}

		title := truncate(board.CleanTitle(t.Title), w-12, blockFontSize)
		fmt.Fprintf(buf, `    <text class="task-title" x="%.1f" y="%.1f">%s</text>`+"\n", x+6, textY, escapeXML(title))

		if st, ok := Status(t.JiraStatus); ok && h >= 56 {
			sw := float64(len([]rune(st.Label)))*badgeFontSize*0.6 + 10
			fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="14" rx="7" fill="%s"/>`+"\n",
				x+6, y+h-20, sw, statusColors[st.Class])
			fmt.Fprintf(buf, `    <text class="status-text %s" x="%.1f" y="%.1f">%s</text>`+"\n",
				st.Class, x+11, y+h-9, escapeXML(st.Label))
		}
		buf.WriteString("  </g>\n")
	})
}

func (r svgRenderer) renderMarker(buf *bytes.Buffer, m board.Marker, bottom float64) {
	x := r.x(m.LeftPct)
	class, color := "marker-release", "#16a34a"
	if m.Kind == board.MarkerToday {
		class, color = "marker-today", "#ef4444"
	}
	fmt.Fprintf(buf, `  <line class="%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", class, x, headerHeight-8, x, bottom)
	label := m.Label
	if m.Detail != "" {
		label += " · " + m.Detail
	}
	fmt.Fprintf(buf, `  <text class="marker-label" x="%.1f" y="%.1f" fill="%s">%s</text>`+"\n",
		x+4, headerHeight+10, color, escapeXML(label))
}

func (r svgRenderer) renderLegend(buf *bytes.Buffer, projects []board.ProjectKey, top float64) {
	x := 12.0
	for _, p := range projects {
		c := ProjectBadge(p)
		fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="14" height="14" rx="3" fill="%s"/>`+"\n", x, top+11, c.Background)
		fmt.Fprintf(buf, `  <text class="legend" x="%.1f" y="%.1f">%s</text>`+"\n", x+20, top+23, escapeXML(string(p)))
		x += 20 + float64(len(p))*8 + 24
	}
}
