package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/matzehuels/roadmap/pkg/board"
)

// Colors is a fill and text colour pair.
type Colors struct {
	Background string
	Text       string
}

var projectBadges = map[board.ProjectKey]Colors{
	"TVSMART": {"#3b82f6", "#fff"},
	"TVFREE":  {"#1f2937", "#fff"},
	"TVORA":   {"#f97316", "#fff"},
	"TVSFR":   {"#dc2626", "#fff"},
	"TVFIRE":  {"#eab308", "#000"},
}

var projectFills = map[board.ProjectKey]string{
	"TVSMART": "#dbeafe",
	"TVFREE":  "#f3f4f6",
	"TVORA":   "#ffedd5",
	"TVSFR":   "#fee2e2",
	"TVFIRE":  "#fef9c3",
}

// fallbackPalette colours projects outside the known set, chosen by hash so
// a project keeps its colour across renders.
var fallbackPalette = []struct {
	badge Colors
	fill  string
}{
	{Colors{"#7c3aed", "#fff"}, "#ede9fe"},
	{Colors{"#059669", "#fff"}, "#d1fae5"},
	{Colors{"#db2777", "#fff"}, "#fce7f3"},
	{Colors{"#0891b2", "#fff"}, "#cffafe"},
	{Colors{"#65a30d", "#fff"}, "#ecfccb"},
}

var defaultBadge = Colors{"#667eea", "#fff"}

func paletteIndex(p board.ProjectKey) int {
	h := fnv.New32a()
	h.Write([]byte(p))
	return int(h.Sum32() % uint32(len(fallbackPalette)))
}

// ProjectBadge returns the badge colours of a project.
func ProjectBadge(p board.ProjectKey) Colors {
	if p == "" {
		return defaultBadge
	}
	if c, ok := projectBadges[p]; ok {
		return c
	}
	return fallbackPalette[paletteIndex(p)].badge
}

// TaskFill returns the block colour of a task: its project's colour when
// it has one, otherwise a colour by type.
func TaskFill(t board.Task) string {
	if t.ProjectID != "" {
		if c, ok := projectFills[t.ProjectID]; ok {
			return c
		}
		return fallbackPalette[paletteIndex(t.ProjectID)].fill
	}
	switch {
	case t.Type == board.TypeTech && strings.Contains(t.Title, "Réduction dette"):
		return "#fbbf24"
	case t.Type == board.TypePlayer:
		return "#fef3c7"
	case t.Type == board.TypeBug:
		return "#fee2e2"
	case t.Type == board.TypeMilestone:
		return "#e0e7ff"
	}
	return "#fef9c3"
}

// StatusLabel is the display label and CSS class of a JIRA status.
type StatusLabel struct {
	Label string
	Class string
}

var statusLabels = []struct {
	match []string
	label StatusLabel
}{
	{[]string{"cadrage", "a cadrer"}, StatusLabel{"Cadrage", "status-cadrage"}},
	{[]string{"refinement", "affinage"}, StatusLabel{"Refinement", "status-refinement"}},
	{[]string{"en cours", "in progress"}, StatusLabel{"En cours", "status-en-cours"}},
	{[]string{"bloqu", "block"}, StatusLabel{"Bloqué", "status-bloque"}},
	{[]string{"a faire", "à faire", "to do"}, StatusLabel{"À faire", "status-a-faire"}},
	{[]string{"backlog"}, StatusLabel{"Backlog", "status-backlog"}},
	{[]string{"done", "terminé", "livr"}, StatusLabel{"Done", "status-done"}},
}

// Status maps a raw JIRA status to its display label. Unknown statuses are
// shown as-is; an empty status reports false.
func Status(jiraStatus string) (StatusLabel, bool) {
	if jiraStatus == "" {
		return StatusLabel{}, false
	}
	s := strings.ToLower(jiraStatus)
	for _, e := range statusLabels {
		for _, m := range e.match {
			if strings.Contains(s, m) {
				return e.label, true
			}
		}
	}
	return StatusLabel{jiraStatus, "status-a-faire"}, true
}

var statusColors = map[string]string{
	"status-cadrage":    "#a855f7",
	"status-refinement": "#06b6d4",
	"status-en-cours":   "#3b82f6",
	"status-bloque":     "#dc2626",
	"status-a-faire":    "#6b7280",
	"status-backlog":    "#9ca3af",
	"status-done":       "#16a34a",
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func wrapURL(buf *bytes.Buffer, url string, fn func()) {
	if url != "" {
		fmt.Fprintf(buf, `  <a href="%s" target="_blank">`, escapeXML(url))
	}
	fn()
	if url != "" {
		buf.WriteString("</a>\n")
	}
}

// truncate shortens label to fit width pixels at fontSize.
func truncate(label string, width, fontSize float64) string {
	maxChars := max(int(width/(fontSize*0.55)), 3)
	r := []rune(label)
	if len(r) <= maxChars {
		return label
	}
	return string(r[:maxChars-2]) + ".."
}
