package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/roadmap/pkg/board"
)

func intp(v int) *int { return &v }

func testFile() board.File {
	return board.File{
		PI: "PI 1 2026",
		Sprints: []board.Sprint{
			{ID: "pi1-s1", Name: "S1 PI 1 2026", Start: board.NewDate(2026, time.January, 19), End: board.NewDate(2026, time.February, 1)},
			{ID: "pi1-s2", Name: "S2 PI 1 2026", Start: board.NewDate(2026, time.February, 2), End: board.NewDate(2026, time.February, 15)},
			{ID: "pi1-s3", Name: "S3 PI 1 2026", Start: board.NewDate(2026, time.February, 16), End: board.NewDate(2026, time.March, 1)},
		},
		Projects: []board.ProjectTasks{
			{Project: "TVSMART", Tasks: []board.Task{
				{ID: "t1", Title: "TVSMART-1 - Login <beta>", JiraKey: "TVSMART-1", JiraStatus: "En cours", StartCol: intp(0), EndCol: intp(2)},
				{ID: "t2", Title: "Search", StartCol: intp(1), EndCol: intp(3)},
			}},
			{Project: "NEWAPP", Tasks: []board.Task{
				{ID: "t3", Title: "Player", StartCol: intp(4), EndCol: intp(6)},
			}},
		},
		Releases: []board.Release{{ID: "r1", Version: "1.2.0", Date: "2026-02-10"}},
	}
}

func testLayout() board.Layout {
	return board.Build(testFile(), board.BuildOptions{Now: time.Date(2026, time.January, 26, 12, 0, 0, 0, time.UTC)})
}

func TestSVG(t *testing.T) {
	svg := string(SVG(testLayout(), WithBrowseURL("https://jira.example.com/")))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		"<title>PI 1 2026</title>",
		"S2 PI 1 2026",
		`id="task-t1"`,
		`id="task-t3"`,
		"Login &lt;beta&gt;",
		`href="https://jira.example.com/browse/TVSMART-1"`,
		`class="status-text status-en-cours"`,
		`fill="#dbeafe"`,
		`<line class="marker-today"`,
		`<line class="marker-release"`,
		"1.2.0 · 10/02",
		`class="sprint-divider"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, "TVSMART-1 - Login") {
		t.Error("ticket prefix should be stripped from titles")
	}
	if strings.Contains(svg, `class="legend"`) {
		t.Error("legend drawn without WithLegend")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("SVG not closed")
	}
}

func TestSVGOptions(t *testing.T) {
	l := testLayout()

	svg := string(SVG(l, WithoutMarkers(), WithLegend(), WithWidth(600), WithTitle("Board")))
	if strings.Contains(svg, `class="marker-today"`) || strings.Contains(svg, `class="marker-release"`) || strings.Contains(svg, `class="marker-label"`) {
		t.Error("markers drawn with WithoutMarkers")
	}
	if !strings.Contains(svg, `class="legend"`) || !strings.Contains(svg, ">NEWAPP</text>") {
		t.Error("legend missing")
	}
	if !strings.Contains(svg, `width="600"`) || !strings.Contains(svg, "<title>Board</title>") {
		t.Error("width or title option ignored")
	}
	if strings.Contains(svg, "<a href") {
		t.Error("links drawn without WithBrowseURL")
	}

	if got := string(SVG(l, WithWidth(-1))); !strings.Contains(got, `width="1200"`) {
		t.Error("non-positive width should fall back to the default")
	}
}

func TestSVGEmpty(t *testing.T) {
	svg := SVG(board.Build(board.File{}, board.BuildOptions{}))
	if !bytes.HasPrefix(svg, []byte("<svg")) {
		t.Errorf("empty board SVG = %q", svg)
	}
}

func TestJSON(t *testing.T) {
	l := testLayout()
	data, err := JSON(l)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var got board.Layout
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Rows != l.Rows || len(got.Tasks) != 3 {
		t.Errorf("decoded layout = %+v", got)
	}
	again, _ := JSON(l)
	if !bytes.Equal(data, again) {
		t.Error("JSON output is not stable")
	}
}

func TestOverlapDOT(t *testing.T) {
	dot := OverlapDOT(testLayout())
	for _, want := range []string{
		"graph overlaps {",
		"subgraph cluster_row0",
		"subgraph cluster_row1",
		`"t1" -- "t2";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"t1" -- "t3"`) {
		t.Error("disjoint tasks joined")
	}
	if strings.Contains(dot, "color=red") {
		t.Error("packed layout should have no conflicts")
	}
}

func TestOverlapDOTConflicts(t *testing.T) {
	f := testFile()
	l := board.Build(f, board.BuildOptions{Mode: board.ModeManual})
	dot := OverlapDOT(l)
	if !strings.Contains(dot, `"t1" -- "t2" [color=red, penwidth=2];`) {
		t.Errorf("manual same-row overlap not flagged:\n%s", dot)
	}
}

func TestRenderDOT(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz render in short mode")
	}
	svg, err := RenderDOT(context.Background(), OverlapDOT(testLayout()))
	if err != nil {
		t.Fatalf("RenderDOT: %v", err)
	}
	if !bytes.Contains(svg, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)) {
		t.Errorf("viewBox not normalized: %.200s", svg)
	}

	if _, err := RenderDOT(context.Background(), "graph {"); err == nil {
		t.Error("invalid DOT should fail")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox = %s, want %s", got, want)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("no viewBox should pass through, got %s", got)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		in, label, class string
	}{
		{"A cadrer", "Cadrage", "status-cadrage"},
		{"In Progress", "En cours", "status-en-cours"},
		{"Bloqué", "Bloqué", "status-bloque"},
		{"To Do", "À faire", "status-a-faire"},
		{"Livré", "Done", "status-done"},
		{"Backlog", "Backlog", "status-backlog"},
		{"Recette", "Recette", "status-a-faire"},
	}
	for _, tt := range tests {
		got, ok := Status(tt.in)
		if !ok || got.Label != tt.label || got.Class != tt.class {
			t.Errorf("Status(%q) = %+v, %v; want %s/%s", tt.in, got, ok, tt.label, tt.class)
		}
	}
	if _, ok := Status(""); ok {
		t.Error("empty status should report false")
	}
}

func TestColors(t *testing.T) {
	if got := ProjectBadge("TVORA"); got.Background != "#f97316" {
		t.Errorf("TVORA badge = %+v", got)
	}
	if got := ProjectBadge(""); got != defaultBadge {
		t.Errorf("empty project badge = %+v", got)
	}
	if ProjectBadge("NEWAPP") != ProjectBadge("NEWAPP") {
		t.Error("fallback badge is not stable")
	}

	tests := []struct {
		task board.Task
		want string
	}{
		{board.Task{ProjectID: "TVFREE"}, "#f3f4f6"},
		{board.Task{Type: board.TypeTech, Title: "Réduction dette API"}, "#fbbf24"},
		{board.Task{Type: board.TypePlayer}, "#fef3c7"},
		{board.Task{Type: board.TypeFeature}, "#fef9c3"},
	}
	for _, tt := range tests {
		if got := TaskFill(tt.task); got != tt.want {
			t.Errorf("TaskFill(%+v) = %s, want %s", tt.task, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 500, 13); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	got := truncate("a very long task title that will not fit", 60, 13)
	if !strings.HasSuffix(got, "..") || len([]rune(got)) != 8 {
		t.Errorf("truncate = %q", got)
	}
}

func TestConvertWithoutTool(t *testing.T) {
	old := converter
	converter = "rsvg-convert-not-installed"
	defer func() { converter = old }()

	if _, err := ToPNG(context.Background(), []byte("<svg/>"), 2); !errors.Is(err, ErrNoConverter) {
		t.Errorf("ToPNG = %v, want ErrNoConverter", err)
	}
	if _, err := ToPDF(context.Background(), []byte("<svg/>")); !errors.Is(err, ErrNoConverter) {
		t.Errorf("ToPDF = %v, want ErrNoConverter", err)
	}
}
