package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/packer"
)

// OverlapDOT converts a layout to the Graphviz DOT form of its interval
// overlap graph. Each row is a cluster; an edge joins two tasks whose
// column spans overlap. Edges inside a row are conflicts and drawn red.
func OverlapDOT(l board.Layout) string {
	var buf bytes.Buffer
	buf.WriteString("graph overlaps {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.15,0.05\"];\n")
	buf.WriteString("\n")

	rows := make([][]board.PlacedTask, l.Rows)
	for _, t := range l.Tasks {
		if t.Row >= 0 && t.Row < len(rows) {
			rows[t.Row] = append(rows[t.Row], t)
		}
	}
	for i, row := range rows {
		fmt.Fprintf(&buf, "  subgraph cluster_row%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("row %d", i))
		buf.WriteString("    style=dashed;\n")
		for _, t := range row {
			fmt.Fprintf(&buf, "    %q [label=%q, fillcolor=%q];\n", t.ID, dotLabel(t), TaskFill(t.Task))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for i, a := range l.Tasks {
		as := span(a)
		for _, b := range l.Tasks[i+1:] {
			bs := span(b)
			if !packer.Overlaps(as.Start, as.End, bs.Start, bs.End) {
				continue
			}
			attrs := ""
			if a.Row == b.Row {
				attrs = " [color=red, penwidth=2]"
			}
			fmt.Fprintf(&buf, "  %q -- %q%s;\n", a.ID, b.ID, attrs)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func span(t board.PlacedTask) packer.Interval[struct{}] {
	return packer.Normalize(packer.Interval[struct{}]{Start: t.Start(), End: t.End()})
}

func dotLabel(t board.PlacedTask) string {
	title := board.CleanTitle(t.Title)
	if title == "" {
		title = t.ID
	}
	return fmt.Sprintf("%s\n[%d, %d)", strings.TrimSpace(title), t.Start(), t.End())
}

// RenderDOT renders a DOT graph to SVG using Graphviz.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the SVG scales like the board renderer's output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
