package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/boardio"
	"github.com/matzehuels/roadmap/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		lf layoutFlags
		rf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [board|layout.json]",
		Short: "Render a board or a computed layout",
		Long: `Render a board or a computed layout.

A layout.json (from 'layout') is rendered as is; a board file is laid out
first, so 'render' goes directly from board to picture. Layout flags only
apply to board input.

Formats:
  svg      the board timeline (default)
  json     the computed layout
  dot      Graphviz source of the task overlap graph, one cluster per row
  overlap  the overlap graph rendered to SVG
  png/pdf  the timeline converted with rsvg-convert`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &lf, &rf)
		},
	}

	rf.register(cmd)
	lf.register(cmd)

	return cmd
}

// runRender renders input, sniffing JSON files to tell layouts from boards.
func (c *CLI) runRender(ctx context.Context, input string, lf *layoutFlags, rf *renderFlags) error {
	opts, err := c.layoutOptions(ctx, lf)
	if err != nil {
		return err
	}
	if err := rf.apply(&opts); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, lf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	kind, err := inputKind(input)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	spinner.Start()

	var (
		artifacts map[string][]byte
		l         board.Layout
		cacheHit  bool
	)
	switch kind {
	case boardio.KindLayout:
		l, err = boardio.ImportLayout(input)
		if err == nil {
			artifacts, cacheHit, err = runner.RenderWithCacheInfo(ctx, l, opts)
		}
	default:
		var f board.File
		f, err = boardio.ImportBoard(input)
		if err == nil {
			var res *pipeline.Result
			if res, err = runner.Execute(ctx, f, opts); err == nil {
				artifacts, l = res.Artifacts, res.Layout
				cacheHit = res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit
			}
		}
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render %s: %w", input, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(artifacts, opts.Formats, input, rf.output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", l.PIName)
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(l.Tasks), l.Rows, cacheHit)
	printConflicts(l.Conflicts)
	return nil
}

// inputKind reports whether input holds a board or a layout. Only JSON can
// hold a layout.
func inputKind(input string) (string, error) {
	if !strings.EqualFold(filepath.Ext(input), ".json") {
		return boardio.KindBoard, nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", input, err)
	}
	kind := boardio.Sniff(data)
	if kind == boardio.KindUnknown {
		return "", fmt.Errorf("%s is neither a board nor a layout", input)
	}
	return kind, nil
}

// extensions maps formats to file extensions where they differ.
var extensions = map[string]string{
	pipeline.FormatJSON:    "layout.json",
	pipeline.FormatOverlap: "overlap.svg",
}

func extension(format string) string {
	if ext, ok := extensions[format]; ok {
		return ext
	}
	return format
}

// basePath derives the base output path. An empty output strips the input
// extension (and a ".layout" suffix); an output with a known format
// extension has it stripped.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths returns the file for each format. A single format written to
// an explicit output uses that path unchanged.
func outputPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + extension(f)
	}
	return paths
}

// writeArtifacts writes each artifact and returns the paths in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	paths := outputPaths(formats, input, output)
	var written []string
	for _, f := range formats {
		path := paths[f]
		if path == input {
			return written, fmt.Errorf("refusing to overwrite input %s", input)
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
