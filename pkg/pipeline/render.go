package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/render"
)

// RenderLayout generates output artifacts in the requested formats.
func RenderLayout(ctx context.Context, l board.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var svg []byte
	svgFor := func() []byte {
		if svg == nil {
			svg = render.SVG(l, buildSVGOptions(opts)...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svgFor()
		case FormatJSON:
			data, err = render.JSON(l)
		case FormatDOT:
			data = []byte(render.OverlapDOT(l))
		case FormatOverlap:
			data, err = render.RenderDOT(ctx, render.OverlapDOT(l))
		case FormatPNG:
			data, err = render.ToPNG(ctx, svgFor(), opts.PNGScale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, svgFor())
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func buildSVGOptions(opts Options) []render.SVGOption {
	svgOpts := []render.SVGOption{render.WithWidth(opts.Width)}
	if opts.NoMarkers {
		svgOpts = append(svgOpts, render.WithoutMarkers())
	}
	if opts.Legend {
		svgOpts = append(svgOpts, render.WithLegend())
	}
	if opts.BrowseURL != "" {
		svgOpts = append(svgOpts, render.WithBrowseURL(opts.BrowseURL))
	}
	return svgOpts
}
