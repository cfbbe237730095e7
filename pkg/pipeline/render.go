package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/impred/pkg/io"
	"github.com/matzehuels/impred/pkg/observability"
	"github.com/matzehuels/impred/pkg/render"
)

// Render generates output artifacts of a laid-out document in the requested
// formats.
func Render(ctx context.Context, doc *io.Document, opts Options) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderFormats(doc, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(doc *io.Document, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		if format != FormatJSON && dot == "" {
			dot = render.ToDOT(doc, render.Options{Directed: opts.Directed})
		}

		var data []byte
		var err error
		switch format {
		case FormatJSON:
			data, err = MarshalDocument(doc)
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = render.RenderSVG(dot)
		case FormatPNG:
			data, err = render.RenderPNG(dot)
		case FormatPDF:
			data, err = render.RenderPDF(dot)
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
