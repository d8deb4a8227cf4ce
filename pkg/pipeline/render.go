package pipeline

import (
	"context"
	"fmt"
	"time"

	bferrors "github.com/matzehuels/breadthfirst/pkg/errors"
	"github.com/matzehuels/breadthfirst/pkg/graph"
	"github.com/matzehuels/breadthfirst/pkg/observability"
	"github.com/matzehuels/breadthfirst/pkg/render/nodelink"
)

// RenderFromLayout renders a layout in every requested format.
func RenderFromLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := renderFormats(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	for _, format := range opts.Formats {
		if format != FormatJSON && dot == "" {
			dot = nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed})
		}

		var data []byte
		var err error
		switch format {
		case FormatJSON:
			data, err = graph.MarshalLayout(l)
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		default:
			return nil, bferrors.New(bferrors.ErrCodeUnsupported, "unsupported format %q", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
