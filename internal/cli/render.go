package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/breadthfirst/pkg/graph"
	"github.com/matzehuels/breadthfirst/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
	)
	opts := pipeline.Options{}
	opts.SetRenderDefaults()

	cmd := &cobra.Command{
		Use:   "render <layout.json>",
		Short: "Render a computed layout to SVG, PNG, DOT or JSON",
		Long: `Render a layout produced by 'layout' into one or more output formats.

Positions are taken from the layout as-is; the renderer pins every node with
Graphviz neato so nothing is laid out twice. Outputs are written next to the
input (<name>.svg, <name>.png, <name>.render.json, ...) or next to --output when given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			return c.runRender(cmd.Context(), args[0], output, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path prefix (default: input without .layout.json)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", pipeline.FormatSVG, "output formats: svg, png, dot, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "add depth and index to node labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender loads the layout, renders every requested format and writes the
// artifacts.
func (c *CLI) runRender(ctx context.Context, input, output string, opts pipeline.Options, noCache bool) error {
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	l, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, _, err := c.newConfiguredRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()
	artifacts, cached, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render %s: %w", input, err)
	}
	spinner.Stop()

	base := renderBase(input, output)
	formats := slices.Sorted(maps.Keys(artifacts))

	printSuccess("Rendered %s", input)
	for _, format := range formats {
		path := artifactPath(base, format)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(len(l.Nodes), len(l.Edges), len(l.Levels), cached)
	return nil
}

// renderBase strips the layout suffix from input, or returns output with any
// format extension removed.
func renderBase(input, output string) string {
	if output != "" {
		for _, f := range []string{pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatDOT, pipeline.FormatJSON} {
			if s, ok := strings.CutSuffix(output, "."+f); ok {
				return s
			}
		}
		return output
	}
	for _, suffix := range []string{".layout.json", ".json"} {
		if s, ok := strings.CutSuffix(input, suffix); ok {
			return s
		}
	}
	return input
}

// artifactPath names the file a format is written to. JSON gets its own
// suffix so it never replaces the input graph or layout.
func artifactPath(base, format string) string {
	if format == pipeline.FormatJSON {
		return base + ".render.json"
	}
	return base + "." + format
}
