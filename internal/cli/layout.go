package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/breadthfirst/pkg/graph"
	"github.com/matzehuels/breadthfirst/pkg/pipeline"
)

// layoutResult is what one graph contributes to the summary.
type layoutResult struct {
	input, output string
	nodes, edges  int
	levels        int
	cached        bool
	warnings      []string
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output       string
		noCache      bool
		parallel     int
		avoidOverlap = true
	)
	flagOpts := pipeline.Options{}
	flagOpts.SetLayoutDefaults()

	cmd := &cobra.Command{
		Use:   "layout <graph.json>...",
		Short: "Compute breadth-first layouts of graph files",
		Long: `Compute breadth-first layouts of one or more graph files.

Every input graph.json is laid out independently and written to
<input>.layout.json, or to --output when there is a single input. Layout
options come from the [layout] table of the config file; flags given on the
command line override it.

Results are cached, so repeated runs over unchanged graphs are instant.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && len(args) > 1 {
				return fmt.Errorf("--output requires a single input, got %d", len(args))
			}
			runner, cfg, err := c.newConfiguredRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := cfg.Layout
			overlayFlags(cmd, &opts, flagOpts, avoidOverlap)
			return c.runLayouts(cmd.Context(), runner, args, opts, output, parallel)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", defaultParallel, "graphs laid out at once")
	layoutFlags(cmd, &flagOpts, &avoidOverlap)

	return cmd
}

// runLayouts lays out every input with at most parallel graphs in flight.
// The first failure cancels the remaining work.
func (c *CLI) runLayouts(ctx context.Context, runner *pipeline.Runner, inputs []string, opts pipeline.Options, output string, parallel int) error {
	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	spinner := newSpinnerWithContext(ctx, layoutMessage(0, len(inputs)))
	spinner.Start()

	results := make([]layoutResult, len(inputs))
	var finished atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, parallel))
	for i, input := range inputs {
		g.Go(func() error {
			res, err := layoutFile(gctx, runner, input, layoutOutputPath(input, output), opts)
			if err != nil {
				return err
			}
			results[i] = res
			spinner.SetMessage("%s", layoutMessage(int(finished.Add(1)), len(inputs)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	for _, res := range results {
		printSuccess("Laid out %s", res.input)
		printFile(res.output)
		printStats(res.nodes, res.edges, res.levels, res.cached)
		for _, w := range res.warnings {
			printWarning("%s", w)
		}
	}
	prog.done(fmt.Sprintf("laid out %d graphs", len(inputs)))

	printNewline()
	if len(results) == 1 {
		printNextStep("Render", appName+" render "+results[0].output)
		printNextStep("Browse", appName+" preview "+results[0].output)
	}
	return nil
}

// layoutFile lays out a single graph file and writes the layout next to it.
func layoutFile(ctx context.Context, runner *pipeline.Runner, input, output string, opts pipeline.Options) (layoutResult, error) {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return layoutResult{}, fmt.Errorf("load graph %s: %w", input, err)
	}

	l, cached, err := runner.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return layoutResult{}, fmt.Errorf("lay out %s: %w", input, err)
	}
	if err := graph.WriteLayoutFile(l, output); err != nil {
		return layoutResult{}, fmt.Errorf("write output %s: %w", output, err)
	}

	return layoutResult{
		input:    input,
		output:   output,
		nodes:    len(l.Nodes),
		edges:    len(l.Edges),
		levels:   len(l.Levels),
		cached:   cached,
		warnings: l.Warnings,
	}, nil
}

// layoutOutputPath returns output, or <input>.layout.json when it is empty.
func layoutOutputPath(input, output string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
}

func layoutMessage(done, total int) string {
	return fmt.Sprintf("Computing layouts... %d/%d", done, total)
}
