// Package cli implements the breadthfirst command-line interface.
package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/breadthfirst/pkg/buildinfo"
	"github.com/matzehuels/breadthfirst/pkg/cache"
	"github.com/matzehuels/breadthfirst/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "breadthfirst"

	// defaultParallel is the default number of graphs laid out at once.
	defaultParallel = 4
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the --config persistent flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "breadthfirst arranges graphs in breadth-first levels",
		Long: `breadthfirst computes breadth-first layouts of graphs: every node is placed
on the level of its distance from the roots, either in rows or on concentric
circles, and the result is rendered as JSON, DOT, SVG or PNG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+defaultConfigHint()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the per-user cache directory (e.g. ~/.cache/breadthfirst).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags binds the layout options of the layout command.
func layoutFlags(cmd *cobra.Command, opts *pipeline.Options, avoidOverlap *bool) {
	f := cmd.Flags()
	f.BoolVarP(&opts.Directed, "directed", "d", opts.Directed, "follow edge direction")
	f.BoolVar(&opts.Circle, "circle", opts.Circle, "place levels on concentric circles")
	f.BoolVar(&opts.Grid, "grid", opts.Grid, "give every row the width of the widest row")
	f.BoolVar(avoidOverlap, "avoid-overlap", *avoidOverlap, "keep the largest node size between nodes")
	f.Float64Var(&opts.SpacingFactor, "spacing", opts.SpacingFactor, "spread positions about the centre (0 or 1 disables)")
	f.Float64Var(&opts.Width, "width", opts.Width, "canvas width")
	f.Float64Var(&opts.Height, "height", opts.Height, "canvas height")
	f.StringSliceVarP(&opts.Roots, "root", "r", opts.Roots, "root node ID (repeatable)")
	f.StringVar(&opts.RootSelector, "root-selector", opts.RootSelector, "root selector, e.g. [kind = 'service']")
	f.StringVar(&opts.Adjustment, "adjustment", opts.Adjustment, "maximal adjustment: off, detect-cycles, assume-dag, auto")
	f.StringVar(&opts.SortBy, "sort-by", opts.SortBy, "order levels by a numeric metadata value (meta:<key>)")
	f.StringVar(&opts.TieBreak, "tie-break", opts.TieBreak, "order of equally weighted nodes: id, label")
	f.StringVar(&opts.Flow, "flow", opts.Flow, "direction levels grow in: top-down, bottom-up, left-right, right-left")
	registerLayoutCompletions(cmd)
}

// overlayFlags copies every layout flag the user set explicitly from src
// onto dst, so that config file values survive for the others.
func overlayFlags(cmd *cobra.Command, dst *pipeline.Options, src pipeline.Options, avoidOverlap bool) {
	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("directed", func() { dst.Directed = src.Directed })
	set("circle", func() { dst.Circle = src.Circle })
	set("grid", func() { dst.Grid = src.Grid })
	set("avoid-overlap", func() { dst.AvoidOverlap = &avoidOverlap })
	set("spacing", func() { dst.SpacingFactor = src.SpacingFactor })
	set("width", func() { dst.Width = src.Width })
	set("height", func() { dst.Height = src.Height })
	set("root", func() { dst.Roots = src.Roots })
	set("root-selector", func() { dst.RootSelector = src.RootSelector })
	set("adjustment", func() { dst.Adjustment = src.Adjustment })
	set("sort-by", func() { dst.SortBy = src.SortBy })
	set("tie-break", func() { dst.TieBreak = src.TieBreak })
	set("flow", func() { dst.Flow = src.Flow })
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
