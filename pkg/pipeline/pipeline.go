// Package pipeline provides the layout pipeline shared by the CLI and the
// HTTP server.
//
// The pipeline has two stages:
//
//  1. Layout: run the breadth-first engine on a graph
//  2. Render: turn the layout into JSON, DOT, SVG or PNG
//
// Both stages are cached. Layouts are keyed by the graph hash and every
// option that changes positions; artifacts are keyed by the layout hash and
// the format.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Directed: true, Adjustment: "auto", Formats: []string{"svg"}}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	layout, err := runner.ComputeLayout(ctx, g, opts)
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/breadthfirst/pkg/cache"
	"github.com/matzehuels/breadthfirst/pkg/core/digraph"
	"github.com/matzehuels/breadthfirst/pkg/core/layout/breadthfirst"
	bferrors "github.com/matzehuels/breadthfirst/pkg/errors"
	"github.com/matzehuels/breadthfirst/pkg/graph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default canvas width.
	DefaultWidth = breadthfirst.DefaultCanvasWidth

	// DefaultHeight is the default canvas height.
	DefaultHeight = breadthfirst.DefaultCanvasHeight

	// DefaultSpacingFactor is the default spread about the layout centre.
	DefaultSpacingFactor = breadthfirst.DefaultSpacingFactor

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// Adjustment values. The engine modes plus "auto", which picks assume-dag
// for acyclic graphs and detect-cycles otherwise.
const (
	AdjustmentOff          = "off"
	AdjustmentDetectCycles = "detect-cycles"
	AdjustmentAssumeDAG    = "assume-dag"
	AdjustmentAuto         = "auto"
)

// Flow directions. Top-down is the engine's native orientation.
const (
	FlowTopDown   = "top-down"
	FlowBottomUp  = "bottom-up"
	FlowLeftRight = "left-right"
	FlowRightLeft = "right-left"
)

// Tie-break orders for nodes of equal weight.
const (
	TieBreakID    = "id"
	TieBreakLabel = "label"
)

// sortByMetaPrefix introduces a metadata key in SortBy.
const sortByMetaPrefix = "meta:"

var (
	validFormats     = []string{FormatJSON, FormatDOT, FormatSVG, FormatPNG}
	validAdjustments = []string{AdjustmentOff, AdjustmentDetectCycles, AdjustmentAssumeDAG, AdjustmentAuto}
	validFlows       = []string{FlowTopDown, FlowBottomUp, FlowLeftRight, FlowRightLeft}
	validTieBreaks   = []string{TieBreakID, TieBreakLabel}
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. It decodes from API
// request bodies (JSON) and from the config file (TOML).
type Options struct {
	// Layout options
	Directed      bool                      `json:"directed,omitempty" toml:"directed"`
	Circle        bool                      `json:"circle,omitempty" toml:"circle"`
	Grid          bool                      `json:"grid,omitempty" toml:"grid"`
	AvoidOverlap  *bool                     `json:"avoid_overlap,omitempty" toml:"avoid_overlap"` // nil means true
	SpacingFactor float64                   `json:"spacing_factor,omitempty" toml:"spacing_factor"`
	Width         float64                   `json:"width,omitempty" toml:"width"`
	Height        float64                   `json:"height,omitempty" toml:"height"`
	BoundingBox   *breadthfirst.BoundingBox `json:"bounding_box,omitempty" toml:"bounding_box"`
	Roots         []string                  `json:"roots,omitempty" toml:"roots"`
	RootSelector  string                    `json:"root_selector,omitempty" toml:"root_selector"`
	Adjustment    string                    `json:"adjustment,omitempty" toml:"adjustment"`
	SortBy        string                    `json:"sort_by,omitempty" toml:"sort_by"`
	TieBreak      string                    `json:"tie_break,omitempty" toml:"tie_break"`
	Flow          string                    `json:"flow,omitempty" toml:"flow"`

	// Legacy adjustment flags, used only when Adjustment is empty.
	Maximal            bool `json:"maximal,omitempty" toml:"maximal"`
	Acyclic            bool `json:"acyclic,omitempty" toml:"acyclic"`
	MaximalAdjustments int  `json:"maximal_adjustments,omitempty" toml:"maximal_adjustments"`

	// Render options
	Formats  []string `json:"formats,omitempty" toml:"formats"`
	Scale    float64  `json:"scale,omitempty" toml:"scale"`
	Detailed bool     `json:"detailed,omitempty" toml:"detailed"`

	// Runtime options (not serialized)
	Logger  *log.Logger `json:"-" toml:"-"`
	Refresh bool        `json:"-" toml:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the input graph.
	Graph *digraph.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Layout is the computed layout.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LevelCount int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := bferrors.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAdjustment checks an adjustment name. Empty defers to the legacy flags.
func ValidateAdjustment(adjustment string) error {
	if adjustment != "" && !slices.Contains(validAdjustments, adjustment) {
		return bferrors.New(bferrors.ErrCodeInvalidOptions, "invalid adjustment %q (must be one of: %s)",
			adjustment, strings.Join(validAdjustments, ", "))
	}
	return nil
}

// ValidateFlow checks a flow direction. Empty means top-down.
func ValidateFlow(flow string) error {
	if flow != "" && !slices.Contains(validFlows, flow) {
		return bferrors.New(bferrors.ErrCodeInvalidOptions, "invalid flow %q (must be one of: %s)",
			flow, strings.Join(validFlows, ", "))
	}
	return nil
}

// ValidateTieBreak checks a tie-break order. Empty means id.
func ValidateTieBreak(tieBreak string) error {
	if tieBreak != "" && !slices.Contains(validTieBreaks, tieBreak) {
		return bferrors.New(bferrors.ErrCodeInvalidOptions, "invalid tie_break %q (must be one of: %s)",
			tieBreak, strings.Join(validTieBreaks, ", "))
	}
	return nil
}

// ValidateSortBy checks a sort key. Only "meta:<key>" is supported.
func ValidateSortBy(sortBy string) error {
	if sortBy == "" {
		return nil
	}
	key, ok := strings.CutPrefix(sortBy, sortByMetaPrefix)
	if !ok || key == "" {
		return bferrors.New(bferrors.ErrCodeInvalidOptions, "invalid sort_by %q (must be meta:<key>)", sortBy)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.SpacingFactor == 0 {
		o.SpacingFactor = DefaultSpacingFactor
	}
	if o.AvoidOverlap == nil {
		on := true
		o.AvoidOverlap = &on
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Width < 0 || o.Height < 0 {
		return bferrors.New(bferrors.ErrCodeInvalidOptions, "width and height must not be negative")
	}
	if bb := o.BoundingBox; bb != nil && (bb.W <= 0 || bb.H <= 0) {
		return bferrors.New(bferrors.ErrCodeInvalidOptions, "bounding box needs a positive width and height")
	}
	if o.RootSelector != "" {
		if err := bferrors.ValidateSelector(o.RootSelector); err != nil {
			return err
		}
	}
	for _, id := range o.Roots {
		if err := bferrors.ValidateNodeID(id); err != nil {
			return bferrors.Wrap(bferrors.ErrCodeInvalidOptions, err, "invalid root")
		}
	}
	if err := ValidateAdjustment(o.Adjustment); err != nil {
		return err
	}
	if err := ValidateFlow(o.Flow); err != nil {
		return err
	}
	if err := ValidateTieBreak(o.TieBreak); err != nil {
		return err
	}
	return ValidateSortBy(o.SortBy)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return bferrors.New(bferrors.ErrCodeInvalidOptions, "scale must not be negative")
	}
	return ValidateFormats(o.Formats)
}

// AdjustmentName returns the configured adjustment, resolving the legacy
// flags when Adjustment is empty. It may return "auto".
func (o *Options) AdjustmentName() string {
	if o.Adjustment != "" {
		return o.Adjustment
	}
	return breadthfirst.ModeFromLegacy(o.Maximal, o.Acyclic, o.MaximalAdjustments).String()
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Directed:      o.Directed,
		Circle:        o.Circle,
		Grid:          o.Grid,
		AvoidOverlap:  o.AvoidOverlap == nil || *o.AvoidOverlap,
		SpacingFactor: o.SpacingFactor,
		Width:         o.Width,
		Height:        o.Height,
		Roots:         o.Roots,
		RootSelector:  o.RootSelector,
		Mode:          o.AdjustmentName(),
		SortBy:        o.SortBy,
		TieBreak:      o.TieBreak,
		Flow:          o.Flow,
	}
	if bb := o.BoundingBox; bb != nil {
		k.BoundingBox = []float64{bb.X1, bb.Y1, bb.W, bb.H}
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	if o.Detailed && format != FormatJSON {
		k.Format += "+detailed"
	}
	return k
}
