package breadthfirst

import (
	"fmt"
	"strings"

	"github.com/matzehuels/breadthfirst/pkg/core/digraph"
)

// Defaults shared by the engine, the pipeline and the CLI.
const (
	// DefaultCanvasWidth is the canvas width used when no bounding box is set.
	DefaultCanvasWidth = 800.0

	// DefaultCanvasHeight is the canvas height used when no bounding box is set.
	DefaultCanvasHeight = 600.0

	// DefaultSpacingFactor spreads positions about their centre. Values other
	// than 0 and 1 scale every position.
	DefaultSpacingFactor = 1.75
)

// Position is a Cartesian coordinate.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// BoundingBox is the region positions are projected into.
type BoundingBox struct {
	X1 float64 `json:"x1" bson:"x1" toml:"x1"`
	Y1 float64 `json:"y1" bson:"y1" toml:"y1"`
	W  float64 `json:"w" bson:"w" toml:"w"`
	H  float64 `json:"h" bson:"h" toml:"h"`
}

// Center returns the centre point of the box.
func (b BoundingBox) Center() Position {
	return Position{X: b.X1 + b.W/2, Y: b.Y1 + b.H/2}
}

// Mode selects how the maximal adjustment pass treats upward edges.
type Mode int

const (
	// MaximalOff keeps the natural breadth-first depths.
	MaximalOff Mode = iota
	// MaximalDetectCycles pushes nodes below their deepest incoming neighbour
	// and bails out with a warning the second time a node has to move.
	MaximalDetectCycles
	// MaximalAssumeDAG pushes nodes like MaximalDetectCycles but allows a
	// node to move any number of times. The caller asserts the graph has no
	// cycles.
	MaximalAssumeDAG
)

var modeNames = map[Mode]string{
	MaximalOff:          "off",
	MaximalDetectCycles: "detect-cycles",
	MaximalAssumeDAG:    "assume-dag",
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("invalid maximal mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode parses a mode name. The empty string means MaximalOff.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "none":
		return MaximalOff, nil
	case "detect-cycles", "maximal":
		return MaximalDetectCycles, nil
	case "assume-dag", "acyclic":
		return MaximalAssumeDAG, nil
	}
	return MaximalOff, fmt.Errorf("invalid maximal mode %q (must be one of: off, detect-cycles, assume-dag)", s)
}

// ModeFromLegacy maps the historical maximal, acyclic and maximalAdjustments
// flags onto a Mode. Setting acyclic implies maximal and wins over the other
// flags; maximal or a positive adjustment count alone selects cycle detection.
func ModeFromLegacy(maximal, acyclic bool, maximalAdjustments int) Mode {
	switch {
	case acyclic:
		return MaximalAssumeDAG
	case maximal || maximalAdjustments > 0:
		return MaximalDetectCycles
	default:
		return MaximalOff
	}
}

// Comparator orders two nodes: negative when a sorts first, positive when b
// does, zero when they are equivalent.
type Comparator func(a, b *digraph.Node) int

// Transform remaps a computed position before it is delivered.
type Transform func(n *digraph.Node, p Position) Position

// Warner receives non-fatal diagnostics. *log.Logger from
// github.com/charmbracelet/log satisfies it.
type Warner interface {
	Warn(msg any, keyvals ...any)
}

// Options configures a breadth-first layout run.
type Options struct {
	// Directed restricts traversal to edge direction.
	Directed bool
	// Circle places depths on concentric rings instead of rows.
	Circle bool
	// Grid gives every row the column width of the widest row (Circle false only).
	Grid bool
	// AvoidOverlap keeps at least the largest node dimension between nodes.
	AvoidOverlap bool
	// SpacingFactor scales positions about their centre; 0 and 1 disable it.
	SpacingFactor float64

	// BoundingBox constrains the layout. When nil, a box of Width x Height
	// at the origin is used.
	BoundingBox *BoundingBox
	// Width is the default canvas width. Non-positive means DefaultCanvasWidth.
	Width float64
	// Height is the default canvas height. Non-positive means DefaultCanvasHeight.
	Height float64

	// Roots lists root node IDs. Unknown IDs are dropped.
	Roots []string
	// RootSelector selects roots when Roots is empty. See digraph.Graph.Select.
	RootSelector string

	// DepthSort replaces the connectivity heuristic that orders each level.
	DepthSort Comparator
	// TieBreak orders nodes with equal heuristic weight. Defaults to ID order.
	TieBreak Comparator

	// Maximal selects the maximal adjustment pass (directed layouts only).
	Maximal Mode

	// Transform remaps each final position.
	Transform Transform

	// Warner receives the cycle warning, if any.
	Warner Warner
}

// DefaultOptions returns the usual starting options:
// overlap avoidance on and a spacing factor of 1.75.
func DefaultOptions() Options {
	return Options{
		AvoidOverlap:  true,
		SpacingFactor: DefaultSpacingFactor,
		Width:         DefaultCanvasWidth,
		Height:        DefaultCanvasHeight,
	}
}

// HasExplicitRoots reports whether roots are given by ID or selector.
func (o Options) HasExplicitRoots() bool {
	return len(o.Roots) > 0 || o.RootSelector != ""
}

func (o Options) boundingBox() BoundingBox {
	if o.BoundingBox != nil {
		return *o.BoundingBox
	}
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultCanvasWidth
	}
	if h <= 0 {
		h = DefaultCanvasHeight
	}
	return BoundingBox{W: w, H: h}
}

// ByID orders nodes by ascending identifier.
func ByID(a, b *digraph.Node) int { return strings.Compare(a.ID, b.ID) }
