package pipeline

import (
	"cmp"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/breadthfirst/pkg/core/digraph"
	"github.com/matzehuels/breadthfirst/pkg/core/layout/breadthfirst"
)

// EngineOptions translates validated pipeline options into engine options
// for g. The graph is needed to resolve the "auto" adjustment.
func (o *Options) EngineOptions(g *digraph.Graph) breadthfirst.Options {
	eo := breadthfirst.Options{
		Directed:      o.Directed,
		Circle:        o.Circle,
		Grid:          o.Grid,
		AvoidOverlap:  o.AvoidOverlap == nil || *o.AvoidOverlap,
		SpacingFactor: o.SpacingFactor,
		BoundingBox:   o.BoundingBox,
		Width:         o.Width,
		Height:        o.Height,
		Roots:         o.Roots,
		RootSelector:  o.RootSelector,
		Maximal:       o.Mode(g),
		TieBreak:      tieBreak(o.TieBreak),
	}
	if key, ok := strings.CutPrefix(o.SortBy, sortByMetaPrefix); ok && key != "" {
		eo.DepthSort = byMeta(key, eo.TieBreak)
	}
	eo.Transform = flowTransform(o.Flow, o.canvas())
	if o.Logger != nil {
		eo.Warner = o.Logger
	}
	return eo
}

// Mode resolves the maximal adjustment mode for g.
func (o *Options) Mode(g *digraph.Graph) breadthfirst.Mode {
	name := o.AdjustmentName()
	if name == AdjustmentAuto {
		if g.IsAcyclic() {
			return breadthfirst.MaximalAssumeDAG
		}
		return breadthfirst.MaximalDetectCycles
	}
	m, err := breadthfirst.ParseMode(name)
	if err != nil {
		return breadthfirst.MaximalOff
	}
	return m
}

func (o *Options) canvas() breadthfirst.BoundingBox {
	if o.BoundingBox != nil {
		return *o.BoundingBox
	}
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return breadthfirst.BoundingBox{W: w, H: h}
}

func tieBreak(name string) breadthfirst.Comparator {
	if name == TieBreakLabel {
		return func(a, b *digraph.Node) int {
			return cmp.Or(strings.Compare(a.Label(), b.Label()), strings.Compare(a.ID, b.ID))
		}
	}
	return breadthfirst.ByID
}

// byMeta orders nodes by a numeric metadata value, ascending. Nodes without
// a numeric value sort last; ties fall back to tie.
func byMeta(key string, tie breadthfirst.Comparator) breadthfirst.Comparator {
	return func(a, b *digraph.Node) int {
		va, okA := metaNumber(a, key)
		vb, okB := metaNumber(b, key)
		switch {
		case okA && okB:
			if c := cmp.Compare(va, vb); c != 0 {
				return c
			}
		case okA:
			return -1
		case okB:
			return 1
		}
		return tie(a, b)
	}
}

func metaNumber(n *digraph.Node, key string) (float64, bool) {
	var f float64
	switch v := n.Meta[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// flowTransform rotates or mirrors positions about the canvas centre so
// that depth grows in the requested direction. Top-down needs no transform.
func flowTransform(flow string, bb breadthfirst.BoundingBox) breadthfirst.Transform {
	c := bb.Center()
	switch flow {
	case FlowBottomUp:
		return func(_ *digraph.Node, p breadthfirst.Position) breadthfirst.Position {
			return breadthfirst.Position{X: p.X, Y: 2*c.Y - p.Y}
		}
	case FlowLeftRight:
		return func(_ *digraph.Node, p breadthfirst.Position) breadthfirst.Position {
			return breadthfirst.Position{X: c.X + (p.Y - c.Y), Y: c.Y + (p.X - c.X)}
		}
	case FlowRightLeft:
		return func(_ *digraph.Node, p breadthfirst.Position) breadthfirst.Position {
			return breadthfirst.Position{X: c.X - (p.Y - c.Y), Y: c.Y + (p.X - c.X)}
		}
	default:
		return nil
	}
}
