package breadthfirst

import (
	"fmt"
	"time"

	"github.com/matzehuels/breadthfirst/pkg/core/digraph"
)

// Result is the outcome of one layout run. It holds no reference to the
// graph and can be kept after the graph changes.
type Result struct {
	// Levels lists node IDs per depth, orphan level first.
	Levels [][]string
	// Info maps every laid-out node to its final depth and index.
	Info map[string]Info
	// Positions maps every laid-out node to its final position.
	Positions map[string]Position
	// BoundingBox is the box positions were projected into.
	BoundingBox BoundingBox
	// Warnings collects non-fatal diagnostics, such as an abandoned
	// maximal adjustment.
	Warnings []string

	order []string
}

// NodeIDs returns the laid-out node IDs in graph order.
func (r *Result) NodeIDs() []string { return r.order }

// Position returns the position of id and whether id was laid out.
func (r *Result) Position(id string) (Position, bool) {
	p, ok := r.Positions[id]
	return p, ok
}

// Layout computes a breadth-first layout of the leaf nodes of g.
//
// Layout never fails: unresolvable roots leave nodes to the orphan level,
// cycles under MaximalDetectCycles end the adjustment pass with a warning,
// and an empty graph yields an empty result with a single empty level.
// Layout does not modify g and is safe to call concurrently on the same graph.
func Layout(g *digraph.Graph, opts Options) *Result {
	order := g.Leaves()
	leaves := make(leafSet, len(order))
	for _, n := range order {
		leaves[n.ID] = n
	}

	res := &Result{BoundingBox: opts.boundingBox(), order: digraph.NodeIDs(order)}

	l := newLevels(len(order))
	roots := selectRoots(g, leaves, opts)
	orphans := l.traverse(g, leaves, order, roots, opts.Directed)

	if opts.Directed && opts.Maximal != MaximalOff {
		if msg := l.adjustMaximally(g, leaves, order, opts.Maximal); msg != "" {
			res.Warnings = append(res.Warnings, msg)
			if opts.Warner != nil {
				opts.Warner.Warn(msg, "mode", opts.Maximal.String())
			}
		}
	}
	l.compact()

	l.prepend(orphans)
	l.sortLevels(g, leaves, opts)

	positions := l.project(res.BoundingBox, minDistance(order, opts.AvoidOverlap), opts.Circle, opts.Grid)
	spread(positions, opts.SpacingFactor)
	if opts.Transform != nil {
		for _, n := range order {
			positions[n.ID] = opts.Transform(n, positions[n.ID])
		}
	}

	res.Levels = l.ids()
	res.Info = l.info
	res.Positions = positions
	return res
}

// Placement is one node position delivered to an Applier.
type Placement struct {
	ID       string
	Position Position
}

// Animation carries the host's animation parameters. The engine only
// forwards them; easing and timing are the host's business.
type Animation struct {
	Enabled  bool
	Duration time.Duration
	Easing   string
	// Filter reports whether the i-th node should be animated. A nil Filter
	// animates every node.
	Filter func(n *digraph.Node, i int) bool
}

// Applier receives computed positions, for example a renderer or a
// document store.
type Applier interface {
	ApplyPositions(batch []Placement, anim Animation) error
}

// ApplierFunc adapts a function to the Applier interface.
type ApplierFunc func(batch []Placement, anim Animation) error

// ApplyPositions calls f.
func (f ApplierFunc) ApplyPositions(batch []Placement, anim Animation) error { return f(batch, anim) }

// Apply delivers the positions to a.
//
// Without animation every node arrives in one batch. With animation, nodes
// rejected by the filter arrive first in an immediate batch (zero Animation),
// followed by the animated batch. Empty batches are not delivered. Nodes of
// the result that are no longer in g are skipped.
func (r *Result) Apply(g *digraph.Graph, a Applier, anim Animation) error {
	var immediate, animated []Placement
	for i, id := range r.order {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		p := Placement{ID: id, Position: r.Positions[id]}
		if anim.Enabled && (anim.Filter == nil || anim.Filter(n, i)) {
			animated = append(animated, p)
		} else {
			immediate = append(immediate, p)
		}
	}

	if len(immediate) > 0 {
		if err := a.ApplyPositions(immediate, Animation{}); err != nil {
			return fmt.Errorf("apply positions: %w", err)
		}
	}
	if len(animated) > 0 {
		if err := a.ApplyPositions(animated, anim); err != nil {
			return fmt.Errorf("apply animated positions: %w", err)
		}
	}
	return nil
}
