package breadthfirst

import (
	"slices"

	"github.com/matzehuels/breadthfirst/pkg/core/digraph"
)

// weigher computes the weighted percent of a node: the mean relative index
// (index / level size) of its neighbours on shallower levels. Nodes without
// shallower neighbours weigh 0 and sort first. Results are memoised for the
// run.
type weigher struct {
	g      *digraph.Graph
	leaves leafSet
	levels *levels
	memo   map[string]float64
}

func (w *weigher) percent(n *digraph.Node) float64 {
	if p, ok := w.memo[n.ID]; ok {
		return p
	}

	depth := w.levels.info[n.ID].Depth
	var sum float64
	samples := 0
	for _, id := range w.g.Neighbors(n.ID) {
		if !w.leaves.has(id) {
			continue
		}
		nb, ok := w.levels.info[id]
		if !ok || nb.Depth >= depth {
			continue
		}
		sum += float64(nb.Index) / float64(max(1, w.levels.size(nb.Depth)))
		samples++
	}

	p := 0.0
	if samples > 0 {
		p = sum / float64(samples)
	}
	w.memo[n.ID] = p
	return p
}

// sortLevels orders every level, shallowest first, so that each level is
// sorted against the final indices of the levels above it. Levels must be
// compact on entry and are compact on return.
func (l *levels) sortLevels(g *digraph.Graph, leaves leafSet, opts Options) {
	cmp := opts.DepthSort
	if cmp == nil {
		tie := opts.TieBreak
		if tie == nil {
			tie = ByID
		}
		w := &weigher{g: g, leaves: leaves, levels: l, memo: make(map[string]float64, len(leaves))}
		cmp = func(a, b *digraph.Node) int {
			pa, pb := w.percent(a), w.percent(b)
			switch {
			case pa < pb:
				return -1
			case pa > pb:
				return 1
			default:
				return tie(a, b)
			}
		}
	}

	for d := range l.slots {
		slices.SortStableFunc(l.slots[d], cmp)
		l.compactAt(d)
	}
}
