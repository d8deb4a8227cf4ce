package breadthfirst

import (
	"fmt"

	"github.com/matzehuels/breadthfirst/pkg/core/digraph"
)

// leafSet is the set of nodes taking part in the layout.
type leafSet map[string]*digraph.Node

func (s leafSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// selectRoots resolves the roots of the traversal.
//
// Explicit roots (IDs first, then a selector) are used as given, dropping IDs
// that are unknown or name parent nodes. Otherwise a directed layout starts
// from the sources, and an undirected one from the highest-degree nodes of
// every connected component.
func selectRoots(g *digraph.Graph, leaves leafSet, opts Options) []*digraph.Node {
	var roots []*digraph.Node
	switch {
	case len(opts.Roots) > 0:
		for _, id := range opts.Roots {
			if n, ok := leaves[id]; ok {
				roots = append(roots, n)
			}
		}
	case opts.RootSelector != "":
		for _, n := range g.Select(opts.RootSelector) {
			if leaves.has(n.ID) {
				roots = append(roots, n)
			}
		}
	case opts.Directed:
		roots = g.Sources()
	default:
		for _, comp := range g.Components() {
			degree := make([]int, len(comp))
			maxDegree := 0
			for i, n := range comp {
				degree[i] = leafDegree(g, leaves, n.ID)
				maxDegree = max(maxDegree, degree[i])
			}
			for i, n := range comp {
				if degree[i] == maxDegree {
					roots = append(roots, n)
				}
			}
		}
	}
	return roots
}

// leafDegree counts edges between id and other leaves, self loops excluded.
func leafDegree(g *digraph.Graph, leaves leafSet, id string) int {
	d := 0
	for _, t := range g.Outgoing(id) {
		if t != id && leaves.has(t) {
			d++
		}
	}
	for _, s := range g.Incoming(id) {
		if s != id && leaves.has(s) {
			d++
		}
	}
	return d
}

// traverse assigns depths breadth-first from the roots and returns the
// leaves that were never reached, in graph order. Each node takes the depth
// at which it is first discovered; its index is its discovery position
// within that depth.
func (l *levels) traverse(g *digraph.Graph, leaves leafSet, order []*digraph.Node, roots []*digraph.Node, directed bool) []*digraph.Node {
	type item struct {
		node  *digraph.Node
		depth int
	}

	seen := make(map[string]bool, len(leaves))
	queue := make([]item, 0, len(leaves))
	for _, r := range roots {
		if !seen[r.ID] {
			seen[r.ID] = true
			queue = append(queue, item{r, 0})
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		l.add(cur.node, cur.depth)

		next := g.Outgoing(cur.node.ID)
		if !directed {
			next = g.Neighbors(cur.node.ID)
		}
		for _, id := range next {
			n, ok := leaves[id]
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			queue = append(queue, item{n, cur.depth + 1})
		}
	}

	var orphans []*digraph.Node
	for _, n := range order {
		if !seen[n.ID] {
			orphans = append(orphans, n)
		}
	}
	return orphans
}

// adjustMaximally pushes nodes below their deepest incoming neighbour so that
// every edge points downwards. It returns a warning when the pass is
// abandoned because of a cycle, and the empty string otherwise.
//
// In MaximalDetectCycles mode a node that has to move a second time aborts
// the pass. In MaximalAssumeDAG mode repeated moves are allowed, but a depth
// beyond twice the node count can only come from a cycle and aborts as well.
// Nodes that were never reached and self loops are ignored.
func (l *levels) adjustMaximally(g *digraph.Graph, leaves leafSet, order []*digraph.Node, mode Mode) string {
	limit := 2 * max(1, len(order))
	shifted := make(map[string]bool, len(order))
	queue := make([]*digraph.Node, len(order))
	copy(queue, order)

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		info, ok := l.info[n.ID]
		if !ok {
			continue
		}

		maxDepth := -1
		for _, id := range g.Incoming(n.ID) {
			if id == n.ID || !leaves.has(id) {
				continue
			}
			if in, ok := l.info[id]; ok {
				maxDepth = max(maxDepth, in.Depth)
			}
		}
		if info.Depth > maxDepth {
			continue
		}

		if (mode != MaximalAssumeDAG && shifted[n.ID]) || maxDepth+1 > limit {
			return fmt.Sprintf("detected double maximal shift for node %q; abandoning maximal adjustment due to a cycle (use maximal adjustment only on DAGs)", n.ID)
		}

		l.move(n, maxDepth+1)
		shifted[n.ID] = true

		for _, id := range g.Outgoing(n.ID) {
			if out, ok := leaves[id]; ok {
				queue = append(queue, out)
			}
		}
	}
	return ""
}
