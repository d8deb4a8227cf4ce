// Package breadthfirst computes hierarchical node positions by breadth-first
// traversal.
//
// Nodes are grouped into levels by their BFS depth from a set of roots and
// each level is projected onto a row (or a ring, in circle mode) of the
// bounding box. Leaves that cannot be reached from any root are collected
// into an extra level at depth 0, so the first level holds the orphans and
// the roots sit on level 1.
//
// # Roots
//
// Roots are resolved in this order:
//
//  1. Options.Roots, by node ID
//  2. Options.RootSelector, see [digraph.Graph.Select]
//  3. the sources of the graph, when Options.Directed is set
//  4. the highest-degree nodes of every connected component
//
// # Maximal Adjustment
//
// A directed layout can push every node below its deepest incoming
// neighbour so that all edges point downwards. [MaximalDetectCycles] gives up
// with a single warning the second time a node has to move;
// [MaximalAssumeDAG] trusts the caller and only stops once depths exceed
// twice the node count.
//
// # Ordering
//
// Within a level, nodes are sorted by the mean relative index of their
// neighbours on shallower levels, which pulls children under their parents
// and reduces edge crossings. Equal weights fall back to Options.TieBreak
// (node ID by default), which keeps results stable across runs.
// Options.DepthSort replaces the heuristic altogether.
//
// # Usage
//
//	res := breadthfirst.Layout(g, breadthfirst.Options{Directed: true})
//	for _, id := range res.NodeIDs() {
//		p, _ := res.Position(id)
//		fmt.Println(id, p.X, p.Y)
//	}
package breadthfirst
