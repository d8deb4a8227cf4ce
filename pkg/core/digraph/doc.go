// Package digraph provides the in-memory graph model consumed by the layout
// engine.
//
// A [Graph] holds nodes in insertion order and directed edges. Whether edge
// direction matters is left to the consumer: the breadth-first layout, for
// example, follows only outgoing edges when laid out as directed and treats
// every edge as undirected otherwise.
//
// # Compound Nodes
//
// A node may name another node as its Parent. Nodes named as a parent are
// parent nodes; they group their children but do not take part in layout.
// [Graph.Leaves] returns every non-parent node and is the set the layout
// positions.
//
// # Queries
//
//	g.Outgoing("a")   // targets of edges leaving a
//	g.Incoming("a")   // sources of edges entering a
//	g.Neighbors("a")  // both directions, deduplicated
//	g.Degree("a")     // edge count, self loops excluded
//	g.Sources()       // leaves without incoming edges
//	g.Components()    // undirected connected components over leaves
//	g.Select("#a, [kind = 'root']")
//
// # Concurrency
//
// A Graph is safe for concurrent reads once built. Writes need external
// synchronization.
package digraph
