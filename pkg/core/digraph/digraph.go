package digraph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownParent is returned by [Graph.Validate] when a node names a
	// compound parent that is not in the graph.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrGraphHasCycle is returned by [Graph.Validate] with requireAcyclic set
	// when a directed cycle exists among the edges.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Metadata maps are never nil after a node or edge is added.
type Metadata map[string]any

// Node is a vertex of the graph.
//
// Parent names a compound parent node. Nodes that other nodes name as their
// parent are parent nodes; only leaf nodes take part in layout.
type Node struct {
	ID     string   // Unique identifier
	Parent string   // Compound parent ID, empty for top-level nodes
	Width  float64  // Layout width, used for overlap avoidance
	Height float64  // Layout height, used for overlap avoidance
	Meta   Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// Label returns the "label" metadata value if it is a non-empty string,
// otherwise the node ID.
func (n Node) Label() string {
	if s, ok := n.Meta["label"].(string); ok && s != "" {
		return s
	}
	return n.ID
}

// Edge is a connection between two nodes. Edges always carry a direction;
// whether the direction is honoured is decided by the consumer.
type Edge struct {
	From string   // Source node ID
	To   string   // Target node ID
	Meta Metadata // Arbitrary key-value metadata (never nil after AddEdge)
}

// Graph is a directed multigraph with optional compound (parent/child) nodes.
//
// Nodes are kept in insertion order so that every traversal is deterministic.
// The zero value is not usable - use New to create a Graph.
// Graph is safe for concurrent reads but not for concurrent writes.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string // nodeID -> target IDs
	incoming map[string][]string // nodeID -> source IDs
	children map[string][]string // compound parent ID -> child IDs
	meta     Metadata
}

// New creates an empty graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		children: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map. It is never nil.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the ID is empty or ErrDuplicateNodeID if the ID
// is already in use. The parent does not have to exist yet; use Validate once
// the graph is complete.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	if node.Parent != "" {
		g.children[node.Parent] = append(g.children[node.Parent], node.ID)
	}
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Self loops and parallel edges are allowed.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the first edge from→to if it exists.
func (g *Graph) RemoveEdge(from, to string) {
	if i := slices.IndexFunc(g.edges, func(e Edge) bool { return e.From == from && e.To == to }); i >= 0 {
		g.edges = slices.Delete(g.edges, i, i+1)
	}
	if i := slices.Index(g.outgoing[from], to); i >= 0 {
		g.outgoing[from] = slices.Delete(g.outgoing[from], i, i+1)
	}
	if i := slices.Index(g.incoming[to], from); i >= 0 {
		g.incoming[to] = slices.Delete(g.incoming[to], i, i+1)
	}
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the graph's nodes.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Outgoing returns the targets of edges leaving id, one entry per edge.
// The returned slice must not be modified.
func (g *Graph) Outgoing(id string) []string { return g.outgoing[id] }

// Incoming returns the sources of edges entering id, one entry per edge.
// The returned slice must not be modified.
func (g *Graph) Incoming(id string) []string { return g.incoming[id] }

// Neighbors returns the distinct nodes joined to id by an edge in either
// direction, excluding id itself. Outgoing neighbours come first, each group
// in edge insertion order.
func (g *Graph) Neighbors(id string) []string {
	seen := map[string]bool{id: true}
	var out []string
	for _, list := range [][]string{g.outgoing[id], g.incoming[id]} {
		for _, n := range list {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// Degree returns the number of edges touching id, not counting self loops.
func (g *Graph) Degree(id string) int {
	d := 0
	for _, t := range g.outgoing[id] {
		if t != id {
			d++
		}
	}
	for _, s := range g.incoming[id] {
		if s != id {
			d++
		}
	}
	return d
}

// IsParent reports whether some node names id as its compound parent.
func (g *Graph) IsParent(id string) bool { return len(g.children[id]) > 0 }

// ChildrenOf returns the compound children of id in insertion order.
func (g *Graph) ChildrenOf(id string) []string { return g.children[id] }

// Leaves returns the non-parent nodes in insertion order.
func (g *Graph) Leaves() []*Node {
	var leaves []*Node
	for _, id := range g.order {
		if !g.IsParent(id) {
			leaves = append(leaves, g.nodes[id])
		}
	}
	return leaves
}

// Sources returns the leaf nodes with no incoming edge from another leaf,
// in insertion order. Self loops are ignored.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, n := range g.Leaves() {
		if !slices.ContainsFunc(g.incoming[n.ID], func(s string) bool { return s != n.ID && !g.IsParent(s) }) {
			sources = append(sources, n)
		}
	}
	return sources
}

// Components partitions the leaf nodes into connected components, ignoring
// edge direction and edges that touch parent nodes. Components are ordered by
// their first node in insertion order; nodes within a component keep
// insertion order.
func (g *Graph) Components() [][]*Node {
	comp := make(map[string]int)
	var groups [][]*Node
	for _, n := range g.Leaves() {
		if _, ok := comp[n.ID]; ok {
			continue
		}
		idx := len(groups)
		comp[n.ID] = idx
		queue := []string{n.ID}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range g.Neighbors(cur) {
				if g.IsParent(nb) {
					continue
				}
				if _, ok := comp[nb]; !ok {
					comp[nb] = idx
					queue = append(queue, nb)
				}
			}
		}
		groups = append(groups, nil)
	}
	for _, n := range g.Leaves() {
		groups[comp[n.ID]] = append(groups[comp[n.ID]], n)
	}
	return groups
}

// Validate checks that every compound parent exists. With requireAcyclic it
// also rejects directed cycles with ErrGraphHasCycle.
func (g *Graph) Validate(requireAcyclic bool) error {
	for _, id := range g.order {
		if p := g.nodes[id].Parent; p != "" {
			if _, ok := g.nodes[p]; !ok {
				return ErrUnknownParent
			}
		}
	}
	if requireAcyclic && !g.IsAcyclic() {
		return ErrGraphHasCycle
	}
	return nil
}

// IsAcyclic reports whether the directed edges form no cycle.
// Cycle detection runs in O(N+E) using depth-first search with
// white/gray/black colouring.
func (g *Graph) IsAcyclic() bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, next := range g.outgoing[id] {
			switch color[next] {
			case white:
				dfs(next)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return false
			}
		}
	}
	return true
}

// NodeIDs extracts the ID from each node, preserving order.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
