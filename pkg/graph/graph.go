package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/breadthfirst/pkg/core/digraph"
)

// metaLabel is the metadata key the wire label is stored under.
const metaLabel = "label"

// Graph is the canonical serialization format for graphs.
// Used for CLI input, API requests, storage, and cache keys.
//
// Nodes and edges keep their order: the layout breaks ties by graph order, so
// reordering the input can change the result.
type Graph struct {
	Nodes []Node         `json:"nodes" bson:"nodes"`
	Edges []Edge         `json:"edges" bson:"edges"`
	Meta  map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// Node is a serialized graph vertex.
type Node struct {
	ID     string         `json:"id" bson:"id"`
	Parent string         `json:"parent,omitempty" bson:"parent,omitempty"` // Compound parent ID
	Label  string         `json:"label,omitempty" bson:"label,omitempty"`   // Display label (defaults to ID)
	Width  float64        `json:"width,omitempty" bson:"width,omitempty"`
	Height float64        `json:"height,omitempty" bson:"height,omitempty"`
	Meta   map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a serialized edge. Edges are always written with a direction.
type Edge struct {
	From string         `json:"from" bson:"from"`
	To   string         `json:"to" bson:"to"`
	Meta map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// FromDigraph converts a graph to its serialization format.
func FromDigraph(g *digraph.Graph) Graph {
	nodes := g.Nodes()
	edges := g.Edges()
	out := Graph{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
		Meta:  nonEmpty(g.Meta()),
	}
	for i, n := range nodes {
		out.Nodes[i] = nodeFromDigraph(n)
	}
	for i, e := range edges {
		out.Edges[i] = Edge{From: e.From, To: e.To, Meta: nonEmpty(e.Meta)}
	}
	return out
}

// ToDigraph converts a Graph to a digraph and validates compound parents.
// The label is stored in metadata so that [digraph.Node.Label] finds it.
func ToDigraph(gj Graph) (*digraph.Graph, error) {
	g := digraph.New(copyMeta(gj.Meta))

	for _, nj := range gj.Nodes {
		n := digraph.Node{
			ID:     nj.ID,
			Parent: nj.Parent,
			Width:  nj.Width,
			Height: nj.Height,
			Meta:   copyMeta(nj.Meta),
		}
		if nj.Label != "" {
			if n.Meta == nil {
				n.Meta = digraph.Metadata{}
			}
			n.Meta[metaLabel] = nj.Label
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %q: %w", nj.ID, err)
		}
	}

	for _, ej := range gj.Edges {
		if err := g.AddEdge(digraph.Edge{From: ej.From, To: ej.To, Meta: copyMeta(ej.Meta)}); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ej.From, ej.To, err)
		}
	}

	if err := g.Validate(false); err != nil {
		return nil, err
	}
	return g, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g *digraph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a graph as JSON to an io.Writer.
func WriteGraph(g *digraph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromDigraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes a graph to a JSON file.
func WriteGraphFile(g *digraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
func ReadGraph(r io.Reader) (*digraph.Graph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToDigraph(data)
}

// ReadGraphFile reads a JSON file and returns the decoded graph.
func ReadGraphFile(path string) (*digraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

func nodeFromDigraph(n *digraph.Node) Node {
	node := Node{
		ID:     n.ID,
		Parent: n.Parent,
		Width:  n.Width,
		Height: n.Height,
	}
	meta := copyMeta(n.Meta)
	if label, ok := meta[metaLabel].(string); ok {
		node.Label = label
		delete(meta, metaLabel)
	}
	node.Meta = nonEmpty(meta)
	return node
}

// copyMeta creates a shallow copy of metadata to avoid mutation.
func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

func nonEmpty(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}
