package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/breadthfirst/pkg/core/digraph"
	"github.com/matzehuels/breadthfirst/pkg/core/layout/breadthfirst"
)

// Layout is the serialization format for a computed breadth-first layout.
// Used for CLI output, API responses, saved layouts, and the render cache.
type Layout struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty"`
	GraphHash string `json:"graph_hash,omitempty" bson:"graph_hash,omitempty"`

	Directed    bool                     `json:"directed,omitempty" bson:"directed,omitempty"`
	Circle      bool                     `json:"circle,omitempty" bson:"circle,omitempty"`
	BoundingBox breadthfirst.BoundingBox `json:"bounding_box" bson:"bounding_box"`

	// Levels lists node IDs per depth, orphan level first.
	Levels   [][]string       `json:"levels" bson:"levels"`
	Nodes    []PositionedNode `json:"nodes" bson:"nodes"`
	Edges    []Edge           `json:"edges,omitempty" bson:"edges,omitempty"`
	Warnings []string         `json:"warnings,omitempty" bson:"warnings,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// PositionedNode is a laid-out node.
type PositionedNode struct {
	ID     string  `json:"id" bson:"id"`
	Label  string  `json:"label,omitempty" bson:"label,omitempty"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Depth  int     `json:"depth" bson:"depth"`
	Index  int     `json:"index" bson:"index"`
	Width  float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height float64 `json:"height,omitempty" bson:"height,omitempty"`
}

// FromResult converts a layout result into its serialization format.
// Nodes follow graph order; edges between laid-out nodes are kept.
func FromResult(res *breadthfirst.Result, g *digraph.Graph) Layout {
	out := Layout{
		BoundingBox: res.BoundingBox,
		Levels:      res.Levels,
		Warnings:    res.Warnings,
		CreatedAt:   time.Now().UTC(),
	}

	for _, id := range res.NodeIDs() {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		p := res.Positions[id]
		info := res.Info[id]
		pn := PositionedNode{
			ID:     id,
			X:      p.X,
			Y:      p.Y,
			Depth:  info.Depth,
			Index:  info.Index,
			Width:  n.Width,
			Height: n.Height,
		}
		if label := n.Label(); label != id {
			pn.Label = label
		}
		out.Nodes = append(out.Nodes, pn)
	}

	for _, e := range g.Edges() {
		_, from := res.Positions[e.From]
		_, to := res.Positions[e.To]
		if from && to {
			out.Edges = append(out.Edges, Edge{From: e.From, To: e.To})
		}
	}
	return out
}

// Node returns the positioned node with the given ID.
func (l *Layout) Node(id string) (PositionedNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PositionedNode{}, false
}

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Every level entry must name a positioned node.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if len(l.Levels) == 0 {
		return Layout{}, fmt.Errorf("layout must contain at least one level")
	}

	known := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		known[n.ID] = true
	}
	for d, level := range l.Levels {
		for _, id := range level {
			if !known[id] {
				return Layout{}, fmt.Errorf("level %d names unknown node %q", d, id)
			}
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
