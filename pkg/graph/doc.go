// Package graph provides serialization types for graphs and layouts.
//
// This package defines the wire format used for JSON files, API requests and
// responses, saved layouts, and cache entries.
//
// # Core Types
//
//   - [Graph]: node-link format for input graphs
//   - [Layout]: a computed layout with levels and positions
//   - [Node], [Edge]: structural types
//   - [PositionedNode]: a laid-out node
//
// # Graph Serialization
//
//	{
//	  "nodes": [{"id": "app"}, {"id": "db", "label": "Postgres", "width": 80}],
//	  "edges": [{"from": "app", "to": "db"}]
//	}
//
// Compound nodes name their parent with "parent". Parent nodes are kept in
// the graph but are never positioned.
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("graph.json")  // File → digraph
//	graph.WriteGraphFile(g, "out.json")        // digraph → File
//	data, _ := graph.MarshalGraph(g)           // digraph → []byte
//	layout := graph.FromResult(res, g)         // engine result → Layout
//
// All functions are safe for concurrent use on distinct values.
package graph
