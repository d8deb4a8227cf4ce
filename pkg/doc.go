// Package pkg provides the libraries behind breadthfirst, a breadth-first
// graph layout engine with a CLI and an HTTP API.
//
// # Overview
//
// A breadth-first layout puts every node on the level of its distance from a
// set of roots. Levels become rows (or concentric circles), and nodes inside
// a level are ordered so that edges between neighbouring levels cross as
// little as possible. Nodes no root can reach are collected on level 0.
//
// The pkg directory is organized into three areas:
//
//  1. [core] - Domain logic (graph model, selectors, the layout engine)
//  2. [pipeline] - Orchestration (validate → layout → render, with caching)
//  3. Infrastructure ([cache], [store], [server], [metrics], [observability])
//
// # Architecture
//
//	graph.json
//	     ↓
//	[graph] package (decode, validate)
//	     ↓
//	[core/layout/breadthfirst] package (levels + positions)
//	     ↓
//	[render/nodelink] package (DOT, SVG, PNG via Graphviz)
//	     ↓
//	layout.json / SVG / PNG / DOT
//
// # Quick Start
//
//	g := digraph.New(nil)
//	_ = g.AddNode(digraph.Node{ID: "app"})
//	_ = g.AddNode(digraph.Node{ID: "db"})
//	_ = g.AddEdge(digraph.Edge{From: "app", To: "db"})
//
//	res := breadthfirst.Layout(g, breadthfirst.Options{Directed: true})
//	for depth, ids := range res.Levels {
//	    fmt.Println(depth, ids)
//	}
//
// # Main Packages
//
// [core/digraph] - Graph with ordered nodes and edges, compound parents,
// metadata, and the attribute selectors used to pick roots.
//
// [core/layout/breadthfirst] - The layout engine: root selection, BFS depth
// assignment, the maximal adjustment pass, level sorting and projection onto
// rows or circles.
//
// [graph] - JSON serialization of graphs and computed layouts.
//
// [pipeline] - Options, validation, caching and rendering shared by the CLI
// and the server.
//
// [render/nodelink] - DOT output with pinned positions and Graphviz rendering.
//
// [cache] - Layout and artifact caches (file, Redis, null) with key scoping.
//
// [store] - Saved layouts (memory, MongoDB).
//
// [server] - HTTP API on chi.
//
// [metrics] - Prometheus collectors fed by the [observability] hooks.
//
// [errors] - Error codes shared by CLI and API.
//
// [core]: https://pkg.go.dev/github.com/matzehuels/breadthfirst/pkg/core
// [core/digraph]: https://pkg.go.dev/github.com/matzehuels/breadthfirst/pkg/core/digraph
// [core/layout/breadthfirst]: https://pkg.go.dev/github.com/matzehuels/breadthfirst/pkg/core/layout/breadthfirst
// [graph]: https://pkg.go.dev/github.com/matzehuels/breadthfirst/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/breadthfirst/pkg/pipeline
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/breadthfirst/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/breadthfirst/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/breadthfirst/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/breadthfirst/pkg/server
// [metrics]: https://pkg.go.dev/github.com/matzehuels/breadthfirst/pkg/metrics
// [observability]: https://pkg.go.dev/github.com/matzehuels/breadthfirst/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/breadthfirst/pkg/errors
package pkg
