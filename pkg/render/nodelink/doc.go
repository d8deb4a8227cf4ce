// Package nodelink renders breadth-first layouts as node-link diagrams.
//
// # Usage
//
// Convert a layout to DOT, then render it:
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0) // 2x scale
//
// # Pinned positions
//
// Graphviz is only used to draw. [ToDOT] pins every node at the position
// computed by the breadth-first engine (pos="x,y!", in inches with the y axis
// flipped) and the renderer runs the neato engine, which keeps pinned nodes
// in place and only routes edges.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering,
// so no Graphviz installation is needed.
package nodelink
