package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/breadthfirst/pkg/core/digraph"
	"github.com/matzehuels/breadthfirst/pkg/core/layout/breadthfirst"
	"github.com/matzehuels/breadthfirst/pkg/graph"
	"github.com/matzehuels/breadthfirst/pkg/render/nodelink"
)

func ExampleToDOT() {
	g := digraph.New(nil)
	_ = g.AddNode(digraph.Node{ID: "app"})
	_ = g.AddNode(digraph.Node{ID: "db"})
	_ = g.AddEdge(digraph.Edge{From: "app", To: "db"})

	res := breadthfirst.Layout(g, breadthfirst.Options{Directed: true, Width: 720, Height: 216})
	dot := nodelink.ToDOT(graph.FromResult(res, g), nodelink.Options{})

	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "pos=") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "app" [label="app", pos="5.0000,1.5000!"];
	// "db" [label="db", pos="5.0000,0.7500!"];
}
