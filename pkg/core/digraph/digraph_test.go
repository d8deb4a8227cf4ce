package digraph

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func build(t *testing.T, nodes []Node, edges [][2]string) *Graph {
	t.Helper()
	g := New(nil)
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%s, %s): %v", e[0], e[1], err)
		}
	}
	return g
}

func TestAddNodeErrors(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a): %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want ErrDuplicateNodeID", err)
	}
	n, _ := g.Node("a")
	if n.Meta == nil {
		t.Error("Meta should be initialized")
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := build(t, []Node{{ID: "a"}}, nil)
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge unknown source = %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge unknown target = %v", err)
	}
}

func TestNodesKeepInsertionOrder(t *testing.T) {
	g := build(t, []Node{{ID: "z"}, {ID: "a"}, {ID: "m"}}, nil)
	if diff := cmp.Diff([]string{"z", "a", "m"}, NodeIDs(g.Nodes())); diff != "" {
		t.Errorf("Nodes() order mismatch (-want +got):\n%s", diff)
	}
}

func TestNeighborsAndDegree(t *testing.T) {
	g := build(t, []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[][2]string{{"a", "b"}, {"c", "a"}, {"a", "a"}, {"b", "a"}})

	if diff := cmp.Diff([]string{"b", "c"}, g.Neighbors("a")); diff != "" {
		t.Errorf("Neighbors(a) mismatch (-want +got):\n%s", diff)
	}
	if got := g.Degree("a"); got != 3 {
		t.Errorf("Degree(a) = %d, want 3", got)
	}
}

func TestCompoundNodes(t *testing.T) {
	g := build(t, []Node{{ID: "group"}, {ID: "a", Parent: "group"}, {ID: "b", Parent: "group"}, {ID: "c"}},
		[][2]string{{"a", "b"}, {"group", "c"}})

	if !g.IsParent("group") {
		t.Error("group should be a parent")
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, NodeIDs(g.Leaves())); diff != "" {
		t.Errorf("Leaves() mismatch (-want +got):\n%s", diff)
	}
	// c's only incoming edge comes from a parent node, so it is a source.
	if diff := cmp.Diff([]string{"a", "c"}, NodeIDs(g.Sources())); diff != "" {
		t.Errorf("Sources() mismatch (-want +got):\n%s", diff)
	}
}

func TestSourcesIgnoreSelfLoops(t *testing.T) {
	g := build(t, []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[][2]string{{"a", "a"}, {"a", "b"}, {"b", "c"}, {"c", "c"}})

	if diff := cmp.Diff([]string{"a"}, NodeIDs(g.Sources())); diff != "" {
		t.Errorf("Sources() mismatch (-want +got):\n%s", diff)
	}
}

func TestComponents(t *testing.T) {
	g := build(t, []Node{{ID: "a"}, {ID: "x"}, {ID: "b"}, {ID: "y"}, {ID: "solo"}},
		[][2]string{{"a", "b"}, {"y", "x"}})

	var got [][]string
	for _, c := range g.Components() {
		got = append(got, NodeIDs(c))
	}
	want := [][]string{{"a", "b"}, {"x", "y"}, {"solo"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Components() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	g := build(t, []Node{{ID: "a", Parent: "missing"}}, nil)
	if err := g.Validate(false); !errors.Is(err, ErrUnknownParent) {
		t.Errorf("Validate = %v, want ErrUnknownParent", err)
	}

	cyclic := build(t, []Node{{ID: "a"}, {ID: "b"}}, [][2]string{{"a", "b"}, {"b", "a"}})
	if err := cyclic.Validate(false); err != nil {
		t.Errorf("Validate(false) = %v, want nil", err)
	}
	if err := cyclic.Validate(true); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("Validate(true) = %v, want ErrGraphHasCycle", err)
	}
}

func TestIsAcyclic(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		want  bool
	}{
		{"Empty", nil, true},
		{"Chain", [][2]string{{"a", "b"}, {"b", "c"}}, true},
		{"Diamond", [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, true},
		{"Triangle", [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, false},
		{"SelfLoop", [][2]string{{"d", "d"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}, tt.edges)
			if got := g.IsAcyclic(); got != tt.want {
				t.Errorf("IsAcyclic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemoveEdge(t *testing.T) {
	g := build(t, []Node{{ID: "a"}, {ID: "b"}}, [][2]string{{"a", "b"}, {"a", "b"}})
	g.RemoveEdge("a", "b")
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if len(g.Outgoing("a")) != 1 || len(g.Incoming("b")) != 1 {
		t.Error("adjacency should keep the parallel edge")
	}
}
