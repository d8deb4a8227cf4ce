package breadthfirst

import "github.com/matzehuels/breadthfirst/pkg/core/digraph"

// Info is the position of a node in the level structure.
type Info struct {
	Depth int `json:"depth"`
	Index int `json:"index"`
}

// levels holds the depth levels of one run. A moved node leaves a nil
// tombstone in its old slot; compact removes tombstones and renumbers the
// indices. Level sizes are only meaningful after compaction.
type levels struct {
	slots [][]*digraph.Node
	info  map[string]Info
}

func newLevels(n int) *levels {
	return &levels{info: make(map[string]Info, n)}
}

func (l *levels) add(n *digraph.Node, depth int) {
	for len(l.slots) <= depth {
		l.slots = append(l.slots, nil)
	}
	l.info[n.ID] = Info{Depth: depth, Index: len(l.slots[depth])}
	l.slots[depth] = append(l.slots[depth], n)
}

func (l *levels) move(n *digraph.Node, depth int) {
	old := l.info[n.ID]
	l.slots[old.Depth][old.Index] = nil
	l.add(n, depth)
}

// compactAt rebuilds level d without tombstones and renumbers its nodes.
func (l *levels) compactAt(d int) {
	kept := make([]*digraph.Node, 0, len(l.slots[d]))
	for _, n := range l.slots[d] {
		if n != nil {
			l.info[n.ID] = Info{Depth: d, Index: len(kept)}
			kept = append(kept, n)
		}
	}
	l.slots[d] = kept
}

func (l *levels) compact() {
	for d := range l.slots {
		l.compactAt(d)
	}
}

// prepend inserts nodes as a new shallowest level, pushing every other level
// one deeper. The new level exists even when nodes is empty.
func (l *levels) prepend(nodes []*digraph.Node) {
	l.slots = append([][]*digraph.Node{nodes}, l.slots...)
	l.compact()
}

func (l *levels) size(d int) int { return len(l.slots[d]) }

func (l *levels) maxSize() int {
	m := 0
	for _, s := range l.slots {
		m = max(m, len(s))
	}
	return m
}

func (l *levels) ids() [][]string {
	out := make([][]string, len(l.slots))
	for d, s := range l.slots {
		out[d] = digraph.NodeIDs(s)
	}
	return out
}
