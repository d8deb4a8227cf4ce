package digraph

import (
	"fmt"
	"strings"
)

// Select returns the nodes matched by a selector string, in insertion order.
//
// A selector is a comma-separated list of groups. Each group is one of:
//
//	*                  every node
//	node               every node
//	#id                the node with that ID
//	[key]              nodes with the key set
//	[key = value]      nodes whose key equals value (value may be quoted)
//	[key != value]     nodes whose key is unset or differs from value
//
// Groups may carry the "node" prefix, and an #id may be followed by attribute
// filters, which must all hold. The keys "id" and "parent" refer to the node
// fields; any other key is looked up in Meta. A malformed selector matches
// nothing.
func (g *Graph) Select(selector string) []*Node {
	m, ok := parseSelector(selector)
	if !ok {
		return nil
	}
	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; m.match(n) {
			out = append(out, n)
		}
	}
	return out
}

type attrFilter struct {
	key   string
	op    string // "", "=", "!="
	value string
}

type group struct {
	id      string
	filters []attrFilter
}

type selector []group

func (s selector) match(n *Node) bool {
	for _, grp := range s {
		if grp.match(n) {
			return true
		}
	}
	return false
}

func (grp group) match(n *Node) bool {
	if grp.id != "" && grp.id != n.ID {
		return false
	}
	for _, f := range grp.filters {
		if !f.match(n) {
			return false
		}
	}
	return true
}

func (f attrFilter) match(n *Node) bool {
	val, ok := attrValue(n, f.key)
	switch f.op {
	case "=":
		return ok && val == f.value
	case "!=":
		return !ok || val != f.value
	default:
		return ok
	}
}

func attrValue(n *Node, key string) (string, bool) {
	switch key {
	case "id":
		return n.ID, true
	case "parent":
		return n.Parent, n.Parent != ""
	}
	v, ok := n.Meta[key]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprint(v), true
}

func parseSelector(s string) (selector, bool) {
	parts, ok := splitGroups(s)
	if !ok || len(parts) == 0 {
		return nil, false
	}
	sel := make(selector, 0, len(parts))
	for _, p := range parts {
		grp, ok := parseGroup(p)
		if !ok {
			return nil, false
		}
		sel = append(sel, grp)
	}
	return sel, true
}

// splitGroups splits on commas that are outside brackets and quotes.
func splitGroups(s string) ([]string, bool) {
	var (
		parts []string
		depth int
		quote rune
		start int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '[':
			depth++
		case r == ']':
			depth--
			if depth < 0 {
				return nil, false
			}
		case r == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if quote != 0 || depth != 0 {
		return nil, false
	}
	return append(parts, s[start:]), true
}

func parseGroup(s string) (group, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return group{}, false
	}
	if s == "*" {
		return group{}, true
	}
	s = strings.TrimPrefix(s, "node")
	var grp group
	if strings.HasPrefix(s, "#") {
		end := strings.IndexByte(s, '[')
		if end < 0 {
			end = len(s)
		}
		grp.id = s[1:end]
		if grp.id == "" || strings.ContainsAny(grp.id, " \t") {
			return group{}, false
		}
		s = s[end:]
	}
	for s != "" {
		if s[0] != '[' {
			return group{}, false
		}
		end := closingBracket(s)
		if end < 0 {
			return group{}, false
		}
		f, ok := parseFilter(s[1:end])
		if !ok {
			return group{}, false
		}
		grp.filters = append(grp.filters, f)
		s = s[end+1:]
	}
	return grp, true
}

func closingBracket(s string) int {
	var quote rune
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ']':
			return i
		}
	}
	return -1
}

func parseFilter(body string) (attrFilter, bool) {
	var f attrFilter
	key, value := body, ""
	if i := strings.Index(body, "!="); i >= 0 {
		f.op = "!="
		key, value = body[:i], body[i+2:]
	} else if i := strings.IndexByte(body, '='); i >= 0 {
		f.op = "="
		key, value = body[:i], body[i+1:]
	}
	f.key = strings.TrimSpace(key)
	if !validKey(f.key) {
		return attrFilter{}, false
	}
	if f.op == "" {
		return f, true
	}
	value = strings.TrimSpace(value)
	if n := len(value); n >= 2 && (value[0] == '\'' || value[0] == '"') {
		if value[n-1] != value[0] {
			return attrFilter{}, false
		}
		value = value[1 : n-1]
	} else if value == "" {
		return attrFilter{}, false
	}
	f.value = value
	return f, true
}

func validKey(k string) bool {
	if k == "" {
		return false
	}
	for _, r := range k {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return false
		}
	}
	return true
}
