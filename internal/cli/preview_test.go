package cli

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/breadthfirst/pkg/graph"
)

func previewLayout() graph.Layout {
	return graph.Layout{
		Levels: [][]string{{}, {"a"}, {"b", "c"}, {"d"}},
		Nodes: []graph.PositionedNode{
			{ID: "a", X: 400, Y: 120, Depth: 1},
			{ID: "b", Label: "Bee", X: 266.7, Y: 240, Depth: 2},
			{ID: "c", X: 533.3, Y: 240, Depth: 2, Index: 1},
			{ID: "d", X: 400, Y: 360, Depth: 3},
		},
	}
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestPreviewModelSkipsEmptyOrphans(t *testing.T) {
	m := newPreviewModel("deps", previewLayout())
	if m.Level != 1 {
		t.Errorf("Level = %d, want 1", m.Level)
	}
}

func TestPreviewModelNavigation(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		wantLevel  int
		wantCursor int
	}{
		{"next level", []string{"right"}, 2, 0},
		{"vim keys", []string{"l", "j"}, 2, 1},
		{"cursor stops at last node", []string{"right", "down", "down", "down"}, 2, 1},
		{"level change resets cursor", []string{"right", "down", "right"}, 3, 0},
		{"stops at last level", []string{"right", "right", "right", "right"}, 3, 0},
		{"back to orphans", []string{"left", "left"}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(newPreviewModel("deps", previewLayout()), tt.keys...).(previewModel)
			if m.Level != tt.wantLevel || m.Cursor != tt.wantCursor {
				t.Errorf("Level, Cursor = %d, %d; want %d, %d", m.Level, m.Cursor, tt.wantLevel, tt.wantCursor)
			}
		})
	}
}

func TestPreviewModelScrolls(t *testing.T) {
	l := graph.Layout{Levels: [][]string{{}, {"a", "b", "c", "d", "e", "f", "g"}}}
	m := newPreviewModel("deps", l)
	m.Height = 3

	m = press(m, "down", "down", "down", "down").(previewModel)
	if m.Cursor != 4 || m.Offset != 2 {
		t.Errorf("Cursor, Offset = %d, %d; want 4, 2", m.Cursor, m.Offset)
	}
	m = press(m, "up", "up", "up").(previewModel)
	if m.Cursor != 1 || m.Offset != 1 {
		t.Errorf("Cursor, Offset = %d, %d; want 1, 1", m.Cursor, m.Offset)
	}
}

func TestPreviewModelQuit(t *testing.T) {
	m := newPreviewModel("deps", previewLayout())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestPreviewModelView(t *testing.T) {
	m := press(newPreviewModel("deps", previewLayout()), "right").(previewModel)
	view := m.View()
	for _, want := range []string{"deps", "Level 2 of 3", "Bee", "266.7", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	orphans := press(m, "left", "left").(previewModel).View()
	if !strings.Contains(orphans, "(orphans)") || !strings.Contains(orphans, "no nodes") {
		t.Errorf("orphan view:\n%s", orphans)
	}
}

func TestWriteLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := writeLevels(&buf, previewLayout()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Level 0 (orphans)", "Level 3", "Bee", "533.3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
