package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/Draaaaaaven/ecad/pkg/ecad"
	"github.com/Draaaaaaven/ecad/pkg/geom"
)

func browseFixture(t *testing.T) *ecad.Database {
	t.Helper()
	db := ecad.NewDatabase("board")
	leaf, _ := db.CreateCircuitCell("leaf")
	mid, _ := db.CreateCircuitCell("mid")
	top, _ := db.CreateCircuitCell("top")
	if _, err := mid.LayoutView().CreateCellInst("l1", leaf.LayoutView(), geom.Identity()); err != nil {
		t.Fatal(err)
	}
	if _, err := top.LayoutView().CreateCellInst("m1", mid.LayoutView(), geom.Identity()); err != nil {
		t.Fatal(err)
	}
	if _, err := top.LayoutView().CreateCellInst("l2", leaf.LayoutView(), geom.Identity()); err != nil {
		t.Fatal(err)
	}
	return db
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestBrowseNavigation(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		wantPath   []string
		wantItems  []string
		wantCursor int
	}{
		{"start at tops", nil, nil, []string{"top"}, 0},
		{"enter top", []string{"enter"}, []string{"top"}, []string{"mid", "leaf"}, 0},
		{"move down", []string{"enter", "j"}, []string{"top"}, []string{"mid", "leaf"}, 1},
		{"cursor stops at end", []string{"enter", "j", "j", "j"}, []string{"top"}, []string{"mid", "leaf"}, 1},
		{"enter leaf does nothing", []string{"enter", "j", "enter"}, []string{"top"}, []string{"mid", "leaf"}, 1},
		{"descend twice", []string{"enter", "enter"}, []string{"top", "mid"}, []string{"leaf"}, 0},
		{"back restores cursor", []string{"enter", "enter", "backspace"}, []string{"top"}, []string{"mid", "leaf"}, 0},
		{"back at root", []string{"backspace", "k"}, nil, []string{"top"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(newBrowseModel(browseFixture(t)), tt.keys...).(browseModel)
			if diff := cmp.Diff(tt.wantPath, m.path); diff != "" {
				t.Errorf("path mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantItems, m.items); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
			if m.cursor != tt.wantCursor {
				t.Errorf("cursor = %d, want %d", m.cursor, tt.wantCursor)
			}
		})
	}
}

func TestBrowseQuit(t *testing.T) {
	_, cmd := newBrowseModel(browseFixture(t)).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestBrowseView(t *testing.T) {
	m := press(newBrowseModel(browseFixture(t)), "enter")
	view := m.View()
	for _, want := range []string{"board / top", "mid", "leaf", "used by top", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}
