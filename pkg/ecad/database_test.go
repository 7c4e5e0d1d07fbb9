package ecad

import (
	"slices"
	"testing"

	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/geom"
)

func TestCreateAndFindCell(t *testing.T) {
	db := NewDatabase("db")
	c, err := db.CreateCircuitCell("top")
	if err != nil {
		t.Fatal(err)
	}
	if got := db.FindCellByName("top"); got == nil || got.Suuid() != c.Suuid() {
		t.Errorf("FindCellByName(top) = %v, want %v", got, c)
	}
	if db.FindCellByName("Top") != nil {
		t.Error("lookup is not case-sensitive")
	}
	if c.Database() != db || c.LayoutView().Cell() != c || c.LayoutView().Database() != db {
		t.Error("back references are not set")
	}
	if _, err := db.CreateCircuitCell("top"); !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("CreateCircuitCell(top) twice error = %v", err)
	}
	if _, err := db.CreateCircuitCell(""); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("CreateCircuitCell(\"\") error = %v", err)
	}
	if db.FindCellByName("top") != c {
		t.Error("failed create replaced the existing cell")
	}
}

func TestAddDefinitions(t *testing.T) {
	db := NewDatabase("db")

	cell := NewCircuitCell("standalone", nil)
	if err := db.AddCell(cell); err != nil {
		t.Fatal(err)
	}
	if cell.Database() != db {
		t.Error("AddCell did not adopt the cell")
	}

	lm, err := db.CreateLayerMap("map")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AddLayerMap(lm); !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("AddLayerMap(existing) error = %v", err)
	}
	if got := db.FindLayerMapByName("map"); got != lm {
		t.Errorf("FindLayerMapByName = %v, want %v", got, lm)
	}

	def := NewPadstackDef("via", nil)
	if err := db.AddPadstackDef(def); err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreatePadstackDef("via"); !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("CreatePadstackDef(via) twice error = %v", err)
	}
	if def.Database() != db || db.FindPadstackDefByName("via") != def {
		t.Error("padstack def not registered")
	}
}

func TestNextDefName(t *testing.T) {
	db := NewDatabase("db")
	_, _ = db.CreateCircuitCell("cell")
	_, _ = db.CreateCircuitCell("cell_1")
	_, _ = db.CreatePadstackDef("via")

	tests := []struct {
		name string
		typ  DefinitionType
		want string
	}{
		{"cell", DefinitionCell, "cell_2"},
		{"cell", DefinitionPadstackDef, "cell"},
		{"via", DefinitionPadstackDef, "via_1"},
		{"via", DefinitionLayerMap, "via"},
	}
	for _, tt := range tests {
		if got := db.NextDefName(tt.name, tt.typ); got != tt.want {
			t.Errorf("NextDefName(%q, %v) = %q, want %q", tt.name, tt.typ, got, tt.want)
		}
	}
}

func TestClear(t *testing.T) {
	db := NewDatabase("db")
	for _, n := range []string{"a", "b", "c"} {
		_, _ = db.CreateCircuitCell(n)
		_, _ = db.CreateLayerMap(n)
		_, _ = db.CreatePadstackDef(n)
	}
	cells := db.CellCollection()
	db.Clear()
	if cells.Size() != 0 || db.LayerMapCollection().Size() != 0 || db.PadstackDefCollection().Size() != 0 {
		t.Errorf("sizes after Clear = %d %d %d, want 0 0 0",
			cells.Size(), db.LayerMapCollection().Size(), db.PadstackDefCollection().Size())
	}
	if db.FindCellByName("a") != nil {
		t.Error("FindCellByName(a) after Clear is not nil")
	}
	if db.CellIter().Next() != nil {
		t.Error("CellIter after Clear is not empty")
	}
}

func TestTopCells(t *testing.T) {
	db, top, _, _ := hierarchyFixture(t)
	orphan, _ := db.CreateCircuitCell("orphan")

	tops := db.TopCells()
	if !slices.Equal(tops, []*Cell{top, orphan}) {
		names := make([]string, len(tops))
		for i, c := range tops {
			names[i] = c.Name()
		}
		t.Errorf("TopCells() = %v, want [top orphan]", names)
	}

	g := db.Hierarchy()
	if g.InstanceCount("top", "leaf") != 1 || g.InstanceCount("mid", "leaf") != 1 {
		t.Error("hierarchy is missing leaf edges")
	}

	// masters outside the database do not count
	stray := NewLayoutView("stray", nil)
	if _, err := stray.CreateCellInst("x", orphan.LayoutView(), geom.Identity()); err != nil {
		t.Fatal(err)
	}
	if len(db.TopCells()) != 2 {
		t.Error("an outside instance changed the top cells")
	}
}

func TestSetThreads(t *testing.T) {
	db := NewDatabase("db")
	if db.Threads() != DefaultThreads {
		t.Errorf("Threads() = %d, want %d", db.Threads(), DefaultThreads)
	}
	db.SetThreads(0)
	if db.Threads() != 1 {
		t.Errorf("Threads() after SetThreads(0) = %d, want 1", db.Threads())
	}
}
