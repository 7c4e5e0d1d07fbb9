package ecad

import (
	"fmt"
	"sync/atomic"
)

// generation counts layout changes process-wide. A cached flattened view is
// valid while the counter has not moved since it was built.
var generation atomic.Uint64

// changed records a change to anything a flattened view is built from.
// Every exported mutator of layout content calls it.
func changed() { generation.Add(1) }

// CellType identifies the kind of a cell.
type CellType int

const (
	CircuitCell CellType = iota
)

func (t CellType) String() string {
	if t == CircuitCell {
		return "circuit"
	}
	return fmt.Sprintf("CellType(%d)", int(t))
}

// ParseCellType parses the name written by CellType.String.
func ParseCellType(s string) (CellType, error) {
	if s == "circuit" {
		return CircuitCell, nil
	}
	return 0, invalidInput("unknown cell type %q", s)
}

// Cell is a named design unit owning one layout view.
type Cell struct {
	suuid  Suuid
	name   string
	typ    CellType
	db     *Database
	layout *LayoutView

	flattened *LayoutView
	flatGen   uint64
}

// NewCircuitCell creates a circuit cell with an empty layout view of the
// same name. db may be nil; such a cell can later be added with
// [Database.AddCell].
func NewCircuitCell(name string, db *Database) *Cell {
	c := &Cell{suuid: newSuuid(), name: name, typ: CircuitCell, db: db}
	c.layout = NewLayoutView(name, c)
	return c
}

func (c *Cell) Suuid() Suuid        { return c.suuid }
func (c *Cell) Name() string        { return c.name }
func (c *Cell) Type() CellType      { return c.typ }
func (c *Cell) Database() *Database { return c.db }

// DefinitionType returns DefinitionCell.
func (c *Cell) DefinitionType() DefinitionType { return DefinitionCell }

// LayoutView returns the cell's layout.
func (c *Cell) LayoutView() *LayoutView { return c.layout }

// SetLayoutView replaces the cell's layout and makes the cell its owner. A
// nil layout is replaced by an empty one.
func (c *Cell) SetLayoutView(lv *LayoutView) {
	if lv == nil {
		lv = NewLayoutView(c.name, c)
	}
	lv.cell = c
	c.layout = lv
	c.flattened = nil
	lv.touch()
}

// FlattenedLayoutView returns the layout with its whole hierarchy
// flattened. The result is computed on first use and cached until any
// layout changes. It must not be modified.
func (c *Cell) FlattenedLayoutView() (*LayoutView, error) {
	if flat := c.cachedFlattened(); flat != nil {
		return flat, nil
	}
	return c.layout.Flatten(FlattenOptions{})
}

func (c *Cell) cachedFlattened() *LayoutView {
	if c.flattened != nil && c.flatGen == generation.Load() {
		return c.flattened
	}
	return nil
}

func (c *Cell) setFlattened(lv *LayoutView) {
	c.flattened = lv
	c.flatGen = generation.Load()
}
