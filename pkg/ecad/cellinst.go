package ecad

import "github.com/Draaaaaaven/ecad/pkg/geom"

// CellInst places another cell's layout view (the master) inside a layout
// view under a transform. It is one edge of the cell hierarchy.
type CellInst struct {
	suuid Suuid
	name  string
	ref   *LayoutView
	def   *LayoutView
	tr    geom.Transform2D
}

func (c *CellInst) Suuid() Suuid                { return c.suuid }
func (c *CellInst) Name() string                { return c.name }
func (c *CellInst) RefLayoutView() *LayoutView  { return c.ref }
func (c *CellInst) DefLayoutView() *LayoutView  { return c.def }
func (c *CellInst) Transform() geom.Transform2D { return c.tr }

// SetTransform replaces the placement of the master.
func (c *CellInst) SetTransform(t geom.Transform2D) {
	c.tr = t
	changed()
}

func (c *CellInst) clone(ref *LayoutView) *CellInst {
	n := *c
	n.suuid = newSuuid()
	n.ref = ref
	return &n
}
