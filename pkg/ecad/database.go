package ecad

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/geom"
	"github.com/Draaaaaaven/ecad/pkg/hierarchy"
	"github.com/Draaaaaaven/ecad/pkg/observability"
)

// DefaultThreads bounds the workers of Database.Flatten.
const DefaultThreads = 8

// Database is the aggregation root: it owns cells, layer maps and padstack
// definitions, each keyed by a name unique within its collection.
//
// Database is not safe for concurrent use. Operations assume exclusive
// access to the database and everything it owns.
type Database struct {
	suuid   Suuid
	name    string
	units   geom.CoordUnits
	threads int

	cells        *Collection[*Cell]
	layerMaps    *Collection[*LayerMap]
	padstackDefs *Collection[*PadstackDef]
}

// NewDatabase creates an empty database with default coordinate units.
func NewDatabase(name string) *Database {
	return &Database{
		suuid:        newSuuid(),
		name:         name,
		units:        geom.DefaultCoordUnits(),
		threads:      DefaultThreads,
		cells:        newCollection(func(c *Cell) string { return c.name }),
		layerMaps:    newCollection(func(m *LayerMap) string { return m.name }),
		padstackDefs: newCollection(func(d *PadstackDef) string { return d.name }),
	}
}

func (d *Database) Suuid() Suuid                { return d.suuid }
func (d *Database) Name() string                { return d.name }
func (d *Database) CoordUnits() geom.CoordUnits { return d.units }
func (d *Database) Threads() int                { return d.threads }

// SetCoordUnits replaces the coordinate units. Stored coordinates are not
// rescaled.
func (d *Database) SetCoordUnits(u geom.CoordUnits) { d.units = u }

// SetThreads bounds the workers used by Flatten. Values below 1 mean 1.
func (d *Database) SetThreads(n int) { d.threads = max(n, 1) }

// NextDefName returns name if no definition of the given type uses it,
// otherwise name_<n> with the smallest free n.
func (d *Database) NextDefName(name string, typ DefinitionType) string {
	switch typ {
	case DefinitionLayerMap:
		return nextName(name, d.layerMaps.taken)
	case DefinitionPadstackDef:
		return nextName(name, d.padstackDefs.taken)
	default:
		return nextName(name, d.cells.taken)
	}
}

// =============================================================================
// Cells
// =============================================================================

// CreateCircuitCell creates a circuit cell with an empty layout.
func (d *Database) CreateCircuitCell(name string) (*Cell, error) {
	if d == nil {
		return nil, ErrNilDatabase
	}
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	if d.cells.taken(name) {
		return nil, duplicate("cell", name)
	}
	c := NewCircuitCell(name, d)
	_ = d.cells.add(c)
	return c, nil
}

// AddCell adds a cell created outside the database and makes the database
// its owner.
func (d *Database) AddCell(c *Cell) error {
	if d == nil {
		return ErrNilDatabase
	}
	if c == nil {
		return invalidInput("cell is nil")
	}
	if err := errors.ValidateName(c.name); err != nil {
		return err
	}
	if err := d.cells.add(c); err != nil {
		return duplicate("cell", c.name)
	}
	c.db = d
	return nil
}

// FindCellByName returns the named cell, or nil.
func (d *Database) FindCellByName(name string) *Cell { return d.cells.Lookup(name) }

// CircuitCells returns the circuit cells in creation order.
func (d *Database) CircuitCells() []*Cell {
	var out []*Cell
	for _, c := range d.cells.items {
		if c.typ == CircuitCell {
			out = append(out, c)
		}
	}
	return out
}

// CellCollection returns the owned cells.
func (d *Database) CellCollection() *Collection[*Cell] { return d.cells }

// CellIter returns an iterator over the cells.
func (d *Database) CellIter() *Iterator[*Cell] { return d.cells.Iter() }

// Hierarchy returns the instancing graph of the database's cells: one edge
// from each cell to every database cell its layout instantiates. Masters
// outside the database are left out.
func (d *Database) Hierarchy() *hierarchy.Graph {
	g := hierarchy.New()
	for _, c := range d.cells.items {
		_ = g.AddCell(c.name)
	}
	for _, c := range d.cells.items {
		for _, ci := range c.layout.cellInsts.items {
			if master := d.owner(ci.def); master != nil {
				_ = g.AddInstance(c.name, master.name)
			}
		}
	}
	return g
}

// owner returns the database cell whose layout is lv, or nil.
func (d *Database) owner(lv *LayoutView) *Cell {
	if lv == nil || lv.cell == nil || lv.cell.db != d {
		return nil
	}
	if c := d.cells.Lookup(lv.cell.name); c == lv.cell && c.layout == lv {
		return c
	}
	return nil
}

// TopCells returns the cells no other cell instantiates, in creation order.
func (d *Database) TopCells() []*Cell {
	g := d.Hierarchy()
	var out []*Cell
	for _, name := range g.Tops() {
		out = append(out, d.cells.Lookup(name))
	}
	return out
}

// =============================================================================
// Layer maps and padstack definitions
// =============================================================================

// CreateLayerMap creates an empty named layer map.
func (d *Database) CreateLayerMap(name string) (*LayerMap, error) {
	if d == nil {
		return nil, ErrNilDatabase
	}
	lm := NewLayerMap(name, d)
	if err := d.AddLayerMap(lm); err != nil {
		return nil, err
	}
	return lm, nil
}

// AddLayerMap adds a layer map created outside the database. Adding a map
// whose name is taken, including a map already in the database, fails.
func (d *Database) AddLayerMap(lm *LayerMap) error {
	if d == nil {
		return ErrNilDatabase
	}
	if lm == nil {
		return invalidInput("layer map is nil")
	}
	if err := errors.ValidateName(lm.name); err != nil {
		return err
	}
	if err := d.layerMaps.add(lm); err != nil {
		return duplicate("layer map", lm.name)
	}
	lm.db = d
	return nil
}

// FindLayerMapByName returns the named layer map, or nil.
func (d *Database) FindLayerMapByName(name string) *LayerMap { return d.layerMaps.Lookup(name) }

// LayerMapCollection returns the owned layer maps.
func (d *Database) LayerMapCollection() *Collection[*LayerMap] { return d.layerMaps }

// LayerMapIter returns an iterator over the layer maps.
func (d *Database) LayerMapIter() *Iterator[*LayerMap] { return d.layerMaps.Iter() }

// CreatePadstackDef creates a padstack definition with empty data.
func (d *Database) CreatePadstackDef(name string) (*PadstackDef, error) {
	if d == nil {
		return nil, ErrNilDatabase
	}
	def := NewPadstackDef(name, d)
	if err := d.AddPadstackDef(def); err != nil {
		return nil, err
	}
	return def, nil
}

// AddPadstackDef adds a definition created outside the database.
func (d *Database) AddPadstackDef(def *PadstackDef) error {
	if d == nil {
		return ErrNilDatabase
	}
	if def == nil {
		return invalidInput("padstack def is nil")
	}
	if err := errors.ValidateName(def.name); err != nil {
		return err
	}
	if err := d.padstackDefs.add(def); err != nil {
		return duplicate("padstack def", def.name)
	}
	def.db = d
	return nil
}

// FindPadstackDefByName returns the named padstack definition, or nil.
func (d *Database) FindPadstackDefByName(name string) *PadstackDef {
	return d.padstackDefs.Lookup(name)
}

// PadstackDefCollection returns the owned padstack definitions.
func (d *Database) PadstackDefCollection() *Collection[*PadstackDef] { return d.padstackDefs }

// PadstackDefIter returns an iterator over the padstack definitions.
func (d *Database) PadstackDefIter() *Iterator[*PadstackDef] { return d.padstackDefs.Iter() }

// Clear removes every cell, layer map and padstack definition.
func (d *Database) Clear() {
	d.cells.Clear()
	d.layerMaps.Clear()
	d.padstackDefs.Clear()
	changed()
}

// =============================================================================
// Flatten
// =============================================================================

// Flatten flattens the layout of cell and of every cell below it. Cells are
// processed bottom-up one hierarchy level at a time; the cells of a level
// are flattened in parallel by up to Threads workers, each reusing the
// already flattened masters. Every result is cached on its cell, so
// [Cell.FlattenedLayoutView] returns it afterwards.
//
// No layout is modified. Flatten returns the flattened layout of cell, or
// the context's error when it is canceled between cells.
func (d *Database) Flatten(ctx context.Context, cell *Cell) (flat *LayoutView, err error) {
	if d == nil {
		return nil, ErrNilDatabase
	}
	if cell == nil || d.cells.Lookup(cell.name) != cell {
		return nil, ErrCellNotInDatabase
	}

	g := d.Hierarchy()
	scope := make(map[string]bool)
	for _, name := range g.Descendants(cell.name) {
		scope[name] = true
	}

	hooks := observability.Engine()
	hooks.OnFlattenStart(ctx, cell.name, len(scope))
	start := time.Now()
	defer func() {
		n := 0
		if flat != nil {
			n = flat.primitives.Size()
		}
		hooks.OnFlattenComplete(ctx, cell.name, n, time.Since(start), err)
	}()

	memo := make(map[*LayoutView]*LayoutView, len(scope))
	for _, level := range g.Levels() {
		var cells []*Cell
		for _, name := range level {
			if scope[name] {
				cells = append(cells, d.cells.Lookup(name))
			}
		}
		if len(cells) == 0 {
			continue
		}

		results := make([]*LayoutView, len(cells))
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(d.threads)
		for i, c := range cells {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				f := &flattener{memo: memo}
				results[i] = f.flatten(c.layout, 0)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}

		for i, c := range cells {
			memo[c.layout] = results[i]
			c.setFlattened(results[i])
		}
	}
	return memo[cell.layout], nil
}
