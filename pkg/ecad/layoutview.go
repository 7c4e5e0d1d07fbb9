package ecad

import (
	"github.com/Draaaaaaven/ecad/pkg/geom"
)

// LayoutView is the geometric and connectivity content of a cell. It owns
// nets, an ordered stackup, padstack instances, cell instances and
// primitives, plus an optional boundary polygon.
//
// Layer ids and net ids are positions in the stackup and net collections.
//
// LayoutView is not safe for concurrent use.
type LayoutView struct {
	suuid    Suuid
	name     string
	cell     *Cell
	boundary *geom.Polygon

	nets          *Collection[*Net]
	layers        *Collection[*StackupLayer]
	padstackInsts *Collection[*PadstackInst]
	cellInsts     *Collection[*CellInst]
	primitives    *Collection[Primitive]
}

// NewLayoutView creates an empty layout view. cell may be nil for a
// free-standing view.
func NewLayoutView(name string, cell *Cell) *LayoutView {
	return &LayoutView{
		suuid:         newSuuid(),
		name:          name,
		cell:          cell,
		nets:          newCollection(func(n *Net) string { return n.name }),
		layers:        newCollection(func(l *StackupLayer) string { return l.name }),
		padstackInsts: newCollection(func(p *PadstackInst) string { return p.name }),
		cellInsts:     newCollection(func(c *CellInst) string { return c.name }),
		primitives:    newCollection[Primitive](nil),
	}
}

func (v *LayoutView) Suuid() Suuid { return v.suuid }
func (v *LayoutView) Name() string { return v.name }
func (v *LayoutView) Cell() *Cell  { return v.cell }

// Database returns the database owning the view's cell, or nil.
func (v *LayoutView) Database() *Database {
	if v.cell == nil {
		return nil
	}
	return v.cell.db
}

// coordUnits returns the owning database's units, or the defaults.
func (v *LayoutView) coordUnits() geom.CoordUnits {
	if db := v.Database(); db != nil {
		return db.units
	}
	return geom.DefaultCoordUnits()
}

// touch invalidates cached flattened views.
func (v *LayoutView) touch() {
	changed()
}

// =============================================================================
// Nets
// =============================================================================

// CreateNet adds a net with the next net id. It fails when the name is
// taken.
func (v *LayoutView) CreateNet(name string) (*Net, error) {
	if v == nil {
		return nil, ErrNilLayoutView
	}
	n := &Net{suuid: newSuuid(), name: name, id: NetID(v.nets.Size())}
	if err := v.nets.add(n); err != nil {
		return nil, duplicate("net", name)
	}
	v.touch()
	return n, nil
}

// FindNetByName returns the named net, or nil.
func (v *LayoutView) FindNetByName(name string) *Net {
	return v.nets.Lookup(name)
}

// Net returns the net with the given id, or nil.
func (v *LayoutView) Net(id NetID) *Net {
	return v.nets.At(int(id))
}

// NetCollection returns the owned nets.
func (v *LayoutView) NetCollection() *Collection[*Net] { return v.nets }

// NetIter returns an iterator over the nets.
func (v *LayoutView) NetIter() *Iterator[*Net] { return v.nets.Iter() }

// =============================================================================
// Stackup
// =============================================================================

// AppendLayer adds a layer at the bottom of the stackup and returns its id.
func (v *LayoutView) AppendLayer(l *StackupLayer) (LayerID, error) {
	ids, err := v.AppendLayers([]*StackupLayer{l})
	if err != nil {
		return NoLayer, err
	}
	return ids[0], nil
}

// AppendLayers adds layers in order and returns their ids, consecutive and
// following the current last id. Nothing is added when any name is empty,
// taken, or repeated within layers.
func (v *LayoutView) AppendLayers(layers []*StackupLayer) ([]LayerID, error) {
	if v == nil {
		return nil, ErrNilLayoutView
	}
	seen := make(map[string]bool, len(layers))
	for _, l := range layers {
		if l == nil {
			return nil, invalidInput("nil stackup layer")
		}
		if l.name == "" {
			return nil, invalidInput("stackup layer name is empty")
		}
		if seen[l.name] || v.layers.taken(l.name) {
			return nil, duplicate("layer", l.name)
		}
		seen[l.name] = true
	}
	ids := make([]LayerID, len(layers))
	for i, l := range layers {
		ids[i] = LayerID(v.layers.Size())
		_ = v.layers.add(l)
	}
	v.touch()
	return ids, nil
}

// NextLayerName returns name if no layer uses it, otherwise name_<n> with
// the smallest free n.
func (v *LayoutView) NextLayerName(name string) string {
	return nextName(name, v.layers.taken)
}

// StackupLayers returns the layers from top to bottom.
func (v *LayoutView) StackupLayers() []*StackupLayer { return v.layers.Items() }

// LayerCollection returns the owned stackup.
func (v *LayoutView) LayerCollection() *Collection[*StackupLayer] { return v.layers }

// LayerIter returns an iterator over the stackup.
func (v *LayoutView) LayerIter() *Iterator[*StackupLayer] { return v.layers.Iter() }

// Layer returns the layer with the given id, or nil.
func (v *LayoutView) Layer(id LayerID) *StackupLayer { return v.layers.At(int(id)) }

// FindLayerByName returns the named layer, or nil.
func (v *LayoutView) FindLayerByName(name string) *StackupLayer {
	return v.layers.Lookup(name)
}

// LayerIDByName returns the id of the named layer, or NoLayer.
func (v *LayoutView) LayerIDByName(name string) LayerID {
	i, ok := v.layers.index[name]
	if !ok {
		return NoLayer
	}
	return LayerID(i)
}

// isConducting reports whether id names a conducting layer.
func (v *LayoutView) isConducting(id LayerID) bool {
	l := v.Layer(id)
	return l != nil && l.IsConducting()
}

// AddDefaultDielectricLayers inserts a dielectric layer between every pair
// of adjacent layers. Layer ids change; the returned map translates old ids
// forward to new ones and back. Content is not remapped: apply the map with
// [LayoutView.Map].
func (v *LayoutView) AddDefaultDielectricLayers() *LayerMap {
	if v == nil {
		return nil
	}
	old := v.layers.Items()
	lm := NewLayerMap("", v.Database())
	if len(old) == 0 {
		return lm
	}

	stack := make([]*StackupLayer, 0, 2*len(old)-1)
	for i, l := range old {
		lm.SetMapping(LayerID(i), LayerID(len(stack)))
		stack = append(stack, l)
		if i == len(old)-1 {
			break
		}
		lower := old[i+1]
		d := NewStackupLayer(nextName("Dielectric", func(n string) bool {
			return v.layers.taken(n) || stackHas(stack, n)
		}), DielectricLayer)
		d.elevation = l.elevation - l.thickness
		d.thickness = max(0, d.elevation-lower.elevation)
		stack = append(stack, d)
	}

	v.layers.items = stack
	v.layers.reindex()
	v.touch()
	return lm
}

func stackHas(stack []*StackupLayer, name string) bool {
	for _, l := range stack {
		if l.name == name {
			return true
		}
	}
	return false
}

// =============================================================================
// Instances and primitives
// =============================================================================

// CreatePadstackInst places def in the view on the layers from top to bot.
// layerMap may be nil, in which case pad i of the definition lands on the
// i-th spanned layer. Otherwise a layer gets the pad its backward mapping
// names, and no pad when it has none.
func (v *LayoutView) CreatePadstackInst(name string, def *PadstackDef, net NetID, top, bot LayerID, layerMap *LayerMap, t geom.Transform2D) (*PadstackInst, error) {
	if v == nil {
		return nil, ErrNilLayoutView
	}
	if def == nil {
		return nil, invalidInput("padstack instance %q has no definition", name)
	}
	p := &PadstackInst{
		suuid:    newSuuid(),
		name:     name,
		def:      def,
		net:      net,
		top:      top,
		bot:      bot,
		layerMap: layerMap,
		tr:       t,
		layout:   v,
	}
	if err := v.padstackInsts.add(p); err != nil {
		return nil, duplicate("padstack instance", name)
	}
	v.touch()
	return p, nil
}

// FindPadstackInstByName returns the named padstack instance, or nil.
func (v *LayoutView) FindPadstackInstByName(name string) *PadstackInst {
	return v.padstackInsts.Lookup(name)
}

// PadstackInstCollection returns the owned padstack instances.
func (v *LayoutView) PadstackInstCollection() *Collection[*PadstackInst] { return v.padstackInsts }

// PadstackInstIter returns an iterator over the padstack instances.
func (v *LayoutView) PadstackInstIter() *Iterator[*PadstackInst] { return v.padstackInsts.Iter() }

// CreateCellInst places the master layout def in the view. It fails with
// ErrCyclicHierarchy when def is the view itself or instantiates it,
// directly or through other cells.
func (v *LayoutView) CreateCellInst(name string, def *LayoutView, t geom.Transform2D) (*CellInst, error) {
	if v == nil || def == nil {
		return nil, ErrNilLayoutView
	}
	if instantiates(def, v) {
		return nil, ErrCyclicHierarchy
	}
	c := &CellInst{suuid: newSuuid(), name: name, ref: v, def: def, tr: t}
	if err := v.cellInsts.add(c); err != nil {
		return nil, duplicate("cell instance", name)
	}
	v.touch()
	return c, nil
}

// instantiates reports whether target is from or is reachable from it
// through cell instances.
func instantiates(from, target *LayoutView) bool {
	seen := make(map[*LayoutView]bool)
	var walk func(*LayoutView) bool
	walk = func(lv *LayoutView) bool {
		if lv == target {
			return true
		}
		if seen[lv] {
			return false
		}
		seen[lv] = true
		for _, ci := range lv.cellInsts.items {
			if walk(ci.def) {
				return true
			}
		}
		return false
	}
	return walk(from)
}

// FindCellInstByName returns the named cell instance, or nil.
func (v *LayoutView) FindCellInstByName(name string) *CellInst {
	return v.cellInsts.Lookup(name)
}

// CellInstCollection returns the owned cell instances.
func (v *LayoutView) CellInstCollection() *Collection[*CellInst] { return v.cellInsts }

// CellInstIter returns an iterator over the cell instances.
func (v *LayoutView) CellInstIter() *Iterator[*CellInst] { return v.cellInsts.Iter() }

// HierarchyObjCollection returns the hierarchy objects of the view. Cell
// instances are the only kind.
func (v *LayoutView) HierarchyObjCollection() *Collection[*CellInst] { return v.cellInsts }

// HierarchyObjIter returns an iterator over the hierarchy objects.
func (v *LayoutView) HierarchyObjIter() *Iterator[*CellInst] { return v.cellInsts.Iter() }

// CreateGeometry2D adds a shape on layer, tagged with net.
func (v *LayoutView) CreateGeometry2D(layer LayerID, net NetID, shape Shape) (*Geometry2D, error) {
	if v == nil {
		return nil, ErrNilLayoutView
	}
	if shape == nil {
		return nil, invalidInput("geometry has no shape")
	}
	g := &Geometry2D{primitiveBase: newPrimitiveBase(layer, net), shape: shape}
	v.addPrimitive(g)
	return g, nil
}

// CreateText adds an annotation on layer placed by t.
func (v *LayoutView) CreateText(layer LayerID, t geom.Transform2D, text string) (*Text, error) {
	if v == nil {
		return nil, ErrNilLayoutView
	}
	tx := &Text{primitiveBase: newPrimitiveBase(layer, NoNet), text: text, tr: t}
	v.addPrimitive(tx)
	return tx, nil
}

// CreateBondwire adds a wire from start on startLayer to end on endLayer.
func (v *LayoutView) CreateBondwire(name string, net NetID, startLayer, endLayer LayerID, start, end geom.Point2D, radius int64) (*Bondwire, error) {
	if v == nil {
		return nil, ErrNilLayoutView
	}
	if radius < 0 {
		return nil, invalidInput("bondwire %q has negative radius %d", name, radius)
	}
	b := &Bondwire{
		primitiveBase: newPrimitiveBase(startLayer, net),
		name:          name,
		endLayer:      endLayer,
		start:         start,
		end:           end,
		radius:        radius,
	}
	v.addPrimitive(b)
	return b, nil
}

func (v *LayoutView) addPrimitive(p Primitive) {
	_ = v.primitives.add(p)
	v.touch()
}

// PrimitiveCollection returns the owned primitives.
func (v *LayoutView) PrimitiveCollection() *Collection[Primitive] { return v.primitives }

// PrimitiveIter returns an iterator over the primitives.
func (v *LayoutView) PrimitiveIter() *Iterator[Primitive] { return v.primitives.Iter() }

// ConnObjCollection returns the objects that can carry a net: primitives
// followed by padstack instances. The collection is built on each call;
// clearing it does not affect the view.
func (v *LayoutView) ConnObjCollection() *Collection[ConnObj] {
	c := newCollection[ConnObj](nil)
	for _, p := range v.primitives.items {
		_ = c.add(p)
	}
	for _, p := range v.padstackInsts.items {
		_ = c.add(p)
	}
	return c
}

// ConnObjIter returns an iterator over the conn objects.
func (v *LayoutView) ConnObjIter() *Iterator[ConnObj] { return v.ConnObjCollection().Iter() }

// =============================================================================
// Boundary and whole-view operations
// =============================================================================

// SetBoundary replaces the boundary polygon. nil removes it.
func (v *LayoutView) SetBoundary(p *geom.Polygon) {
	if p == nil {
		v.boundary = nil
	} else {
		b := p.Clone()
		v.boundary = &b
	}
	v.touch()
}

// Boundary returns the boundary polygon, or nil when unset.
func (v *LayoutView) Boundary() *geom.Polygon {
	if v.boundary == nil {
		return nil
	}
	b := v.boundary.Clone()
	return &b
}

// BBox returns the bounding box of all primitives and padstack instances.
// Cell instances are not expanded.
func (v *LayoutView) BBox() geom.Box2D {
	box := geom.EmptyBox()
	for _, p := range v.primitives.items {
		for _, pwh := range primitiveOutlines(p) {
			box = box.Union(pwh.BBox())
		}
	}
	for _, p := range v.padstackInsts.items {
		lo, hi := p.LayerRange()
		for l := lo; l <= hi && l != NoLayer; l++ {
			for _, s := range p.LayerShapes(l) {
				box = box.Union(s.BBox())
			}
		}
	}
	return box
}

// Clear removes all content. The stackup is kept.
func (v *LayoutView) Clear() {
	v.nets.Clear()
	v.padstackInsts.Clear()
	v.cellInsts.Clear()
	v.primitives.Clear()
	v.boundary = nil
	v.touch()
}

// Clone returns a deep copy with fresh suuids that is not attached to a
// cell. Masters and padstack definitions are shared.
func (v *LayoutView) Clone() *LayoutView {
	c := NewLayoutView(v.name, nil)
	c.copyContent(v)
	for _, ci := range v.cellInsts.items {
		_ = c.cellInsts.add(ci.clone(c))
	}
	return c
}

// copyContent copies everything but cell instances from src into the empty
// view v.
func (v *LayoutView) copyContent(src *LayoutView) {
	if src.boundary != nil {
		b := src.boundary.Clone()
		v.boundary = &b
	}
	for _, n := range src.nets.items {
		_ = v.nets.add(&Net{suuid: newSuuid(), name: n.name, id: n.id})
	}
	for _, l := range src.layers.items {
		_ = v.layers.add(l.Clone())
	}
	for _, p := range src.padstackInsts.items {
		_ = v.padstackInsts.add(p.clone(v))
	}
	for _, p := range src.primitives.items {
		_ = v.primitives.add(p.clone())
	}
}

// Transform maps all content of the view through t in place: primitive
// geometry, instance placements and the boundary.
func (v *LayoutView) Transform(t geom.Transform2D) {
	for _, p := range v.primitives.items {
		p.transform(t)
	}
	for _, p := range v.padstackInsts.items {
		p.tr = t.Compose(p.tr)
	}
	for _, c := range v.cellInsts.items {
		c.tr = t.Compose(c.tr)
	}
	if v.boundary != nil {
		b := v.boundary.Transformed(t)
		v.boundary = &b
	}
	v.touch()
}

// primitiveOutlines returns the filled area of p on its own layer.
func primitiveOutlines(p Primitive) []geom.PolygonWithHoles {
	switch p := p.(type) {
	case *Geometry2D:
		if p.shape != nil {
			return p.shape.Outline()
		}
	case *Bondwire:
		return p.Footprints()[p.layer]
	}
	return nil
}
