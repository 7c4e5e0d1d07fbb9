package ecad

import (
	"slices"

	"github.com/Draaaaaaven/ecad/pkg/geom"
)

// PadstackDef is a reusable pad and via template owned by a database and
// referenced by padstack instances.
type PadstackDef struct {
	suuid Suuid
	name  string
	db    *Database
	data  *PadstackDefData
}

// NewPadstackDef creates a definition with empty data. db may be nil.
func NewPadstackDef(name string, db *Database) *PadstackDef {
	return &PadstackDef{suuid: newSuuid(), name: name, db: db, data: NewPadstackDefData()}
}

func (d *PadstackDef) Suuid() Suuid        { return d.suuid }
func (d *PadstackDef) Name() string        { return d.name }
func (d *PadstackDef) Database() *Database { return d.db }

// Data returns the definition payload.
func (d *PadstackDef) Data() *PadstackDefData { return d.data }

// SetData replaces the whole payload. A nil payload resets it to empty.
func (d *PadstackDef) SetData(data *PadstackDefData) {
	if data == nil {
		data = NewPadstackDefData()
	}
	d.data = data
	changed()
}

// PadData is the pad geometry of one definition layer. Offset and Rotation
// place the shape relative to the padstack origin.
type PadData struct {
	Layer    string
	Shape    Shape
	Offset   geom.FPoint2D
	Rotation float64
}

// Transform returns the local placement of the pad shape.
func (p PadData) Transform() geom.Transform2D {
	return geom.MakeTransform(1, p.Rotation, p.Offset, geom.MirrorNo)
}

// ViaData is the barrel geometry present on every layer a padstack spans.
type ViaData struct {
	Shape    Shape
	Offset   geom.FPoint2D
	Rotation float64
}

// Transform returns the local placement of the via shape.
func (v ViaData) Transform() geom.Transform2D {
	return geom.MakeTransform(1, v.Rotation, v.Offset, geom.MirrorNo)
}

// PadstackDefData holds the material, the per-layer pads and the optional
// via of a padstack definition. Pads are indexed by definition layer, from
// top to bottom.
type PadstackDefData struct {
	material string
	pads     []PadData
	via      *ViaData
}

// NewPadstackDefData creates empty data using the default conducting
// material.
func NewPadstackDefData() *PadstackDefData {
	return &PadstackDefData{material: DefaultConductingMaterial}
}

func (d *PadstackDefData) Material() string     { return d.material }
func (d *PadstackDefData) LayerCount() int { return len(d.pads) }
func (d *PadstackDefData) HasVia() bool    { return d.via != nil }

// SetMaterial replaces the pad material.
func (d *PadstackDefData) SetMaterial(m string) {
	d.material = m
	changed()
}

// SetLayers resets the pads to one empty pad per named layer.
func (d *PadstackDefData) SetLayers(names []string) {
	d.pads = make([]PadData, len(names))
	for i, n := range names {
		d.pads[i] = PadData{Layer: n}
	}
	changed()
}

// Layers returns the definition layer names.
func (d *PadstackDefData) Layers() []string {
	names := make([]string, len(d.pads))
	for i, p := range d.pads {
		names[i] = p.Layer
	}
	return names
}

// LayerIndex returns the position of the named layer, or -1.
func (d *PadstackDefData) LayerIndex(name string) int {
	return slices.IndexFunc(d.pads, func(p PadData) bool { return p.Layer == name })
}

// SetPadParameters sets the pad of definition layer i. It fails when i is out
// of range.
func (d *PadstackDefData) SetPadParameters(i int, shape Shape, offset geom.FPoint2D, rotation float64) error {
	if i < 0 || i >= len(d.pads) {
		return invalidInput("pad layer index %d out of range [0, %d)", i, len(d.pads))
	}
	d.pads[i].Shape = shape
	d.pads[i].Offset = offset
	d.pads[i].Rotation = rotation
	changed()
	return nil
}

// Pad returns the pad of definition layer i.
func (d *PadstackDefData) Pad(i int) (PadData, bool) {
	if i < 0 || i >= len(d.pads) {
		return PadData{}, false
	}
	return d.pads[i], true
}

// SetViaParameters sets the via barrel. A nil shape removes the via.
func (d *PadstackDefData) SetViaParameters(shape Shape, offset geom.FPoint2D, rotation float64) {
	if shape == nil {
		d.via = nil
	} else {
		d.via = &ViaData{Shape: shape, Offset: offset, Rotation: rotation}
	}
	changed()
}

// Via returns the via barrel.
func (d *PadstackDefData) Via() (ViaData, bool) {
	if d.via == nil {
		return ViaData{}, false
	}
	return *d.via, true
}

// Clone returns a deep copy.
func (d *PadstackDefData) Clone() *PadstackDefData {
	c := &PadstackDefData{material: d.material, pads: make([]PadData, len(d.pads))}
	for i, p := range d.pads {
		c.pads[i] = p
		if p.Shape != nil {
			c.pads[i].Shape = p.Shape.Clone()
		}
	}
	if d.via != nil {
		v := *d.via
		if v.Shape != nil {
			v.Shape = v.Shape.Clone()
		}
		c.via = &v
	}
	return c
}

// PadstackInst places a padstack definition in a layout. It spans the layers
// from top to bottom; the layer map translates definition layer indices
// (forward) into layout layer ids.
type PadstackInst struct {
	suuid    Suuid
	name     string
	def      *PadstackDef
	net      NetID
	top, bot LayerID
	layerMap *LayerMap
	tr       geom.Transform2D
	layout   *LayoutView
}

func (p *PadstackInst) Suuid() Suuid                { return p.suuid }
func (p *PadstackInst) Name() string                { return p.name }
func (p *PadstackInst) Def() *PadstackDef           { return p.def }
func (p *PadstackInst) Net() NetID                  { return p.net }
func (p *PadstackInst) LayerMap() *LayerMap         { return p.layerMap }
func (p *PadstackInst) Transform() geom.Transform2D { return p.tr }
func (p *PadstackInst) LayoutView() *LayoutView     { return p.layout }

// SetNet assigns the instance to net n.
func (p *PadstackInst) SetNet(n NetID) {
	p.net = n
	changed()
}

// SetTransform replaces the placement.
func (p *PadstackInst) SetTransform(t geom.Transform2D) {
	p.tr = t
	changed()
}

// Layers returns the top and bottom layer as given at creation.
func (p *PadstackInst) Layers() (top, bot LayerID) { return p.top, p.bot }

// LayerRange returns the spanned layer ids in ascending order. Both are
// NoLayer when the instance is not bound to layers.
func (p *PadstackInst) LayerRange() (lo, hi LayerID) {
	if p.top == NoLayer || p.bot == NoLayer {
		l := max(p.top, p.bot)
		return l, l
	}
	return min(p.top, p.bot), max(p.top, p.bot)
}

// SpansLayer reports whether layer lies within the instance's layer range.
func (p *PadstackInst) SpansLayer(layer LayerID) bool {
	lo, hi := p.LayerRange()
	return layer != NoLayer && lo <= layer && layer <= hi
}

// defLayerIndex resolves the definition pad index used on a layout layer.
func (p *PadstackInst) defLayerIndex(layer LayerID) int {
	if p.layerMap != nil {
		return int(p.layerMap.MappingBackward(layer))
	}
	lo, _ := p.LayerRange()
	return int(layer - lo)
}

// LayerShapes returns the placed pad and via geometry on a layout layer, or
// nil when the instance does not span it.
func (p *PadstackInst) LayerShapes(layer LayerID) []Shape {
	if !p.SpansLayer(layer) || p.def == nil || p.def.data == nil {
		return nil
	}
	var shapes []Shape
	data := p.def.data
	if pad, ok := data.Pad(p.defLayerIndex(layer)); ok && pad.Shape != nil {
		shapes = append(shapes, pad.Shape.Transformed(p.tr.Compose(pad.Transform())))
	}
	if via, ok := data.Via(); ok && via.Shape != nil {
		shapes = append(shapes, via.Shape.Transformed(p.tr.Compose(via.Transform())))
	}
	return shapes
}

func (p *PadstackInst) clone(layout *LayoutView) *PadstackInst {
	c := *p
	c.suuid = newSuuid()
	c.layout = layout
	return &c
}
