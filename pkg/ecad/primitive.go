package ecad

import (
	"fmt"
	"math"

	"github.com/Draaaaaaven/ecad/pkg/geom"
)

// PrimitiveKind identifies a Primitive variant.
type PrimitiveKind int

const (
	KindGeometry2D PrimitiveKind = iota
	KindText
	KindBondwire
)

func (k PrimitiveKind) String() string {
	switch k {
	case KindGeometry2D:
		return "geometry2d"
	case KindText:
		return "text"
	case KindBondwire:
		return "bondwire"
	}
	return fmt.Sprintf("PrimitiveKind(%d)", int(k))
}

// ConnObj is anything that can carry a net: primitives and padstack
// instances.
type ConnObj interface {
	Suuid() Suuid
	Net() NetID
}

// Primitive is a layout object placed on a layer. The variants are
// [*Geometry2D], [*Text] and [*Bondwire]; use [AsGeometry2D], [AsText] and
// [AsBondwire] to narrow.
type Primitive interface {
	ConnObj
	Kind() PrimitiveKind
	Layer() LayerID
	SetLayer(LayerID)
	SetNet(NetID)

	setNet(NetID)
	clone() Primitive
	transform(t geom.Transform2D)
	remapLayers(fn func(LayerID) LayerID)
}

type primitiveBase struct {
	suuid Suuid
	layer LayerID
	net   NetID
}

func newPrimitiveBase(layer LayerID, net NetID) primitiveBase {
	return primitiveBase{suuid: newSuuid(), layer: layer, net: net}
}

func (p *primitiveBase) Suuid() Suuid   { return p.suuid }
func (p *primitiveBase) Layer() LayerID { return p.layer }
func (p *primitiveBase) Net() NetID     { return p.net }

// SetLayer moves the primitive to layer l.
func (p *primitiveBase) SetLayer(l LayerID) {
	p.layer = l
	changed()
}

// SetNet assigns the primitive to net n.
func (p *primitiveBase) SetNet(n NetID) {
	p.setNet(n)
	changed()
}

func (p *primitiveBase) setNet(n NetID) { p.net = n }

func (p *primitiveBase) remapLayers(fn func(LayerID) LayerID) {
	p.layer = fn(p.layer)
}

// Geometry2D is a filled shape on one layer.
type Geometry2D struct {
	primitiveBase
	shape Shape
}

func (*Geometry2D) Kind() PrimitiveKind { return KindGeometry2D }

// Shape returns the geometric payload.
func (g *Geometry2D) Shape() Shape { return g.shape }

// SetShape replaces the geometric payload.
func (g *Geometry2D) SetShape(s Shape) {
	g.shape = s
	changed()
}

func (g *Geometry2D) clone() Primitive {
	c := *g
	c.suuid = newSuuid()
	if g.shape != nil {
		c.shape = g.shape.Clone()
	}
	return &c
}

func (g *Geometry2D) transform(t geom.Transform2D) {
	if g.shape != nil {
		g.shape = g.shape.Transformed(t)
	}
}

// Text is an annotation string placed by a transform.
type Text struct {
	primitiveBase
	text string
	tr   geom.Transform2D
}

func (*Text) Kind() PrimitiveKind { return KindText }

// Text returns the string payload.
func (t *Text) Text() string { return t.text }

// SetText replaces the string payload.
func (t *Text) SetText(s string) {
	t.text = s
	changed()
}

// Transform returns the placement.
func (t *Text) Transform() geom.Transform2D { return t.tr }

// SetTransform replaces the placement.
func (t *Text) SetTransform(tr geom.Transform2D) {
	t.tr = tr
	changed()
}

// Position returns the anchor point, the placement of the origin.
func (t *Text) Position() geom.Point2D {
	return t.tr.Apply(geom.Point2D{})
}

func (t *Text) clone() Primitive {
	c := *t
	c.suuid = newSuuid()
	return &c
}

func (t *Text) transform(tr geom.Transform2D) {
	t.tr = tr.Compose(t.tr)
}

// Bondwire is a wire of circular cross section from a point on the start
// layer to a point on the end layer.
type Bondwire struct {
	primitiveBase
	name     string
	endLayer LayerID
	start    geom.Point2D
	end      geom.Point2D
	radius   int64
}

func (*Bondwire) Kind() PrimitiveKind { return KindBondwire }

func (b *Bondwire) Name() string        { return b.name }
func (b *Bondwire) StartLayer() LayerID { return b.layer }
func (b *Bondwire) EndLayer() LayerID   { return b.endLayer }
func (b *Bondwire) Start() geom.Point2D { return b.start }
func (b *Bondwire) End() geom.Point2D   { return b.end }
func (b *Bondwire) Radius() int64       { return b.radius }

func (b *Bondwire) SetEndLayer(l LayerID) {
	b.endLayer = l
	changed()
}

func (b *Bondwire) SetRadius(r int64) {
	b.radius = r
	changed()
}

// Length returns the horizontal distance between the end points.
func (b *Bondwire) Length() float64 {
	d := b.end.Sub(b.start)
	return math.Hypot(float64(d.X), float64(d.Y))
}

// Footprints returns the wire's contact discs on the start and end layers.
func (b *Bondwire) Footprints() map[LayerID][]geom.PolygonWithHoles {
	r := max(b.radius, 1)
	out := map[LayerID][]geom.PolygonWithHoles{}
	if b.layer != NoLayer {
		out[b.layer] = append(out[b.layer], geom.PolygonWithHoles{Outline: geom.CircleOutline(b.start, r, 8)})
	}
	if b.endLayer != NoLayer {
		out[b.endLayer] = append(out[b.endLayer], geom.PolygonWithHoles{Outline: geom.CircleOutline(b.end, r, 8)})
	}
	return out
}

func (b *Bondwire) clone() Primitive {
	c := *b
	c.suuid = newSuuid()
	return &c
}

func (b *Bondwire) transform(t geom.Transform2D) {
	b.start = t.Apply(b.start)
	b.end = t.Apply(b.end)
	b.radius = scaleLength(b.radius, t)
}

func (b *Bondwire) remapLayers(fn func(LayerID) LayerID) {
	b.layer = fn(b.layer)
	b.endLayer = fn(b.endLayer)
}

// AsGeometry2D returns p as a Geometry2D, or nil for other kinds.
func AsGeometry2D(p Primitive) *Geometry2D {
	g, _ := p.(*Geometry2D)
	return g
}

// AsText returns p as a Text, or nil for other kinds.
func AsText(p Primitive) *Text {
	t, _ := p.(*Text)
	return t
}

// AsBondwire returns p as a Bondwire, or nil for other kinds.
func AsBondwire(p Primitive) *Bondwire {
	b, _ := p.(*Bondwire)
	return b
}
