package ecad

import (
	"fmt"
	"math"

	"github.com/Draaaaaaven/ecad/pkg/geom"
)

// ShapeType identifies a Shape variant.
type ShapeType int

const (
	ShapeRectangle ShapeType = iota
	ShapePath
	ShapePolygon
	ShapePolygonWithHoles
	ShapeCircle
)

func (t ShapeType) String() string {
	switch t {
	case ShapeRectangle:
		return "rectangle"
	case ShapePath:
		return "path"
	case ShapePolygon:
		return "polygon"
	case ShapePolygonWithHoles:
		return "polygon_with_holes"
	case ShapeCircle:
		return "circle"
	}
	return fmt.Sprintf("ShapeType(%d)", int(t))
}

// Shape is the geometric payload of a Geometry2D primitive or a pad. The set
// of variants is closed: [Rectangle], [Path], [Polygon], [PolygonWithHoles]
// and [Circle].
type Shape interface {
	Type() ShapeType
	// BBox returns the bounding box of the filled area.
	BBox() geom.Box2D
	// HasHole reports whether the filled area has inner contours.
	HasHole() bool
	// Outline returns the filled area as polygons. Curved shapes are
	// approximated.
	Outline() []geom.PolygonWithHoles
	// Transformed returns a copy mapped through t.
	Transformed(t geom.Transform2D) Shape
	// Clone returns a deep copy.
	Clone() Shape

	sealed()
}

// Rectangle is an axis-aligned box given by two corners.
type Rectangle struct {
	LL geom.Point2D
	UR geom.Point2D
}

func (Rectangle) Type() ShapeType { return ShapeRectangle }
func (Rectangle) HasHole() bool   { return false }
func (Rectangle) sealed()         {}

func (r Rectangle) BBox() geom.Box2D { return geom.NewBox(r.LL, r.UR) }
func (r Rectangle) Clone() Shape     { return r }

func (r Rectangle) Outline() []geom.PolygonWithHoles {
	return []geom.PolygonWithHoles{{Outline: r.BBox().Polygon()}}
}

// Transformed keeps the rectangle variant for quarter-turn transforms and
// degrades to a Polygon otherwise.
func (r Rectangle) Transformed(t geom.Transform2D) Shape {
	if t.IsAxisAligned() {
		return Rectangle{LL: t.Apply(r.LL), UR: t.Apply(r.UR)}.normalized()
	}
	return Polygon{Shape: r.BBox().Polygon().Transformed(t)}
}

func (r Rectangle) normalized() Rectangle {
	b := geom.NewBox(r.LL, r.UR)
	return Rectangle{LL: b.Min, UR: b.Max}
}

// Path is a polyline swept by a width.
type Path struct {
	Points []geom.Point2D
	Width  int64
}

func (Path) Type() ShapeType { return ShapePath }
func (Path) HasHole() bool   { return false }
func (Path) sealed()         {}

func (p Path) BBox() geom.Box2D {
	b := geom.EmptyBox()
	for _, pt := range p.Points {
		b = b.Extend(pt)
	}
	h := (p.Width + 1) / 2
	return b.Expand(h, h, h, h)
}

func (p Path) Clone() Shape {
	return Path{Points: append([]geom.Point2D(nil), p.Points...), Width: p.Width}
}

func (p Path) Outline() []geom.PolygonWithHoles {
	parts := geom.PathOutline(geom.Polyline{Points: p.Points}, p.Width)
	out := make([]geom.PolygonWithHoles, len(parts))
	for i, part := range parts {
		out[i] = geom.PolygonWithHoles{Outline: part}
	}
	return out
}

func (p Path) Transformed(t geom.Transform2D) Shape {
	return Path{
		Points: geom.Polyline{Points: p.Points}.Transformed(t).Points,
		Width:  scaleLength(p.Width, t),
	}
}

// Polygon is a simple polygon without holes.
type Polygon struct {
	Shape geom.Polygon
}

func (Polygon) Type() ShapeType { return ShapePolygon }
func (Polygon) HasHole() bool   { return false }
func (Polygon) sealed()         {}

func (p Polygon) BBox() geom.Box2D { return p.Shape.BBox() }
func (p Polygon) Clone() Shape     { return Polygon{Shape: p.Shape.Clone()} }

func (p Polygon) Outline() []geom.PolygonWithHoles {
	return []geom.PolygonWithHoles{{Outline: p.Shape.Clone()}}
}

func (p Polygon) Transformed(t geom.Transform2D) Shape {
	return Polygon{Shape: p.Shape.Transformed(t)}
}

// PolygonWithHoles is a polygon with inner contours.
type PolygonWithHoles struct {
	Shape geom.PolygonWithHoles
}

func (PolygonWithHoles) Type() ShapeType { return ShapePolygonWithHoles }
func (PolygonWithHoles) sealed()         {}

func (p PolygonWithHoles) HasHole() bool    { return p.Shape.HoleCount() > 0 }
func (p PolygonWithHoles) BBox() geom.Box2D { return p.Shape.BBox() }
func (p PolygonWithHoles) Clone() Shape     { return PolygonWithHoles{Shape: p.Shape.Clone()} }

func (p PolygonWithHoles) Outline() []geom.PolygonWithHoles {
	return []geom.PolygonWithHoles{p.Shape.Clone()}
}

func (p PolygonWithHoles) Transformed(t geom.Transform2D) Shape {
	return PolygonWithHoles{Shape: p.Shape.Transformed(t)}
}

// Circle is approximated by a regular polygon with Div vertices when an
// outline is needed; Div values below 3 use geom.DefaultCircleDiv.
type Circle struct {
	Center geom.Point2D
	Radius int64
	Div    int
}

func (Circle) Type() ShapeType { return ShapeCircle }
func (Circle) HasHole() bool   { return false }
func (Circle) sealed()         {}

func (c Circle) Clone() Shape { return c }

func (c Circle) BBox() geom.Box2D {
	return geom.NewBox(c.Center, c.Center).Expand(c.Radius, c.Radius, c.Radius, c.Radius)
}

func (c Circle) Outline() []geom.PolygonWithHoles {
	return []geom.PolygonWithHoles{{Outline: geom.CircleOutline(c.Center, c.Radius, c.Div)}}
}

func (c Circle) Transformed(t geom.Transform2D) Shape {
	return Circle{Center: t.Apply(c.Center), Radius: scaleLength(c.Radius, t), Div: c.Div}
}

func scaleLength(v int64, t geom.Transform2D) int64 {
	return int64(math.Round(float64(v) * math.Abs(t.Scale())))
}

// NewRectangle returns a rectangle spanning two corners in any order.
func NewRectangle(a, b geom.Point2D) Rectangle {
	return Rectangle{LL: a, UR: b}.normalized()
}

// NewPolygonShape returns a polygon shape over the given vertices.
func NewPolygonShape(pts ...geom.Point2D) Polygon {
	return Polygon{Shape: geom.NewPolygon(pts...)}
}
