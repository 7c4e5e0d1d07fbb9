package geom

import (
	"fmt"
	"math"
)

// Point2D is a point in database units.
type Point2D struct {
	X int64 `json:"x" bson:"x" xml:"x,attr"`
	Y int64 `json:"y" bson:"y" xml:"y,attr"`
}

// Pt is shorthand for Point2D{X: x, Y: y}.
func Pt(x, y int64) Point2D {
	return Point2D{X: x, Y: y}
}

// Add returns p+q.
func (p Point2D) Add(q Point2D) Point2D {
	return Point2D{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{X: p.X - q.X, Y: p.Y - q.Y}
}

// Float converts p to floating point coordinates.
func (p Point2D) Float() FPoint2D {
	return FPoint2D{X: float64(p.X), Y: float64(p.Y)}
}

func (p Point2D) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// FPoint2D is a point with floating point coordinates.
type FPoint2D struct {
	X float64 `json:"x" bson:"x" xml:"x,attr"`
	Y float64 `json:"y" bson:"y" xml:"y,attr"`
}

// Add returns p+q.
func (p FPoint2D) Add(q FPoint2D) FPoint2D {
	return FPoint2D{X: p.X + q.X, Y: p.Y + q.Y}
}

// Round converts p to the nearest integer point, rounding half away from zero.
func (p FPoint2D) Round() Point2D {
	return Point2D{X: int64(math.Round(p.X)), Y: int64(math.Round(p.Y))}
}

// Box2D is an axis-aligned bounding box. A box whose Min exceeds its Max on
// either axis is empty; [EmptyBox] returns the canonical empty box.
type Box2D struct {
	Min Point2D `json:"min"`
	Max Point2D `json:"max"`
}

// EmptyBox returns a box that contains nothing and absorbs any point passed
// to [Box2D.Extend].
func EmptyBox() Box2D {
	return Box2D{
		Min: Point2D{X: math.MaxInt64, Y: math.MaxInt64},
		Max: Point2D{X: math.MinInt64, Y: math.MinInt64},
	}
}

// NewBox returns the box spanned by two corner points in any order.
func NewBox(a, b Point2D) Box2D {
	return EmptyBox().Extend(a).Extend(b)
}

// IsValid reports whether the box is non-empty.
func (b Box2D) IsValid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y
}

// Extend returns the smallest box containing b and p.
func (b Box2D) Extend(p Point2D) Box2D {
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
	return b
}

// Union returns the smallest box containing both boxes.
func (b Box2D) Union(o Box2D) Box2D {
	if !o.IsValid() {
		return b
	}
	if !b.IsValid() {
		return o
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Intersects reports whether the boxes share at least one point. Touching
// boxes intersect.
func (b Box2D) Intersects(o Box2D) bool {
	if !b.IsValid() || !o.IsValid() {
		return false
	}
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y
}

// Contains reports whether p lies inside b or on its border.
func (b Box2D) Contains(p Point2D) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Expand grows the box by the given margins. Negative margins shrink it.
func (b Box2D) Expand(left, bottom, right, top int64) Box2D {
	if !b.IsValid() {
		return b
	}
	b.Min.X -= left
	b.Min.Y -= bottom
	b.Max.X += right
	b.Max.Y += top
	return b
}

// Width returns the horizontal extent, or 0 for an empty box.
func (b Box2D) Width() int64 {
	if !b.IsValid() {
		return 0
	}
	return b.Max.X - b.Min.X
}

// Height returns the vertical extent, or 0 for an empty box.
func (b Box2D) Height() int64 {
	if !b.IsValid() {
		return 0
	}
	return b.Max.Y - b.Min.Y
}

// Polygon returns the box as a counter-clockwise rectangle.
func (b Box2D) Polygon() Polygon {
	return NewPolygon(
		b.Min,
		Point2D{X: b.Max.X, Y: b.Min.Y},
		b.Max,
		Point2D{X: b.Min.X, Y: b.Max.Y},
	)
}
