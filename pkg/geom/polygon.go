package geom

// Polygon is a closed contour given by its vertices; the edge from the last
// vertex back to the first is implicit. The zero value is an empty polygon.
type Polygon struct {
	Points []Point2D `json:"points"`
}

// NewPolygon returns a polygon over a copy of pts.
func NewPolygon(pts ...Point2D) Polygon {
	return Polygon{Points: append([]Point2D(nil), pts...)}
}

// SetPoints replaces the vertex list with a copy of pts.
func (p *Polygon) SetPoints(pts []Point2D) {
	p.Points = append(p.Points[:0:0], pts...)
}

// Size returns the number of vertices.
func (p Polygon) Size() int {
	return len(p.Points)
}

// Empty reports whether the polygon has no area-bearing contour, that is
// fewer than three vertices.
func (p Polygon) Empty() bool {
	return len(p.Points) < 3
}

// Clone returns a deep copy.
func (p Polygon) Clone() Polygon {
	return NewPolygon(p.Points...)
}

// BBox returns the bounding box of the vertices.
func (p Polygon) BBox() Box2D {
	b := EmptyBox()
	for _, pt := range p.Points {
		b = b.Extend(pt)
	}
	return b
}

// Area2 returns twice the signed area (shoelace formula). Counter-clockwise
// contours are positive.
func (p Polygon) Area2() int64 {
	n := len(p.Points)
	if n < 3 {
		return 0
	}
	var s int64
	for i := 0; i < n; i++ {
		a, b := p.Points[i], p.Points[(i+1)%n]
		s += a.X*b.Y - b.X*a.Y
	}
	return s
}

// Area returns the unsigned area.
func (p Polygon) Area() float64 {
	a := p.Area2()
	if a < 0 {
		a = -a
	}
	return float64(a) / 2
}

// IsCCW reports whether the contour winds counter-clockwise.
func (p Polygon) IsCCW() bool {
	return p.Area2() > 0
}

// Reversed returns the polygon with the opposite winding.
func (p Polygon) Reversed() Polygon {
	n := len(p.Points)
	out := make([]Point2D, n)
	for i, pt := range p.Points {
		out[n-1-i] = pt
	}
	return Polygon{Points: out}
}

// Oriented returns the polygon wound counter-clockwise when ccw is true and
// clockwise otherwise.
func (p Polygon) Oriented(ccw bool) Polygon {
	if p.Empty() || p.IsCCW() == ccw {
		return p.Clone()
	}
	return p.Reversed()
}

// Contains reports whether pt lies inside the polygon or on its border,
// using the even-odd rule.
func (p Polygon) Contains(pt Point2D) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p.Points[j], p.Points[i]
		if onSegment(a, b, pt) {
			return true
		}
		if (b.Y > pt.Y) != (a.Y > pt.Y) {
			// x coordinate of the edge at pt.Y, compared without division
			lhs := (pt.X - b.X) * (a.Y - b.Y)
			rhs := (a.X - b.X) * (pt.Y - b.Y)
			if a.Y-b.Y < 0 {
				lhs, rhs = -lhs, -rhs
			}
			if lhs < rhs {
				inside = !inside
			}
		}
	}
	return inside
}

// Transformed returns the polygon mapped through t.
func (p Polygon) Transformed(t Transform2D) Polygon {
	out := make([]Point2D, len(p.Points))
	for i, pt := range p.Points {
		out[i] = t.Apply(pt)
	}
	return Polygon{Points: out}
}

// Edges calls fn for every edge of the closed contour.
func (p Polygon) Edges(fn func(a, b Point2D)) {
	n := len(p.Points)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		fn(p.Points[i], p.Points[(i+1)%n])
	}
}

// PolygonWithHoles is an outer contour with zero or more inner contours.
type PolygonWithHoles struct {
	Outline Polygon   `json:"outline"`
	Holes   []Polygon `json:"holes,omitempty"`
}

// NewPolygonWithHoles returns a polygon with holes over copies of the inputs.
func NewPolygonWithHoles(outline Polygon, holes ...Polygon) PolygonWithHoles {
	pwh := PolygonWithHoles{Outline: outline.Clone()}
	for _, h := range holes {
		pwh.AddHole(h)
	}
	return pwh
}

// AddHole appends a copy of h as an inner contour.
func (p *PolygonWithHoles) AddHole(h Polygon) {
	p.Holes = append(p.Holes, h.Clone())
}

// Size returns the number of outline vertices.
func (p PolygonWithHoles) Size() int {
	return p.Outline.Size()
}

// HoleCount returns the number of inner contours.
func (p PolygonWithHoles) HoleCount() int {
	return len(p.Holes)
}

// Empty reports whether the outline is degenerate.
func (p PolygonWithHoles) Empty() bool {
	return p.Outline.Empty()
}

// Clone returns a deep copy.
func (p PolygonWithHoles) Clone() PolygonWithHoles {
	return NewPolygonWithHoles(p.Outline, p.Holes...)
}

// BBox returns the bounding box of the outline.
func (p PolygonWithHoles) BBox() Box2D {
	return p.Outline.BBox()
}

// Area returns the outline area minus the hole areas.
func (p PolygonWithHoles) Area() float64 {
	a := p.Outline.Area()
	for _, h := range p.Holes {
		a -= h.Area()
	}
	return a
}

// Contains reports whether pt lies in the filled region. Points on a hole
// border count as inside.
func (p PolygonWithHoles) Contains(pt Point2D) bool {
	if !p.Outline.Contains(pt) {
		return false
	}
	for _, h := range p.Holes {
		if h.Contains(pt) && !h.onBorder(pt) {
			return false
		}
	}
	return true
}

// Normalized returns a copy with the outline counter-clockwise and every
// hole clockwise, the orientation nonzero-winding fills expect.
func (p PolygonWithHoles) Normalized() PolygonWithHoles {
	out := PolygonWithHoles{Outline: p.Outline.Oriented(true)}
	for _, h := range p.Holes {
		out.Holes = append(out.Holes, h.Oriented(false))
	}
	return out
}

// Transformed returns the polygon mapped through t.
func (p PolygonWithHoles) Transformed(t Transform2D) PolygonWithHoles {
	out := PolygonWithHoles{Outline: p.Outline.Transformed(t)}
	for _, h := range p.Holes {
		out.Holes = append(out.Holes, h.Transformed(t))
	}
	return out
}

func (p Polygon) onBorder(pt Point2D) bool {
	n := len(p.Points)
	for i := 0; i < n; i++ {
		if onSegment(p.Points[i], p.Points[(i+1)%n], pt) {
			return true
		}
	}
	return false
}

// Polyline is an open chain of vertices.
type Polyline struct {
	Points []Point2D `json:"points"`
}

// Size returns the number of vertices.
func (l Polyline) Size() int {
	return len(l.Points)
}

// Transformed returns the polyline mapped through t.
func (l Polyline) Transformed(t Transform2D) Polyline {
	out := make([]Point2D, len(l.Points))
	for i, pt := range l.Points {
		out[i] = t.Apply(pt)
	}
	return Polyline{Points: out}
}
