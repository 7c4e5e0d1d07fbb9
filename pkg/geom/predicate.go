package geom

// orientation returns the sign of the cross product (b-a)x(c-a):
// 1 for a left turn, -1 for a right turn and 0 for collinear points.
func orientation(a, b, c Point2D) int {
	v := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// onSegment reports whether p lies on the closed segment ab.
func onSegment(a, b, p Point2D) bool {
	if orientation(a, b, p) != 0 {
		return false
	}
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}

// SegmentsIntersect reports whether the closed segments ab and cd share a
// point. Touching and collinear overlapping segments intersect.
func SegmentsIntersect(a, b, c, d Point2D) bool {
	o1 := orientation(a, b, c)
	o2 := orientation(a, b, d)
	o3 := orientation(c, d, a)
	o4 := orientation(c, d, b)
	if o1 != o2 && o3 != o4 {
		return true
	}
	return (o1 == 0 && onSegment(a, b, c)) ||
		(o2 == 0 && onSegment(a, b, d)) ||
		(o3 == 0 && onSegment(c, d, a)) ||
		(o4 == 0 && onSegment(c, d, b))
}

// PolygonsOverlap reports whether the filled regions of a and b share at
// least one point. Shapes that only touch along an edge or at a vertex
// overlap. Degenerate polygons never overlap anything.
func PolygonsOverlap(a, b PolygonWithHoles) bool {
	if a.Empty() || b.Empty() {
		return false
	}
	if !a.BBox().Intersects(b.BBox()) {
		return false
	}
	if contoursCross(a, b) {
		return true
	}
	// No boundary crossings: one region either encloses the other or they
	// are disjoint.
	return b.Contains(a.Outline.Points[0]) || a.Contains(b.Outline.Points[0])
}

func contoursCross(a, b PolygonWithHoles) bool {
	ca := append([]Polygon{a.Outline}, a.Holes...)
	cb := append([]Polygon{b.Outline}, b.Holes...)
	for _, pa := range ca {
		if pa.Size() < 2 {
			continue
		}
		for _, pb := range cb {
			if pb.Size() < 2 || !pa.BBox().Intersects(pb.BBox()) {
				continue
			}
			crossed := false
			pa.Edges(func(p1, p2 Point2D) {
				if crossed {
					return
				}
				pb.Edges(func(q1, q2 Point2D) {
					if !crossed && SegmentsIntersect(p1, p2, q1, q2) {
						crossed = true
					}
				})
			})
			if crossed {
				return true
			}
		}
	}
	return false
}
