package geom

import (
	"math"
	"sort"
)

// DefaultCircleDiv is the number of segments used to approximate a circle
// when no explicit division is given.
const DefaultCircleDiv = 12

// CircleOutline approximates a circle with a regular polygon of div vertices,
// wound counter-clockwise. div values below 3 fall back to DefaultCircleDiv.
func CircleOutline(center Point2D, radius int64, div int) Polygon {
	if div < 3 {
		div = DefaultCircleDiv
	}
	pts := make([]Point2D, div)
	r := float64(radius)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(div)
		pts[i] = FPoint2D{
			X: float64(center.X) + r*math.Cos(a),
			Y: float64(center.Y) + r*math.Sin(a),
		}.Round()
	}
	return Polygon{Points: pts}
}

// PathOutline returns the area swept by a polyline of the given width as a
// set of counter-clockwise polygons: one rectangle per segment plus an
// octagonal cap at every vertex. The pieces overlap at the joints; nonzero
// winding fills render them as one region.
func PathOutline(line Polyline, width int64) []Polygon {
	if width <= 0 || len(line.Points) == 0 {
		return nil
	}
	half := float64(width) / 2
	var out []Polygon
	for i := 0; i+1 < len(line.Points); i++ {
		a, b := line.Points[i].Float(), line.Points[i+1].Float()
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		out = append(out, Polygon{Points: []Point2D{
			FPoint2D{X: a.X - nx, Y: a.Y - ny}.Round(),
			FPoint2D{X: b.X - nx, Y: b.Y - ny}.Round(),
			FPoint2D{X: b.X + nx, Y: b.Y + ny}.Round(),
			FPoint2D{X: a.X + nx, Y: a.Y + ny}.Round(),
		}})
	}
	for _, p := range line.Points {
		out = append(out, CircleOutline(p, int64(math.Round(half)), 8))
	}
	return out
}

// ConvexHull returns the convex hull of pts in counter-clockwise order using
// the monotone chain algorithm. Collinear boundary points are dropped.
func ConvexHull(pts []Point2D) Polygon {
	if len(pts) < 3 {
		return NewPolygon(pts...)
	}
	sorted := append([]Point2D(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	hull := make([]Point2D, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && orientation(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && orientation(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return Polygon{Points: hull[:len(hull)-1]}
}
