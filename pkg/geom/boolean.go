package geom

import (
	"math"
	"sort"

	polyclip "github.com/ctessum/polyclip-go"
)

// Union returns the union of polys as disjoint polygons with holes. Outlines
// come back counter-clockwise and holes clockwise, sorted by the lower left
// corner of their bounding box. Empty input polygons are ignored.
func Union(polys ...PolygonWithHoles) []PolygonWithHoles {
	var acc polyclip.Polygon
	for _, p := range polys {
		if p.Outline.Empty() {
			continue
		}
		next := toClip(p)
		if acc == nil {
			acc = next
			continue
		}
		acc = acc.Construct(polyclip.UNION, next)
	}
	return fromClip(acc)
}

func toClip(p PolygonWithHoles) polyclip.Polygon {
	out := polyclip.Polygon{toContour(p.Outline)}
	for _, h := range p.Holes {
		if !h.Empty() {
			out = append(out, toContour(h))
		}
	}
	return out
}

func toContour(p Polygon) polyclip.Contour {
	c := make(polyclip.Contour, len(p.Points))
	for i, pt := range p.Points {
		c[i] = polyclip.Point{X: float64(pt.X), Y: float64(pt.Y)}
	}
	return c
}

// fromClip rounds the contours back to database units and sorts them into
// outlines and holes by nesting depth.
func fromClip(pg polyclip.Polygon) []PolygonWithHoles {
	var contours []Polygon
	for _, c := range pg {
		var pts []Point2D
		for _, p := range c {
			pt := Pt(int64(math.Round(p.X)), int64(math.Round(p.Y)))
			if n := len(pts); n > 0 && pts[n-1] == pt {
				continue
			}
			pts = append(pts, pt)
		}
		for len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		if p := (Polygon{Points: pts}); !p.Empty() && p.Area2() != 0 {
			contours = append(contours, p)
		}
	}

	depth := make([]int, len(contours))
	parent := make([]int, len(contours))
	for i, a := range contours {
		parent[i] = -1
		for j, b := range contours {
			if i != j && inside(a, b) {
				depth[i]++
			}
		}
	}
	// a hole belongs to the enclosing contour exactly one level up
	for i, a := range contours {
		if depth[i]%2 == 0 {
			continue
		}
		for j, b := range contours {
			if depth[j] == depth[i]-1 && inside(a, b) {
				parent[i] = j
				break
			}
		}
	}

	index := make(map[int]int)
	var out []PolygonWithHoles
	for i, c := range contours {
		if depth[i]%2 == 0 {
			index[i] = len(out)
			out = append(out, PolygonWithHoles{Outline: c.Oriented(true)})
		}
	}
	for i, c := range contours {
		if depth[i]%2 == 1 && parent[i] >= 0 {
			k := index[parent[i]]
			out[k].Holes = append(out[k].Holes, c.Oriented(false))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Outline.BBox(), out[j].Outline.BBox()
		if a.Min.X != b.Min.X {
			return a.Min.X < b.Min.X
		}
		return a.Min.Y < b.Min.Y
	})
	return out
}

// inside reports whether contour a lies within b. Union contours never
// cross, so one vertex of a off the border of b decides.
func inside(a, b Polygon) bool {
	for _, pt := range a.Points {
		if !b.onBorder(pt) {
			return b.Contains(pt)
		}
	}
	return false
}
