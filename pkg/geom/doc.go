// Package geom provides the geometry kernel of the layout database: integer
// points, bounding boxes, polygons with holes, affine placement transforms and
// the predicates the layout algorithms build on.
//
// # Coordinates
//
// Layout geometry is stored in database units as int64 coordinates ([Point2D]).
// [CoordUnits] converts between user units (for example millimeters) and
// database units. Floating point values ([FPoint2D]) appear only where a
// placement needs sub-unit precision, such as transform offsets.
//
// # Transforms
//
// A [Transform2D] is a value type built from a scale factor, a rotation in
// radians, an optional mirror and a translation. [MakeTransform] composes the
// parts in the order mirror, rotate, scale, translate:
//
//	t := geom.MakeTransform(0.5, 0, geom.FPoint2D{X: 3, Y: 5}, geom.MirrorX)
//	m := t.Matrix() // m.A11 == -0.5, m.A13 == 3, m.A22 == 0.5, m.A23 == 5
//
// Transforms compose without accumulating matrix error: [Transform2D.Compose]
// combines the parameters directly, and the matrix is realized on demand.
//
// # Polygons
//
// [Polygon] is an ordered vertex list with an implicit closing edge and
// [PolygonWithHoles] adds inner contours. Construction never validates:
// self-intersecting or degenerate polygons are accepted, and the predicates in
// this package ([PolygonsOverlap], [Polygon.Contains]) treat polygons with
// fewer than three vertices as empty.
//
// # Concurrency
//
// All types are plain values. They are safe to share between goroutines as
// long as no goroutine mutates them.
package geom
