package manager

import (
	"github.com/Draaaaaaven/ecad/pkg/ecad"
	"github.com/Draaaaaaven/ecad/pkg/geom"
)

// The constructors below forward to the data model so callers holding only a
// Manager can build a design. They add no behavior beyond configured
// defaults.

// CreateCircuitCell creates a circuit cell in db.
func (m *Manager) CreateCircuitCell(db *ecad.Database, name string) (*ecad.Cell, error) {
	return db.CreateCircuitCell(name)
}

// FindCellByName returns the named cell of db, or nil.
func (m *Manager) FindCellByName(db *ecad.Database, name string) *ecad.Cell {
	if db == nil {
		return nil
	}
	return db.FindCellByName(name)
}

// CreateNet creates a net in layout.
func (m *Manager) CreateNet(layout *ecad.LayoutView, name string) (*ecad.Net, error) {
	return layout.CreateNet(name)
}

// FindNetByName returns the named net of layout, or nil.
func (m *Manager) FindNetByName(layout *ecad.LayoutView, name string) *ecad.Net {
	if layout == nil {
		return nil
	}
	return layout.FindNetByName(name)
}

// CreateStackupLayer creates a detached stackup layer with its physical
// parameters set.
func (m *Manager) CreateStackupLayer(name string, typ ecad.LayerType, elevation, thickness float64, conductingMat, dielectricMat string) *ecad.StackupLayer {
	l := ecad.NewStackupLayer(name, typ)
	l.SetElevation(elevation)
	l.SetThickness(thickness)
	l.SetConductingMaterial(conductingMat)
	l.SetDielectricMaterial(dielectricMat)
	return l
}

// CreateLayerMap creates a layer map in db.
func (m *Manager) CreateLayerMap(db *ecad.Database, name string) (*ecad.LayerMap, error) {
	return db.CreateLayerMap(name)
}

// FindLayerMapByName returns the named layer map of db, or nil.
func (m *Manager) FindLayerMapByName(db *ecad.Database, name string) *ecad.LayerMap {
	if db == nil {
		return nil
	}
	return db.FindLayerMapByName(name)
}

// CreatePadstackDef creates a padstack definition in db.
func (m *Manager) CreatePadstackDef(db *ecad.Database, name string) (*ecad.PadstackDef, error) {
	return db.CreatePadstackDef(name)
}

// FindPadstackDefByName returns the named padstack definition of db, or nil.
func (m *Manager) FindPadstackDefByName(db *ecad.Database, name string) *ecad.PadstackDef {
	if db == nil {
		return nil
	}
	return db.FindPadstackDefByName(name)
}

// CreatePadstackDefData returns empty padstack data.
func (m *Manager) CreatePadstackDefData() *ecad.PadstackDefData { return ecad.NewPadstackDefData() }

// CreatePadstackInst places def in layout.
func (m *Manager) CreatePadstackInst(layout *ecad.LayoutView, name string, def *ecad.PadstackDef, net ecad.NetID, top, bot ecad.LayerID, lm *ecad.LayerMap, t geom.Transform2D) (*ecad.PadstackInst, error) {
	return layout.CreatePadstackInst(name, def, net, top, bot, lm, t)
}

// CreateCellInst instantiates def in layout.
func (m *Manager) CreateCellInst(layout *ecad.LayoutView, name string, def *ecad.LayoutView, t geom.Transform2D) (*ecad.CellInst, error) {
	return layout.CreateCellInst(name, def, t)
}

// CreateGeometry2D adds a shape to layout.
func (m *Manager) CreateGeometry2D(layout *ecad.LayoutView, layer ecad.LayerID, net ecad.NetID, shape ecad.Shape) (*ecad.Geometry2D, error) {
	return layout.CreateGeometry2D(layer, net, shape)
}

// CreateText adds a text label to layout.
func (m *Manager) CreateText(layout *ecad.LayoutView, layer ecad.LayerID, t geom.Transform2D, text string) (*ecad.Text, error) {
	return layout.CreateText(layer, t, text)
}

// CreateBondwire adds a bondwire to layout.
func (m *Manager) CreateBondwire(layout *ecad.LayoutView, name string, net ecad.NetID, startLayer, endLayer ecad.LayerID, start, end geom.Point2D, radius int64) (*ecad.Bondwire, error) {
	return layout.CreateBondwire(name, net, startLayer, endLayer, start, end, radius)
}

// CreateShapeRectangle returns the rectangle spanned by two corners.
func (m *Manager) CreateShapeRectangle(ll, ur geom.Point2D) ecad.Rectangle {
	return ecad.NewRectangle(ll, ur)
}

// CreateShapeCircle returns a circle approximated with the configured
// circle_div segments.
func (m *Manager) CreateShapeCircle(center geom.Point2D, radius int64) ecad.Circle {
	return ecad.Circle{Center: center, Radius: radius, Div: m.cfg.CircleDiv}
}

// CreateShapePath returns a path of the given width.
func (m *Manager) CreateShapePath(points []geom.Point2D, width int64) ecad.Path {
	return ecad.Path{Points: points, Width: width}
}

// CreateShapePolygon returns a simple polygon.
func (m *Manager) CreateShapePolygon(points []geom.Point2D) ecad.Polygon {
	return ecad.NewPolygonShape(points...)
}

// CreateShapePolygonWithHoles returns a polygon with holes.
func (m *Manager) CreateShapePolygonWithHoles(outline geom.Polygon, holes ...geom.Polygon) ecad.PolygonWithHoles {
	return ecad.PolygonWithHoles{Shape: geom.NewPolygonWithHoles(outline, holes...)}
}

// CreateTransform2D composes a placement transform.
func (m *Manager) CreateTransform2D(scale, rotation float64, offset geom.FPoint2D, mirror geom.Mirror2D) geom.Transform2D {
	return geom.MakeTransform(scale, rotation, offset, mirror)
}
