package ecad

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/Draaaaaaven/ecad/pkg/archive"
	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/geom"
)

// Save writes the database to path in format f. The file is replaced
// atomically.
func (d *Database) Save(path string, f archive.Format) error {
	if d == nil {
		return ErrNilDatabase
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ecad-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "save %s", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	if err := d.Encode(context.Background(), w, f); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeIO, err, "save %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "save %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "save %s", path)
	}
	return nil
}

// Load replaces the content of the database with the one stored at path in
// format f. On failure the database is left unchanged.
func (d *Database) Load(path string, f archive.Format) error {
	if d == nil {
		return ErrNilDatabase
	}
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "load %s", path)
	}
	defer file.Close()
	return d.Decode(context.Background(), bufio.NewReader(file), f)
}

// Encode writes the database to w in format f. It fails when a layout
// instantiates a cell or uses a padstack definition the database does not
// own.
func (d *Database) Encode(ctx context.Context, w io.Writer, f archive.Format) error {
	doc, err := d.Document()
	if err != nil {
		return err
	}
	return archive.Encode(ctx, w, doc, f)
}

// Decode replaces the content of the database with a document read from r.
// The database keeps its name and suuid. On failure it is left unchanged.
func (d *Database) Decode(ctx context.Context, r io.Reader, f archive.Format) error {
	doc, err := archive.Decode(ctx, r, f)
	if err != nil {
		return err
	}
	return d.Restore(doc)
}

// =============================================================================
// Document conversion
// =============================================================================

// Document converts the database into its archive form.
func (d *Database) Document() (*archive.Document, error) {
	doc := &archive.Document{
		Version: archive.Version,
		Name:    d.name,
		Units:   archive.Units{Unit: d.units.Unit, Precision: d.units.Precision},
	}
	for _, lm := range d.layerMaps.items {
		doc.LayerMaps = append(doc.LayerMaps, layerMapDoc(lm))
	}
	for _, def := range d.padstackDefs.items {
		doc.PadstackDefs = append(doc.PadstackDefs, padstackDefDoc(def))
	}
	for _, c := range d.cells.items {
		layout, err := d.layoutDoc(c.layout)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidState, err, "cell %q", c.name)
		}
		doc.Cells = append(doc.Cells, archive.Cell{Name: c.name, Type: c.typ.String(), Layout: layout})
	}
	return doc, nil
}

func (d *Database) layoutDoc(v *LayoutView) (archive.Layout, error) {
	out := archive.Layout{Name: v.name}
	if v.boundary != nil {
		out.Boundary = pointsDoc(v.boundary.Points)
	}
	for _, l := range v.layers.items {
		out.Layers = append(out.Layers, archive.Layer{
			Name:               l.name,
			Type:               l.typ.String(),
			Elevation:          l.elevation,
			Thickness:          l.thickness,
			ConductingMaterial: l.conductingMat,
			DielectricMaterial: l.dielectricMat,
		})
	}
	for _, n := range v.nets.items {
		out.Nets = append(out.Nets, archive.Net{Name: n.name})
	}
	for _, p := range v.padstackInsts.items {
		if p.def == nil || d.padstackDefs.Lookup(p.def.name) != p.def {
			return out, errors.New(errors.ErrCodeInvalidState, "padstack instance %q uses a definition outside the database", p.name)
		}
		pi := archive.PadstackInst{
			Name:      p.name,
			Def:       p.def.name,
			Net:       int(p.net),
			Top:       int(p.top),
			Bot:       int(p.bot),
			Transform: transformDoc(p.tr),
		}
		switch {
		case p.layerMap == nil:
		case d.layerMaps.Lookup(p.layerMap.name) == p.layerMap:
			pi.LayerMap = p.layerMap.name
		default:
			inline := layerMapDoc(p.layerMap)
			pi.InlineMap = &inline
		}
		out.PadstackInsts = append(out.PadstackInsts, pi)
	}
	for _, ci := range v.cellInsts.items {
		master := d.owner(ci.def)
		if master == nil {
			return out, errors.New(errors.ErrCodeInvalidState, "cell instance %q instantiates a layout outside the database", ci.name)
		}
		out.CellInsts = append(out.CellInsts, archive.CellInst{Name: ci.name, Def: master.name, Transform: transformDoc(ci.tr)})
	}
	for _, p := range v.primitives.items {
		out.Primitives = append(out.Primitives, primitiveDoc(p))
	}
	return out, nil
}

func primitiveDoc(p Primitive) archive.Primitive {
	out := archive.Primitive{Kind: p.Kind().String(), Layer: int(p.Layer()), Net: int(p.Net())}
	switch p := p.(type) {
	case *Geometry2D:
		out.Shape = shapeDoc(p.shape)
	case *Text:
		tr := transformDoc(p.tr)
		out.Text = p.text
		out.Transform = &tr
	case *Bondwire:
		start, end := pointDoc(p.start), pointDoc(p.end)
		out.Name = p.name
		out.EndLayer = int(p.endLayer)
		out.Start, out.End = &start, &end
		out.Radius = p.radius
	}
	return out
}

func shapeDoc(s Shape) *archive.Shape {
	if s == nil {
		return nil
	}
	out := &archive.Shape{Type: s.Type().String()}
	switch s := s.(type) {
	case Rectangle:
		out.Points = pointsDoc([]geom.Point2D{s.LL, s.UR})
	case Path:
		out.Points = pointsDoc(s.Points)
		out.Width = s.Width
	case Polygon:
		out.Points = pointsDoc(s.Shape.Points)
	case PolygonWithHoles:
		out.Points = pointsDoc(s.Shape.Outline.Points)
		for _, h := range s.Shape.Holes {
			out.Holes = append(out.Holes, archive.Contour{Points: pointsDoc(h.Points)})
		}
	case Circle:
		out.Points = pointsDoc([]geom.Point2D{s.Center})
		out.Radius = s.Radius
		out.Div = s.Div
	}
	return out
}

func layerMapDoc(lm *LayerMap) archive.LayerMap {
	out := archive.LayerMap{Name: lm.name}
	for _, m := range lm.Mappings() {
		out.Mappings = append(out.Mappings, archive.Mapping{From: int(m.From), To: int(m.To)})
	}
	return out
}

func padstackDefDoc(def *PadstackDef) archive.PadstackDef {
	data := def.data
	out := archive.PadstackDef{Name: def.name, Material: data.material}
	for _, p := range data.pads {
		out.Pads = append(out.Pads, archive.Pad{
			Layer:    p.Layer,
			OffsetX:  p.Offset.X,
			OffsetY:  p.Offset.Y,
			Rotation: p.Rotation,
			Shape:    shapeDoc(p.Shape),
		})
	}
	if v := data.via; v != nil {
		out.Via = &archive.Via{OffsetX: v.Offset.X, OffsetY: v.Offset.Y, Rotation: v.Rotation, Shape: shapeDoc(v.Shape)}
	}
	return out
}

func transformDoc(t geom.Transform2D) archive.Transform {
	o := t.Offset()
	return archive.Transform{Scale: t.Scale(), Rotation: t.Rotation(), Mirror: t.Mirrored(), OffsetX: o.X, OffsetY: o.Y}
}

func pointDoc(p geom.Point2D) archive.Point { return archive.Point{X: p.X, Y: p.Y} }

func pointsDoc(pts []geom.Point2D) []archive.Point {
	if len(pts) == 0 {
		return nil
	}
	out := make([]archive.Point, len(pts))
	for i, p := range pts {
		out[i] = pointDoc(p)
	}
	return out
}

// =============================================================================
// Document restore
// =============================================================================

// Restore replaces the content of the database with doc. The document is
// converted into a scratch database first, so a malformed document leaves
// the database unchanged.
func (d *Database) Restore(doc *archive.Document) error {
	if d == nil {
		return ErrNilDatabase
	}
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidFormat, "document is nil")
	}
	scratch := NewDatabase(d.name)
	if err := scratch.restore(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "restore %s", d.name)
	}

	d.units = scratch.units
	d.cells, d.layerMaps, d.padstackDefs = scratch.cells, scratch.layerMaps, scratch.padstackDefs
	for _, c := range d.cells.items {
		c.db = d
	}
	for _, lm := range d.layerMaps.items {
		lm.db = d
	}
	for _, def := range d.padstackDefs.items {
		def.db = d
	}
	changed()
	return nil
}

func (d *Database) restore(doc *archive.Document) error {
	if doc.Units.Unit > 0 && doc.Units.Precision > 0 {
		d.units = geom.NewCoordUnits(doc.Units.Unit, doc.Units.Precision)
	}
	for _, m := range doc.LayerMaps {
		lm, err := d.CreateLayerMap(m.Name)
		if err != nil {
			return err
		}
		fillLayerMap(lm, m)
	}
	for _, pd := range doc.PadstackDefs {
		def, err := d.CreatePadstackDef(pd.Name)
		if err != nil {
			return err
		}
		data, err := restorePadstackDefData(pd)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "padstack def %q", pd.Name)
		}
		def.SetData(data)
	}

	// Cells first, so instances can refer to any cell.
	cells := make([]*Cell, len(doc.Cells))
	for i, dc := range doc.Cells {
		typ, err := ParseCellType(dc.Type)
		if err != nil {
			return err
		}
		c, err := d.CreateCircuitCell(dc.Name)
		if err != nil {
			return err
		}
		c.typ = typ
		c.layout.name = dc.Layout.Name
		cells[i] = c
	}
	for i, dc := range doc.Cells {
		if err := d.restoreLayout(cells[i].layout, dc.Layout); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "cell %q", dc.Name)
		}
	}
	return nil
}

func (d *Database) restoreLayout(v *LayoutView, in archive.Layout) error {
	if len(in.Boundary) > 0 {
		b := geom.NewPolygon(pointsFromDoc(in.Boundary)...)
		v.boundary = &b
	}
	for _, l := range in.Layers {
		typ, err := ParseLayerType(l.Type)
		if err != nil {
			return err
		}
		sl := NewStackupLayer(l.Name, typ)
		sl.elevation, sl.thickness = l.Elevation, l.Thickness
		sl.conductingMat, sl.dielectricMat = l.ConductingMaterial, l.DielectricMaterial
		if _, err := v.AppendLayer(sl); err != nil {
			return err
		}
	}
	for _, n := range in.Nets {
		if _, err := v.CreateNet(n.Name); err != nil {
			return err
		}
	}
	for _, p := range in.PadstackInsts {
		def := d.padstackDefs.Lookup(p.Def)
		if def == nil {
			return errors.New(errors.ErrCodeNotFound, "padstack instance %q: unknown def %q", p.Name, p.Def)
		}
		var lm *LayerMap
		switch {
		case p.LayerMap != "":
			if lm = d.layerMaps.Lookup(p.LayerMap); lm == nil {
				return errors.New(errors.ErrCodeNotFound, "padstack instance %q: unknown layer map %q", p.Name, p.LayerMap)
			}
		case p.InlineMap != nil:
			lm = NewLayerMap(p.InlineMap.Name, d)
			fillLayerMap(lm, *p.InlineMap)
		}
		if _, err := v.CreatePadstackInst(p.Name, def, NetID(p.Net), LayerID(p.Top), LayerID(p.Bot), lm, transformFromDoc(p.Transform)); err != nil {
			return err
		}
	}
	for _, ci := range in.CellInsts {
		master := d.cells.Lookup(ci.Def)
		if master == nil {
			return errors.New(errors.ErrCodeNotFound, "cell instance %q: unknown cell %q", ci.Name, ci.Def)
		}
		if _, err := v.CreateCellInst(ci.Name, master.layout, transformFromDoc(ci.Transform)); err != nil {
			return err
		}
	}
	for _, p := range in.Primitives {
		if err := restorePrimitive(v, p); err != nil {
			return err
		}
	}
	return nil
}

func restorePrimitive(v *LayoutView, p archive.Primitive) error {
	layer, net := LayerID(p.Layer), NetID(p.Net)
	switch p.Kind {
	case KindGeometry2D.String():
		s, err := shapeFromDoc(p.Shape)
		if err != nil {
			return err
		}
		_, err = v.CreateGeometry2D(layer, net, s)
		return err
	case KindText.String():
		t := geom.Identity()
		if p.Transform != nil {
			t = transformFromDoc(*p.Transform)
		}
		txt, err := v.CreateText(layer, t, p.Text)
		if err != nil {
			return err
		}
		txt.net = net
		return nil
	case KindBondwire.String():
		if p.Start == nil || p.End == nil {
			return errors.New(errors.ErrCodeInvalidFormat, "bondwire %q has no end points", p.Name)
		}
		_, err := v.CreateBondwire(p.Name, net, layer, LayerID(p.EndLayer), pointFromDoc(*p.Start), pointFromDoc(*p.End), p.Radius)
		return err
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown primitive kind %q", p.Kind)
}

func shapeFromDoc(s *archive.Shape) (Shape, error) {
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "missing shape")
	}
	pts := pointsFromDoc(s.Points)
	switch s.Type {
	case ShapeRectangle.String():
		if len(pts) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "rectangle needs 2 points, got %d", len(pts))
		}
		return Rectangle{LL: pts[0], UR: pts[1]}, nil
	case ShapePath.String():
		return Path{Points: pts, Width: s.Width}, nil
	case ShapePolygon.String():
		return Polygon{Shape: geom.NewPolygon(pts...)}, nil
	case ShapePolygonWithHoles.String():
		pwh := geom.NewPolygonWithHoles(geom.NewPolygon(pts...))
		for _, h := range s.Holes {
			pwh.AddHole(geom.NewPolygon(pointsFromDoc(h.Points)...))
		}
		return PolygonWithHoles{Shape: pwh}, nil
	case ShapeCircle.String():
		if len(pts) != 1 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "circle needs a center, got %d points", len(pts))
		}
		return Circle{Center: pts[0], Radius: s.Radius, Div: s.Div}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown shape type %q", s.Type)
}

func restorePadstackDefData(pd archive.PadstackDef) (*PadstackDefData, error) {
	data := NewPadstackDefData()
	data.material = pd.Material
	names := make([]string, len(pd.Pads))
	for i, p := range pd.Pads {
		names[i] = p.Layer
	}
	data.SetLayers(names)
	for i, p := range pd.Pads {
		if p.Shape == nil {
			data.pads[i].Offset = geom.FPoint2D{X: p.OffsetX, Y: p.OffsetY}
			data.pads[i].Rotation = p.Rotation
			continue
		}
		s, err := shapeFromDoc(p.Shape)
		if err != nil {
			return nil, err
		}
		_ = data.SetPadParameters(i, s, geom.FPoint2D{X: p.OffsetX, Y: p.OffsetY}, p.Rotation)
	}
	if pd.Via != nil && pd.Via.Shape != nil {
		s, err := shapeFromDoc(pd.Via.Shape)
		if err != nil {
			return nil, err
		}
		data.SetViaParameters(s, geom.FPoint2D{X: pd.Via.OffsetX, Y: pd.Via.OffsetY}, pd.Via.Rotation)
	}
	return data, nil
}

func fillLayerMap(lm *LayerMap, m archive.LayerMap) {
	for _, e := range m.Mappings {
		lm.SetMapping(LayerID(e.From), LayerID(e.To))
	}
}

func transformFromDoc(t archive.Transform) geom.Transform2D {
	mirror := geom.MirrorNo
	if t.Mirror {
		mirror = geom.MirrorX
	}
	return geom.MakeTransform(t.Scale, t.Rotation, geom.FPoint2D{X: t.OffsetX, Y: t.OffsetY}, mirror)
}

func pointFromDoc(p archive.Point) geom.Point2D { return geom.Point2D{X: p.X, Y: p.Y} }

func pointsFromDoc(pts []archive.Point) []geom.Point2D {
	out := make([]geom.Point2D, len(pts))
	for i, p := range pts {
		out[i] = pointFromDoc(p)
	}
	return out
}
