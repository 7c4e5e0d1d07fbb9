package ecad

import (
	stderrors "errors"
	"slices"
	"testing"

	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/geom"
)

func rect(x0, y0, x1, y1 int64) Rectangle {
	return NewRectangle(geom.Pt(x0, y0), geom.Pt(x1, y1))
}

func conducting(t *testing.T, v *LayoutView, names ...string) []LayerID {
	t.Helper()
	layers := make([]*StackupLayer, len(names))
	for i, n := range names {
		layers[i] = NewStackupLayer(n, ConductingLayer)
	}
	ids, err := v.AppendLayers(layers)
	if err != nil {
		t.Fatalf("AppendLayers(%v) error = %v", names, err)
	}
	return ids
}

func mustNet(t *testing.T, v *LayoutView, name string) *Net {
	t.Helper()
	n, err := v.CreateNet(name)
	if err != nil {
		t.Fatalf("CreateNet(%q) error = %v", name, err)
	}
	return n
}

func mustGeom(t *testing.T, v *LayoutView, layer LayerID, net NetID, s Shape) *Geometry2D {
	t.Helper()
	g, err := v.CreateGeometry2D(layer, net, s)
	if err != nil {
		t.Fatalf("CreateGeometry2D error = %v", err)
	}
	return g
}

func TestAppendLayers(t *testing.T) {
	v := NewLayoutView("top", nil)
	id, err := v.AppendLayer(NewStackupLayer("TOP", ConductingLayer))
	if err != nil || id != 0 {
		t.Fatalf("AppendLayer = %v, %v, want 0, nil", id, err)
	}
	ids, err := v.AppendLayers([]*StackupLayer{
		NewStackupLayer("MID", ConductingLayer),
		NewStackupLayer("BOT", ConductingLayer),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ids, []LayerID{1, 2}) {
		t.Errorf("AppendLayers ids = %v, want [1 2]", ids)
	}

	_, err = v.AppendLayers([]*StackupLayer{
		NewStackupLayer("X", ConductingLayer),
		NewStackupLayer("TOP", ConductingLayer),
	})
	if !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("AppendLayers with taken name error = %v, want %s", err, errors.ErrCodeDuplicateName)
	}
	if v.LayerCollection().Size() != 3 {
		t.Errorf("failed AppendLayers changed the stackup: size %d", v.LayerCollection().Size())
	}
	if got := v.LayerIDByName("BOT"); got != 2 {
		t.Errorf("LayerIDByName(BOT) = %v, want 2", got)
	}
	if got := v.LayerIDByName("nope"); got != NoLayer {
		t.Errorf("LayerIDByName(nope) = %v, want NoLayer", got)
	}
}

func TestAddDefaultDielectricLayers(t *testing.T) {
	v := NewLayoutView("top", nil)
	conducting(t, v, "TOP", "MID", "BOT")
	for i, l := range v.StackupLayers() {
		l.SetElevation(float64(-i) * 0.1)
		l.SetThickness(0.02)
	}

	lm := v.AddDefaultDielectricLayers()
	if got := v.LayerCollection().Size(); got != 5 {
		t.Fatalf("stackup size = %d, want 5", got)
	}
	if got := lm.MappingForward(1); got != 2 {
		t.Errorf("MappingForward(1) = %v, want 2", got)
	}
	if got := lm.MappingBackward(4); got != 2 {
		t.Errorf("MappingBackward(4) = %v, want 2", got)
	}
	if got := lm.MappingBackward(1); got != NoLayer {
		t.Errorf("MappingBackward(1) = %v, want NoLayer", got)
	}
	if got := lm.MappingForward(7); got != NoLayer {
		t.Errorf("MappingForward(7) = %v, want NoLayer", got)
	}
	for i := range 3 {
		back := lm.MappingBackward(lm.MappingForward(LayerID(i)))
		if back != LayerID(i) {
			t.Errorf("backward(forward(%d)) = %v", i, back)
		}
	}

	d := v.Layer(1)
	if d.Type() != DielectricLayer || d.Name() != "Dielectric" {
		t.Errorf("layer 1 = %s %v, want Dielectric dielectric", d.Name(), d.Type())
	}
	if got, want := d.Elevation(), -0.02; !near(got, want) {
		t.Errorf("dielectric elevation = %v, want %v", got, want)
	}
	if got, want := d.Thickness(), 0.08; !near(got, want) {
		t.Errorf("dielectric thickness = %v, want %v", got, want)
	}
	if v.Layer(3).Name() != "Dielectric_1" {
		t.Errorf("layer 3 name = %q, want Dielectric_1", v.Layer(3).Name())
	}
	if v.Layer(4).Name() != "BOT" {
		t.Errorf("layer 4 name = %q, want BOT", v.Layer(4).Name())
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-12 && d > -1e-12
}

func TestCreateOperations(t *testing.T) {
	db := NewDatabase("db")
	cell, _ := db.CreateCircuitCell("top")
	child, _ := db.CreateCircuitCell("child")
	v := cell.LayoutView()
	ids := conducting(t, v, "M1", "M2")

	gnd := mustNet(t, v, "gnd")
	if _, err := v.CreateNet("gnd"); !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("CreateNet(gnd) twice error = %v", err)
	}
	if got := v.FindNetByName("gnd"); got == nil || got.Suuid() != gnd.Suuid() {
		t.Errorf("FindNetByName(gnd) = %v, want %v", got, gnd)
	}
	if v.FindNetByName("vdd") != nil {
		t.Error("FindNetByName(vdd) is not nil")
	}

	def, _ := db.CreatePadstackDef("via")
	if _, err := v.CreatePadstackInst("p1", def, gnd.ID(), ids[0], ids[1], nil, geom.Identity()); err != nil {
		t.Fatal(err)
	}
	if _, err := v.CreatePadstackInst("p1", def, gnd.ID(), ids[0], ids[1], nil, geom.Identity()); !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("CreatePadstackInst(p1) twice error = %v", err)
	}
	if _, err := v.CreateCellInst("u1", child.LayoutView(), geom.Translation(10, 0)); err != nil {
		t.Fatal(err)
	}
	g := mustGeom(t, v, ids[0], gnd.ID(), rect(0, 0, 10, 10))
	txt, err := v.CreateText(ids[1], geom.Translation(5, 5), "label")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"conn objs", v.ConnObjCollection().Size(), 3},
		{"primitives", v.PrimitiveCollection().Size(), 2},
		{"cell insts", v.CellInstCollection().Size(), 1},
		{"hierarchy objs", v.HierarchyObjCollection().Size(), 1},
		{"padstack insts", v.PadstackInstCollection().Size(), 1},
		{"nets", v.NetCollection().Size(), 1},
		{"layers", v.LayerCollection().Size(), 2},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s size = %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	it := v.PrimitiveIter()
	if p := it.Next(); AsGeometry2D(p) != g {
		t.Errorf("first primitive = %v, want geometry", p)
	}
	if p := it.Next(); AsText(p) != txt {
		t.Errorf("second primitive = %v, want text", p)
	}
	if p := it.Next(); p != nil {
		t.Errorf("third primitive = %v, want nil", p)
	}
	if txt.Position() != geom.Pt(5, 5) {
		t.Errorf("text position = %v, want (5, 5)", txt.Position())
	}
}

func TestCreateOnNilView(t *testing.T) {
	var v *LayoutView
	if _, err := v.CreateNet("n"); !stderrors.Is(err, ErrNilLayoutView) {
		t.Errorf("CreateNet on nil view error = %v, want %v", err, ErrNilLayoutView)
	}
	if _, err := v.CreateGeometry2D(0, NoNet, rect(0, 0, 1, 1)); !stderrors.Is(err, ErrNilLayoutView) {
		t.Errorf("CreateGeometry2D on nil view error = %v", err)
	}
	if _, err := v.CreateText(0, geom.Identity(), "x"); !stderrors.Is(err, ErrNilLayoutView) {
		t.Errorf("CreateText on nil view error = %v", err)
	}
	other := NewLayoutView("x", nil)
	if _, err := other.CreateCellInst("u", nil, geom.Identity()); !stderrors.Is(err, ErrNilLayoutView) {
		t.Errorf("CreateCellInst(nil master) error = %v", err)
	}
}

func TestCreateCellInstCycle(t *testing.T) {
	a := NewLayoutView("a", nil)
	b := NewLayoutView("b", nil)
	c := NewLayoutView("c", nil)
	if _, err := a.CreateCellInst("b1", b, geom.Identity()); err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreateCellInst("c1", c, geom.Identity()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		parent *LayoutView
		master *LayoutView
	}{
		{"self", a, a},
		{"direct", b, a},
		{"indirect", c, a},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parent.CreateCellInst("x", tt.master, geom.Identity())
			if !stderrors.Is(err, ErrCyclicHierarchy) {
				t.Errorf("CreateCellInst error = %v, want %v", err, ErrCyclicHierarchy)
			}
		})
	}
	if _, err := a.CreateCellInst("c2", c, geom.Identity()); err != nil {
		t.Errorf("diamond instance error = %v", err)
	}
}

func TestPadstackLayerShapes(t *testing.T) {
	def := NewPadstackDef("via", nil)
	data := def.Data()
	data.SetLayers([]string{"TOP", "BOT"})
	if err := data.SetPadParameters(0, Circle{Radius: 10}, geom.FPoint2D{}, 0); err != nil {
		t.Fatal(err)
	}
	if err := data.SetPadParameters(1, rect(-20, -20, 20, 20), geom.FPoint2D{X: 5}, 0); err != nil {
		t.Fatal(err)
	}
	if err := data.SetPadParameters(2, rect(0, 0, 1, 1), geom.FPoint2D{}, 0); err == nil {
		t.Error("SetPadParameters(2) succeeded on a two-layer def")
	}
	data.SetViaParameters(Circle{Radius: 3}, geom.FPoint2D{}, 0)

	v := NewLayoutView("top", nil)
	conducting(t, v, "L0", "L1", "L2")
	p, err := v.CreatePadstackInst("p", def, NoNet, 1, 2, nil, geom.Translation(100, 0))
	if err != nil {
		t.Fatal(err)
	}

	if got := p.LayerShapes(0); got != nil {
		t.Errorf("LayerShapes(0) = %v, want nil", got)
	}
	top := p.LayerShapes(1)
	if len(top) != 2 || top[0].Type() != ShapeCircle || top[1].Type() != ShapeCircle {
		t.Fatalf("LayerShapes(1) = %v, want pad and via circles", top)
	}
	if c := top[0].(Circle); c.Center != geom.Pt(100, 0) || c.Radius != 10 {
		t.Errorf("top pad = %+v, want center (100, 0) radius 10", c)
	}
	bot := p.LayerShapes(2)
	if len(bot) != 2 {
		t.Fatalf("LayerShapes(2) = %v", bot)
	}
	if got, want := bot[0].BBox(), geom.NewBox(geom.Pt(85, -20), geom.Pt(125, 20)); got != want {
		t.Errorf("bottom pad bbox = %v, want %v", got, want)
	}

	// explicit map: layout layer 2 uses def layer 0
	lm := NewLayerMap("flip", nil)
	lm.SetMapping(0, 2)
	lm.SetMapping(1, 1)
	q, _ := v.CreatePadstackInst("q", def, NoNet, 1, 2, lm, geom.Identity())
	if s := q.LayerShapes(2); len(s) == 0 || s[0].Type() != ShapeCircle {
		t.Errorf("mapped LayerShapes(2) = %v, want the circular top pad", s)
	}
}

func TestTransformView(t *testing.T) {
	v := NewLayoutView("v", nil)
	conducting(t, v, "M1")
	g := mustGeom(t, v, 0, NoNet, rect(0, 0, 10, 20))
	b := rect(0, 0, 100, 100).BBox().Polygon()
	v.SetBoundary(&b)

	v.Transform(geom.Translation(5, -5))
	if got, want := g.Shape().BBox(), geom.NewBox(geom.Pt(5, -5), geom.Pt(15, 15)); got != want {
		t.Errorf("geometry bbox = %v, want %v", got, want)
	}
	if got, want := v.Boundary().BBox(), geom.NewBox(geom.Pt(5, -5), geom.Pt(105, 95)); got != want {
		t.Errorf("boundary bbox = %v, want %v", got, want)
	}
}

func TestCloneIsDeep(t *testing.T) {
	v := NewLayoutView("v", nil)
	conducting(t, v, "M1")
	n := mustNet(t, v, "a")
	g := mustGeom(t, v, 0, n.ID(), rect(0, 0, 1, 1))

	c := v.Clone()
	cg := AsGeometry2D(c.PrimitiveCollection().At(0))
	if cg == nil || cg == g || cg.Suuid() == g.Suuid() {
		t.Fatalf("cloned primitive = %v, want a distinct copy", cg)
	}
	cg.SetShape(rect(5, 5, 6, 6))
	if g.Shape().BBox() != rect(0, 0, 1, 1).BBox() {
		t.Error("changing the clone changed the source")
	}
	if c.FindNetByName("a").Suuid() == n.Suuid() {
		t.Error("cloned net shares the source suuid")
	}
}
