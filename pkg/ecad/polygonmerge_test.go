package ecad

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Draaaaaaven/ecad/pkg/geom"
)

func geometries(v *LayoutView) []*Geometry2D {
	var out []*Geometry2D
	for _, p := range v.primitives.items {
		if g, ok := p.(*Geometry2D); ok {
			out = append(out, g)
		}
	}
	return out
}

func onLayer(v *LayoutView, layer LayerID) []geom.Box2D {
	var out []geom.Box2D
	for _, g := range geometries(v) {
		if g.layer == layer {
			out = append(out, g.shape.BBox())
		}
	}
	return out
}

func box(x0, y0, x1, y1 int64) geom.Box2D {
	return geom.NewBox(geom.Pt(x0, y0), geom.Pt(x1, y1))
}

func TestMergeLayerPolygons(t *testing.T) {
	v := NewLayoutView("v", nil)
	conducting(t, v, "M1")
	if _, err := v.AppendLayer(NewStackupLayer("D1", DielectricLayer)); err != nil {
		t.Fatal(err)
	}
	a := mustNet(t, v, "a").ID()
	b := mustNet(t, v, "b").ID()
	mustGeom(t, v, 0, a, rect(0, 0, 10, 10))
	mustGeom(t, v, 0, a, rect(5, 0, 20, 10))
	mustGeom(t, v, 0, b, rect(15, 0, 30, 10))
	mustGeom(t, v, 1, NoNet, rect(0, 0, 10, 10))
	mustGeom(t, v, 1, NoNet, rect(0, 10, 10, 20))
	text, err := v.CreateText(0, geom.Identity(), "label")
	if err != nil {
		t.Fatal(err)
	}

	if err := v.MergeLayerPolygons(DefaultLayoutPolygonMergeSettings()); err != nil {
		t.Fatal(err)
	}

	if got := v.primitives.At(0); got != Primitive(text) {
		t.Errorf("first primitive = %v, want the text", got)
	}
	want := []struct {
		layer LayerID
		net   NetID
		bbox  geom.Box2D
		area  float64
	}{
		{0, a, box(0, 0, 20, 10), 200},
		{0, b, box(15, 0, 30, 10), 150},
		{1, NoNet, box(0, 0, 10, 20), 200},
	}
	got := geometries(v)
	if len(got) != len(want) {
		t.Fatalf("geometries = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		g := got[i]
		if g.layer != w.layer || g.net != w.net {
			t.Errorf("geometry %d on layer %d net %d, want layer %d net %d", i, g.layer, g.net, w.layer, w.net)
		}
		if diff := cmp.Diff(w.bbox, g.shape.BBox()); diff != "" {
			t.Errorf("geometry %d bbox mismatch (-want +got):\n%s", i, diff)
		}
		if area := g.shape.Outline()[0].Area(); area != w.area {
			t.Errorf("geometry %d area = %v, want %v", i, area, w.area)
		}
	}
}

func TestMergeLayerPolygonsHoles(t *testing.T) {
	v := NewLayoutView("v", nil)
	conducting(t, v, "M1")
	n := mustNet(t, v, "n").ID()
	for _, r := range []Rectangle{rect(0, 0, 30, 10), rect(0, 20, 30, 30), rect(0, 0, 10, 30), rect(20, 0, 30, 30)} {
		mustGeom(t, v, 0, n, r)
	}
	if err := v.MergeLayerPolygons(DefaultLayoutPolygonMergeSettings()); err != nil {
		t.Fatal(err)
	}
	got := geometries(v)
	if len(got) != 1 {
		t.Fatalf("geometries = %d, want 1", len(got))
	}
	s, ok := got[0].shape.(PolygonWithHoles)
	if !ok {
		t.Fatalf("shape = %T, want PolygonWithHoles", got[0].shape)
	}
	if s.Shape.HoleCount() != 1 || s.Shape.Area() != 800 {
		t.Errorf("holes = %d area = %v, want 1 and 800", s.Shape.HoleCount(), s.Shape.Area())
	}
}

func TestMergeLayerPolygonsSettings(t *testing.T) {
	fixture := func(t *testing.T) (*LayoutView, *Geometry2D) {
		t.Helper()
		v := NewLayoutView("v", nil)
		for _, l := range []*StackupLayer{
			NewStackupLayer("D0", DielectricLayer),
			NewStackupLayer("M1", ConductingLayer),
			NewStackupLayer("D2", DielectricLayer),
			NewStackupLayer("M3", ConductingLayer),
			NewStackupLayer("D4", DielectricLayer),
		} {
			if _, err := v.AppendLayer(l); err != nil {
				t.Fatal(err)
			}
		}
		a := mustNet(t, v, "a").ID()
		other := mustGeom(t, v, 1, mustNet(t, v, "b").ID(), rect(100, 0, 110, 10))
		for _, l := range []LayerID{0, 1, 2, 3, 4} {
			mustGeom(t, v, l, a, rect(0, 0, 10, 10))
			mustGeom(t, v, l, a, rect(5, 0, 15, 10))
		}
		def := NewPadstackDef("via", nil)
		def.Data().SetViaParameters(rect(-5, -5, 5, 5), geom.FPoint2D{}, 0)
		if _, err := v.CreatePadstackInst("v1", def, a, 1, 3, nil, geom.Translation(50, 50)); err != nil {
			t.Fatal(err)
		}
		return v, other
	}

	tests := []struct {
		name   string
		mutate func(*LayoutPolygonMergeSettings)
		// number of geometries per layer after merging
		want       []int
		keepsOther bool
	}{
		{
			name: "defaults",
			want: []int{1, 3, 2, 2, 1},
		},
		{
			name:   "without padstacks",
			mutate: func(s *LayoutPolygonMergeSettings) { s.IncludePadstackInst = false },
			want:   []int{1, 2, 1, 1, 1},
		},
		{
			name:   "without dielectric",
			mutate: func(s *LayoutPolygonMergeSettings) { s.IncludeDielectricLayer = false },
			want:   []int{2, 3, 2, 2, 2},
		},
		{
			name:   "skip outer dielectric",
			mutate: func(s *LayoutPolygonMergeSettings) { s.SkipTopBotDielectricLayers = true },
			want:   []int{2, 3, 2, 2, 2},
		},
		{
			name:       "selected nets",
			mutate:     func(s *LayoutPolygonMergeSettings) { s.SelectNets = []string{"a"} },
			want:       []int{1, 3, 2, 2, 1},
			keepsOther: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, other := fixture(t)
			s := DefaultLayoutPolygonMergeSettings()
			if tt.mutate != nil {
				tt.mutate(&s)
			}
			if err := v.MergeLayerPolygons(s); err != nil {
				t.Fatal(err)
			}
			for l, n := range tt.want {
				if got := len(onLayer(v, LayerID(l))); got != n {
					t.Errorf("layer %d has %d geometries, want %d", l, got, n)
				}
			}
			found := false
			for _, g := range geometries(v) {
				found = found || g == other
			}
			if found != tt.keepsOther {
				t.Errorf("unselected geometry kept = %v, want %v", found, tt.keepsOther)
			}
			if v.padstackInsts.Size() != 1 {
				t.Errorf("padstack instances = %d, want 1", v.padstackInsts.Size())
			}
		})
	}
}

func TestMergeLayerPolygonsPads(t *testing.T) {
	v := NewLayoutView("v", nil)
	conducting(t, v, "TOP", "BOT")
	n := mustNet(t, v, "n").ID()
	def := NewPadstackDef("via", nil)
	def.Data().SetViaParameters(rect(-5, -5, 5, 5), geom.FPoint2D{}, 0)
	if _, err := v.CreatePadstackInst("v1", def, n, 0, 1, nil, geom.Translation(50, 50)); err != nil {
		t.Fatal(err)
	}
	mustGeom(t, v, 0, n, rect(0, 45, 50, 55))

	if err := v.MergeLayerPolygons(DefaultLayoutPolygonMergeSettings()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]geom.Box2D{box(0, 45, 55, 55)}, onLayer(v, 0)); diff != "" {
		t.Errorf("TOP mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]geom.Box2D{box(45, 45, 55, 55)}, onLayer(v, 1)); diff != "" {
		t.Errorf("BOT mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeLayerPolygonsErrors(t *testing.T) {
	var nilView *LayoutView
	if err := nilView.MergeLayerPolygons(DefaultLayoutPolygonMergeSettings()); !stderrors.Is(err, ErrNilLayoutView) {
		t.Errorf("nil view error = %v, want %v", err, ErrNilLayoutView)
	}
	if err := NewLayoutView("v", nil).MergeLayerPolygons(DefaultLayoutPolygonMergeSettings()); !stderrors.Is(err, ErrNoStackup) {
		t.Errorf("without stackup error = %v, want %v", err, ErrNoStackup)
	}
}

func TestMergeLayerPolygonsOutFile(t *testing.T) {
	v := metalFixture(t)
	s := DefaultLayoutPolygonMergeSettings()
	s.OutFile = filepath.Join(t.TempDir(), "merged.txt")
	if err := v.MergeLayerPolygons(s); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(s.OutFile)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"layer 0 M1 net a polygons 1", "layer 2 M2 net b polygons 1", "polygon 4 "} {
		if !strings.Contains(string(data), want) {
			t.Errorf("report is missing %q:\n%s", want, data)
		}
	}
}

func TestMergeLayerPolygonsInvalidatesFlattened(t *testing.T) {
	_, top, _, _ := hierarchyFixture(t)
	before, err := top.FlattenedLayoutView()
	if err != nil {
		t.Fatal(err)
	}
	if err := top.LayoutView().MergeLayerPolygons(DefaultLayoutPolygonMergeSettings()); err != nil {
		t.Fatal(err)
	}
	after, err := top.FlattenedLayoutView()
	if err != nil {
		t.Fatal(err)
	}
	if before == after {
		t.Error("FlattenedLayoutView() returned the cached view after merging")
	}
}
