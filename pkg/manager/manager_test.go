package manager

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/Draaaaaaven/ecad/pkg/archive"
	"github.com/Draaaaaaven/ecad/pkg/config"
	"github.com/Draaaaaaven/ecad/pkg/ecad"
	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/geom"
	"github.com/Draaaaaaven/ecad/pkg/store"
)

func newManager(t *testing.T, cfg config.Config) (*Manager, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return New(cfg, st, log.New(io.Discard)), st
}

// buildDesign creates a two-cell design through the convenience API.
func buildDesign(t *testing.T, m *Manager, db *ecad.Database) {
	t.Helper()
	leaf, err := m.CreateCircuitCell(db, "leaf")
	if err != nil {
		t.Fatal(err)
	}
	top, err := m.CreateCircuitCell(db, "top")
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []*ecad.Cell{leaf, top} {
		lv := c.LayoutView()
		if _, err := lv.AppendLayer(m.CreateStackupLayer("M1", ecad.ConductingLayer, 0, 0.035, "copper", "")); err != nil {
			t.Fatal(err)
		}
	}
	net, _ := m.CreateNet(leaf.LayoutView(), "vdd")
	if _, err := m.CreateGeometry2D(leaf.LayoutView(), 0, net.ID(), m.CreateShapeCircle(geom.Pt(0, 0), 5)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CreateCellInst(top.LayoutView(), "u1", leaf.LayoutView(), m.CreateTransform2D(1, 0, geom.FPoint2D{X: 10}, geom.MirrorNo)); err != nil {
		t.Fatal(err)
	}
}

func TestRegistry(t *testing.T) {
	m, _ := newManager(t, config.Default())

	a, err := m.CreateDatabase("a")
	if err != nil {
		t.Fatal(err)
	}
	if a.Threads() != config.Default().Threads {
		t.Errorf("Threads() = %d, want %d", a.Threads(), config.Default().Threads)
	}
	if _, err := m.CreateDatabase("a"); !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("CreateDatabase(dup) error = %v, want %s", err, errors.ErrCodeDuplicateName)
	}
	if _, err := m.CreateDatabase(""); err == nil {
		t.Error("CreateDatabase(\"\") succeeded")
	}
	_, _ = m.CreateDatabase("b")

	if got := m.OpenDatabase("a"); got != a {
		t.Errorf("OpenDatabase(a) = %p, want %p", got, a)
	}
	if got := m.OpenDatabase("missing"); got != nil {
		t.Errorf("OpenDatabase(missing) = %v, want nil", got)
	}
	if diff := cmp.Diff([]string{"a", "b"}, m.Databases()); diff != "" {
		t.Errorf("Databases() mismatch (-want +got):\n%s", diff)
	}
	if !m.RemoveDatabase("a") || m.RemoveDatabase("a") {
		t.Error("RemoveDatabase should succeed once")
	}
	if diff := cmp.Diff([]string{"b"}, m.Databases()); diff != "" {
		t.Errorf("Databases() after remove mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadThroughStore(t *testing.T) {
	ctx := context.Background()
	m, st := newManager(t, config.Default())
	src, _ := m.CreateDatabase("src")
	buildDesign(t, m, src)

	for _, f := range archive.Formats() {
		key := "designs/src" + f.Ext()
		if err := m.SaveDatabase(ctx, src, key, f); err != nil {
			t.Fatalf("SaveDatabase(%s) error = %v", f, err)
		}
		if _, ok, _ := st.Get(ctx, key); !ok {
			t.Fatalf("store has no %s", key)
		}

		dst := ecad.NewDatabase("dst")
		if err := m.LoadDatabase(ctx, dst, key, f); err != nil {
			t.Fatalf("LoadDatabase(%s) error = %v", f, err)
		}
		top := m.FindCellByName(dst, "top")
		if top == nil || top.LayoutView().FindCellInstByName("u1") == nil {
			t.Errorf("%s: loaded design lost top/u1", f)
		}
		g := ecad.AsGeometry2D(m.FindCellByName(dst, "leaf").LayoutView().PrimitiveCollection().At(0))
		if c, ok := g.Shape().(ecad.Circle); !ok || c.Div != config.Default().CircleDiv {
			t.Errorf("%s: circle = %#v, want Div %d", f, g.Shape(), config.Default().CircleDiv)
		}
	}

	if err := m.LoadDatabase(ctx, src, "nope", archive.FormatBIN); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("LoadDatabase(missing) error = %v, want %s", err, errors.ErrCodeNotFound)
	}
	if m.FindCellByName(src, "top") == nil {
		t.Error("failed load changed the database")
	}
}

func TestShutdownAutosave(t *testing.T) {
	cfg := config.Default()
	cfg.AutosaveDir = filepath.Join(t.TempDir(), "autosave")
	cfg.DefaultFormat = "xml"
	m, _ := newManager(t, cfg)
	db, _ := m.CreateDatabase("board")
	buildDesign(t, m, db)

	if err := m.Shutdown(context.Background(), true); err != nil {
		t.Fatalf("Shutdown error = %v", err)
	}
	path := filepath.Join(cfg.AutosaveDir, "board.xml")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("autosave file missing: %v", err)
	}
	if len(m.Databases()) != 0 {
		t.Errorf("Databases() after Shutdown = %v, want none", m.Databases())
	}

	if err := m.Shutdown(context.Background(), true); err != nil {
		t.Errorf("second Shutdown error = %v, want nil", err)
	}
	if _, err := m.CreateDatabase("late"); err != ErrShutdown {
		t.Errorf("CreateDatabase after Shutdown error = %v, want ErrShutdown", err)
	}
	if err := m.SaveDatabase(context.Background(), db, "k", archive.FormatBIN); err != ErrShutdown {
		t.Errorf("SaveDatabase after Shutdown error = %v, want ErrShutdown", err)
	}
}

func TestDoSerializesAccess(t *testing.T) {
	m, _ := newManager(t, config.Default())
	_, _ = m.CreateDatabase("db")

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Do("db", func(db *ecad.Database) error {
				_, err := db.CreateCircuitCell(db.NextDefName("cell", ecad.DefinitionCell))
				return err
			})
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
			}
		}()
	}
	wg.Wait()

	if n := m.OpenDatabase("db").CellCollection().Size(); n != 8 {
		t.Errorf("cells = %d, want 8", n)
	}
	if err := m.Do("missing", func(*ecad.Database) error { return nil }); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Do(missing) error = %v, want %s", err, errors.ErrCodeNotFound)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	m, _ := newManager(t, config.Default())
	db, _ := m.CreateDatabase("db")

	lm, err := m.CreateLayerMap(db, "lm")
	if err != nil || m.FindLayerMapByName(db, "lm") != lm {
		t.Errorf("CreateLayerMap/FindLayerMapByName = %v, %v", lm, err)
	}
	def, err := m.CreatePadstackDef(db, "via")
	if err != nil || m.FindPadstackDefByName(db, "via") != def {
		t.Errorf("CreatePadstackDef/FindPadstackDefByName = %v, %v", def, err)
	}
	data := m.CreatePadstackDefData()
	data.SetLayers([]string{"M1"})
	def.SetData(data)

	cell, _ := m.CreateCircuitCell(db, "c")
	lv := cell.LayoutView()
	_, _ = lv.AppendLayer(m.CreateStackupLayer("M1", ecad.ConductingLayer, 0, 0.01, "copper", "fr4"))
	if _, err := m.CreatePadstackInst(lv, "p", def, ecad.NoNet, 0, 0, nil, geom.Identity()); err != nil {
		t.Errorf("CreatePadstackInst error = %v", err)
	}
	if _, err := m.CreateText(lv, 0, geom.Identity(), "hi"); err != nil {
		t.Errorf("CreateText error = %v", err)
	}
	if _, err := m.CreateBondwire(lv, "bw", ecad.NoNet, 0, 0, geom.Pt(0, 0), geom.Pt(1, 1), 1); err != nil {
		t.Errorf("CreateBondwire error = %v", err)
	}
	shapes := []ecad.Shape{
		m.CreateShapeRectangle(geom.Pt(0, 0), geom.Pt(1, 1)),
		m.CreateShapePath([]geom.Point2D{geom.Pt(0, 0), geom.Pt(5, 0)}, 2),
		m.CreateShapePolygon([]geom.Point2D{geom.Pt(0, 0), geom.Pt(5, 0), geom.Pt(0, 5)}),
		m.CreateShapePolygonWithHoles(geom.NewPolygon(geom.Pt(0, 0), geom.Pt(9, 0), geom.Pt(9, 9), geom.Pt(0, 9))),
	}
	for _, s := range shapes {
		if _, err := m.CreateGeometry2D(lv, 0, ecad.NoNet, s); err != nil {
			t.Errorf("CreateGeometry2D(%v) error = %v", s.Type(), err)
		}
	}
	if n := lv.PrimitiveCollection().Size(); n != 6 {
		t.Errorf("primitives = %d, want 6", n)
	}
	if m.FindNetByName(lv, "none") != nil || m.FindCellByName(nil, "c") != nil {
		t.Error("lookups on missing names should return nil")
	}
}
