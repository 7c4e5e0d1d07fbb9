package ecad

import (
	stderrors "errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Draaaaaaven/ecad/pkg/errors"
)

func metalFixture(t *testing.T) *LayoutView {
	t.Helper()
	v := NewLayoutView("v", nil)
	conducting(t, v, "M1")
	if _, err := v.AppendLayer(NewStackupLayer("D1", DielectricLayer)); err != nil {
		t.Fatal(err)
	}
	conducting(t, v, "M2")
	mustGeom(t, v, 0, mustNet(t, v, "a").ID(), rect(0, 0, 50, 100))
	mustGeom(t, v, 2, mustNet(t, v, "b").ID(), rect(0, 0, 100, 100))
	b := rect(0, 0, 100, 100).BBox().Polygon()
	v.SetBoundary(&b)
	return v
}

func approx(a, b float64) bool { return math.Abs(a-b) < 0.01 }

func TestMetalFraction(t *testing.T) {
	v := metalFixture(t)

	mf, err := v.GenerateMetalFractionMapping(DefaultMetalFractionMappingSettings())
	if err != nil {
		t.Fatal(err)
	}
	if len(mf.Layers) != 3 {
		t.Fatalf("layers = %d, want 3", len(mf.Layers))
	}
	want := []float64{0.5, 0, 1}
	for i, w := range want {
		if got := mf.At(i, 0, 0); !approx(got, w) {
			t.Errorf("layer %d fraction = %v, want %v", i, got, w)
		}
	}

	s := DefaultMetalFractionMappingSettings()
	s.Grid = [2]int{2, 1}
	mf, err = v.GenerateMetalFractionMapping(s)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(mf.At(0, 0, 0), 1) || !approx(mf.At(0, 1, 0), 0) {
		t.Errorf("M1 grid = %v, want [1 0]", mf.Layers[0].Values)
	}
}

func TestMetalFractionSelectNets(t *testing.T) {
	v := metalFixture(t)
	s := DefaultMetalFractionMappingSettings()
	s.SelectNets = []string{"b"}
	mf, err := v.GenerateMetalFractionMapping(s)
	if err != nil {
		t.Fatal(err)
	}
	if got := mf.At(0, 0, 0); got != 0 {
		t.Errorf("M1 fraction with net b only = %v, want 0", got)
	}
	if got := mf.At(2, 0, 0); !approx(got, 1) {
		t.Errorf("M2 fraction with net b only = %v, want 1", got)
	}
}

func TestMetalFractionOverlap(t *testing.T) {
	v := metalFixture(t)
	mustGeom(t, v, 0, NoNet, rect(0, 0, 50, 100))

	merged, err := v.GenerateMetalFractionMapping(DefaultMetalFractionMappingSettings())
	if err != nil {
		t.Fatal(err)
	}
	s := DefaultMetalFractionMappingSettings()
	s.MergeGeomBeforeMapping = false
	separate, err := v.GenerateMetalFractionMapping(s)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(merged.At(0, 0, 0), 0.5) || !approx(separate.At(0, 0, 0), 1) {
		t.Errorf("merged = %v, separate = %v, want 0.5 and 1", merged.At(0, 0, 0), separate.At(0, 0, 0))
	}
}

func TestMetalFractionErrors(t *testing.T) {
	v := NewLayoutView("v", nil)
	s := DefaultMetalFractionMappingSettings()
	if _, err := v.GenerateMetalFractionMapping(s); !stderrors.Is(err, ErrNoBoundary) {
		t.Errorf("without boundary error = %v, want %v", err, ErrNoBoundary)
	}
	b := rect(0, 0, 10, 10).BBox().Polygon()
	v.SetBoundary(&b)
	if _, err := v.GenerateMetalFractionMapping(s); !stderrors.Is(err, ErrNoStackup) {
		t.Errorf("without stackup error = %v, want %v", err, ErrNoStackup)
	}
	conducting(t, v, "M1")
	s.Grid = [2]int{0, 1}
	if _, err := v.GenerateMetalFractionMapping(s); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("zero grid error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	for _, g := range [][2]int{{1 << 30, 1}, {1, 1 << 40}, {8193, 1}, {4096, 4096}} {
		s.Grid = g
		if _, err := v.GenerateMetalFractionMapping(s); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("grid %dx%d error = %v, want %s", g[0], g[1], err, errors.ErrCodeInvalidInput)
		}
	}
}

func TestMetalFractionOutFile(t *testing.T) {
	v := metalFixture(t)
	s := DefaultMetalFractionMappingSettings()
	s.OutFile = filepath.Join(t.TempDir(), "mf.txt")
	if _, err := v.GenerateMetalFractionMapping(s); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(s.OutFile)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# grid 1 1", "layer 0 M1", "layer 1 D1", "0.000000"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("report is missing %q:\n%s", want, data)
		}
	}
}
