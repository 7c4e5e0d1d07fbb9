package connectivity

import (
	"slices"
	"testing"

	"github.com/Draaaaaaven/ecad/pkg/geom"
)

func box(layer int, x0, y0, x1, y1 int64) map[int][]geom.PolygonWithHoles {
	return map[int][]geom.PolygonWithHoles{
		layer: {geom.NewPolygonWithHoles(geom.NewBox(geom.Pt(x0, y0), geom.Pt(x1, y1)).Polygon())},
	}
}

func TestExtract(t *testing.T) {
	via := box(0, 18, 0, 22, 4)
	for l, p := range box(1, 18, 0, 22, 4) {
		via[l] = p
	}

	items := []Item{
		{Net: 0, Shapes: box(0, 0, 0, 20, 4)},   // 0: trace on layer 0
		{Net: 0, Shapes: via},                   // 1: via joining layers 0 and 1
		{Net: 0, Shapes: box(1, 20, 0, 40, 4)},  // 2: trace on layer 1
		{Net: 0, Shapes: box(0, 100, 0, 120, 4)}, // 3: separate island of net 0
		{Net: 1, Shapes: box(1, 39, 2, 60, 8)},  // 4: net 1 overlapping item 2
		{Net: NoNet, Shapes: box(0, 0, 0, 5, 5)}, // 5: untagged copper
		{Net: 0, Shapes: box(2, 0, 0, 20, 4)},   // 6: same footprint, other layer
	}

	res := Extract(items)

	wantComponents := [][]int{{0, 1, 2}, {3}, {4}, {5}, {6}}
	if len(res.Components) != len(wantComponents) {
		t.Fatalf("Components = %v, want %v", res.Components, wantComponents)
	}
	for i, want := range wantComponents {
		if !slices.Equal(res.Components[i], want) {
			t.Errorf("Components[%d] = %v, want %v", i, res.Components[i], want)
		}
	}

	if len(res.Shorts) != 1 || res.Shorts[0] != (Short{A: 2, B: 4, Layer: 1}) {
		t.Errorf("Shorts = %v, want [{2 4 1}]", res.Shorts)
	}
	if !slices.Equal(res.Floating, []int{5}) {
		t.Errorf("Floating = %v, want [5]", res.Floating)
	}

	islands := res.Islands(items)
	if got := len(islands[0]); got != 3 {
		t.Errorf("len(Islands[0]) = %d, want 3", got)
	}
	if got := len(islands[1]); got != 1 {
		t.Errorf("len(Islands[1]) = %d, want 1", got)
	}
	if _, ok := islands[NoNet]; ok {
		t.Error("Islands should not include floating items")
	}
}

func TestExtractDeterministic(t *testing.T) {
	items := []Item{
		{Net: 2, Shapes: box(0, 0, 0, 10, 10)},
		{Net: 2, Shapes: box(0, 5, 5, 15, 15)},
		{Net: 3, Shapes: box(0, 14, 14, 20, 20)},
	}
	first := Extract(items)
	for i := 0; i < 10; i++ {
		again := Extract(items)
		if len(again.Components) != len(first.Components) {
			t.Fatalf("run %d: Components = %v, want %v", i, again.Components, first.Components)
		}
		for j := range first.Components {
			if !slices.Equal(again.Components[j], first.Components[j]) {
				t.Errorf("run %d: Components[%d] = %v, want %v", i, j, again.Components[j], first.Components[j])
			}
		}
	}
}

func TestExtractEmpty(t *testing.T) {
	res := Extract(nil)
	if len(res.Components) != 0 || len(res.Shorts) != 0 || len(res.Floating) != 0 {
		t.Errorf("Extract(nil) = %+v, want empty", res)
	}
}
