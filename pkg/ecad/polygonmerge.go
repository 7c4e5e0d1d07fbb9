package ecad

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/geom"
)

// LayoutPolygonMergeSettings configures [LayoutView.MergeLayerPolygons].
type LayoutPolygonMergeSettings struct {
	// OutFile, when set, receives a text listing of the merged polygons.
	OutFile string
	// IncludePadstackInst adds the pad shapes of padstack instances to the
	// union. The instances themselves are kept.
	IncludePadstackInst bool
	// IncludeDielectricLayer merges shapes on dielectric layers too.
	IncludeDielectricLayer bool
	// SkipTopBotDielectricLayers leaves the outermost stackup layers alone
	// when they are dielectric.
	SkipTopBotDielectricLayers bool
	// SelectNets restricts merging to the named nets. Empty merges all.
	SelectNets []string
}

// DefaultLayoutPolygonMergeSettings merges every layer including pads.
func DefaultLayoutPolygonMergeSettings() LayoutPolygonMergeSettings {
	return LayoutPolygonMergeSettings{IncludePadstackInst: true, IncludeDielectricLayer: true}
}

type mergeKey struct {
	layer LayerID
	net   NetID
}

// MergeLayerPolygons replaces the Geometry2D primitives of v with the union
// of their outlines per layer and net. Texts, bondwires and unselected
// geometry stay as they are and keep their order; merged geometry is
// appended in layer then net order. Only v's own primitives take part:
// flatten first to merge through instanced cells.
func (v *LayoutView) MergeLayerPolygons(settings LayoutPolygonMergeSettings) error {
	if v == nil {
		return ErrNilLayoutView
	}
	if v.layers.Size() == 0 {
		return ErrNoStackup
	}

	selected := v.selectNets(settings.SelectNets)
	last := LayerID(v.layers.Size() - 1)
	merging := func(id LayerID) bool {
		l := v.Layer(id)
		if l == nil {
			return false
		}
		if l.IsConducting() {
			return true
		}
		if !settings.IncludeDielectricLayer {
			return false
		}
		return !settings.SkipTopBotDielectricLayers || (id != 0 && id != last)
	}

	groups := make(map[mergeKey][]geom.PolygonWithHoles)
	kept := make([]Primitive, 0, len(v.primitives.items))
	for _, p := range v.primitives.items {
		g, ok := p.(*Geometry2D)
		if !ok || g.shape == nil || !merging(g.layer) || !selected(g.net) {
			kept = append(kept, p)
			continue
		}
		k := mergeKey{g.layer, g.net}
		groups[k] = append(groups[k], g.shape.Outline()...)
	}
	if settings.IncludePadstackInst {
		for _, p := range v.padstackInsts.items {
			lo, hi := p.LayerRange()
			if lo == NoLayer || !selected(p.net) {
				continue
			}
			for l := lo; l <= hi; l++ {
				if !merging(l) {
					continue
				}
				for _, s := range p.LayerShapes(l) {
					k := mergeKey{l, p.net}
					groups[k] = append(groups[k], s.Outline()...)
				}
			}
		}
	}

	keys := make([]mergeKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b mergeKey) int {
		if a.layer != b.layer {
			return int(a.layer) - int(b.layer)
		}
		return int(a.net) - int(b.net)
	})

	merged := make(map[mergeKey][]geom.PolygonWithHoles, len(keys))
	for _, k := range keys {
		merged[k] = geom.Union(groups[k]...)
		for _, pwh := range merged[k] {
			var s Shape = Polygon{Shape: pwh.Outline}
			if pwh.HoleCount() > 0 {
				s = PolygonWithHoles{Shape: pwh}
			}
			kept = append(kept, &Geometry2D{primitiveBase: newPrimitiveBase(k.layer, k.net), shape: s})
		}
	}
	clear(v.primitives.items[len(kept):])
	v.primitives.items = kept
	v.touch()

	if settings.OutFile != "" {
		return v.writeMergedPolygons(settings.OutFile, keys, merged)
	}
	return nil
}

func (v *LayoutView) writeMergedPolygons(path string, keys []mergeKey, merged map[mergeKey][]geom.PolygonWithHoles) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := v.writeMergeReport(w, keys, merged); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// writeMergeReport lists one block per layer and net, then each polygon as
// its vertex count and coordinates, holes on their own lines.
func (v *LayoutView) writeMergeReport(w io.Writer, keys []mergeKey, merged map[mergeKey][]geom.PolygonWithHoles) error {
	contour := func(tag string, p geom.Polygon) error {
		if _, err := fmt.Fprintf(w, "%s %d", tag, p.Size()); err != nil {
			return err
		}
		for _, pt := range p.Points {
			if _, err := fmt.Fprintf(w, " %d %d", pt.X, pt.Y); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "\n")
		return err
	}
	for _, k := range keys {
		net := "-"
		if n := v.Net(k.net); n != nil {
			net = n.Name()
		}
		if _, err := fmt.Fprintf(w, "layer %d %s net %s polygons %d\n", k.layer, v.Layer(k.layer).Name(), net, len(merged[k])); err != nil {
			return err
		}
		for _, p := range merged[k] {
			if err := contour("polygon", p.Outline); err != nil {
				return err
			}
			for _, h := range p.Holes {
				if err := contour("hole", h); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
