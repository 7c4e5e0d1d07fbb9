package ecad

import (
	"github.com/Draaaaaaven/ecad/pkg/connectivity"
	"github.com/Draaaaaaven/ecad/pkg/geom"
)

// ConnectivityReport is the result of LayoutView.ConnectivityExtraction.
type ConnectivityReport struct {
	// Islands lists, per net, the groups of conductors that touch each
	// other. A net with more than one island is open.
	Islands map[NetID][][]ConnObj
	// Shorts lists touching conductors tagged with different nets.
	Shorts []ConnShort
	// Floating lists conductors without a net.
	Floating []ConnObj
	// View is the layout the net ids refer to: the extracted view itself,
	// or its flattened view when it instantiates cells.
	View *LayoutView
}

// ConnShort is a pair of touching conductors on different nets.
type ConnShort struct {
	A, B  ConnObj
	Layer LayerID
}

// Open reports whether net is split into more than one island.
func (r *ConnectivityReport) Open(net NetID) bool {
	return len(r.Islands[net]) > 1
}

// ConnectivityExtraction groups the conductors of v by geometric contact on
// conducting layers. Geometry and bondwire footprints take part on their
// layers; padstack instances take part with their pads and via on every
// conducting layer they span. Text and primitives on dielectric or unknown
// layers are ignored. Degenerate shapes never touch anything.
//
// The view is flattened first, so conductors inside instanced cells take
// part. The result is deterministic for a given view.
func (v *LayoutView) ConnectivityExtraction() (*ConnectivityReport, error) {
	if v == nil {
		return nil, ErrNilLayoutView
	}
	src := v
	if v.cellInsts.Size() > 0 {
		flat, err := v.Flatten(FlattenOptions{})
		if err != nil {
			return nil, err
		}
		src = flat
	}

	var objs []ConnObj
	var items []connectivity.Item
	addItem := func(obj ConnObj, shapes map[int][]geom.PolygonWithHoles) {
		if len(shapes) == 0 {
			return
		}
		objs = append(objs, obj)
		items = append(items, connectivity.Item{Net: int(obj.Net()), Shapes: shapes})
	}

	for _, p := range src.primitives.items {
		shapes := make(map[int][]geom.PolygonWithHoles)
		switch p := p.(type) {
		case *Geometry2D:
			if src.isConducting(p.layer) && p.shape != nil {
				shapes[int(p.layer)] = p.shape.Outline()
			}
		case *Bondwire:
			for l, polys := range p.Footprints() {
				if src.isConducting(l) {
					shapes[int(l)] = append(shapes[int(l)], polys...)
				}
			}
		}
		addItem(p, shapes)
	}

	for _, p := range src.padstackInsts.items {
		shapes := make(map[int][]geom.PolygonWithHoles)
		lo, hi := p.LayerRange()
		if lo != NoLayer {
			for l := lo; l <= hi; l++ {
				if !src.isConducting(l) {
					continue
				}
				for _, s := range p.LayerShapes(l) {
					shapes[int(l)] = append(shapes[int(l)], s.Outline()...)
				}
			}
		}
		addItem(p, shapes)
	}

	res := connectivity.Extract(items)
	report := &ConnectivityReport{Islands: make(map[NetID][][]ConnObj), View: src}
	for net, ccs := range res.Islands(items) {
		for _, cc := range ccs {
			island := make([]ConnObj, len(cc))
			for i, idx := range cc {
				island[i] = objs[idx]
			}
			report.Islands[NetID(net)] = append(report.Islands[NetID(net)], island)
		}
	}
	for _, s := range res.Shorts {
		report.Shorts = append(report.Shorts, ConnShort{A: objs[s.A], B: objs[s.B], Layer: LayerID(s.Layer)})
	}
	for _, idx := range res.Floating {
		report.Floating = append(report.Floating, objs[idx])
	}
	return report, nil
}
