package ecad

import (
	"github.com/Draaaaaaven/ecad/pkg/geom"
)

// Merge imports the content of other into v, mapping all geometry through t.
//
// Layers are matched by name and missing ones are appended. Nets are matched
// by name and missing ones are created; unnamed nets are always created.
// Imported padstack and cell instances that collide on name are renamed
// name_1, name_2, ... Merging a view into itself imports a snapshot of its
// content taken before the call.
//
// Merge fails without changing v when an imported cell instance would make
// v instantiate itself.
func (v *LayoutView) Merge(other *LayoutView, t geom.Transform2D) error {
	if v == nil || other == nil {
		return ErrNilLayoutView
	}
	if err := v.merge(other, t, ""); err != nil {
		return err
	}
	v.touch()
	return nil
}

// merge is Merge with an optional name prefix for imported named objects.
// It does not invalidate flattened caches, so flatten can build derived
// views with it.
func (v *LayoutView) merge(src *LayoutView, t geom.Transform2D, prefix string) error {
	for _, ci := range src.cellInsts.items {
		if instantiates(ci.def, v) {
			return ErrCyclicHierarchy
		}
	}

	// Snapshot first so a self-merge does not see its own imports.
	layers := src.layers.Items()
	nets := src.nets.Items()
	prims := src.primitives.Items()
	pinsts := src.padstackInsts.Items()
	cinsts := src.cellInsts.Items()

	layerMap := make(map[LayerID]LayerID, len(layers))
	for i, l := range layers {
		id := v.LayerIDByName(l.name)
		if id == NoLayer {
			id = LayerID(v.layers.Size())
			_ = v.layers.add(l.Clone())
		}
		layerMap[LayerID(i)] = id
	}
	layerFn := func(id LayerID) LayerID {
		if to, ok := layerMap[id]; ok {
			return to
		}
		return NoLayer
	}

	netMap := make(map[NetID]NetID, len(nets))
	for _, n := range nets {
		var dst *Net
		if n.name != "" {
			dst = v.nets.Lookup(n.name)
		}
		if dst == nil {
			dst = &Net{suuid: newSuuid(), name: n.name, id: NetID(v.nets.Size())}
			_ = v.nets.add(dst)
		}
		netMap[n.id] = dst.id
	}
	netFn := func(id NetID) NetID {
		if to, ok := netMap[id]; ok {
			return to
		}
		return NoNet
	}

	for _, p := range prims {
		c := p.clone()
		c.transform(t)
		c.remapLayers(layerFn)
		c.setNet(netFn(c.Net()))
		if b, ok := c.(*Bondwire); ok && prefix != "" && b.name != "" {
			b.name = prefix + b.name
		}
		_ = v.primitives.add(c)
	}

	for _, p := range pinsts {
		c := p.clone(v)
		c.name = nextName(prefix+p.name, v.padstackInsts.taken)
		c.tr = t.Compose(p.tr)
		c.top, c.bot, c.layerMap = remapSpan(p, layerFn)
		c.net = netFn(p.net)
		_ = v.padstackInsts.add(c)
	}

	for _, ci := range cinsts {
		c := ci.clone(v)
		c.name = nextName(prefix+ci.name, v.cellInsts.taken)
		c.tr = t.Compose(ci.tr)
		_ = v.cellInsts.add(c)
	}
	return nil
}

// remapSpan moves the layer span of p through fn. Without a layer map pads
// go by span position, so when fn reorders or spreads the span the result
// gets a map that keeps every pad on the layer it came from, and the span is
// widened to cover all of them.
func remapSpan(p *PadstackInst, fn func(LayerID) LayerID) (top, bot LayerID, lm *LayerMap) {
	top, bot = fn(p.top), fn(p.bot)
	if p.layerMap != nil {
		return top, bot, remapLayerMap(p.layerMap, fn)
	}
	lo, hi := p.LayerRange()
	if lo == NoLayer {
		return top, bot, nil
	}
	shifted := fn(lo) != NoLayer
	nlo, nhi := NoLayer, NoLayer
	for l := lo; l <= hi; l++ {
		to := fn(l)
		if to != fn(lo)+(l-lo) {
			shifted = false
		}
		if to == NoLayer {
			continue
		}
		if nlo == NoLayer || to < nlo {
			nlo = to
		}
		nhi = max(nhi, to)
	}
	if shifted {
		return top, bot, nil
	}

	lm = NewLayerMap("", nil)
	for l := lo; l <= hi; l++ {
		if to := fn(l); to != NoLayer {
			lm.setMapping(l-lo, to)
		}
	}
	if p.top > p.bot {
		return nhi, nlo, lm
	}
	return nlo, nhi, lm
}

// remapLayerMap returns a copy of lm whose targets are passed through fn.
func remapLayerMap(lm *LayerMap, fn func(LayerID) LayerID) *LayerMap {
	if lm == nil {
		return nil
	}
	c := NewLayerMap(lm.name, lm.db)
	for _, m := range lm.Mappings() {
		c.setMapping(m.From, fn(m.To))
	}
	return c
}

// Map rewrites the layer of every primitive and padstack instance through
// lm's forward mapping. Layers without a mapping become NoLayer. The
// stackup itself is not changed.
func (v *LayoutView) Map(lm *LayerMap) error {
	if v == nil {
		return ErrNilLayoutView
	}
	if lm == nil {
		return invalidInput("layer map is nil")
	}
	fn := lm.MappingForward
	for _, p := range v.primitives.items {
		p.remapLayers(fn)
	}
	for _, p := range v.padstackInsts.items {
		p.top, p.bot, p.layerMap = remapSpan(p, fn)
	}
	v.touch()
	return nil
}
