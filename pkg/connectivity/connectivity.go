// Package connectivity derives electrical connectivity from geometry.
//
// Each [Item] is a conductor (a shape, a padstack instance, a bondwire) with
// the polygons it occupies per layer and an optional net tag. Two items are
// connected when they occupy a common layer, their polygons overlap or touch,
// and both carry the same net. Overlapping items on different nets are
// reported as shorts. Items without a net stay isolated.
//
// Connected components are computed with gonum's undirected graph and
// topo.ConnectedComponents; results are sorted so that identical input
// yields identical output.
package connectivity

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/Draaaaaaven/ecad/pkg/geom"
)

// NoNet marks an item without a net tag.
const NoNet = -1

// Item is one conductor. Shapes maps a layer id to the polygons the item
// occupies on that layer.
type Item struct {
	Net    int
	Shapes map[int][]geom.PolygonWithHoles
}

// Short records two overlapping items tagged with different nets.
type Short struct {
	A, B  int // item indices, A < B
	Layer int
}

// Result is the outcome of Extract. Item references are indices into the
// slice passed to Extract.
type Result struct {
	// Components lists groups of connected items; singletons included.
	Components [][]int
	// Shorts lists overlapping item pairs on different nets.
	Shorts []Short
	// Floating lists items without a net.
	Floating []int
}

// Extract computes connectivity over items.
func Extract(items []Item) *Result {
	g := simple.NewUndirectedGraph()
	for i := range items {
		g.AddNode(simple.Node(i))
	}

	res := &Result{}
	boxes := make([]geom.Box2D, len(items))
	for i, it := range items {
		b := geom.EmptyBox()
		for _, polys := range it.Shapes {
			for _, p := range polys {
				b = b.Union(p.BBox())
			}
		}
		boxes[i] = b
		if it.Net < 0 {
			res.Floating = append(res.Floating, i)
		}
	}

	// sweep along x: only items whose boxes overlap in x are compared
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return boxes[order[a]].Min.X < boxes[order[b]].Min.X
	})

	for oi, i := range order {
		if items[i].Net < 0 || !boxes[i].IsValid() {
			continue
		}
		for _, j := range order[oi+1:] {
			if boxes[j].Min.X > boxes[i].Max.X {
				break
			}
			if items[j].Net < 0 || !boxes[i].Intersects(boxes[j]) {
				continue
			}
			layer, ok := touch(items[i], items[j])
			if !ok {
				continue
			}
			if items[i].Net == items[j].Net {
				g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
				continue
			}
			res.Shorts = append(res.Shorts, Short{A: min(i, j), B: max(i, j), Layer: layer})
		}
	}

	for _, cc := range topo.ConnectedComponents(g) {
		res.Components = append(res.Components, nodeIDs(cc))
	}
	sort.Slice(res.Components, func(a, b int) bool {
		return res.Components[a][0] < res.Components[b][0]
	})
	sort.Slice(res.Shorts, func(a, b int) bool {
		sa, sb := res.Shorts[a], res.Shorts[b]
		if sa.A != sb.A {
			return sa.A < sb.A
		}
		return sa.B < sb.B
	})
	return res
}

// Islands groups the components by net. Floating items are left out. A net
// with more than one island is open.
func (r *Result) Islands(items []Item) map[int][][]int {
	out := make(map[int][][]int)
	for _, cc := range r.Components {
		net := items[cc[0]].Net
		if net < 0 {
			continue
		}
		out[net] = append(out[net], cc)
	}
	return out
}

// touch reports the lowest layer on which a and b overlap.
func touch(a, b Item) (int, bool) {
	layers := make([]int, 0, len(a.Shapes))
	for l := range a.Shapes {
		if _, ok := b.Shapes[l]; ok {
			layers = append(layers, l)
		}
	}
	slices.Sort(layers)
	for _, l := range layers {
		for _, pa := range a.Shapes[l] {
			for _, pb := range b.Shapes[l] {
				if geom.PolygonsOverlap(pa, pb) {
					return l, true
				}
			}
		}
	}
	return 0, false
}

func nodeIDs(nodes []graph.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = int(n.ID())
	}
	slices.Sort(ids)
	return ids
}
