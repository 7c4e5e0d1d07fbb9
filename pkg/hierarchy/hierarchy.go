package hierarchy

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidCell is returned by [Graph.AddCell] when the cell name is
	// empty.
	ErrInvalidCell = errors.New("cell name must not be empty")

	// ErrDuplicateCell is returned by [Graph.AddCell] when a cell with the
	// same name is already part of the graph.
	ErrDuplicateCell = errors.New("duplicate cell")

	// ErrUnknownParent is returned by [Graph.AddInstance] when the parent
	// cell does not exist.
	ErrUnknownParent = errors.New("unknown parent cell")

	// ErrUnknownChild is returned by [Graph.AddInstance] when the
	// instantiated cell does not exist.
	ErrUnknownChild = errors.New("unknown child cell")

	// ErrCycle is returned by [Graph.AddInstance] and [Graph.Validate] when
	// a cell would (directly or transitively) instantiate itself.
	ErrCycle = errors.New("cell hierarchy contains a cycle")
)

// Graph is the cell instancing graph. Edges point from a parent cell to the
// cells its layout instantiates; repeated instances of the same child are
// counted but stored as one edge.
//
// The zero value is not usable; use [New].
type Graph struct {
	cells    []string
	index    map[string]int
	outgoing map[string][]string
	incoming map[string][]string
	counts   map[[2]string]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index:    make(map[string]int),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		counts:   make(map[[2]string]int),
	}
}

// AddCell adds a cell node.
func (g *Graph) AddCell(name string) error {
	if name == "" {
		return ErrInvalidCell
	}
	if _, ok := g.index[name]; ok {
		return ErrDuplicateCell
	}
	g.index[name] = len(g.cells)
	g.cells = append(g.cells, name)
	return nil
}

// AddInstance records that parent instantiates child. Returns ErrCycle when
// the edge would make parent reachable from itself; the graph is unchanged
// in that case.
func (g *Graph) AddInstance(parent, child string) error {
	if _, ok := g.index[parent]; !ok {
		return ErrUnknownParent
	}
	if _, ok := g.index[child]; !ok {
		return ErrUnknownChild
	}
	if parent == child || g.Reachable(child, parent) {
		return ErrCycle
	}
	key := [2]string{parent, child}
	if g.counts[key] == 0 {
		g.outgoing[parent] = append(g.outgoing[parent], child)
		g.incoming[child] = append(g.incoming[child], parent)
	}
	g.counts[key]++
	return nil
}

// Has reports whether the graph contains the cell.
func (g *Graph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Cells returns all cell names in insertion order.
func (g *Graph) Cells() []string { return slices.Clone(g.cells) }

// CellCount returns the number of cells.
func (g *Graph) CellCount() int { return len(g.cells) }

// EdgeCount returns the number of distinct parent/child pairs.
func (g *Graph) EdgeCount() int { return len(g.counts) }

// InstanceCount returns how many times parent instantiates child.
func (g *Graph) InstanceCount(parent, child string) int {
	return g.counts[[2]string{parent, child}]
}

// Children returns the cells instantiated by name, in first-instance order.
// The returned slice should not be modified.
func (g *Graph) Children(name string) []string { return g.outgoing[name] }

// Parents returns the cells instantiating name. The returned slice should not
// be modified.
func (g *Graph) Parents(name string) []string { return g.incoming[name] }

// Tops returns the cells that no other cell instantiates, in insertion order.
func (g *Graph) Tops() []string {
	var tops []string
	for _, c := range g.cells {
		if len(g.incoming[c]) == 0 {
			tops = append(tops, c)
		}
	}
	return tops
}

// Leaves returns the cells that instantiate nothing, in insertion order.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, c := range g.cells {
		if len(g.outgoing[c]) == 0 {
			leaves = append(leaves, c)
		}
	}
	return leaves
}

// Reachable reports whether to can be reached from from by following
// instances. A cell reaches itself.
func (g *Graph) Reachable(from, to string) bool {
	if from == to {
		return g.Has(from)
	}
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range g.outgoing[curr] {
			if c == to {
				return true
			}
			if !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}
	return false
}

// Descendants returns root and every cell reachable from it, in insertion
// order.
func (g *Graph) Descendants(root string) []string {
	if !g.Has(root) {
		return nil
	}
	var out []string
	for _, c := range g.cells {
		if g.Reachable(root, c) {
			out = append(out, c)
		}
	}
	return out
}

// Validate returns ErrCycle if the graph contains a directed cycle. Graphs
// built only through AddInstance are always acyclic; Validate guards graphs
// assembled from decoded data.
func (g *Graph) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.cells))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.cells {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrCycle
			}
		}
	}
	return nil
}
