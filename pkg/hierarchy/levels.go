package hierarchy

// Levels groups cells bottom-up for child-first processing. Level 0 holds
// the leaves; every other cell sits one level above its deepest child. Cells
// keep insertion order inside a level.
//
// Levels uses a longest-path traversal in the style of Kahn's algorithm,
// walking from the leaves upward. Cells on a cycle never reach zero
// remaining children and are omitted; run [Graph.Validate] first when the
// graph may contain cycles.
func (g *Graph) Levels() [][]string {
	remaining := make(map[string]int, len(g.cells))
	level := make(map[string]int, len(g.cells))
	queue := make([]string, 0, len(g.cells))

	for _, c := range g.cells {
		remaining[c] = len(g.outgoing[c])
		if remaining[c] == 0 {
			queue = append(queue, c)
		}
	}

	done := make(map[string]bool, len(g.cells))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		done[curr] = true

		for _, parent := range g.incoming[curr] {
			if l := level[curr] + 1; l > level[parent] {
				level[parent] = l
			}
			remaining[parent]--
			if remaining[parent] == 0 {
				queue = append(queue, parent)
			}
		}
	}

	var levels [][]string
	for _, c := range g.cells {
		if !done[c] {
			continue
		}
		l := level[c]
		for len(levels) <= l {
			levels = append(levels, nil)
		}
		levels[l] = append(levels[l], c)
	}
	return levels
}

// Depths assigns every cell its top-down depth: tops are at depth 0 and every
// other cell sits one below its deepest parent. Used to rank cells in
// hierarchy drawings.
func (g *Graph) Depths() map[string]int {
	inDegree := make(map[string]int, len(g.cells))
	depth := make(map[string]int, len(g.cells))
	queue := make([]string, 0, len(g.cells))

	for _, c := range g.cells {
		inDegree[c] = len(g.incoming[c])
		if inDegree[c] == 0 {
			queue = append(queue, c)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.outgoing[curr] {
			if d := depth[curr] + 1; d > depth[child] {
				depth[child] = d
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return depth
}
