// Package hierarchy models cell instancing as a directed graph: one node per
// cell, one edge from a parent cell to every cell its layout instantiates.
//
// # Overview
//
// A layout database is a forest of cells whose layout views place instances
// of other cells. Operations that cross the hierarchy need three questions
// answered quickly:
//
//   - Which cells are never instantiated? ([Graph.Tops])
//   - Would a new instance close a cycle? ([Graph.Reachable])
//   - In which order can cells be processed so that every child is done
//     before its parents? ([Graph.Levels])
//
// # Basic Usage
//
//	g := hierarchy.New()
//	_ = g.AddCell("top")
//	_ = g.AddCell("via_array")
//	_ = g.AddInstance("top", "via_array")
//	tops := g.Tops() // ["top"]
//
// Cells keep insertion order in every listing so that callers producing
// output (archives, reports, DOT) are deterministic.
//
// # Levels
//
// [Graph.Levels] groups cells bottom-up: level 0 holds cells that instantiate
// nothing, level k holds cells whose deepest child sits on level k-1. Cells
// within one level never depend on each other, so a level can be processed
// in parallel.
//
// # Visualization
//
// [ToDOT] exports the graph in Graphviz DOT format and [RenderSVG] renders
// DOT text to SVG.
//
// # Concurrency
//
// Graph is not safe for concurrent use without external synchronization.
package hierarchy
