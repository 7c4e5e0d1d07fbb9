// Package ecad is a hierarchical layout database for IC and PCB design data.
//
// # Entity model
//
// A [Database] owns named [Cell]s, [LayerMap]s and [PadstackDef]s. Every
// cell owns one [LayoutView], which in turn owns:
//
//   - an ordered stackup of [StackupLayer]s; a layer's [LayerID] is its
//     position
//   - [Net]s; a net's [NetID] is its position
//   - [Primitive]s: [Geometry2D] shapes, [Text] annotations and [Bondwire]s
//   - [PadstackInst]s placing a database padstack definition
//   - [CellInst]s placing another cell's layout under a transform
//
// Ownership is a tree. Cell instances and padstack instances refer to their
// masters and definitions without owning them, and form the cell hierarchy.
// Every entity gets a [Suuid] at construction that is never reused.
//
// # Algorithms
//
// [LayoutView.Flatten] collapses the hierarchy below a view into a new
// single-level view. [LayoutView.Merge] imports another view under a
// transform and [LayoutView.Map] rewrites layer ids through a layer map.
// [LayoutView.ConnectivityExtraction] groups conductors by geometric
// contact and [LayoutView.GenerateMetalFractionMapping] reports copper
// density on a grid. [LayoutView.MergeLayerPolygons] replaces the shapes of
// each layer and net by their union. [Database.Flatten] flattens a cell and
// its subtree in parallel, bottom-up.
//
// # Errors
//
// Lookups that miss return nil, [NoLayer] or [NoNet]. Failing operations
// return an error carrying a code from pkg/errors: DUPLICATE_NAME when a
// name is taken (nothing is overwritten), INVALID_STATE when a prerequisite
// is missing, IO_FAILURE or INVALID_FORMAT when persistence fails. A failed
// [Database.Load] leaves the database unchanged.
//
// # Concurrency
//
// A database and everything it owns must not be used from more than one
// goroutine at a time. Iterators walk a snapshot taken when they are
// created; do not mutate a collection while iterating it.
package ecad
