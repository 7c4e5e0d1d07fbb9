// Package pkg provides the libraries behind the ecad layout database.
//
// # Overview
//
// ecad stores hierarchical IC and PCB layouts: a [ecad.Database] owns cells,
// layer maps and padstack definitions, and every cell owns a layout view with
// its stackup, nets, primitives, padstack instances and cell instances. The
// pkg directory is organized into four areas:
//
//  1. [ecad] - the object model and its algorithms (flatten, merge, layer
//     mapping, connectivity, metal fraction)
//  2. [geom], [raster], [connectivity], [hierarchy] - geometry kernels and
//     graph algorithms the model builds on
//  3. [archive], [store] - persistence formats and archive backends
//  4. [manager], [api], [config] - the database registry, its HTTP surface
//     and configuration
//
// # Architecture
//
// The typical data flow:
//
//	archive (BIN or XML) from a store
//	         ↓
//	    [manager] package (named databases, serialized access)
//	         ↓
//	    [ecad] package (flatten, connectivity, metal fraction)
//	         ↓
//	    reports, DOT/SVG hierarchy, rewritten archives
//
// # Quick Start
//
//	db := ecad.NewDatabase("board")
//	if err := db.Load("board.ecad", archive.FormatBIN); err != nil {
//	    return err
//	}
//	top := db.TopCells()[0]
//	flat, err := db.Flatten(ctx, top)
//
// # Errors
//
// Every package reports failures as [errors.Error] values carrying an
// [errors.Code]; use [errors.Is] to test for a code anywhere in the chain.
//
// # Observability
//
// [observability] exposes hooks for flatten, metal fraction, archive and
// store events. They default to no-ops.
package pkg
