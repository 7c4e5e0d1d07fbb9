package ecad

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/geom"
	"github.com/Draaaaaaven/ecad/pkg/observability"
	"github.com/Draaaaaaven/ecad/pkg/raster"
)

// MetalFractionMappingSettings configures metal fraction mapping.
type MetalFractionMappingSettings struct {
	// OutFile, when set, receives a text report of the result.
	OutFile string
	// Region extension beyond the boundary box, in user units.
	RegionExtTop, RegionExtBot, RegionExtLeft, RegionExtRight float64
	// MergeGeomBeforeMapping unions the shapes of a layer before measuring.
	// When false, overlapping shapes count once each and a cell can exceed 1.
	MergeGeomBeforeMapping bool
	// Grid is the number of cells along x and y, each within raster.MaxGrid
	// and together within raster.MaxCells.
	Grid [2]int
	// SelectNets restricts mapping to the named nets. Empty maps all
	// conductors.
	SelectNets []string
}

// DefaultMetalFractionMappingSettings returns a single-cell grid with merged
// geometry.
func DefaultMetalFractionMappingSettings() MetalFractionMappingSettings {
	return MetalFractionMappingSettings{MergeGeomBeforeMapping: true, Grid: [2]int{1, 1}}
}

// MetalFraction holds per-layer metal density over a grid.
type MetalFraction struct {
	// Region is the mapped area in database units.
	Region geom.Box2D
	NX, NY int
	Layers []LayerFraction
}

// LayerFraction is the density grid of one stackup layer. Values are indexed
// y*NX+x with y = 0 at the bottom; dielectric layers are all zero.
type LayerFraction struct {
	Layer  LayerID   `json:"layer"`
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// At returns the density of cell (x, y) on layer index i.
func (m *MetalFraction) At(i, x, y int) float64 {
	return m.Layers[i].Values[y*m.NX+x]
}

// GenerateMetalFractionMapping rasterizes the conductors of each stackup
// layer over the boundary region and reports the covered fraction of every
// grid cell. Instanced cells are flattened first.
//
// It fails with ErrNoBoundary or ErrNoStackup when the boundary or the
// stackup is missing.
func (v *LayoutView) GenerateMetalFractionMapping(settings MetalFractionMappingSettings) (mf *MetalFraction, err error) {
	if v == nil {
		return nil, ErrNilLayoutView
	}
	start := time.Now()
	defer func() {
		observability.Engine().OnMetalFractionComplete(context.Background(), v.name, v.layers.Size(), time.Since(start), err)
	}()

	if v.boundary == nil || v.boundary.Empty() {
		return nil, ErrNoBoundary
	}
	if v.layers.Size() == 0 {
		return nil, ErrNoStackup
	}
	nx, ny := settings.Grid[0], settings.Grid[1]
	if err := raster.CheckGrid(nx, ny); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "metal fraction grid")
	}

	src := v
	if v.cellInsts.Size() > 0 {
		if src, err = v.Flatten(FlattenOptions{}); err != nil {
			return nil, err
		}
	}

	units := v.coordUnits()
	region := v.boundary.BBox().Expand(
		units.ToCoord(settings.RegionExtLeft),
		units.ToCoord(settings.RegionExtBot),
		units.ToCoord(settings.RegionExtRight),
		units.ToCoord(settings.RegionExtTop),
	)

	selected := src.selectNets(settings.SelectNets)
	polys := make([][]geom.PolygonWithHoles, src.layers.Size())
	collect := func(layer LayerID, net NetID, shapes ...geom.PolygonWithHoles) {
		if !src.isConducting(layer) || !selected(net) {
			return
		}
		polys[layer] = append(polys[layer], shapes...)
	}
	for _, p := range src.primitives.items {
		switch p := p.(type) {
		case *Geometry2D:
			if p.shape != nil {
				collect(p.layer, p.net, p.shape.Outline()...)
			}
		case *Bondwire:
			for l, fp := range p.Footprints() {
				collect(l, p.net, fp...)
			}
		}
	}
	for _, p := range src.padstackInsts.items {
		lo, hi := p.LayerRange()
		if lo == NoLayer {
			continue
		}
		for l := lo; l <= hi; l++ {
			for _, s := range p.LayerShapes(l) {
				collect(l, p.net, s.Outline()...)
			}
		}
	}

	mf = &MetalFraction{Region: region, NX: nx, NY: ny}
	opts := raster.Options{Separate: !settings.MergeGeomBeforeMapping}
	for i, l := range src.layers.items {
		lf := LayerFraction{Layer: LayerID(i), Name: l.name}
		if l.IsConducting() {
			m, err := raster.Rasterize(region, nx, ny, polys[i], opts)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "rasterize layer %q", l.name)
			}
			lf.Values = m.Values
		} else {
			lf.Values = make([]float64, nx*ny)
		}
		mf.Layers = append(mf.Layers, lf)
	}

	if settings.OutFile != "" {
		if err := mf.writeFile(settings.OutFile); err != nil {
			return nil, err
		}
	}
	return mf, nil
}

// selectNets returns a filter accepting the named nets, or every net when
// names is empty.
func (v *LayoutView) selectNets(names []string) func(NetID) bool {
	if len(names) == 0 {
		return func(NetID) bool { return true }
	}
	ids := make([]NetID, 0, len(names))
	for _, n := range names {
		if net := v.nets.Lookup(n); net != nil {
			ids = append(ids, net.id)
		}
	}
	return func(id NetID) bool { return slices.Contains(ids, id) }
}

func (m *MetalFraction) writeFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := m.WriteReport(w); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// WriteReport writes the result as text: a header with the region and grid,
// then one block per layer with rows from top to bottom.
func (m *MetalFraction) WriteReport(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# region %d %d %d %d\n# grid %d %d\n",
		m.Region.Min.X, m.Region.Min.Y, m.Region.Max.X, m.Region.Max.Y, m.NX, m.NY); err != nil {
		return err
	}
	for _, l := range m.Layers {
		if _, err := fmt.Fprintf(w, "layer %d %s\n", l.Layer, l.Name); err != nil {
			return err
		}
		for y := m.NY - 1; y >= 0; y-- {
			row := l.Values[y*m.NX : (y+1)*m.NX]
			for x, val := range row {
				sep := " "
				if x == len(row)-1 {
					sep = "\n"
				}
				if _, err := fmt.Fprintf(w, "%.6f%s", val, sep); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
