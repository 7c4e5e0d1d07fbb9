// Package raster computes area coverage of polygon sets on a regular grid.
//
// Polygons are scan-converted with golang.org/x/image/vector into an alpha
// mask at a fixed number of samples per grid cell; a cell's coverage is the
// mean alpha of its samples. Outlines and holes are filled with the nonzero
// winding rule after normalizing orientation, so overlapping shapes merge
// and holes cut.
package raster

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/vector"

	"github.com/Draaaaaaven/ecad/pkg/geom"
)

// DefaultSamples is the number of samples per grid cell along each axis.
const DefaultSamples = 16

// Grid limits. MaxGrid bounds the mask size along each axis and MaxCells
// the number of coverage values.
const (
	MaxGrid  = 8192
	MaxCells = 1 << 22
)

// CheckGrid reports whether an nx by ny grid is within the limits.
func CheckGrid(nx, ny int) error {
	if nx < 1 || ny < 1 {
		return fmt.Errorf("raster grid must be at least 1x1, got %dx%d", nx, ny)
	}
	if nx > MaxGrid || ny > MaxGrid || nx*ny > MaxCells {
		return fmt.Errorf("raster grid %dx%d exceeds %d per axis or %d cells", nx, ny, MaxGrid, MaxCells)
	}
	return nil
}

// Options configures Rasterize.
type Options struct {
	// Samples per grid cell along each axis; 0 uses DefaultSamples.
	Samples int
	// Separate rasterizes every polygon on its own and sums the coverages,
	// so overlapping area is counted once per polygon. By default the
	// polygons are merged before measuring.
	Separate bool
}

// Map holds per-cell coverage in [0, 1] (or above 1 with Options.Separate).
// Values are stored row by row starting at the bottom row: index y*NX+x.
type Map struct {
	NX, NY int
	Box    geom.Box2D
	Values []float64
}

// At returns the coverage of grid cell (x, y), with y = 0 at the bottom.
func (m *Map) At(x, y int) float64 {
	return m.Values[y*m.NX+x]
}

// Mean returns the average coverage over all cells.
func (m *Map) Mean() float64 {
	if len(m.Values) == 0 {
		return 0
	}
	var s float64
	for _, v := range m.Values {
		s += v
	}
	return s / float64(len(m.Values))
}

// Rasterize measures how much of each of the nx*ny cells dividing box is
// covered by polys.
func Rasterize(box geom.Box2D, nx, ny int, polys []geom.PolygonWithHoles, opts Options) (*Map, error) {
	if err := CheckGrid(nx, ny); err != nil {
		return nil, err
	}
	if box.Width() <= 0 || box.Height() <= 0 {
		return nil, fmt.Errorf("raster region %v has no area", box)
	}

	s := opts.Samples
	if s <= 0 {
		s = DefaultSamples
	}
	s = min(s, MaxGrid/nx, MaxGrid/ny)
	s = max(s, 1)

	m := &Map{NX: nx, NY: ny, Box: box, Values: make([]float64, nx*ny)}
	w, h := nx*s, ny*s
	tr := pixelTransform{box: box, w: float64(w), h: float64(h)}

	if !opts.Separate {
		mask := fill(w, h, tr, polys)
		accumulate(m, mask, s)
		return m, nil
	}
	for _, p := range polys {
		mask := fill(w, h, tr, []geom.PolygonWithHoles{p})
		accumulate(m, mask, s)
	}
	return m, nil
}

type pixelTransform struct {
	box  geom.Box2D
	w, h float64
}

// apply maps a layout point to mask coordinates; the y axis is flipped so
// that mask row 0 is the top of the region.
func (t pixelTransform) apply(p geom.Point2D) (float32, float32) {
	x := float64(p.X-t.box.Min.X) / float64(t.box.Width()) * t.w
	y := t.h - float64(p.Y-t.box.Min.Y)/float64(t.box.Height())*t.h
	return float32(x), float32(y)
}

func fill(w, h int, tr pixelTransform, polys []geom.PolygonWithHoles) *image.Alpha {
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	for _, p := range polys {
		if p.Empty() {
			continue
		}
		n := p.Normalized()
		addContour(z, tr, n.Outline)
		for _, hole := range n.Holes {
			addContour(z, tr, hole)
		}
	}
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst
}

func addContour(z *vector.Rasterizer, tr pixelTransform, c geom.Polygon) {
	if c.Empty() {
		return
	}
	x, y := tr.apply(c.Points[0])
	z.MoveTo(x, y)
	for _, pt := range c.Points[1:] {
		x, y = tr.apply(pt)
		z.LineTo(x, y)
	}
	z.ClosePath()
}

func accumulate(m *Map, mask *image.Alpha, s int) {
	h := m.NY * s
	norm := float64(s*s) * 0xff
	for gy := 0; gy < m.NY; gy++ {
		// mask rows of grid row gy, counted from the bottom
		top := h - (gy+1)*s
		for gx := 0; gx < m.NX; gx++ {
			var sum int
			for py := top; py < top+s; py++ {
				row := mask.Pix[py*mask.Stride:]
				for px := gx * s; px < (gx+1)*s; px++ {
					sum += int(row[px])
				}
			}
			m.Values[gy*m.NX+gx] += float64(sum) / norm
		}
	}
}
