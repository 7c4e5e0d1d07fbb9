package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Mirror2D selects a reflection applied before rotation.
type Mirror2D int

const (
	MirrorNo Mirror2D = iota // no reflection
	MirrorX                  // negate x
	MirrorY                  // negate y
	MirrorXY                 // negate both axes
)

func (m Mirror2D) String() string {
	switch m {
	case MirrorNo:
		return "no"
	case MirrorX:
		return "x"
	case MirrorY:
		return "y"
	case MirrorXY:
		return "xy"
	}
	return fmt.Sprintf("Mirror2D(%d)", int(m))
}

// Matrix is a realized 3x3 homogeneous transform. The last row is always
// (0, 0, 1) for transforms built by this package.
type Matrix struct {
	A11, A12, A13 float64
	A21, A22, A23 float64
	A31, A32, A33 float64
}

// Mul returns m*o.
func (m Matrix) Mul(o Matrix) Matrix {
	a := m.dense()
	var r mat.Dense
	r.Mul(a, o.dense())
	return matrixFromDense(&r)
}

// Inverse returns the inverse matrix, or an error when m is singular.
func (m Matrix) Inverse() (Matrix, error) {
	var inv mat.Dense
	if err := inv.Inverse(m.dense()); err != nil {
		return Matrix{}, fmt.Errorf("invert transform matrix: %w", err)
	}
	return matrixFromDense(&inv), nil
}

func (m Matrix) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m.A11, m.A12, m.A13,
		m.A21, m.A22, m.A23,
		m.A31, m.A32, m.A33,
	})
}

func matrixFromDense(d *mat.Dense) Matrix {
	return Matrix{
		A11: d.At(0, 0), A12: d.At(0, 1), A13: d.At(0, 2),
		A21: d.At(1, 0), A22: d.At(1, 1), A23: d.At(1, 2),
		A31: d.At(2, 0), A32: d.At(2, 1), A33: d.At(2, 2),
	}
}

// Transform2D is a similarity placement: a reflection across the y axis
// (negating x), a rotation, a uniform scale and a translation, applied in
// that order. A zero scale factor reads as 1, so the zero value is the
// identity.
type Transform2D struct {
	scale    float64
	rotation float64
	mirror   bool
	offset   FPoint2D
}

// Identity returns the identity transform.
func Identity() Transform2D {
	return Transform2D{scale: 1}
}

// MakeTransform composes mirror, rotation (radians), scale and translation
// into a transform. MirrorY and MirrorXY are normalized to an x reflection
// plus a half turn, so every transform keeps a single mirror flag.
func MakeTransform(scale, rotation float64, offset FPoint2D, mirror Mirror2D) Transform2D {
	t := Transform2D{scale: scale, rotation: rotation, offset: offset}
	t.SetMirror(mirror)
	return t
}

// Translation returns a pure translation.
func Translation(x, y float64) Transform2D {
	return Transform2D{scale: 1, offset: FPoint2D{X: x, Y: y}}
}

// Scale returns the uniform scale factor.
func (t Transform2D) Scale() float64 {
	if t.scale == 0 {
		return 1
	}
	return t.scale
}

// Rotation returns the rotation in radians.
func (t Transform2D) Rotation() float64 { return t.rotation }

// Mirrored reports whether the transform reflects x before rotating.
func (t Transform2D) Mirrored() bool { return t.mirror }

// Offset returns the translation.
func (t Transform2D) Offset() FPoint2D { return t.offset }

// SetScale sets the scale factor; 0 means 1.
func (t *Transform2D) SetScale(s float64) { t.scale = s }

// SetRotation sets the rotation in radians.
func (t *Transform2D) SetRotation(r float64) { t.rotation = r }

// SetOffset sets the translation.
func (t *Transform2D) SetOffset(o FPoint2D) { t.offset = o }

// SetMirror replaces the reflection, keeping scale, rotation and offset.
func (t *Transform2D) SetMirror(m Mirror2D) {
	switch m {
	case MirrorX:
		t.mirror = true
	case MirrorY:
		t.mirror = true
		t.rotation += math.Pi
	case MirrorXY:
		t.mirror = false
		t.rotation += math.Pi
	default:
		t.mirror = false
	}
}

// IsIdentity reports whether t maps every point onto itself.
func (t Transform2D) IsIdentity() bool {
	return t.Matrix() == Identity().Matrix()
}

// Matrix realizes the transform as a 3x3 matrix.
func (t Transform2D) Matrix() Matrix {
	c, s := trig(t.rotation)
	k := t.Scale()
	f := 1.0
	if t.mirror {
		f = -1
	}
	return Matrix{
		A11: k * c * f, A12: -k * s, A13: t.offset.X,
		A21: k * s * f, A22: k * c, A23: t.offset.Y,
		A33: 1,
	}
}

// ApplyF maps a floating point coordinate.
func (t Transform2D) ApplyF(p FPoint2D) FPoint2D {
	m := t.Matrix()
	return FPoint2D{
		X: m.A11*p.X + m.A12*p.Y + m.A13,
		Y: m.A21*p.X + m.A22*p.Y + m.A23,
	}
}

// Apply maps p and rounds the result to the nearest database unit.
func (t Transform2D) Apply(p Point2D) Point2D {
	return t.ApplyF(p.Float()).Round()
}

// Compose returns the transform that applies inner first and t second.
func (t Transform2D) Compose(inner Transform2D) Transform2D {
	rot := inner.rotation
	if t.mirror {
		rot = -rot
	}
	return Transform2D{
		scale:    t.Scale() * inner.Scale(),
		rotation: normalizeAngle(t.rotation + rot),
		mirror:   t.mirror != inner.mirror,
		offset:   t.ApplyF(inner.offset),
	}
}

// Inverse returns the transform undoing t. It fails for a scale that is not
// a finite number.
func (t Transform2D) Inverse() (Transform2D, error) {
	k := t.Scale()
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return Transform2D{}, fmt.Errorf("invert transform: scale %g", k)
	}
	inv := Transform2D{scale: 1 / k, mirror: t.mirror, rotation: -t.rotation}
	if t.mirror {
		inv.rotation = t.rotation
	}
	o := inv.ApplyF(t.offset)
	inv.offset = FPoint2D{X: -o.X, Y: -o.Y}
	return inv, nil
}

// IsAxisAligned reports whether the rotation is a multiple of a quarter turn,
// so rectangles stay rectangles.
func (t Transform2D) IsAxisAligned() bool {
	c, s := trig(t.rotation)
	return c == 0 || s == 0
}

func (t Transform2D) String() string {
	return fmt.Sprintf("Transform2D{scale: %g, rotation: %g, mirror: %t, offset: (%g, %g)}",
		t.Scale(), t.rotation, t.mirror, t.offset.X, t.offset.Y)
}

const trigEpsilon = 1e-12

// trig returns cos and sin of r with values within trigEpsilon of 0 or 1
// snapped, so quarter turns realize to exact matrices.
func trig(r float64) (float64, float64) {
	return snap(math.Cos(r)), snap(math.Sin(r))
}

func snap(v float64) float64 {
	switch {
	case math.Abs(v) < trigEpsilon:
		return 0
	case math.Abs(v-1) < trigEpsilon:
		return 1
	case math.Abs(v+1) < trigEpsilon:
		return -1
	}
	return v
}

func normalizeAngle(r float64) float64 {
	r = math.Mod(r, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r
}
