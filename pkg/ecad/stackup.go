package ecad

import "fmt"

// LayerType classifies a stackup layer.
type LayerType int

const (
	ConductingLayer LayerType = iota
	DielectricLayer
)

func (t LayerType) String() string {
	switch t {
	case ConductingLayer:
		return "conducting"
	case DielectricLayer:
		return "dielectric"
	}
	return fmt.Sprintf("LayerType(%d)", int(t))
}

// ParseLayerType converts the String form back to a LayerType.
func ParseLayerType(s string) (LayerType, error) {
	switch s {
	case "conducting":
		return ConductingLayer, nil
	case "dielectric":
		return DielectricLayer, nil
	}
	return 0, invalidInput("unknown layer type %q", s)
}

// Default materials for new layers.
const (
	DefaultConductingMaterial = "copper"
	DefaultDielectricMaterial = "silicon"
)

// StackupLayer is one physical layer. Its id is its position in the owning
// layout's stackup. Elevation is the z coordinate of the layer's top face and
// thickness extends downward from it.
type StackupLayer struct {
	suuid         Suuid
	name          string
	typ           LayerType
	elevation     float64
	thickness     float64
	conductingMat string
	dielectricMat string
}

// NewStackupLayer creates a layer with default materials and zero elevation
// and thickness.
func NewStackupLayer(name string, typ LayerType) *StackupLayer {
	return &StackupLayer{
		suuid:         newSuuid(),
		name:          name,
		typ:           typ,
		conductingMat: DefaultConductingMaterial,
		dielectricMat: DefaultDielectricMaterial,
	}
}

func (l *StackupLayer) Suuid() Suuid               { return l.suuid }
func (l *StackupLayer) Name() string               { return l.name }
func (l *StackupLayer) Type() LayerType            { return l.typ }
func (l *StackupLayer) Elevation() float64         { return l.elevation }
func (l *StackupLayer) Thickness() float64         { return l.thickness }
func (l *StackupLayer) ConductingMaterial() string { return l.conductingMat }
func (l *StackupLayer) DielectricMaterial() string { return l.dielectricMat }

// IsConducting reports whether the layer carries copper.
func (l *StackupLayer) IsConducting() bool { return l.typ == ConductingLayer }

func (l *StackupLayer) SetElevation(e float64) {
	l.elevation = e
	changed()
}

func (l *StackupLayer) SetThickness(t float64) {
	l.thickness = t
	changed()
}

func (l *StackupLayer) SetConductingMaterial(m string) {
	l.conductingMat = m
	changed()
}

func (l *StackupLayer) SetDielectricMaterial(m string) {
	l.dielectricMat = m
	changed()
}

// Clone returns a copy with a fresh suuid.
func (l *StackupLayer) Clone() *StackupLayer {
	c := *l
	c.suuid = newSuuid()
	return &c
}
