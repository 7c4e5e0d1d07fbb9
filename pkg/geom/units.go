package geom

import "math"

// CoordUnits relates user units to database units. Unit is the size of one
// user unit in meters (1e-3 for millimeters) and Precision the size of one
// database unit in meters.
type CoordUnits struct {
	Unit      float64 `json:"unit"`
	Precision float64 `json:"precision"`
}

// DefaultCoordUnits uses millimeters as user unit and nanometers as database
// unit.
func DefaultCoordUnits() CoordUnits {
	return CoordUnits{Unit: 1e-3, Precision: 1e-9}
}

// NewCoordUnits returns units for the given user unit and database precision.
// Non-positive values are replaced by the defaults.
func NewCoordUnits(unit, precision float64) CoordUnits {
	d := DefaultCoordUnits()
	if unit <= 0 {
		unit = d.Unit
	}
	if precision <= 0 {
		precision = d.Precision
	}
	return CoordUnits{Unit: unit, Precision: precision}
}

// Scale2Coord returns the number of database units per user unit.
func (u CoordUnits) Scale2Coord() float64 {
	return u.Unit / u.Precision
}

// Scale2Unit returns the number of user units per database unit.
func (u CoordUnits) Scale2Unit() float64 {
	return u.Precision / u.Unit
}

// ToCoord converts a length in user units to database units.
func (u CoordUnits) ToCoord(v float64) int64 {
	return int64(math.Round(v * u.Scale2Coord()))
}

// ToCoordPoint converts a point in user units to database units.
func (u CoordUnits) ToCoordPoint(p FPoint2D) Point2D {
	return Point2D{X: u.ToCoord(p.X), Y: u.ToCoord(p.Y)}
}

// ToUnit converts a length in database units to user units.
func (u CoordUnits) ToUnit(c int64) float64 {
	return float64(c) * u.Scale2Unit()
}
