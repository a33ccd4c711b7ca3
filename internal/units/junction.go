package units

import (
	"rivernet/internal/field"
	"rivernet/internal/schema"
)

// Conserve is the quantity a junction keeps equal across its labels.
type Conserve int

const (
	ConserveWaterLevel Conserve = iota
	ConserveTotalEnergy
)

func (c Conserve) String() string {
	if c == ConserveTotalEnergy {
		return "total energy"
	}
	return "water level"
}

// Junction joins every label it lists into one point.
type Junction struct {
	base
	Conserve Conserve
}

func (j *Junction) IsJunction() bool { return true }

func newJunction(kind schema.Kind, conserve Conserve, values field.Values, meta Meta) *Junction {
	return &Junction{base: newBase(kind, values, meta), Conserve: conserve}
}

// ElevationArea is one row of a reservoir's stage-area table.
type ElevationArea struct {
	Elevation, Area float64
}

// Reservoir is a storage area behaving as a water level junction.
type Reservoir struct {
	Junction
	Area []ElevationArea
}

func newReservoir(values field.Values, meta Meta) *Reservoir {
	r := &Reservoir{Junction: *newJunction(schema.KindReservoir, ConserveWaterLevel, values, meta)}
	for _, row := range values.Table("area") {
		r.Area = append(r.Area, ElevationArea{floatOf(row, "elevation"), floatOf(row, "area")})
	}
	return r
}
