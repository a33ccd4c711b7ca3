package units

import (
	"rivernet/internal/field"
	"rivernet/internal/schema"
)

type boundary struct {
	base
}

func (b *boundary) IsBoundary() bool { return true }

// SeriesPoint is one row of a boundary series. For QH boundaries Value is
// flow and Time holds head.
type SeriesPoint struct {
	Value, Time float64
}

// Boundary is a flow-time, head-time or flow-head boundary condition.
type Boundary struct {
	boundary
	TimeLag         float64
	TimeDatum       float64
	Multiplier      float64
	TimeUnits       string
	ExtendingMethod string
	Interpolation   string
	Series          []SeriesPoint
}

func newBoundary(kind schema.Kind, values field.Values, meta Meta) *Boundary {
	b := &Boundary{
		boundary:        boundary{newBase(kind, values, meta)},
		TimeLag:         floatOf(values, "time_lag"),
		TimeDatum:       floatOf(values, "time_datum"),
		Multiplier:      floatOf(values, "multiplier"),
		TimeUnits:       values.String("time_units"),
		ExtendingMethod: values.String("extending_method"),
		Interpolation:   values.String("interpolation"),
	}
	valueAttr, timeAttr := "flow", "time"
	switch kind {
	case schema.KindHTBoundary:
		valueAttr = "head"
	case schema.KindQHBoundary:
		timeAttr = "head"
	}
	for _, r := range values.Table("series") {
		b.Series = append(b.Series, SeriesPoint{floatOf(r, valueAttr), floatOf(r, timeAttr)})
	}
	return b
}

// LateralLink distributes part of a lateral inflow to a label.
type LateralLink struct {
	Label    string
	Weight   float64
	FlowType string
}

// Lateral spreads an inflow over other labels.
type Lateral struct {
	boundary
	Weighting string
	Links     []LateralLink
}

func newLateral(values field.Values, meta Meta) *Lateral {
	l := &Lateral{
		boundary:  boundary{newBase(schema.KindLateral, values, meta)},
		Weighting: values.String("weighting"),
	}
	for _, r := range values.Table("laterals") {
		l.Links = append(l.Links, LateralLink{r.String("label"), floatOf(r, "weight"), r.String("flow_type")})
	}
	return l
}
