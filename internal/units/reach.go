package units

import (
	"fmt"
	"math"
	"strings"

	"rivernet/internal/field"
	"rivernet/internal/schema"
)

func newReach(kind schema.Kind, values field.Values, meta Meta) reach {
	return reach{base: newBase(kind, values, meta), chainage: floatOf(values, "chainage")}
}

// SectionPoint is one row of a river cross-section.
type SectionPoint struct {
	X, Z, N      float64
	Panel        bool
	RPL          float64
	HasRPL       bool
	BankMarker   string
	Easting      float64
	Northing     float64
	HasLocation  bool
	Deactivation string
}

// CrossSection is the surveyed profile of a river section with its
// markers resolved.
type CrossSection struct {
	Points          []SectionPoint
	PanelBoundaries []float64
	LeftBank        float64
	RightBank       float64
	Bed             float64
	ActiveFrom      float64
	ActiveTo        float64
}

func newCrossSection(rows []field.Values) (CrossSection, error) {
	var xs CrossSection
	if len(rows) == 0 {
		return xs, nil
	}
	for i, r := range rows {
		p := SectionPoint{
			X:            floatOf(r, "x"),
			Z:            floatOf(r, "z"),
			N:            floatOf(r, "n"),
			BankMarker:   strings.ToUpper(r.String("bank_marker")),
			Deactivation: strings.ToUpper(r.String("deactivation_marker")),
		}
		switch panel := r.String("panel"); panel {
		case "":
		case "*":
			p.Panel = true
		default:
			return xs, fmt.Errorf("cross-section row %d: panel marker %q is not '*'", i+1, panel)
		}
		p.RPL, p.HasRPL = r.Float("rpl")
		e, okE := r.Float("easting")
		n, okN := r.Float("northing")
		if okE && okN {
			p.Easting, p.Northing, p.HasLocation = e, n, true
		}
		if i > 0 && p.X < xs.Points[i-1].X {
			return xs, fmt.Errorf("cross-section row %d: x %.3f decreases", i+1, p.X)
		}
		xs.Points = append(xs.Points, p)
	}

	first, last := xs.Points[0], xs.Points[len(xs.Points)-1]
	xs.LeftBank, xs.RightBank = first.X, last.X
	xs.ActiveFrom, xs.ActiveTo = first.X, last.X

	if !first.Panel {
		xs.PanelBoundaries = append(xs.PanelBoundaries, first.X)
	}
	bedZ := math.Inf(1)
	markedBed := false
	for _, p := range xs.Points {
		if p.Panel {
			xs.PanelBoundaries = append(xs.PanelBoundaries, p.X)
		}
		switch p.BankMarker {
		case "LEFT":
			xs.LeftBank = p.X
		case "RIGHT":
			xs.RightBank = p.X
		case "BED":
			xs.Bed = p.X
			markedBed = true
		}
		if !markedBed && p.Z < bedZ {
			bedZ = p.Z
			xs.Bed = p.X
		}
		switch p.Deactivation {
		case "LEFT":
			xs.ActiveFrom = p.X
		case "RIGHT":
			xs.ActiveTo = p.X
		}
	}
	if !last.Panel {
		xs.PanelBoundaries = append(xs.PanelBoundaries, last.X)
	}
	return xs, nil
}

// RiverSection is a surveyed cross-section on an open channel.
type RiverSection struct {
	reach
	CrossSection CrossSection
}

func newRiverSection(values field.Values, meta Meta) (*RiverSection, error) {
	u := &RiverSection{reach: newReach(schema.KindRiverSection, values, meta)}
	xs, err := newCrossSection(values.Table("xs"))
	if err != nil {
		return nil, fmt.Errorf("river section %s: %w", u.Name(), err)
	}
	u.CrossSection = xs
	return u, nil
}

// CESPoint is one profile point of a conveyance estimation section.
type CESPoint struct {
	X, Z       float64
	BankMarker string
}

// RoughnessZone is a roughness class applying from X to the next zone.
type RoughnessZone struct {
	X         float64
	Class     string
	Roughness float64
}

// CESSection is a cross-section whose conveyance is estimated from
// roughness zones.
type CESSection struct {
	reach
	Sinuosity     float64
	RoughnessType string
	Points        []CESPoint
	Zones         []RoughnessZone
}

func newCESSection(values field.Values, meta Meta) *CESSection {
	u := &CESSection{
		reach:         newReach(schema.KindCESSection, values, meta),
		Sinuosity:     floatOf(values, "sinuosity"),
		RoughnessType: values.String("roughness_type"),
	}
	for _, r := range values.Table("xs") {
		u.Points = append(u.Points, CESPoint{X: floatOf(r, "x"), Z: floatOf(r, "z"), BankMarker: r.String("bank_marker")})
	}
	for _, r := range values.Table("zones") {
		u.Zones = append(u.Zones, RoughnessZone{X: floatOf(r, "x"), Class: r.String("roughness_class"), Roughness: floatOf(r, "roughness")})
	}
	return u
}

// WaveSpeed is one row of a Muskingham wavespeed attenuation table.
type WaveSpeed struct {
	Q, C, A, Y float64
}

// MuskinghamVPMC is a hydrological routing reach.
type MuskinghamVPMC struct {
	reach
	Elevation       float64
	Slope           float64
	MinimumSubnodes float64
	MaximumSubnodes float64
	Attenuation     []WaveSpeed
	DataType        string
	// VQ holds velocity/flow pairs for "VQ RATING" data.
	VQ [][2]float64
	// PowerLaw holds a, b, minimum velocity and minimum discharge for
	// "VQ POWER L" data.
	PowerLaw [4]float64
}

func newMuskinghamVPMC(values field.Values, meta Meta) (*MuskinghamVPMC, error) {
	u := &MuskinghamVPMC{
		reach:           newReach(schema.KindMuskVPMC, values, meta),
		Elevation:       floatOf(values, "elevation"),
		Slope:           floatOf(values, "slope"),
		MinimumSubnodes: floatOf(values, "minimum_subnodes"),
		MaximumSubnodes: floatOf(values, "maximum_subnodes"),
		DataType:        values.String("data_type"),
	}
	for _, r := range values.Table("c") {
		u.Attenuation = append(u.Attenuation, WaveSpeed{floatOf(r, "q"), floatOf(r, "c"), floatOf(r, "a"), floatOf(r, "y")})
	}
	switch u.DataType {
	case "VQ RATING":
		for _, r := range values.Table("vq") {
			u.VQ = append(u.VQ, [2]float64{floatOf(r, "v"), floatOf(r, "q")})
		}
	case "VQ POWER L":
		u.PowerLaw = [4]float64{
			floatOf(values, "a"), floatOf(values, "b"),
			floatOf(values, "minimum_velocity"), floatOf(values, "minimum_discharge"),
		}
	default:
		return nil, fmt.Errorf("muskingham unit %s: unsupported data type %q", u.Name(), u.DataType)
	}
	return u, nil
}

// Interpolate is a section interpolated from its neighbours.
type Interpolate struct {
	reach
	Easting, Northing float64
}

func newInterpolate(values field.Values, meta Meta) *Interpolate {
	return &Interpolate{
		reach:    newReach(schema.KindInterpolate, values, meta),
		Easting:  floatOf(values, "easting"),
		Northing: floatOf(values, "northing"),
	}
}

// Replicate copies the previous section, lowered by BedDrop.
type Replicate struct {
	reach
	BedDrop           float64
	Easting, Northing float64
}

func newReplicate(values field.Values, meta Meta) *Replicate {
	return &Replicate{
		reach:    newReach(schema.KindReplicate, values, meta),
		BedDrop:  floatOf(values, "bed_drop"),
		Easting:  floatOf(values, "easting"),
		Northing: floatOf(values, "northing"),
	}
}

// Slot is a Preissmann slot on a closed conduit.
type Slot struct {
	Status string
	Height float64
	Depth  float64
}

// Conduit is a closed channel section.
type Conduit struct {
	reach
	Shape          string
	FrictionMethod string
	Invert         float64
	// Dimensions holds the shape's size attributes, e.g. "diameter" or
	// "width" and "height".
	Dimensions map[string]float64
	Friction   map[string]float64
	BottomSlot Slot
	TopSlot    Slot
}

var conduitDimensions = map[schema.Kind][]string{
	schema.KindConduitCirc:  {"diameter"},
	schema.KindConduitRect:  {"width", "height"},
	schema.KindConduitFull:  {"width", "arch_height"},
	schema.KindConduitSprng: {"width", "springing_height", "crown_height"},
}

var conduitFriction = map[schema.Kind][]string{
	schema.KindConduitCirc:  {"friction_below_axis", "friction_above_axis"},
	schema.KindConduitRect:  {"friction_bottom", "friction_sides", "friction_top"},
	schema.KindConduitFull:  {"friction_below_axis", "friction_above_axis"},
	schema.KindConduitSprng: {"friction_bed", "friction_walls", "friction_soffit"},
}

func newConduit(kind schema.Kind, values field.Values, meta Meta) (*Conduit, error) {
	u := &Conduit{
		reach:          newReach(kind, values, meta),
		Shape:          strings.TrimPrefix(string(kind), "CONDUIT "),
		FrictionMethod: values.String("friction_method"),
		Invert:         floatOf(values, "invert"),
		Dimensions:     map[string]float64{},
		Friction:       map[string]float64{},
		BottomSlot:     Slot{values.String("bottom_slot_status"), floatOf(values, "bottom_slot_height"), floatOf(values, "bottom_slot_depth")},
		TopSlot:        Slot{values.String("top_slot_status"), floatOf(values, "top_slot_height"), floatOf(values, "top_slot_depth")},
	}
	for _, attr := range conduitDimensions[kind] {
		u.Dimensions[attr] = floatOf(values, attr)
	}
	for _, attr := range conduitFriction[kind] {
		u.Friction[attr] = floatOf(values, attr)
	}
	if kind == schema.KindConduitSprng && u.Dimensions["crown_height"] < u.Dimensions["springing_height"] {
		return nil, fmt.Errorf("conduit %s: crown height is below springing height", u.Name())
	}
	return u, nil
}
