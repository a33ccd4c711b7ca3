package units

import (
	"fmt"
	"strings"

	"rivernet/internal/field"
	"rivernet/internal/schema"
)

func newStructure(kind schema.Kind, values field.Values, meta Meta) (structure, error) {
	s := structure{base: newBase(kind, values, meta)}
	if s.UpstreamLabel() == "" || s.DownstreamLabel() == "" {
		return s, fmt.Errorf("%s %s at line %d needs upstream and downstream labels", kind, s.Name(), meta.Line)
	}
	return s, nil
}

// BridgePoint is one row of a bridge cross-section.
type BridgePoint struct {
	X, Z, N    float64
	Embankment string
}

// Opening is one arch or span of a bridge.
type Opening struct {
	Start, Finish  float64
	SpringingLevel float64
	SoffitLevel    float64
}

// Bridge is an arch or USBPR bridge structure.
type Bridge struct {
	structure
	Method                 string
	CalibrationCoefficient float64
	Skew                   float64
	Width                  float64
	DualDistance           float64
	Piers                  int
	Abutment               string
	Section                []BridgePoint
	Openings               []Opening
}

func newBridge(kind schema.Kind, values field.Values, meta Meta) (*Bridge, error) {
	s, err := newStructure(kind, values, meta)
	if err != nil {
		return nil, err
	}
	b := &Bridge{
		structure:              s,
		Method:                 strings.TrimPrefix(string(kind), "BRIDGE "),
		CalibrationCoefficient: floatOf(values, "calibration_coefficient"),
		Skew:                   floatOf(values, "skew"),
		Width:                  floatOf(values, "bridge_width"),
		DualDistance:           floatOf(values, "dual_distance"),
		Abutment:               values.String("abutment_type"),
	}
	b.Piers, _ = values.Int("num_piers")
	for _, r := range values.Table("xs") {
		b.Section = append(b.Section, BridgePoint{floatOf(r, "x"), floatOf(r, "z"), floatOf(r, "n"), r.String("embankment")})
	}
	for i, r := range values.Table("openings") {
		o := Opening{floatOf(r, "start"), floatOf(r, "finish"), floatOf(r, "springing_level"), floatOf(r, "soffit_level")}
		if o.Finish < o.Start {
			return nil, fmt.Errorf("bridge %s opening %d finishes before it starts", b.Name(), i+1)
		}
		b.Openings = append(b.Openings, o)
	}
	return b, nil
}

// Spill is a weir spilling between two labels.
type Spill struct {
	structure
	WeirCoefficient float64
	ModularLimit    float64
	// Section holds x, z, easting, northing per crest point.
	Section [][4]float64
}

func newSpill(values field.Values, meta Meta) (*Spill, error) {
	s, err := newStructure(schema.KindSpill, values, meta)
	if err != nil {
		return nil, err
	}
	u := &Spill{
		structure:       s,
		WeirCoefficient: floatOf(values, "weir_coefficient"),
		ModularLimit:    floatOf(values, "modular_limit"),
	}
	for _, r := range values.Table("section") {
		u.Section = append(u.Section, [4]float64{floatOf(r, "x"), floatOf(r, "z"), floatOf(r, "easting"), floatOf(r, "northing")})
	}
	return u, nil
}

// Culvert is a culvert inlet, outlet or bend loss.
type Culvert struct {
	structure
	Part            string
	LossCoefficient float64
	ReverseFlowMode string
	// Inlet coefficients; zero for outlets and bends.
	K, M, C, Y, Ki   float64
	ConduitType      string
	ScreenWidth      float64
	BarProportion    float64
	DebrisProportion float64
}

func newCulvert(kind schema.Kind, values field.Values, meta Meta) (*Culvert, error) {
	s, err := newStructure(kind, values, meta)
	if err != nil {
		return nil, err
	}
	return &Culvert{
		structure:        s,
		Part:             strings.TrimPrefix(string(kind), "CULVERT "),
		LossCoefficient:  floatOf(values, "loss_coefficient"),
		ReverseFlowMode:  values.String("reverse_flow_mode"),
		K:                floatOf(values, "k"),
		M:                floatOf(values, "m"),
		C:                floatOf(values, "c"),
		Y:                floatOf(values, "y"),
		Ki:               floatOf(values, "ki"),
		ConduitType:      values.String("conduit_type"),
		ScreenWidth:      floatOf(values, "screen_width"),
		BarProportion:    floatOf(values, "bar_proportion"),
		DebrisProportion: floatOf(values, "debris_proportion"),
	}, nil
}
