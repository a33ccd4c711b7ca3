package units

import (
	"rivernet/internal/field"
	"rivernet/internal/record"
	"rivernet/internal/schema"
)

// General holds the model-wide parameters from the top of the file.
type General struct {
	base
	Title                  string
	NumUnits               int
	LowerFroudeTransition  float64
	UpperFroudeTransition  float64
	MinimumDepth           float64
	DirectMethodTolerance  float64
	NodeLabelLength        int
	UnitsType              string
	Temperature            float64
	HeadTolerance          float64
	FlowTolerance          float64
	MathematicalDamping    float64
	PivotalChoiceParameter float64
	UnderRelaxation        float64
	MatrixDummyCoefficient float64
	RadFile                string
}

func newGeneral(values field.Values, meta Meta) *General {
	g := &General{
		base:                   base{kind: schema.KindGeneral, meta: meta},
		Title:                  meta.Comment,
		LowerFroudeTransition:  floatOf(values, "lower_Fr_transition"),
		UpperFroudeTransition:  floatOf(values, "upper_Fr_transition"),
		MinimumDepth:           floatOf(values, "minimum_depth"),
		DirectMethodTolerance:  floatOf(values, "direct_method_tolerance"),
		UnitsType:              values.String("units_type"),
		Temperature:            floatOf(values, "temperature"),
		HeadTolerance:          floatOf(values, "head_tolerance"),
		FlowTolerance:          floatOf(values, "flow_tolerance"),
		MathematicalDamping:    floatOf(values, "mathematical_damping"),
		PivotalChoiceParameter: floatOf(values, "pivotal_choice_parameter"),
		UnderRelaxation:        floatOf(values, "under_relaxation"),
		MatrixDummyCoefficient: floatOf(values, "matrix_dummy_coefficient"),
		RadFile:                values.String("rad_filename"),
	}
	g.NumUnits, _ = values.Int("num_units")
	if n, ok := values.Int("node_label_length"); ok {
		g.NodeLabelLength = n
	} else {
		g.NodeLabelLength = record.DefaultNodeLabelLength
	}
	return g
}
