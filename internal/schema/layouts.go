package schema

import (
	"rivernet/internal/field"
	"rivernet/internal/record"
)

// Most data columns are ten characters wide.
const col = 10

func row(fields ...*field.Spec) *record.Row { return record.NewRow(fields...) }

func labels(n int) *record.NodeLabelRow { return &record.NodeLabelRow{Count: n} }

func num(attr string, i int, opts ...field.Option) *field.Spec {
	return field.Float(attr, i*col, col, opts...)
}

func count(attr string) *field.Spec {
	return field.Int(attr, 0, col, field.ApplyRequired(), field.Required(), field.Min(0))
}

func table(attr, countAttr string, r *record.Row) *record.Table {
	return &record.Table{Attr: attr, RowCountAttr: countAttr, Row: r}
}

func text(attr string, i int, opts ...field.Option) *field.Spec {
	return field.Str(attr, i*col, col, append([]field.Option{field.Left()}, opts...)...)
}

func revisionAtLeast(n int) record.Condition {
	return func(c record.Context) bool { return c.Revision() >= n }
}

func unmarked(c record.Context) bool { return c.Revision() == 0 }

func valueIs(attr, want string) record.Condition {
	return func(c record.Context) bool { return c.Values().String(attr) == want }
}

var general = &Schema{
	Kind: KindGeneral,
	Components: []record.Component{
		row(field.Keyword("#REVISION#")).If(revisionAtLeast(1)),
		row(
			field.Int("num_units", 0, col, field.Min(0)),
			num("lower_Fr_transition", 1),
			num("upper_Fr_transition", 2),
			num("minimum_depth", 3),
			num("direct_method_tolerance", 4),
			field.Int("node_label_length", 50, col, field.ApplyRequired(), field.Range(1, 64)),
			field.Str("units_type", 60, col, field.Left(), field.OneOf("SI", "US", "METRIC", "IMPERIAL")),
		).If(revisionAtLeast(1)),
		row(
			field.Int("num_units", 0, col, field.Min(0)),
			num("lower_Fr_transition", 1),
			num("upper_Fr_transition", 2),
			num("minimum_depth", 3),
			num("direct_method_tolerance", 4),
			field.Str("units_type", 50, col, field.Left(), field.OneOf("SI", "US", "METRIC", "IMPERIAL")),
		).If(unmarked),
		row(
			num("temperature", 0),
			num("head_tolerance", 1),
			num("flow_tolerance", 2),
			num("mathematical_damping", 3),
			num("pivotal_choice_parameter", 4),
			num("under_relaxation", 5),
			num("matrix_dummy_coefficient", 6),
		),
		row(field.Keyword("RAD FILE")),
		row(field.FreeString("rad_filename")),
		row(field.Keyword("END GENERAL")),
	},
}

var crossSectionRow = row(
	num("x", 0),
	num("z", 1),
	num("n", 2, field.Min(0)),
	field.Str("panel", 30, 1, field.Left()),
	field.Float("rpl", 31, 9, field.Min(0)),
	text("bank_marker", 4),
	num("easting", 5),
	num("northing", 6),
	text("deactivation_marker", 7),
)

var riverSection = &Schema{
	Kind: KindRiverSection, Keyword: "RIVER", SubKeyword: "SECTION",
	Components: []record.Component{
		labels(7),
		row(
			num("chainage", 0, field.Required(), field.Min(0)),
			text("blank", 1),
			text("undoc1", 2),
			text("undoc2", 3),
		),
		row(count("xs_row_count")),
		table("xs", "xs_row_count", crossSectionRow),
	},
}

var cesSection = &Schema{
	Kind: KindCESSection, Keyword: "RIVER", SubKeyword: "CES SECTION",
	Components: []record.Component{
		labels(7),
		row(
			num("chainage", 0, field.Required(), field.Min(0)),
			num("sinuosity", 1, field.BlankAs(1.0), field.Min(1)),
			text("roughness_type", 2),
		),
		row(count("xs_row_count")),
		table("xs", "xs_row_count", row(
			num("x", 0),
			num("z", 1),
			text("bank_marker", 2),
			num("easting", 3),
			num("northing", 4),
		)),
		row(count("zone_row_count")),
		table("zones", "zone_row_count", row(
			num("x", 0),
			text("roughness_class", 1),
			num("roughness", 2, field.Min(0)),
		)),
	},
}

var muskVPMC = &Schema{
	Kind: KindMuskVPMC, Keyword: "RIVER", SubKeyword: "MUSK-VPMC",
	Components: []record.Component{
		labels(1),
		row(
			num("chainage", 0, field.Required(), field.Min(0)),
			num("elevation", 1),
			num("slope", 2),
			num("minimum_subnodes", 3),
			num("maximum_subnodes", 4),
		),
		row(field.Keyword("WAVESPEED ATTENUATION")),
		row(count("c_row_count")),
		table("c", "c_row_count", row(num("q", 0), num("c", 1), num("a", 2), num("y", 3))),
		row(text("data_type", 0, field.ApplyRequired(), field.OneOf("VQ RATING", "VQ POWER L"))),
		row(count("vq_row_count")).If(valueIs("data_type", "VQ RATING")),
		&record.Table{
			Attr:         "vq",
			RowCountAttr: "vq_row_count",
			Row:          row(num("v", 0), num("q", 1)),
			When:         valueIs("data_type", "VQ RATING"),
		},
		row(
			num("a", 0),
			num("b", 1),
			num("minimum_velocity", 2),
			num("minimum_discharge", 3),
		).If(valueIs("data_type", "VQ POWER L")),
	},
}

var interpolate = &Schema{
	Kind: KindInterpolate, Keyword: "INTERPOLATE",
	Components: []record.Component{
		labels(1),
		row(
			num("chainage", 0, field.Required(), field.Min(0)),
			num("easting", 1),
			num("northing", 2),
		),
	},
}

var replicate = &Schema{
	Kind: KindReplicate, Keyword: "REPLICATE",
	Components: []record.Component{
		labels(1),
		row(
			num("chainage", 0, field.Required(), field.Min(0)),
			num("bed_drop", 1, field.BlankAs(0.0)),
			num("easting", 2),
			num("northing", 3),
		),
	},
}

func conduit(kind Kind, sub string, dims *record.Row, friction *record.Row) *Schema {
	return &Schema{
		Kind: kind, Keyword: "CONDUIT", SubKeyword: sub,
		Components: []record.Component{
			labels(1),
			row(num("chainage", 0, field.Required(), field.Min(0))),
			// COLEBROOK-WHITE is cut to the column width in files.
			row(text("friction_method", 0, field.OneOf("MANNING", "COLEBROOK-"))),
			dims,
			friction,
		},
	}
}

var conduits = []*Schema{
	conduit(KindConduitCirc, "CIRCULAR",
		row(
			num("invert", 0),
			num("diameter", 1, field.Required(), field.Min(0)),
			text("bottom_slot_status", 2, field.OneOf("ON", "OFF", "GLOBAL")),
			num("bottom_slot_height", 3),
			num("bottom_slot_depth", 4),
			text("top_slot_status", 5, field.OneOf("ON", "OFF", "GLOBAL")),
			num("top_slot_height", 6),
			num("top_slot_depth", 7),
		),
		row(num("friction_below_axis", 0, field.Min(0)), num("friction_above_axis", 1, field.Min(0))),
	),
	conduit(KindConduitRect, "RECTANGULAR",
		row(
			num("invert", 0),
			num("width", 1, field.Required(), field.Min(0)),
			num("height", 2, field.Required(), field.Min(0)),
			text("bottom_slot_status", 3, field.OneOf("ON", "OFF", "GLOBAL")),
			num("bottom_slot_height", 4),
			num("bottom_slot_depth", 5),
			text("top_slot_status", 6, field.OneOf("ON", "OFF", "GLOBAL")),
			num("top_slot_height", 7),
			num("top_slot_depth", 8),
		),
		row(
			num("friction_bottom", 0, field.Min(0)),
			num("friction_sides", 1, field.Min(0)),
			num("friction_top", 2, field.Min(0)),
		),
	),
	conduit(KindConduitFull, "FULLARCH",
		row(
			num("invert", 0),
			num("width", 1, field.Required(), field.Min(0)),
			num("arch_height", 2, field.Required(), field.Min(0)),
		),
		row(num("friction_below_axis", 0, field.Min(0)), num("friction_above_axis", 1, field.Min(0))),
	),
	conduit(KindConduitSprng, "SPRUNGARCH",
		row(
			num("invert", 0),
			num("width", 1, field.Required(), field.Min(0)),
			num("springing_height", 2, field.Required(), field.Min(0)),
			num("crown_height", 3, field.Required(), field.Min(0)),
		),
		row(
			num("friction_bed", 0, field.Min(0)),
			num("friction_walls", 1, field.Min(0)),
			num("friction_soffit", 2, field.Min(0)),
		),
	),
}

var junctions = []*Schema{
	{Kind: KindJunctionOpen, Keyword: "JUNCTION", SubKeyword: "OPEN",
		Components: []record.Component{labels(0)}},
	{Kind: KindJunctionEnrg, Keyword: "JUNCTION", SubKeyword: "ENERGY",
		Components: []record.Component{labels(0)}},
}

var reservoir = &Schema{
	Kind: KindReservoir, Keyword: "RESERVOIR",
	Components: []record.Component{
		labels(0),
		row(count("area_row_count")),
		table("area", "area_row_count", row(num("elevation", 0), num("area", 1, field.Min(0)))),
	},
}

var bridgeSectionRow = row(
	num("x", 0),
	num("z", 1),
	num("n", 2, field.Min(0)),
	text("embankment", 3),
)

var bridgeOpeningRow = row(
	num("start", 0),
	num("finish", 1),
	num("springing_level", 2),
	num("soffit_level", 3),
)

var bridges = []*Schema{
	{Kind: KindBridgeArch, Keyword: "BRIDGE", SubKeyword: "ARCH",
		Components: []record.Component{
			labels(4),
			row(
				num("calibration_coefficient", 0, field.BlankAs(1.0), field.Min(0)),
				num("skew", 1, field.BlankAs(0.0)),
				num("bridge_width", 2, field.Min(0)),
				num("dual_distance", 3, field.BlankAs(0.0)),
				text("orifice_flag", 4),
			),
			row(count("xs_row_count")),
			table("xs", "xs_row_count", bridgeSectionRow),
			row(count("opening_row_count")),
			table("openings", "opening_row_count", bridgeOpeningRow),
		}},
	{Kind: KindBridgeUSBPR, Keyword: "BRIDGE", SubKeyword: "USBPR1978",
		Components: []record.Component{
			labels(4),
			row(
				num("calibration_coefficient", 0, field.BlankAs(1.0), field.Min(0)),
				num("skew", 1, field.BlankAs(0.0)),
				num("bridge_width", 2, field.Min(0)),
				num("dual_distance", 3, field.BlankAs(0.0)),
				field.Int("num_piers", 40, col, field.BlankAs(0), field.Min(0)),
				text("abutment_type", 5),
			),
			row(count("xs_row_count")),
			table("xs", "xs_row_count", bridgeSectionRow),
			row(count("opening_row_count")),
			table("openings", "opening_row_count", bridgeOpeningRow),
		}},
}

var spill = &Schema{
	Kind: KindSpill, Keyword: "SPILL",
	Components: []record.Component{
		labels(2),
		row(num("weir_coefficient", 0, field.Min(0)), num("modular_limit", 1, field.Range(0, 1))),
		row(count("section_row_count")),
		table("section", "section_row_count", row(num("x", 0), num("z", 1), num("easting", 2), num("northing", 3))),
	},
}

var culverts = []*Schema{
	{Kind: KindCulvertInlet, Keyword: "CULVERT", SubKeyword: "INLET",
		Components: []record.Component{
			labels(4),
			row(
				num("k", 0), num("m", 1), num("c", 2), num("y", 3),
				num("ki", 4, field.Min(0)),
				text("conduit_type", 5, field.OneOf("A", "B")),
			),
			row(
				num("screen_width", 0, field.Min(0)),
				num("bar_proportion", 1, field.Range(0, 1)),
				num("debris_proportion", 2, field.Range(0, 1)),
				num("loss_coefficient", 3, field.Min(0)),
			),
		}},
	{Kind: KindCulvertOut, Keyword: "CULVERT", SubKeyword: "OUTLET",
		Components: []record.Component{
			labels(2),
			row(num("loss_coefficient", 0, field.Min(0)), text("reverse_flow_mode", 1)),
		}},
	{Kind: KindCulvertBend, Keyword: "CULVERT", SubKeyword: "BEND",
		Components: []record.Component{
			labels(4),
			row(num("loss_coefficient", 0, field.Min(0)), text("reverse_flow_mode", 1)),
		}},
}

func timeBoundary(kind Kind, keyword, valueAttr string) *Schema {
	return &Schema{
		Kind: kind, Keyword: keyword,
		Components: []record.Component{
			labels(1),
			row(
				count("series_row_count"),
				num("time_lag", 1, field.BlankAs(0.0)),
				num("time_datum", 2),
				num("multiplier", 3, field.BlankAs(1.0)),
				text("time_units", 4),
				text("extending_method", 5, field.OneOf("EXTEND", "NOEXTEND", "REPEAT")),
				text("interpolation", 6, field.OneOf("LINEAR", "SPLINE")),
			),
			table("series", "series_row_count", row(num(valueAttr, 0), num("time", 1))),
		},
	}
}

var boundaries = []*Schema{
	timeBoundary(KindQTBoundary, "QTBDY", "flow"),
	timeBoundary(KindHTBoundary, "HTBDY", "head"),
	{Kind: KindQHBoundary, Keyword: "QHBDY",
		Components: []record.Component{
			labels(1),
			row(count("series_row_count"), text("interpolation", 1, field.OneOf("LINEAR", "SPLINE"))),
			table("series", "series_row_count", row(num("flow", 0), num("head", 1))),
		}},
}

// lateralRow lays out one lateral inflow: a node label then two data
// columns that start where the label ends.
func lateralRow(width int) []*field.Spec {
	return []*field.Spec{
		field.Str("label", 0, width, field.Left(), field.Required()),
		field.Float("weight", width, col, field.Min(0)),
		field.Str("flow_type", width+col, col, field.Left()),
	}
}

var lateral = &Schema{
	Kind: KindLateral, Keyword: "LATERAL",
	Components: []record.Component{
		labels(1),
		row(text("weighting", 0, field.OneOf("AREA", "REACH", "USER"))),
		row(count("lateral_row_count")),
		&record.Table{Attr: "laterals", RowCountAttr: "lateral_row_count", Layout: lateralRow},
	},
}

// registry is tried top-down; the first matching keyword wins.
var registry = []*Entry{
	{Keyword: "RIVER", Subs: []*Schema{riverSection, cesSection, muskVPMC}},
	{Keyword: "INTERPOLATE", Schema: interpolate},
	{Keyword: "REPLICATE", Schema: replicate},
	{Keyword: "CONDUIT", Subs: conduits},
	{Keyword: "JUNCTION", Subs: junctions},
	{Keyword: "RESERVOIR", Schema: reservoir},
	{Keyword: "BRIDGE", Subs: bridges},
	{Keyword: "SPILL", Schema: spill},
	{Keyword: "CULVERT", Subs: culverts},
	{Keyword: "QTBDY", Schema: boundaries[0]},
	{Keyword: "HTBDY", Schema: boundaries[1]},
	{Keyword: "QHBDY", Schema: boundaries[2]},
	{Keyword: "LATERAL", Schema: lateral},
}
