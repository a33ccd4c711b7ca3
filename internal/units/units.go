// Package units holds the typed domain objects built from validated unit
// records.
package units

import (
	"errors"
	"fmt"

	"rivernet/internal/field"
	"rivernet/internal/record"
	"rivernet/internal/schema"
)

// ErrUnknownKind is returned by New for a kind with no domain type.
var ErrUnknownKind = errors.New("unknown unit kind")

// Unit is the capability set shared by every unit variant.
type Unit interface {
	Kind() schema.Kind
	Name() string
	NodeLabels() []string
	// Connections are the non-blank node labels.
	Connections() []string
	UpstreamLabel() string
	DownstreamLabel() string
	IsReachComponent() bool
	IsStructure() bool
	IsJunction() bool
	IsBoundary() bool
	Line() int
	Comment() string
}

// ReachComponent is a unit that forms part of a reach.
type ReachComponent interface {
	Unit
	// Chainage is the distance to the next unit; zero ends a reach.
	Chainage() float64
}

// Meta is record information that is not part of the values mapping.
type Meta struct {
	Line     int
	Comment  string
	Comment2 string
}

type base struct {
	kind   schema.Kind
	labels []string
	meta   Meta
}

func newBase(kind schema.Kind, values field.Values, meta Meta) base {
	labels := values.Strings(record.NodeLabelsAttr)
	return base{kind: kind, labels: labels, meta: meta}
}

func (b *base) Kind() schema.Kind      { return b.kind }
func (b *base) NodeLabels() []string   { return b.labels }
func (b *base) Line() int              { return b.meta.Line }
func (b *base) Comment() string        { return b.meta.Comment }
func (b *base) IsReachComponent() bool { return false }
func (b *base) IsStructure() bool      { return false }
func (b *base) IsJunction() bool       { return false }
func (b *base) IsBoundary() bool       { return false }

func (b *base) Name() string {
	if len(b.labels) == 0 {
		return ""
	}
	return b.labels[0]
}

func (b *base) Connections() []string {
	var out []string
	for _, l := range b.labels {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func (b *base) UpstreamLabel() string   { return b.Name() }
func (b *base) DownstreamLabel() string { return b.Name() }

func (b *base) String() string {
	return fmt.Sprintf("%s %v", b.kind, b.Connections())
}

// reach is embedded by reach-forming variants. Water enters by the unit's
// own label and leaves by its second label, or by its own label when the
// second slot is blank.
type reach struct {
	base
	chainage float64
}

func (r *reach) IsReachComponent() bool { return true }
func (r *reach) Chainage() float64      { return r.chainage }

func (r *reach) DownstreamLabel() string {
	if len(r.labels) > 1 && r.labels[1] != "" {
		return r.labels[1]
	}
	return r.Name()
}

// structure is embedded by variants that join two labels.
type structure struct {
	base
}

func (s *structure) IsStructure() bool { return true }

func (s *structure) UpstreamLabel() string { return s.label(0) }

func (s *structure) DownstreamLabel() string { return s.label(1) }

func (s *structure) label(i int) string {
	if i < len(s.labels) {
		return s.labels[i]
	}
	return ""
}

// New builds the domain object for a kind from applied values.
func New(kind schema.Kind, values field.Values, meta Meta) (Unit, error) {
	if kind != schema.KindGeneral && len(values.Strings(record.NodeLabelsAttr)) == 0 {
		return nil, fmt.Errorf("%s at line %d has no node labels", kind, meta.Line)
	}
	switch kind {
	case schema.KindGeneral:
		return newGeneral(values, meta), nil
	case schema.KindRiverSection:
		return checked(newRiverSection(values, meta))
	case schema.KindCESSection:
		return newCESSection(values, meta), nil
	case schema.KindMuskVPMC:
		return checked(newMuskinghamVPMC(values, meta))
	case schema.KindInterpolate:
		return newInterpolate(values, meta), nil
	case schema.KindReplicate:
		return newReplicate(values, meta), nil
	case schema.KindConduitCirc, schema.KindConduitRect, schema.KindConduitFull, schema.KindConduitSprng:
		return checked(newConduit(kind, values, meta))
	case schema.KindJunctionOpen:
		return newJunction(kind, ConserveWaterLevel, values, meta), nil
	case schema.KindJunctionEnrg:
		return newJunction(kind, ConserveTotalEnergy, values, meta), nil
	case schema.KindReservoir:
		return newReservoir(values, meta), nil
	case schema.KindBridgeArch, schema.KindBridgeUSBPR:
		return checked(newBridge(kind, values, meta))
	case schema.KindSpill:
		return checked(newSpill(values, meta))
	case schema.KindCulvertInlet, schema.KindCulvertOut, schema.KindCulvertBend:
		return checked(newCulvert(kind, values, meta))
	case schema.KindQTBoundary, schema.KindHTBoundary, schema.KindQHBoundary:
		return newBoundary(kind, values, meta), nil
	case schema.KindLateral:
		return newLateral(values, meta), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

// checked keeps a failed constructor from leaking a typed nil Unit.
func checked[T Unit](u T, err error) (Unit, error) {
	if err != nil {
		return nil, err
	}
	return u, nil
}

func floatOf(values field.Values, attr string) float64 {
	f, _ := values.Float(attr)
	return f
}
