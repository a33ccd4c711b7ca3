// Package schema holds the fixed layouts of every unit type and matches
// header lines against them.
package schema

import (
	"bytes"
	"strconv"
	"strings"

	"rivernet/internal/field"
	"rivernet/internal/record"
)

// Kind identifies a unit type.
type Kind string

const (
	KindGeneral      Kind = "GENERAL"
	KindRiverSection Kind = "RIVER SECTION"
	KindCESSection   Kind = "RIVER CES SECTION"
	KindMuskVPMC     Kind = "RIVER MUSK-VPMC"
	KindInterpolate  Kind = "INTERPOLATE"
	KindReplicate    Kind = "REPLICATE"
	KindConduitCirc  Kind = "CONDUIT CIRCULAR"
	KindConduitRect  Kind = "CONDUIT RECTANGULAR"
	KindConduitFull  Kind = "CONDUIT FULLARCH"
	KindConduitSprng Kind = "CONDUIT SPRUNGARCH"
	KindJunctionOpen Kind = "JUNCTION OPEN"
	KindJunctionEnrg Kind = "JUNCTION ENERGY"
	KindReservoir    Kind = "RESERVOIR"
	KindBridgeArch   Kind = "BRIDGE ARCH"
	KindBridgeUSBPR  Kind = "BRIDGE USBPR1978"
	KindSpill        Kind = "SPILL"
	KindCulvertInlet Kind = "CULVERT INLET"
	KindCulvertOut   Kind = "CULVERT OUTLET"
	KindCulvertBend  Kind = "CULVERT BEND"
	KindQTBoundary   Kind = "QTBDY"
	KindHTBoundary   Kind = "HTBDY"
	KindQHBoundary   Kind = "QHBDY"
	KindLateral      Kind = "LATERAL"
)

// Schema is the component sequence of one unit type.
type Schema struct {
	Kind       Kind
	Keyword    string
	SubKeyword string
	Components []record.Component
}

// Entry is one line of the registry. Single-line units carry a Schema;
// two-line units carry the sub-unit schemas matched against the second
// header line.
type Entry struct {
	Keyword string
	Schema  *Schema
	Subs    []*Schema
}

// TwoLine reports whether the unit type needs a second header line.
func (e *Entry) TwoLine() bool { return e.Schema == nil }

// Match finds the first registry entry whose keyword starts the line.
func Match(line []byte) (*Entry, bool) {
	for _, e := range registry {
		if hasKeyword(line, e.Keyword) {
			return e, true
		}
	}
	return nil, false
}

// MatchSub finds the sub-unit schema named by the second header line.
func (e *Entry) MatchSub(line []byte) (*Schema, bool) {
	for _, s := range e.Subs {
		if hasKeyword(line, s.SubKeyword) {
			return s, true
		}
	}
	return nil, false
}

// Lookup returns the schema registered for a kind.
func Lookup(kind Kind) (*Schema, bool) {
	if kind == KindGeneral {
		return general, true
	}
	for _, e := range registry {
		if e.Schema != nil && e.Schema.Kind == kind {
			return e.Schema, true
		}
		for _, s := range e.Subs {
			if s.Kind == kind {
				return s, true
			}
		}
	}
	return nil, false
}

// Kinds lists every registered unit kind in registry order.
func Kinds() []Kind {
	var out []Kind
	for _, e := range registry {
		if e.Schema != nil {
			out = append(out, e.Schema.Kind)
		}
		for _, s := range e.Subs {
			out = append(out, s.Kind)
		}
	}
	return out
}

// hasKeyword is a case-insensitive prefix match that ends on a word
// boundary, so "RIVER" does not match "RIVERSIDE".
func hasKeyword(line []byte, keyword string) bool {
	if len(line) < len(keyword) {
		return false
	}
	if !strings.EqualFold(string(line[:len(keyword)]), keyword) {
		return false
	}
	if len(line) == len(keyword) {
		return true
	}
	c := line[len(keyword)]
	return !isWordByte(c)
}

func isWordByte(c byte) bool {
	return c == '_' || c == '-' || c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}

// Terminator reports whether the line starts the trailing sections of the
// file (initial conditions onwards), which are kept verbatim.
func Terminator(line []byte) bool {
	return hasKeyword(bytes.TrimLeft(line, " "), "INITIAL CONDITIONS")
}

// DetectRevision reads the General unit revision from the line after the
// title. A line starting with "#" is a "#REVISION#n" marker; anything else
// is the unmarked original layout.
func DetectRevision(line []byte) int {
	text := strings.TrimSpace(field.Decode(line))
	if !strings.HasPrefix(text, "#") {
		return 0
	}
	const marker = "#REVISION#"
	if len(text) >= len(marker) && strings.EqualFold(text[:len(marker)], marker) {
		if n, err := strconv.Atoi(strings.TrimSpace(text[len(marker):])); err == nil {
			return n
		}
	}
	return 1
}

// General returns the layout of the General unit. Its rows are gated on
// the unit revision.
func General() *Schema { return general }
