// Package field reads, validates, writes and applies single values held in
// fixed-width columns (or whole free-form lines) of a DAT file.
package field

import (
	"bytes"
	"strconv"
	"strings"
)

// Kind selects how a field's text is decoded and rendered.
type Kind int

const (
	KindKeyword Kind = iota
	KindFreeString
	KindInteger
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindFreeString:
		return "free string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// DefaultPrecision is the number of decimals written for float fields that
// do not declare their own.
const DefaultPrecision = 3

// Spec describes one field. It is built once when a schema is declared and
// never mutated afterwards.
type Spec struct {
	kind    Kind
	keyword string

	attr    string
	index   int
	indexed bool

	col   int
	width int
	left  bool

	blankPermitted bool
	blankValue     any

	hasMin, hasMax bool
	min, max       float64
	enum           []string

	precision     int
	preserveSpace bool
	applyRequired bool
}

// Option customises a Spec at declaration time.
type Option func(*Spec)

// Left left-justifies the field.
func Left() Option { return func(s *Spec) { s.left = true } }

// Range declares an inclusive valid range.
func Range(lo, hi float64) Option {
	return func(s *Spec) {
		s.hasMin, s.min = true, lo
		s.hasMax, s.max = true, hi
	}
}

// Min declares an inclusive lower bound.
func Min(lo float64) Option { return func(s *Spec) { s.hasMin, s.min = true, lo } }

// Max declares an inclusive upper bound.
func Max(hi float64) Option { return func(s *Spec) { s.hasMax, s.max = true, hi } }

// OneOf restricts a string field to an enumeration.
func OneOf(values ...string) Option { return func(s *Spec) { s.enum = values } }

// BlankAs declares the value assumed when the field is blank.
func BlankAs(v any) Option { return func(s *Spec) { s.blankValue = v } }

// Required disallows blank values.
func Required() Option { return func(s *Spec) { s.blankPermitted = false } }

// Precision sets the number of decimals written for a float field.
func Precision(p int) Option { return func(s *Spec) { s.precision = p } }

// PreserveSpace keeps surrounding whitespace of a string field.
func PreserveSpace() Option { return func(s *Spec) { s.preserveSpace = true } }

// ApplyRequired marks a field whose value shapes the rest of the unit, so it
// is validated and applied as soon as it is read.
func ApplyRequired() Option { return func(s *Spec) { s.applyRequired = true } }

// At stores the decoded value at a position of a list attribute.
func At(index int) Option {
	return func(s *Spec) {
		s.index = index
		s.indexed = true
	}
}

func newSpec(kind Kind, attr string, col, width int, opts []Option) *Spec {
	s := &Spec{
		kind:           kind,
		attr:           attr,
		col:            col,
		width:          width,
		blankPermitted: true,
		precision:      DefaultPrecision,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keyword declares a line that must begin with the given text.
func Keyword(text string) *Spec {
	return &Spec{kind: KindKeyword, keyword: text, width: len(text), blankPermitted: true}
}

// FreeString declares a variable-length value occupying a whole line.
func FreeString(attr string, opts ...Option) *Spec {
	return newSpec(KindFreeString, attr, 0, 0, opts)
}

// Int declares a fixed-width integer.
func Int(attr string, col, width int, opts ...Option) *Spec {
	return newSpec(KindInteger, attr, col, width, opts)
}

// Float declares a fixed-width floating point number.
func Float(attr string, col, width int, opts ...Option) *Spec {
	return newSpec(KindFloat, attr, col, width, opts)
}

// Str declares a fixed-width string.
func Str(attr string, col, width int, opts ...Option) *Spec {
	return newSpec(KindString, attr, col, width, opts)
}

func (s *Spec) Kind() Kind           { return s.kind }
func (s *Spec) Attr() string         { return s.attr }
func (s *Spec) Col() int             { return s.col }
func (s *Spec) Width() int           { return s.width }
func (s *Spec) ApplyRequired() bool  { return s.applyRequired }
func (s *Spec) KeywordText() string  { return s.keyword }
func (s *Spec) Index() (int, bool)   { return s.index, s.indexed }
func (s *Spec) BlankPermitted() bool { return s.blankPermitted }

// Label names the field in diagnostics.
func (s *Spec) Label() string {
	switch {
	case s.kind == KindKeyword:
		return s.keyword
	case s.attr == "":
		return s.kind.String()
	case s.indexed:
		return s.attr + "[" + strconv.Itoa(s.index) + "]"
	default:
		return s.attr
	}
}

// Fixed reports whether the field occupies a column range rather than a
// whole line.
func (s *Spec) Fixed() bool {
	return s.kind != KindKeyword && s.kind != KindFreeString
}

// Read slices the field from a line. It never fails: short lines produce a
// partial or blank value plus an INFO note, and malformed numbers produce an
// absent value that is reported by Validate.
func (s *Spec) Read(line []byte, lineNo int) Value {
	v := Value{Spec: s, Line: lineNo}
	if !s.Fixed() {
		v.Raw = Decode(line)
		text := strings.TrimRight(v.Raw, " \t")
		if s.kind == KindKeyword && len(text) >= len(s.keyword) &&
			strings.EqualFold(text[:len(s.keyword)], s.keyword) {
			text = s.keyword + text[len(s.keyword):]
		}
		v.Decoded = text
		return v
	}

	end := s.col + s.width
	var raw []byte
	switch {
	case len(line) >= end:
		raw = line[s.col:end]
	case len(line) > s.col:
		raw = line[s.col:]
		v.Note = shortLineNote(s, lineNo, len(line))
	default:
		v.Note = shortLineNote(s, lineNo, len(line))
	}
	v.Raw = Decode(raw)
	v.decode()
	return v
}

// Render appends a value formatted at the field's width and justification.
func (s *Spec) Render(value any, out []byte) []byte {
	switch s.kind {
	case KindKeyword, KindFreeString:
		str, _ := value.(string)
		return append(out, Encode(str)...)
	}
	var text []byte
	switch x := value.(type) {
	case nil:
	case int:
		text = []byte(strconv.Itoa(x))
	case float64:
		if s.kind == KindInteger {
			text = []byte(strconv.Itoa(int(x)))
		} else {
			text = []byte(strconv.FormatFloat(x, 'f', s.precision, 64))
		}
	case string:
		text = Encode(x)
	}
	return s.pad(text, out)
}

// RenderBlank appends the field's blank formatting.
func (s *Spec) RenderBlank(out []byte) []byte {
	if !s.Fixed() {
		return out
	}
	return s.pad(nil, out)
}

func (s *Spec) pad(text []byte, out []byte) []byte {
	if len(text) > s.width {
		text = text[:s.width]
	}
	fill := bytes.Repeat([]byte{' '}, s.width-len(text))
	if s.left {
		out = append(out, text...)
		return append(out, fill...)
	}
	out = append(out, fill...)
	return append(out, text...)
}
