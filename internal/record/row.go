package record

import (
	"fmt"

	"rivernet/internal/field"
	"rivernet/internal/message"
)

// Row is a list of fields sharing one physical line.
type Row struct {
	Fields []*field.Spec
	When   Condition
}

func NewRow(fields ...*field.Spec) *Row {
	return &Row{Fields: fields}
}

// If gates the row on a condition.
func (r *Row) If(cond Condition) *Row {
	r.When = cond
	return r
}

func (r *Row) Applies(ctx Context) bool {
	return r.When == nil || r.When(ctx)
}

// ApplyRequired reports whether any field must be applied as soon as it is
// read.
func (r *Row) ApplyRequired() bool {
	for _, f := range r.Fields {
		if f.ApplyRequired() {
			return true
		}
	}
	return false
}

func (r *Row) Read(ctx Context, lines *Lines) (Record, error) {
	line, ok := lines.Next()
	if !ok {
		return nil, ErrUnexpectedEOF
	}
	return readRow(ctx, r.Fields, line, lines.Line()), nil
}

// RowRecord holds the values read from one line.
type RowRecord struct {
	Values []field.Value
	line   int
	raw    []byte
}

func readRow(ctx Context, specs []*field.Spec, line []byte, lineNo int) *RowRecord {
	rec := &RowRecord{line: lineNo, raw: line}
	for _, s := range specs {
		v := s.Read(line, lineNo)
		if s.ApplyRequired() {
			// Later components size themselves from this value.
			v.Validate()
			if v.Valid {
				v.Apply(ctx.Values())
			}
		}
		rec.Values = append(rec.Values, v)
	}
	return rec
}

// Line is the 1-based line number the row was read from.
func (r *RowRecord) Line() int { return r.line }

func (r *RowRecord) Validate() *message.Message {
	var msgs []*message.Message
	for i := range r.Values {
		msgs = append(msgs, r.Values[i].Validate())
	}
	return message.Group(fmt.Sprintf("line %d", r.line), msgs...)
}

func (r *RowRecord) Valid() bool {
	for _, v := range r.Values {
		if !v.Valid {
			return false
		}
	}
	return true
}

func (r *RowRecord) Apply(values field.Values) {
	for i := range r.Values {
		r.Values[i].Apply(values)
	}
}

func (r *RowRecord) Write(w *Writer) {
	w.Line(r.render())
}

// render lays the values out in their columns. Gaps between fields and any
// text past the last field are copied from the original line, and blank
// padding beyond the original length is dropped.
func (r *RowRecord) render() []byte {
	var out []byte
	for i := range r.Values {
		v := &r.Values[i]
		if v.Spec.Fixed() {
			for len(out) < v.Spec.Col() {
				out = append(out, r.fill(len(out)))
			}
		}
		out = v.Write(out)
	}
	if len(r.raw) > len(out) {
		out = append(out, r.raw[len(out):]...)
	}
	for len(out) > len(r.raw) && out[len(out)-1] == ' ' {
		out = out[:len(out)-1]
	}
	return out
}

func (r *RowRecord) fill(pos int) byte {
	if pos < len(r.raw) {
		return r.raw[pos]
	}
	return ' '
}

// Get returns the value for an attribute, or nil.
func (r *RowRecord) Get(attr string) *field.Value {
	for i := range r.Values {
		if r.Values[i].Spec.Attr() == attr {
			return &r.Values[i]
		}
	}
	return nil
}
