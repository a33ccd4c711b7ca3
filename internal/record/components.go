package record

import (
	"fmt"
	"strings"

	"rivernet/internal/field"
	"rivernet/internal/message"
)

// NodeLabelsAttr is the attribute holding a unit's node labels.
const NodeLabelsAttr = "node_labels"

// NodeLabelRow reads node labels whose width is the file's node label
// length. A zero Count reads labels until the first blank one.
type NodeLabelRow struct {
	Count int
	When  Condition
}

func (r *NodeLabelRow) Applies(ctx Context) bool {
	return r.When == nil || r.When(ctx)
}

func (r *NodeLabelRow) Read(ctx Context, lines *Lines) (Record, error) {
	line, ok := lines.Next()
	if !ok {
		return nil, ErrUnexpectedEOF
	}
	width := ctx.NodeLabelLength()
	if width <= 0 {
		width = DefaultNodeLabelLength
	}
	lineNo := lines.Line()

	if r.Count > 0 {
		specs := make([]*field.Spec, r.Count)
		for i := range specs {
			specs[i] = labelSpec(i, width)
		}
		return readRow(ctx, specs, line, lineNo), nil
	}

	rec := &RowRecord{line: lineNo, raw: line}
	for i := 0; i*width < len(line); i++ {
		v := labelSpec(i, width).Read(line, lineNo)
		if v.Absence == field.Blank {
			break
		}
		rec.Values = append(rec.Values, v)
	}
	return rec, nil
}

func labelSpec(i, width int) *field.Spec {
	return field.Str(NodeLabelsAttr, i*width, width, field.Left(), field.At(i))
}

// Rule reads free text lines up to and including a line reading END.
type Rule struct {
	Attr string
	When Condition
}

func (r *Rule) Applies(ctx Context) bool {
	return r.When == nil || r.When(ctx)
}

func (r *Rule) Read(_ Context, lines *Lines) (Record, error) {
	rec := &RuleRecord{attr: r.Attr, line: lines.Line() + 1}
	for {
		line, ok := lines.Next()
		if !ok {
			return rec, ErrUnexpectedEOF
		}
		text := field.Decode(line)
		if strings.EqualFold(strings.TrimSpace(text), "END") {
			rec.end = text
			rec.closed = true
			return rec, nil
		}
		rec.Text = append(rec.Text, text)
	}
}

// RuleRecord holds the body of a rule block.
type RuleRecord struct {
	Text   []string
	attr   string
	end    string
	closed bool
	line   int
}

func (r *RuleRecord) Validate() *message.Message {
	if !r.closed {
		return message.New(message.Error, "rule block has no END line").OnLine(r.line).For(r.attr)
	}
	return nil
}

func (r *RuleRecord) Valid() bool { return r.closed }

func (r *RuleRecord) Apply(values field.Values) {
	if r.attr != "" {
		values[r.attr] = append([]string(nil), r.Text...)
	}
}

func (r *RuleRecord) Write(w *Writer) {
	for _, t := range r.Text {
		w.Line(field.Encode(t))
	}
	if r.closed {
		w.Line(field.Encode(r.end))
	}
}

// Table reads as many rows as the live value of RowCountAttr holds at the
// moment the table is reached. When Layout is set it builds the row fields
// from the file's node label length in place of Row.
type Table struct {
	Attr         string
	RowCountAttr string
	Row          *Row
	Layout       func(labelWidth int) []*field.Spec
	When         Condition
}

func (t *Table) fields(ctx Context) []*field.Spec {
	if t.Layout == nil {
		return t.Row.Fields
	}
	width := ctx.NodeLabelLength()
	if width <= 0 {
		width = DefaultNodeLabelLength
	}
	return t.Layout(width)
}

func (t *Table) Applies(ctx Context) bool {
	return t.When == nil || t.When(ctx)
}

func (t *Table) Read(ctx Context, lines *Lines) (Record, error) {
	rec := &TableRecord{attr: t.Attr, line: lines.Line() + 1}
	n, ok := ctx.Values().Int(t.RowCountAttr)
	switch {
	case !ok:
		rec.note = message.Newf(message.Error, "row count %s is not available", t.RowCountAttr).
			OnLine(rec.line).For(t.RowCountAttr)
		return rec, nil
	case n < 0:
		rec.note = message.Newf(message.Error, "row count %s is negative (%d)", t.RowCountAttr, n).
			OnLine(rec.line).For(t.RowCountAttr)
		return rec, nil
	}
	specs := t.fields(ctx)
	for i := 0; i < n; i++ {
		line, ok := lines.Next()
		if !ok {
			return rec, fmt.Errorf("table %s row %d of %d: %w", t.Attr, i+1, n, ErrUnexpectedEOF)
		}
		rec.Rows = append(rec.Rows, readRow(ctx, specs, line, lines.Line()))
	}
	return rec, nil
}

// TableRecord holds the rows of a table.
type TableRecord struct {
	Rows []*RowRecord
	attr string
	line int
	note *message.Message
}

func (t *TableRecord) Validate() *message.Message {
	msgs := []*message.Message{t.note}
	for _, r := range t.Rows {
		msgs = append(msgs, r.Validate())
	}
	return message.Group(fmt.Sprintf("table %s", t.attr), msgs...)
}

func (t *TableRecord) Valid() bool {
	if t.note != nil {
		return false
	}
	for _, r := range t.Rows {
		if !r.Valid() {
			return false
		}
	}
	return true
}

func (t *TableRecord) Apply(values field.Values) {
	rows := make([]field.Values, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = field.Values{}
		r.Apply(rows[i])
	}
	values[t.attr] = rows
}

func (t *TableRecord) Write(w *Writer) {
	for _, r := range t.Rows {
		r.Write(w)
	}
}
