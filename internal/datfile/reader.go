package datfile

import (
	"strings"

	"rivernet/internal/field"
	"rivernet/internal/message"
	"rivernet/internal/record"
	"rivernet/internal/schema"
)

type state int

const (
	stateStart state = iota
	stateReadGeneral
	stateMatchHeader
	stateMatchSubHeader
	stateReadComponents
	stateAppend
	stateEOF
)

// reader carries the unit being assembled between states.
type reader struct {
	lines  *record.Lines
	entry  *schema.Entry
	schema *schema.Schema
	unit   *record.UnitRecord
	header []byte
}

func (d *DataFile) read(lines *record.Lines) {
	r := &reader{lines: lines}
	st := stateStart
	for st != stateEOF {
		switch st {
		case stateStart:
			st = stateReadGeneral
		case stateReadGeneral:
			d.readGeneral(lines)
			st = stateMatchHeader
		case stateMatchHeader:
			st = d.matchHeader(r)
		case stateMatchSubHeader:
			st = d.matchSubHeader(r)
		case stateReadComponents:
			if err := r.unit.Read(r.schema.Components, lines); err != nil {
				d.log.Warn("unit body incomplete", "path", d.Path, "line", r.unit.StartLine, "err", err)
			}
			st = stateAppend
		case stateAppend:
			d.items = append(d.items, item{unit: r.unit, kind: r.schema.Kind, line: r.unit.StartLine})
			r.entry, r.schema, r.unit, r.header = nil, nil, nil, nil
			st = stateMatchHeader
		}
	}
	d.log.Debug("read data file", "path", d.Path, "units", len(d.Records()), "skipped", len(d.Skipped()))
}

// readGeneral reads the title block. It always comes first because its
// node label length sizes every label read afterwards.
func (d *DataFile) readGeneral(lines *record.Lines) {
	title, ok := lines.Next()
	if !ok {
		return
	}
	next, _ := lines.Peek()
	g := record.NewUnitRecord("", title, 1, record.DefaultNodeLabelLength)
	g.SetRevision(schema.DetectRevision(next))
	if err := g.Read(schema.General().Components, lines); err != nil {
		d.log.Warn("general unit incomplete", "path", d.Path, "err", err)
	}
	d.general = g
	if n, ok := g.Values().Int("node_label_length"); ok && n > 0 {
		d.labelLength = n
	}
}

func (d *DataFile) matchHeader(r *reader) state {
	line, ok := r.lines.Next()
	if !ok {
		return stateEOF
	}
	lineNo := r.lines.Line()
	if schema.Terminator(line) {
		d.trailer = append([][]byte{line}, r.lines.Rest()...)
		return stateEOF
	}
	if isBlank(line) {
		d.items = append(d.items, item{skipped: line, blank: true, line: lineNo})
		return stateMatchHeader
	}
	entry, ok := schema.Match(line)
	if !ok {
		d.skip(line, lineNo, "unrecognised unit header")
		return stateMatchHeader
	}
	r.entry, r.header = entry, line
	r.unit = record.NewUnitRecord(entry.Keyword, line, lineNo, d.labelLength)
	if entry.TwoLine() {
		return stateMatchSubHeader
	}
	r.schema = entry.Schema
	return stateReadComponents
}

func (d *DataFile) matchSubHeader(r *reader) state {
	line, ok := r.lines.Peek()
	if !ok {
		d.skip(r.header, r.unit.StartLine, "unit header at end of file")
		return stateEOF
	}
	sub, ok := r.entry.MatchSub(line)
	if !ok {
		// The second line may itself be a header, so only the first is
		// dropped.
		d.skip(r.header, r.unit.StartLine, "unrecognised "+r.entry.Keyword+" sub-unit")
		return stateMatchHeader
	}
	r.lines.Next()
	r.unit.SetSubHeader(sub.SubKeyword, line)
	r.schema = sub
	return stateReadComponents
}

func (d *DataFile) skip(line []byte, lineNo int, reason string) {
	text := strings.TrimRight(field.Decode(line), " ")
	d.items = append(d.items, item{skipped: line, line: lineNo})
	d.readMsgs = append(d.readMsgs,
		message.Newf(message.Warning, "%s, line skipped: %q", reason, text).OnLine(lineNo))
	d.log.Warn(reason, "path", d.Path, "line", lineNo, "text", text)
}

func isBlank(line []byte) bool {
	for _, c := range line {
		if c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}
