// Package datfile reads, validates and writes Flood Modeller DAT/IED files.
package datfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"rivernet/internal/message"
	"rivernet/internal/record"
	"rivernet/internal/schema"
	"rivernet/internal/units"
)

// ErrNoLineBreaks is returned for input without a single line terminator.
var ErrNoLineBreaks = errors.New("no line breaks found in input")

// Option configures parsing.
type Option func(*DataFile)

// WithLogger sets the logger used while reading.
func WithLogger(l *slog.Logger) Option {
	return func(d *DataFile) { d.log = l }
}

// WithPath names the file in diagnostics.
func WithPath(path string) Option {
	return func(d *DataFile) { d.Path = path }
}

// item is one entry of the file body in order: a unit or a header line
// that matched nothing.
type item struct {
	unit    *record.UnitRecord
	kind    schema.Kind
	skipped []byte
	blank   bool
	line    int
}

// DataFile is a parsed DAT file. It owns the raw lines and the unit list.
type DataFile struct {
	Path string

	eol         string
	finalEOL    bool
	labelLength int

	general *record.UnitRecord
	items   []item
	// trailer is kept verbatim from the INITIAL CONDITIONS line on.
	trailer [][]byte

	readMsgs  []*message.Message
	messages  *message.Message
	applyMsg  *message.Message
	validated bool
	valid     bool

	generalUnit *units.General
	units       []units.Unit

	log *slog.Logger
}

// Open reads and parses a file.
func Open(path string, opts ...Option) (*DataFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data, append([]Option{WithPath(path)}, opts...)...)
}

// Parse reads every unit in data. Problems with the content are recorded
// as messages; the only error is input with no line terminator, in which
// case the returned DataFile carries a FATAL message.
func Parse(data []byte, opts ...Option) (*DataFile, error) {
	d := &DataFile{labelLength: record.DefaultNodeLabelLength, log: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}

	lines, err := d.split(data)
	if err != nil {
		d.messages = message.Group(d.title(), message.New(message.Fatal, err.Error()))
		d.validated = true
		return d, err
	}
	d.read(record.NewLines(lines))
	return d, nil
}

func (d *DataFile) split(data []byte) ([][]byte, error) {
	first := bytes.IndexByte(data, '\n')
	if first < 0 {
		return nil, ErrNoLineBreaks
	}
	d.eol = "\n"
	if first > 0 && data[first-1] == '\r' {
		d.eol = "\r\n"
	}
	d.finalEOL = data[len(data)-1] == '\n'

	lines := bytes.Split(data, []byte{'\n'})
	if d.finalEOL {
		lines = lines[:len(lines)-1]
	}
	if d.eol == "\r\n" {
		for i, l := range lines {
			lines[i] = bytes.TrimSuffix(l, []byte{'\r'})
		}
	}
	return lines, nil
}

// EOL is the detected line ending.
func (d *DataFile) EOL() string { return d.eol }

// NodeLabelLength is the label width declared by the General unit.
func (d *DataFile) NodeLabelLength() int { return d.labelLength }

// Records returns the unit records in file order, excluding the General
// unit.
func (d *DataFile) Records() []*record.UnitRecord {
	var out []*record.UnitRecord
	for _, it := range d.items {
		if it.unit != nil {
			out = append(out, it.unit)
		}
	}
	return out
}

// Skipped returns the line numbers of header lines that matched no unit.
func (d *DataFile) Skipped() []int {
	var out []int
	for _, it := range d.items {
		if it.unit == nil && !it.blank {
			out = append(out, it.line)
		}
	}
	return out
}

func (d *DataFile) title() string {
	if d.Path != "" {
		return d.Path
	}
	return "data file"
}

// Validate checks every unit and builds the message tree. One invalid unit
// does not stop the others being checked.
func (d *DataFile) Validate() bool {
	if d.general == nil {
		return false
	}
	msgs := append([]*message.Message(nil), d.readMsgs...)
	d.valid = true

	msgs = append(msgs, d.general.Validate())
	if !d.general.Valid() {
		d.valid = false
	}
	for _, it := range d.items {
		if it.unit == nil {
			continue
		}
		msgs = append(msgs, it.unit.Validate())
		if !it.unit.Valid() {
			d.valid = false
		}
	}
	d.messages = message.Group(d.title(), msgs...)
	d.validated = true
	return d.valid
}

// Valid reports the result of Validate.
func (d *DataFile) Valid() bool { return d.valid }

// Apply builds domain objects for every valid unit, in file order. Units
// that fail validation or construction are left out and reported.
func (d *DataFile) Apply() []units.Unit {
	if !d.validated {
		d.Validate()
	}
	if d.general == nil {
		return nil
	}
	var problems []*message.Message
	d.units = nil

	if d.general.Valid() {
		g, err := units.New(schema.KindGeneral, d.general.Apply(), meta(d.general))
		if err != nil {
			problems = append(problems, message.New(message.Error, err.Error()).OnLine(1))
		} else {
			d.generalUnit = g.(*units.General)
		}
	}
	for _, it := range d.items {
		if it.unit == nil || !it.unit.Valid() {
			continue
		}
		u, err := units.New(it.kind, it.unit.Apply(), meta(it.unit))
		if err != nil {
			problems = append(problems, message.New(message.Error, err.Error()).OnLine(it.unit.StartLine))
			continue
		}
		d.units = append(d.units, u)
	}
	d.applyMsg = message.Group("unit construction", problems...)
	d.log.Debug("applied units", "path", d.Path, "units", len(d.units), "problems", len(problems))
	return d.units
}

func meta(u *record.UnitRecord) units.Meta {
	return units.Meta{Line: u.StartLine, Comment: u.Comment1, Comment2: u.Comment2}
}

// Units returns the units built by the last Apply.
func (d *DataFile) Units() []units.Unit { return d.units }

// General returns the General unit built by the last Apply, or nil.
func (d *DataFile) General() *units.General { return d.generalUnit }

// Messages returns every diagnostic gathered so far as one tree.
func (d *DataFile) Messages() *message.Message {
	if !d.validated {
		d.Validate()
	}
	if d.applyMsg == nil {
		return d.messages
	}
	if d.messages == nil {
		return message.Group(d.title(), d.applyMsg)
	}
	m := *d.messages
	m.Children = append(append([]*message.Message(nil), m.Children...), d.applyMsg)
	if d.applyMsg.Severity > m.Severity {
		m.Severity = d.applyMsg.Severity
	}
	return &m
}

// Write reproduces the file. Valid data is written byte for byte.
func (d *DataFile) Write(w io.Writer) error {
	if _, err := w.Write(d.Bytes()); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	return nil
}

// Bytes returns the file contents as Write would produce them.
func (d *DataFile) Bytes() []byte {
	out := record.NewWriter(d.eol)
	if d.general != nil {
		d.general.Write(out)
	}
	for _, it := range d.items {
		if it.unit != nil {
			it.unit.Write(out)
		} else {
			out.Line(it.skipped)
		}
	}
	for _, l := range d.trailer {
		out.Line(l)
	}
	if !d.finalEOL {
		out.TrimFinalEOL()
	}
	return out.Bytes()
}
