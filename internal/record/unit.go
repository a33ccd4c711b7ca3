package record

import (
	"errors"
	"fmt"
	"strings"

	"rivernet/internal/field"
	"rivernet/internal/message"
)

// UnitRecord is one unit as read from the file: its header lines, live
// values and the records its components produced.
type UnitRecord struct {
	Keyword    string
	SubKeyword string
	Comment1   string
	Comment2   string
	StartLine  int

	header    []byte
	subHeader []byte
	hasSub    bool

	revision    int
	labelLength int
	values      field.Values
	Records     []Record
	valid       bool
	readErr     error
}

// NewUnitRecord starts a unit from its first header line. The keyword is
// the registry text that matched the line.
func NewUnitRecord(keyword string, header []byte, line, labelLength int) *UnitRecord {
	return &UnitRecord{
		Keyword:     keyword,
		Comment1:    comment(header, keyword),
		StartLine:   line,
		header:      header,
		labelLength: labelLength,
		values:      field.Values{},
	}
}

// SetSubHeader records the second header line of a two-line unit.
func (u *UnitRecord) SetSubHeader(subKeyword string, line []byte) {
	u.SubKeyword = subKeyword
	u.Comment2 = comment(line, subKeyword)
	u.subHeader = line
	u.hasSub = true
}

// SetRevision records the layout revision selected for the unit.
func (u *UnitRecord) SetRevision(rev int) { u.revision = rev }

func comment(line []byte, keyword string) string {
	text := field.Decode(line)
	if len(text) >= len(keyword) {
		text = text[len(keyword):]
	}
	return strings.TrimSpace(text)
}

func (u *UnitRecord) Values() field.Values { return u.values }
func (u *UnitRecord) NodeLabelLength() int { return u.labelLength }
func (u *UnitRecord) Revision() int        { return u.revision }

// Name is the unit type as written in its header, e.g. "RIVER SECTION".
func (u *UnitRecord) Name() string {
	if u.SubKeyword == "" {
		return u.Keyword
	}
	return u.Keyword + " " + u.SubKeyword
}

// Read runs the components in order. Records read before a failure are
// kept so the unit can still be written back.
func (u *UnitRecord) Read(components []Component, lines *Lines) error {
	for _, c := range components {
		if !c.Applies(u) {
			continue
		}
		rec, err := c.Read(u, lines)
		if rec != nil {
			u.Records = append(u.Records, rec)
		}
		if err != nil {
			u.readErr = err
			return fmt.Errorf("failed to read %s at line %d: %w", u.Name(), u.StartLine, err)
		}
	}
	return nil
}

// Validate checks every record and returns the unit's diagnostics.
func (u *UnitRecord) Validate() *message.Message {
	var msgs []*message.Message
	u.valid = u.readErr == nil
	if u.readErr != nil {
		text := u.readErr.Error()
		if errors.Is(u.readErr, ErrUnexpectedEOF) {
			text = "unit is incomplete: " + text
		}
		msgs = append(msgs, message.New(message.Error, text).OnLine(u.StartLine))
	}
	for _, r := range u.Records {
		msgs = append(msgs, r.Validate())
		if !r.Valid() {
			u.valid = false
		}
	}
	title := u.Name()
	if title == "" {
		title = "GENERAL"
	}
	m := message.Group(fmt.Sprintf("%s unit", title), msgs...)
	if m != nil {
		m.OnLine(u.StartLine)
	}
	return m
}

// Valid reports the result of the last Validate.
func (u *UnitRecord) Valid() bool { return u.valid }

// Apply rebuilds the live values from every valid record.
func (u *UnitRecord) Apply() field.Values {
	u.values = field.Values{}
	for _, r := range u.Records {
		if r.Valid() {
			r.Apply(u.values)
		}
	}
	return u.values
}

// Write mirrors Read: header lines, then each record.
func (u *UnitRecord) Write(w *Writer) {
	w.Line(u.header)
	if u.hasSub {
		w.Line(u.subHeader)
	}
	for _, r := range u.Records {
		r.Write(w)
	}
}
