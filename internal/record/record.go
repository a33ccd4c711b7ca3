// Package record groups fields into the physical lines and repeated blocks
// that make up one unit of a DAT file.
package record

import (
	"errors"

	"rivernet/internal/field"
	"rivernet/internal/message"
)

// ErrUnexpectedEOF is returned when input ends inside a unit body.
var ErrUnexpectedEOF = errors.New("unexpected end of input")

// DefaultNodeLabelLength is the label width used when the General unit does
// not declare one.
const DefaultNodeLabelLength = 12

// Context is the owning unit as seen by its components while they read.
type Context interface {
	Values() field.Values
	NodeLabelLength() int
	Revision() int
}

// Condition gates a component on the state of the owning unit.
type Condition func(Context) bool

// Component reads one part of a unit body. The only error is running out of
// input; a partial record may accompany it.
type Component interface {
	Applies(Context) bool
	Read(Context, *Lines) (Record, error)
}

// Record is the retained result of reading a component.
type Record interface {
	Validate() *message.Message
	Valid() bool
	Apply(field.Values)
	Write(*Writer)
}

// Lines is a cursor over the lines of a file with their terminators
// removed.
type Lines struct {
	lines [][]byte
	pos   int
}

func NewLines(lines [][]byte) *Lines {
	return &Lines{lines: lines}
}

// Next returns the next line and advances.
func (l *Lines) Next() ([]byte, bool) {
	if l.pos >= len(l.lines) {
		return nil, false
	}
	line := l.lines[l.pos]
	l.pos++
	return line, true
}

// Peek returns the next line without advancing.
func (l *Lines) Peek() ([]byte, bool) {
	if l.pos >= len(l.lines) {
		return nil, false
	}
	return l.lines[l.pos], true
}

// Line is the 1-based number of the line most recently returned by Next.
func (l *Lines) Line() int { return l.pos }

func (l *Lines) Done() bool { return l.pos >= len(l.lines) }

// Rest consumes and returns every remaining line.
func (l *Lines) Rest() [][]byte {
	rest := l.lines[l.pos:]
	l.pos = len(l.lines)
	return rest
}

// Writer collects output lines using the file's line ending.
type Writer struct {
	buf []byte
	eol []byte
}

func NewWriter(eol string) *Writer {
	if eol == "" {
		eol = "\n"
	}
	return &Writer{eol: []byte(eol)}
}

// Line appends one line followed by the line ending.
func (w *Writer) Line(b []byte) {
	w.buf = append(w.buf, b...)
	w.buf = append(w.buf, w.eol...)
}

// Bytes returns everything written so far.
func (w *Writer) Bytes() []byte { return w.buf }

// TrimFinalEOL drops the trailing line ending, for inputs that had none.
func (w *Writer) TrimFinalEOL() {
	if n := len(w.eol); len(w.buf) >= n && string(w.buf[len(w.buf)-n:]) == string(w.eol) {
		w.buf = w.buf[:len(w.buf)-n]
	}
}
