// Package message holds the hierarchical diagnostics produced while reading,
// validating and assembling a model.
package message

import (
	"fmt"
	"strings"
)

// Severity orders diagnostics from benign to file-fatal.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return fmt.Sprintf("SEVERITY(%d)", int(s))
	}
}

// Message is one node of a diagnostic tree. A node's severity is never lower
// than the highest severity among its children.
type Message struct {
	Severity  Severity
	Text      string
	Line      int // 1-based, 0 when unknown
	Column    int
	HasColumn bool
	Attribute string
	Children  []*Message
}

// New creates a leaf message.
func New(sev Severity, text string) *Message {
	return &Message{Severity: sev, Text: text}
}

// Newf creates a leaf message with a formatted text.
func Newf(sev Severity, format string, args ...any) *Message {
	return New(sev, fmt.Sprintf(format, args...))
}

// Group wraps children under a common heading. Nil children are dropped and
// nil is returned when nothing remains.
func Group(text string, children ...*Message) *Message {
	var kept []*Message
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	m := &Message{Text: text, Severity: Info}
	m.Add(kept...)
	return m
}

// At sets the location of the message and returns it.
func (m *Message) At(line, col int) *Message {
	m.Line = line
	m.Column = col
	m.HasColumn = true
	return m
}

// OnLine sets the line number only.
func (m *Message) OnLine(line int) *Message {
	m.Line = line
	return m
}

// For records the attribute name the message relates to.
func (m *Message) For(attr string) *Message {
	m.Attribute = attr
	return m
}

// Add appends children and raises the severity to their maximum.
func (m *Message) Add(children ...*Message) {
	for _, c := range children {
		if c == nil {
			continue
		}
		m.Children = append(m.Children, c)
		if c.Severity > m.Severity {
			m.Severity = c.Severity
		}
	}
}

// Max returns the highest severity in the tree.
func (m *Message) Max() Severity {
	if m == nil {
		return Info
	}
	max := m.Severity
	for _, c := range m.Children {
		if s := c.Max(); s > max {
			max = s
		}
	}
	return max
}

// Fatal reports whether the message is file-fatal.
func (m *Message) Fatal() bool {
	return m != nil && m.Severity == Fatal
}

// Walk visits every node depth-first, parents before children.
func (m *Message) Walk(fn func(*Message)) {
	if m == nil {
		return
	}
	fn(m)
	for _, c := range m.Children {
		c.Walk(fn)
	}
}

// Leaves returns the messages with no children, in tree order.
func (m *Message) Leaves() []*Message {
	var out []*Message
	m.Walk(func(n *Message) {
		if len(n.Children) == 0 {
			out = append(out, n)
		}
	})
	return out
}

// Count returns the number of leaves with exactly the given severity.
func (m *Message) Count(sev Severity) int {
	n := 0
	for _, l := range m.Leaves() {
		if l.Severity == sev {
			n++
		}
	}
	return n
}

// CountAtLeast returns the number of leaves at or above the given severity.
func (m *Message) CountAtLeast(sev Severity) int {
	n := 0
	for _, l := range m.Leaves() {
		if l.Severity >= sev {
			n++
		}
	}
	return n
}

func (m *Message) String() string {
	if m == nil {
		return ""
	}
	var sb strings.Builder
	m.write(&sb, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func (m *Message) write(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat(" ", indent))
	sb.WriteString(m.Severity.String())
	sb.WriteString(": ")
	sb.WriteString(m.Text)
	if loc := m.location(); loc != "" {
		sb.WriteString(" (")
		sb.WriteString(loc)
		sb.WriteString(")")
	}
	sb.WriteString("\n")
	for _, c := range m.Children {
		c.write(sb, indent+4)
	}
}

func (m *Message) location() string {
	var parts []string
	if m.Line > 0 {
		parts = append(parts, fmt.Sprintf("line %d", m.Line))
	}
	if m.HasColumn {
		parts = append(parts, fmt.Sprintf("column %d", m.Column))
	}
	if m.Attribute != "" {
		parts = append(parts, "attribute "+m.Attribute)
	}
	return strings.Join(parts, ", ")
}
