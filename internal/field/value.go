package field

import (
	"fmt"
	"strconv"
	"strings"

	"rivernet/internal/message"
)

// Absence explains why a value has no decoded content.
type Absence int

const (
	Present Absence = iota
	Blank
	Malformed
)

func (a Absence) String() string {
	switch a {
	case Present:
		return "present"
	case Blank:
		return "blank"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Value is the result of reading one field occurrence.
type Value struct {
	Spec    *Spec
	Raw     string
	Decoded any // int, float64 or string; nil when absent
	Absence Absence
	Valid   bool
	Line    int
	// Note carries read-time diagnostics such as a short line.
	Note *message.Message

	substituted bool
	dirty       bool
}

func (v *Value) decode() {
	s := v.Spec
	text := strings.TrimSpace(v.Raw)
	if text == "" {
		v.Absence = Blank
		return
	}
	switch s.kind {
	case KindInteger:
		n, err := strconv.Atoi(text)
		if err != nil {
			v.Absence = Malformed
			return
		}
		v.Decoded = n
	case KindFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			v.Absence = Malformed
			return
		}
		v.Decoded = f
	case KindString:
		if s.preserveSpace {
			v.Decoded = v.Raw
		} else {
			v.Decoded = text
		}
	}
}

// Validate checks the value against its spec, substituting the declared
// blank value where appropriate. The returned message is nil when there is
// nothing to report.
func (v *Value) Validate() *message.Message {
	s := v.Spec
	var problem *message.Message
	switch {
	case s.kind == KindKeyword:
		text, _ := v.Decoded.(string)
		v.Valid = strings.HasPrefix(text, s.keyword)
		if !v.Valid {
			problem = message.Newf(message.Error, "expected keyword %q, found %q", s.keyword, text)
		}
	case s.kind == KindFreeString:
		v.Valid = true
	case v.Absence == Blank:
		switch {
		case s.blankValue != nil:
			v.Decoded = s.blankValue
			v.substituted = true
			v.Valid = true
		case s.blankPermitted:
			v.Valid = true
		default:
			v.Valid = false
			problem = message.New(message.Error, "value required")
		}
	case v.Absence == Malformed:
		v.Valid = false
		problem = message.Newf(message.Error, "cannot read %q as %s", strings.TrimSpace(v.Raw), s.kind)
	default:
		problem = v.checkConstraints()
		v.Valid = problem == nil
	}

	if problem != nil {
		problem.OnLine(v.Line).For(s.Label())
		if s.Fixed() {
			problem.At(v.Line, s.col)
		}
	}
	switch {
	case problem == nil:
		return v.Note
	case v.Note == nil:
		return problem
	default:
		return message.Group(s.Label(), v.Note, problem)
	}
}

func (v *Value) checkConstraints() *message.Message {
	s := v.Spec
	var num float64
	switch x := v.Decoded.(type) {
	case int:
		num = float64(x)
	case float64:
		num = x
	case string:
		if len(s.enum) == 0 {
			return nil
		}
		for _, e := range s.enum {
			if strings.EqualFold(e, x) {
				return nil
			}
		}
		return message.Newf(message.Error, "%q is not one of %s", x, strings.Join(s.enum, ", "))
	default:
		return nil
	}
	if s.hasMin && num < s.min {
		return message.Newf(message.Error, "%v is below the minimum %v", v.Decoded, s.min)
	}
	if s.hasMax && num > s.max {
		return message.Newf(message.Error, "%v is above the maximum %v", v.Decoded, s.max)
	}
	return nil
}

// Apply stores the decoded value in the unit's live values.
func (v *Value) Apply(values Values) {
	s := v.Spec
	if s.attr == "" {
		return
	}
	if !s.indexed {
		values[s.attr] = v.Decoded
		return
	}
	list, _ := values[s.attr].([]any)
	for len(list) <= s.index {
		list = append(list, nil)
	}
	list[s.index] = v.Decoded
	values[s.attr] = list
}

// Write appends the value in its column layout. Blank values keep their
// blank formatting and malformed text is written back untouched.
func (v *Value) Write(out []byte) []byte {
	s := v.Spec
	if !s.Fixed() {
		return append(out, Encode(v.Raw)...)
	}
	switch {
	case v.Absence == Blank:
		return s.RenderBlank(out)
	case v.Absence == Malformed:
		return s.pad(Encode(v.Raw), out)
	case v.dirty:
		return s.Render(v.Decoded, out)
	default:
		// Unedited values keep their original text. A partial slice from a
		// short line is blank-filled to width and trimmed back by the row.
		text := Encode(v.Raw)
		if len(text) >= s.width {
			return s.pad(text, out)
		}
		out = append(out, text...)
		for i := len(text); i < s.width; i++ {
			out = append(out, ' ')
		}
		return out
	}
}

// Set replaces the decoded value. The field is re-rendered on write.
func (v *Value) Set(x any) {
	v.Decoded = x
	v.Absence = Present
	if x == nil {
		v.Absence = Blank
	}
	v.dirty = true
	v.substituted = false
}

// Substituted reports whether a blank was replaced by the declared blank
// value.
func (v *Value) Substituted() bool { return v.substituted }

// IsAbsent reports whether the value has no decoded content (after any blank
// substitution).
func (v *Value) IsAbsent() bool {
	return v.Decoded == nil
}

func (v Value) String() string {
	if v.Decoded == nil {
		return fmt.Sprintf("%s=<%s>", v.Spec.Label(), v.Absence)
	}
	return fmt.Sprintf("%s=%v", v.Spec.Label(), v.Decoded)
}

func shortLineNote(s *Spec, lineNo, length int) *message.Message {
	return message.Newf(message.Info, "line has %d characters, field %s spans columns %d-%d",
		length, s.Label(), s.col, s.col+s.width).At(lineNo, s.col).For(s.Label())
}
