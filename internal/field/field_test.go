package field

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivernet/internal/message"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		spec *Spec
		line string
	}{
		{"float right", Float("chainage", 0, 10), "    12.500"},
		{"float negative", Float("z", 10, 10), "              -3.250"},
		{"int", Int("count", 0, 10), "        42"},
		{"string left", Str("units", 0, 10, Left()), "METRIC    "},
		{"string right", Str("label", 0, 12), "       RIV01"},
		{"blank", Float("easting", 0, 10), "          "},
		{"precision", Float("rpl", 0, 9, Precision(4)), "   1.0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.spec.Read([]byte(tt.line), 1)
			assert.Nil(t, v.Validate())
			assert.True(t, v.Valid)
			got := v.Write(nil)
			want := tt.line[tt.spec.Col():]
			assert.Equal(t, want, string(got))
		})
	}
}

func TestRangeIsInclusive(t *testing.T) {
	spec := Float("depth", 0, 10, Range(0, 10))
	check := func(text string) bool {
		v := spec.Read([]byte(text), 1)
		v.Validate()
		return v.Valid
	}
	assert.True(t, check("     0.000"))
	assert.True(t, check("    10.000"))
	assert.True(t, check("     5.000"))
	assert.False(t, check("    -0.001"))
	assert.False(t, check("    10.001"))

	ints := Int("n", 0, 5, Range(1, 3))
	for text, ok := range map[string]bool{"    0": false, "    1": true, "    3": true, "    4": false} {
		v := ints.Read([]byte(text), 1)
		v.Validate()
		assert.Equal(t, ok, v.Valid, text)
	}
}

func TestBlankPolicy(t *testing.T) {
	t.Run("permitted", func(t *testing.T) {
		v := Float("x", 0, 10).Read([]byte("          "), 3)
		assert.Nil(t, v.Validate())
		assert.True(t, v.Valid)
		assert.Nil(t, v.Decoded)
		assert.Equal(t, Blank, v.Absence)
	})
	t.Run("substituted", func(t *testing.T) {
		v := Float("x", 0, 10, BlankAs(1.5)).Read([]byte("          "), 3)
		assert.Nil(t, v.Validate())
		assert.Equal(t, 1.5, v.Decoded)
		assert.Equal(t, "          ", string(v.Write(nil)))
	})
	t.Run("required", func(t *testing.T) {
		v := Int("count", 0, 10, Required()).Read([]byte("          "), 3)
		m := v.Validate()
		require.NotNil(t, m)
		assert.Equal(t, message.Error, m.Severity)
		assert.Equal(t, "value required", m.Text)
		assert.Equal(t, 3, m.Line)
		assert.Equal(t, "count", m.Attribute)
		assert.False(t, v.Valid)
	})
}

func TestMalformedIsLenient(t *testing.T) {
	v := Float("x", 0, 10).Read([]byte("    abc   "), 7)
	assert.Equal(t, Malformed, v.Absence)
	assert.Nil(t, v.Decoded)

	m := v.Validate()
	require.NotNil(t, m)
	assert.Equal(t, message.Error, m.Severity)
	assert.Equal(t, "    abc   ", string(v.Write(nil)))
}

func TestShortLine(t *testing.T) {
	spec := Float("northing", 20, 10)

	v := spec.Read([]byte("     1.000     2.000   3.5"), 2)
	require.NotNil(t, v.Note)
	assert.Equal(t, message.Info, v.Note.Severity)
	assert.Equal(t, 3.5, v.Decoded)

	v = spec.Read([]byte("     1.000"), 2)
	require.NotNil(t, v.Note)
	assert.Equal(t, Blank, v.Absence)
	m := v.Validate()
	require.NotNil(t, m)
	assert.Equal(t, message.Info, m.Severity)
}

func TestEnumAndKeyword(t *testing.T) {
	spec := Str("data_type", 0, 10, Left(), OneOf("VQ RATING", "VQ POWER L"))
	v := spec.Read([]byte("VQ RATING "), 1)
	assert.Nil(t, v.Validate())
	v = spec.Read([]byte("VQ OTHER  "), 1)
	assert.NotNil(t, v.Validate())

	kw := Keyword("END GENERAL")
	v = kw.Read([]byte("end general"), 9)
	assert.Nil(t, v.Validate())
	assert.Equal(t, "end general", string(v.Write(nil)))
	v = kw.Read([]byte("RAD FILE"), 9)
	assert.NotNil(t, v.Validate())
}

func TestApply(t *testing.T) {
	values := Values{}
	v := Float("chainage", 0, 10).Read([]byte("    12.500"), 1)
	v.Validate()
	v.Apply(values)
	c, ok := values.Float("chainage")
	assert.True(t, ok)
	assert.Equal(t, 12.5, c)

	line := strings.Repeat(" ", 24) + fmt.Sprintf("%12s", "DS01")
	v = Str("node_labels", 24, 12, At(2)).Read([]byte(line), 1)
	v.Validate()
	v.Apply(values)
	assert.Equal(t, []any{nil, nil, "DS01"}, values["node_labels"])
	assert.Equal(t, []string{"", "", "DS01"}, values.Strings("node_labels"))
}

func TestLatin1(t *testing.T) {
	line := []byte{'C', 'A', 'F', 0xC9, ' ', ' '}
	v := Str("name", 0, 6, Left()).Read(line, 1)
	assert.Equal(t, "CAFÉ", v.Decoded)
	assert.Equal(t, line, v.Write(nil))
}

func TestSetRerenders(t *testing.T) {
	v := Float("chainage", 0, 10).Read([]byte("    12.5  "), 1)
	assert.Equal(t, "    12.5  ", string(v.Write(nil)))
	v.Set(3.25)
	assert.Equal(t, "     3.250", string(v.Write(nil)))
	v.Set(nil)
	assert.Equal(t, "          ", string(v.Write(nil)))
}
