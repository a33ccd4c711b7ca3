package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_SeverityIsMaxOfChildren(t *testing.T) {
	m := Group("unit",
		New(Info, "short line"),
		nil,
		Group("row", New(Warning, "odd"), New(Error, "value required").At(4, 10).For("chainage")),
	)
	require.NotNil(t, m)
	assert.Equal(t, Error, m.Severity)
	assert.Len(t, m.Children, 2)
	assert.Equal(t, Error, m.Max())
	assert.Equal(t, 1, m.Count(Error))
	assert.Equal(t, 2, m.CountAtLeast(Warning))
}

func TestGroup_EmptyIsNil(t *testing.T) {
	assert.Nil(t, Group("nothing"))
	assert.Nil(t, Group("nothing", nil, nil))
}

func TestString_IndentsAndLocates(t *testing.T) {
	m := Group("file", New(Error, "value required").At(4, 10).For("chainage"))
	want := "ERROR: file\n    ERROR: value required (line 4, column 10, attribute chainage)"
	assert.Equal(t, want, m.String())
}

func TestFatal(t *testing.T) {
	assert.True(t, New(Fatal, "no line breaks").Fatal())
	assert.False(t, New(Error, "x").Fatal())
	var nilMsg *Message
	assert.False(t, nilMsg.Fatal())
	assert.Equal(t, "FATAL", Fatal.String())
}
