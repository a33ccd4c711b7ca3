package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivernet/internal/record"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		line    string
		keyword string
		ok      bool
	}{
		{"RIVER      upstream reach", "RIVER", true},
		{"river", "RIVER", true},
		{"RIVERSIDE", "", false},
		{"INTERPOLATE", "INTERPOLATE", true},
		{"QTBDY inflow", "QTBDY", true},
		{"XYZZY  garbage", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			e, ok := Match([]byte(tt.line))
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.keyword, e.Keyword)
			}
		})
	}
}

func TestMatchSub(t *testing.T) {
	e, ok := Match([]byte("RIVER"))
	require.True(t, ok)
	assert.True(t, e.TwoLine())

	s, ok := e.MatchSub([]byte("SECTION"))
	require.True(t, ok)
	assert.Equal(t, KindRiverSection, s.Kind)

	s, ok = e.MatchSub([]byte("CES SECTION  main channel"))
	require.True(t, ok)
	assert.Equal(t, KindCESSection, s.Kind)

	_, ok = e.MatchSub([]byte("WEIR"))
	assert.False(t, ok)

	j, ok := Match([]byte("JUNCTION"))
	require.True(t, ok)
	s, ok = j.MatchSub([]byte("energy"))
	require.True(t, ok)
	assert.Equal(t, KindJunctionEnrg, s.Kind)
}

func TestDetectRevision(t *testing.T) {
	assert.Equal(t, 1, DetectRevision([]byte("#REVISION#1")))
	assert.Equal(t, 2, DetectRevision([]byte("#revision#2  ")))
	assert.Equal(t, 1, DetectRevision([]byte("#something")))
	assert.Equal(t, 0, DetectRevision([]byte("       271     0.750")))
}

func TestTerminator(t *testing.T) {
	assert.True(t, Terminator([]byte("INITIAL CONDITIONS")))
	assert.True(t, Terminator([]byte("initial conditions   ")))
	assert.False(t, Terminator([]byte("INITIAL")))
}

func TestRegistryIsComplete(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 22)
	for _, k := range kinds {
		s, ok := Lookup(k)
		require.True(t, ok, k)
		assert.NotEmpty(t, s.Components, k)
		assert.NotEmpty(t, s.Keyword, k)
	}
	g, ok := Lookup(KindGeneral)
	require.True(t, ok)
	assert.Same(t, General(), g)
}

func TestApplyRequiredBeforeTables(t *testing.T) {
	// Every table must be preceded by a row that sets its count on read.
	for _, k := range Kinds() {
		s, _ := Lookup(k)
		counted := map[string]bool{}
		for _, c := range s.Components {
			switch c := c.(type) {
			case *record.Row:
				for _, f := range c.Fields {
					if f.ApplyRequired() {
						counted[f.Attr()] = true
					}
				}
			case *record.Table:
				assert.True(t, counted[c.RowCountAttr], "%s: table %s", k, c.Attr)
			}
		}
	}
}

func TestLateralFollowsNodeLabelLength(t *testing.T) {
	s, ok := Lookup(KindLateral)
	require.True(t, ok)

	tests := []struct {
		name  string
		width int
		label string
	}{
		{"narrow", 8, "RIV01   "},
		{"default", 12, "RIV01       "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := []string{
				tt.label,
				"AREA      ",
				"         1",
				tt.label + "  1234.500" + "USER      ",
			}
			raw := make([][]byte, len(text))
			for i, l := range text {
				raw[i] = []byte(l)
			}
			u := record.NewUnitRecord("LATERAL", []byte("LATERAL"), 1, tt.width)
			require.NoError(t, u.Read(s.Components, record.NewLines(raw)))
			assert.Nil(t, u.Validate())

			rows := u.Apply().Table("laterals")
			require.Len(t, rows, 1)
			assert.Equal(t, "RIV01", rows[0].String("label"))
			weight, _ := rows[0].Float("weight")
			assert.Equal(t, 1234.5, weight)
			assert.Equal(t, "USER", rows[0].String("flow_type"))

			w := record.NewWriter("\n")
			u.Write(w)
			assert.Equal(t, "LATERAL\n"+strings.Join(text, "\n")+"\n", string(w.Bytes()))
		})
	}
}
