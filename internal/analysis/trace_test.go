package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivernet/internal/field"
	"rivernet/internal/network"
	"rivernet/internal/schema"
	"rivernet/internal/units"
)

func unit(t *testing.T, kind schema.Kind, chainage float64, labels ...string) units.Unit {
	t.Helper()
	l := make([]any, len(labels))
	for i, s := range labels {
		l[i] = s
	}
	u, err := units.New(kind, field.Values{"node_labels": l, "chainage": chainage}, units.Meta{})
	require.NoError(t, err)
	return u
}

// tributary builds M1-M2 and T1-T2 joining at a junction into D1-D2.
func tributary(t *testing.T) *network.Network {
	sec := func(label string, ch float64) units.Unit { return unit(t, schema.KindInterpolate, ch, label) }
	us := []units.Unit{
		unit(t, schema.KindQTBoundary, 0, "M1"),
		sec("M1", 10), sec("MX", 10), sec("M2", 0),
		sec("T1", 10), sec("T2", 0),
		unit(t, schema.KindJunctionOpen, 0, "M2", "T2", "D1"),
		sec("D1", 10), sec("D2", 0),
		unit(t, schema.KindHTBoundary, 0, "D2"),
	}
	return network.Build(us)
}

func TestTrace_Downstream(t *testing.T) {
	a := NewAnalyzer(tributary(t))

	r, err := a.Trace("M1", Downstream, DefaultConfig())
	require.NoError(t, err)
	var names []string
	for _, b := range r.Branches {
		names = append(names, b.Name())
	}
	assert.Equal(t, []string{"M1 → M2/T2/D1", "M2/T2/D1 → D2"}, names)
	assert.Len(t, r.Nodes, 3)
	require.Len(t, r.Boundaries, 2)
	assert.Equal(t, schema.KindHTBoundary, r.Boundaries[1].Kind())
	assert.Len(t, r.Units(), 5)
}

func TestTrace_UpstreamWithHopLimit(t *testing.T) {
	a := NewAnalyzer(tributary(t))

	r, err := a.Trace("D2", Upstream, Config{MaxHops: 1})
	require.NoError(t, err)
	require.Len(t, r.Branches, 1)
	assert.Equal(t, "M2/T2/D1 → D2", r.Branches[0].Name())

	r, err = a.Trace("D2", Upstream, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, r.Branches, 3)
	assert.Equal(t, 2, r.Depth[a.n.Node("T1").ID])
}

func TestTrace_FromInsideBranch(t *testing.T) {
	a := NewAnalyzer(tributary(t))

	r, err := a.Trace("MX", Downstream, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, r.Branches, 2)
	assert.Equal(t, 1, r.Depth[a.n.Node("D1").ID])

	_, err = a.Trace("NOPE", Downstream, DefaultConfig())
	assert.ErrorIs(t, err, ErrLabelNotFound)
}
