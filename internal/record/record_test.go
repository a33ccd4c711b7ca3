package record

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivernet/internal/field"
	"rivernet/internal/message"
)

type testContext struct {
	values field.Values
	width  int
}

func newTestContext() *testContext {
	return &testContext{values: field.Values{}, width: DefaultNodeLabelLength}
}

func (c *testContext) Values() field.Values  { return c.values }
func (c *testContext) NodeLabelLength() int { return c.width }
func (c *testContext) Revision() int        { return 1 }

func linesOf(text ...string) *Lines {
	out := make([][]byte, len(text))
	for i, t := range text {
		out[i] = []byte(t)
	}
	return NewLines(out)
}

func writeRecord(r Record) string {
	w := NewWriter("\n")
	r.Write(w)
	return string(w.Bytes())
}

func TestTable_ReadsExactlyCountRows(t *testing.T) {
	ctx := newTestContext()
	countRow := NewRow(field.Int("xs_row_count", 0, 10, field.ApplyRequired()))
	table := &Table{
		Attr:         "xs",
		RowCountAttr: "xs_row_count",
		Row:          NewRow(field.Float("x", 0, 10), field.Float("z", 10, 10)),
	}
	lines := linesOf(
		"         2",
		"     0.000    10.000",
		"     1.000     9.000",
		"     2.000     8.000",
	)

	_, err := countRow.Read(ctx, lines)
	require.NoError(t, err)
	rec, err := table.Read(ctx, lines)
	require.NoError(t, err)

	tr := rec.(*TableRecord)
	assert.Len(t, tr.Rows, 2)
	next, ok := lines.Peek()
	require.True(t, ok)
	assert.Equal(t, "     2.000     8.000", string(next))

	assert.Nil(t, rec.Validate())
	values := field.Values{}
	rec.Apply(values)
	rows := values.Table("xs")
	require.Len(t, rows, 2)
	z, _ := rows[1].Float("z")
	assert.Equal(t, 9.0, z)
}

func TestTable_MissingCount(t *testing.T) {
	ctx := newTestContext()
	table := &Table{Attr: "xs", RowCountAttr: "xs_row_count", Row: NewRow(field.Float("x", 0, 10))}
	lines := linesOf("     0.000")

	rec, err := table.Read(ctx, lines)
	require.NoError(t, err)
	assert.Empty(t, rec.(*TableRecord).Rows)
	m := rec.Validate()
	require.NotNil(t, m)
	assert.Equal(t, message.Error, m.Severity)
	assert.False(t, rec.Valid())
	assert.False(t, lines.Done())
}

func TestTable_EndOfInput(t *testing.T) {
	ctx := newTestContext()
	ctx.values["n"] = 3
	table := &Table{Attr: "t", RowCountAttr: "n", Row: NewRow(field.Float("x", 0, 10))}
	rec, err := table.Read(ctx, linesOf("     1.000"))
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
	require.NotNil(t, rec)
	assert.Len(t, rec.(*TableRecord).Rows, 1)
}

func TestNodeLabelRow_OpenEnded(t *testing.T) {
	ctx := newTestContext()
	line := fmt.Sprintf("%-12s%-12s%-12s%s", "RIV01", "RIV02", "RIV03", strings.Repeat(" ", 24))
	rec, err := (&NodeLabelRow{}).Read(ctx, linesOf(line))
	require.NoError(t, err)

	assert.Nil(t, rec.Validate())
	values := field.Values{}
	rec.Apply(values)
	assert.Equal(t, []string{"RIV01", "RIV02", "RIV03"}, values.Strings(NodeLabelsAttr))
	assert.Equal(t, line+"\n", writeRecord(rec))
}

func TestNodeLabelRow_FixedCountAndWidth(t *testing.T) {
	ctx := newTestContext()
	ctx.width = 8
	line := fmt.Sprintf("%-8s%-8s", "A1", "B2")
	rec, err := (&NodeLabelRow{Count: 3}).Read(ctx, linesOf(line))
	require.NoError(t, err)
	m := rec.Validate()
	assert.Equal(t, message.Info, m.Max())
	assert.Equal(t, 1, m.Count(message.Info))

	values := field.Values{}
	rec.Apply(values)
	assert.Equal(t, []string{"A1", "B2", ""}, values.Strings(NodeLabelsAttr))
	assert.Equal(t, line+"\n", writeRecord(rec))
}

func TestRow_PreservesLayout(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"full", "    12.500     1.000"},
		{"short", "    12.500"},
		{"trailer", "    12.500     1.000  extra text"},
		{"gap trailing spaces", "    12.500     1.000   "},
	}
	row := NewRow(field.Float("chainage", 0, 10), field.Float("easting", 10, 10))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := row.Read(newTestContext(), linesOf(tt.line))
			require.NoError(t, err)
			rec.Validate()
			assert.Equal(t, tt.line+"\n", writeRecord(rec))
		})
	}
}

func TestRow_Condition(t *testing.T) {
	row := NewRow(field.Float("x", 0, 10)).If(func(c Context) bool {
		return c.Values().String("data_type") == "VQ RATING"
	})
	ctx := newTestContext()
	assert.False(t, row.Applies(ctx))
	ctx.values["data_type"] = "VQ RATING"
	assert.True(t, row.Applies(ctx))
	assert.False(t, row.ApplyRequired())
}

func TestRule(t *testing.T) {
	lines := linesOf("IF level > 3", "  open gate", "END", "next")
	rec, err := (&Rule{Attr: "rules"}).Read(newTestContext(), lines)
	require.NoError(t, err)
	assert.True(t, rec.Valid())

	values := field.Values{}
	rec.Apply(values)
	assert.Equal(t, []string{"IF level > 3", "  open gate"}, values["rules"])
	assert.Equal(t, "IF level > 3\n  open gate\nEND\n", writeRecord(rec))

	next, _ := lines.Peek()
	assert.Equal(t, "next", string(next))
}

func TestUnitRecord_Lifecycle(t *testing.T) {
	components := []Component{
		&NodeLabelRow{Count: 1},
		NewRow(field.Float("chainage", 0, 10, field.Min(0))),
		NewRow(field.Int("n", 0, 10, field.ApplyRequired(), field.Required())),
		&Table{Attr: "pts", RowCountAttr: "n", Row: NewRow(field.Float("x", 0, 10))},
	}
	input := []string{
		fmt.Sprintf("%-12s", "RIV01"),
		"    -5.000",
		"         1",
		"     3.000",
	}
	u := NewUnitRecord("INTERPOLATE", []byte("INTERPOLATE  upstream end"), 1, 12)
	require.NoError(t, u.Read(components, linesOf(input...)))
	assert.Equal(t, "upstream end", u.Comment1)

	m := u.Validate()
	require.NotNil(t, m)
	assert.False(t, u.Valid())
	assert.Equal(t, 1, m.CountAtLeast(message.Error))

	values := u.Apply()
	assert.False(t, values.Has("chainage"))
	assert.Len(t, values.Table("pts"), 1)
	assert.Equal(t, []string{"RIV01"}, values.Strings(NodeLabelsAttr))

	w := NewWriter("\r\n")
	u.Write(w)
	want := "INTERPOLATE  upstream end\r\n" + strings.Join(input, "\r\n") + "\r\n"
	assert.Equal(t, want, string(w.Bytes()))
}

func TestUnitRecord_Incomplete(t *testing.T) {
	u := NewUnitRecord("JUNCTION", []byte("JUNCTION"), 5, 12)
	u.SetSubHeader("OPEN", []byte("OPEN"))
	err := u.Read([]Component{&NodeLabelRow{}}, linesOf())
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
	m := u.Validate()
	require.NotNil(t, m)
	assert.False(t, u.Valid())
	assert.Equal(t, "JUNCTION OPEN", u.Name())
}
