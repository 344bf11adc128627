package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockChildren(t *testing.T) {
	m := New("m")
	root := m.Root()

	x := root.NewVar("x", Continuous)
	c := root.NewConstraint("c")
	b := root.NewBlock("sub")
	d := root.NewDisjunction("d")

	kids := root.Children()
	require.Len(t, kids, 4)
	assert.Equal(t, []Component{x, c, b, d}, kids, "declaration order")

	assert.Equal(t, x, root.Child("x"))
	assert.Nil(t, root.Child("missing"))

	cons := root.Components(KindConstraint)
	require.Len(t, cons, 1)
	assert.Equal(t, c, cons[0])
}

func TestBlockDuplicateNamePanics(t *testing.T) {
	m := New("m")
	m.Root().NewVar("x", Continuous)
	assert.Panics(t, func() { m.Root().NewVar("x", Continuous) })
}

func TestDisjunctIndicator(t *testing.T) {
	m := New("m")
	d := m.Root().NewDisjunct("alt")

	y := d.Indicator()
	require.NotNil(t, y)
	assert.Equal(t, "alt_indicator", y.Name())
	assert.Equal(t, Boolean, y.Domain())

	lb, ok := y.LB()
	require.True(t, ok)
	assert.Zero(t, lb)
	ub, ok := y.UB()
	require.True(t, ok)
	assert.Equal(t, 1.0, ub)

	// The indicator is a child of the disjunct itself.
	assert.Equal(t, Component(y), d.Child("alt_indicator"))
}

func TestMarkRelaxedFirstWins(t *testing.T) {
	m := New("m")
	d := m.Root().NewDisjunct("alt")

	assert.Empty(t, d.RelaxedBy())
	d.MarkRelaxed("hull")
	d.MarkRelaxed("bigm")
	assert.Equal(t, "hull", d.RelaxedBy())
}

func TestConstraintRows(t *testing.T) {
	m := New("m")
	x := m.Root().NewVar("x", Continuous)
	c := m.Root().NewConstraint("c")

	c.Add("b", LE(V(x), C(2)))
	c.Add("a", GE(V(x), C(0)))

	assert.Equal(t, []Key{"a", "b"}, c.Keys(), "sorted regardless of insertion order")
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.IsIndexed())
	assert.Nil(t, c.Row("missing"))

	row := c.Row("a")
	require.NotNil(t, row)
	assert.True(t, row.Active())
	row.Deactivate()
	assert.False(t, row.Active())
	assert.True(t, c.Row("b").Active(), "rows deactivate independently")

	assert.Panics(t, func() { c.Add("a", LE(V(x), C(1))) }, "rows are write-once")
}

func TestRelationEncoding(t *testing.T) {
	m := New("m")
	x := m.Root().NewVar("x", Continuous)
	vals := map[*Var]float64{x: 3}

	tests := []struct {
		name      string
		rel       Relation
		wantBody  float64
		wantLower *float64
		wantUpper *float64
	}{
		{"ge", GE(V(x), C(2)), 1, ptr(0.0), nil},
		{"le", LE(V(x), C(2)), 1, nil, ptr(0.0)},
		{"eq", EQ(V(x), C(2)), 1, ptr(0.0), ptr(0.0)},
		{"bounded", Bounded(V(x), ptr(1.0), ptr(5.0)), 3, ptr(1.0), ptr(5.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.rel.Body, vals)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantBody, got, 1e-12)
			assert.Equal(t, tt.wantLower, tt.rel.Lower)
			assert.Equal(t, tt.wantUpper, tt.rel.Upper)
		})
	}
}

func TestKeyOf(t *testing.T) {
	tests := []struct {
		name  string
		parts []any
		want  Key
	}{
		{"scalar parent drops out", []any{ScalarKey, "lb"}, "lb"},
		{"indexed parent joins", []any{Key("r1"), "ub"}, "r1,ub"},
		{"integer index", []any{0}, "0"},
		{"row and index", []any{Key("r1"), 2}, "r1,2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyOf(tt.parts...))
		})
	}
}

func TestDisjunctionRows(t *testing.T) {
	m := New("m")
	d1 := m.Root().NewDisjunct("a")
	d2 := m.Root().NewDisjunct("b")
	d := m.Root().NewDisjunction("pick")

	d.Add("r2", true, d1, d2)
	d.Add("r1", false, d2, d1)

	assert.Equal(t, []Key{"r1", "r2"}, d.Keys())
	assert.True(t, d.IsIndexed())

	r1 := d.Row("r1")
	require.NotNil(t, r1)
	assert.False(t, r1.Xor())
	assert.Equal(t, []*Disjunct{d2, d1}, r1.Disjuncts())

	r1.Deactivate()
	assert.False(t, r1.Active())
	assert.True(t, d.Row("r2").Active())

	assert.Equal(t, m.Root(), d.Owner())
}

func TestUniqueName(t *testing.T) {
	m := New("m")
	root := m.Root()

	assert.Equal(t, "x", m.UniqueName(root, "x"))
	root.NewVar("x", Continuous)
	assert.Equal(t, "x_2", m.UniqueName(root, "x"))
	root.NewVar("x_2", Continuous)
	assert.Equal(t, "x_3", m.UniqueName(root, "x"))
}

func TestFind(t *testing.T) {
	m := New("m")
	sub := m.Root().NewBlock("sub")
	x := sub.NewVar("x", Continuous)
	d := sub.NewDisjunct("alt")
	c := d.NewConstraint("cost")

	tests := []struct {
		name string
		path string
		want Component
	}{
		{"root", "", m.Root()},
		{"block", "sub", sub},
		{"var in block", "sub.x", x},
		{"disjunct", "sub.alt", d},
		{"constraint in disjunct", "sub.alt.cost", c},
		{"indicator in disjunct", "sub.alt.alt_indicator", d.Indicator()},
		{"missing segment", "sub.none", nil},
		{"descent through leaf", "sub.x.y", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want == nil {
				assert.Nil(t, m.Find(tt.path))
				return
			}
			assert.Equal(t, tt.want, m.Find(tt.path))
		})
	}
}

func ptr(v float64) *float64 { return &v }
