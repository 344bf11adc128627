package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDegree(t *testing.T) {
	m := New("m")
	x := m.Root().NewVar("x", Continuous)
	y := m.Root().NewVar("y", Continuous)
	p := m.Root().NewParam("p", 2.5)
	fixed := m.Root().NewVar("f", Continuous)
	fixed.Fix(3)

	tests := []struct {
		name string
		expr Expr
		want int
	}{
		{"constant", C(4), 0},
		{"parameter", P(p), 0},
		{"variable", V(x), 1},
		{"fixed variable", V(fixed), 0},
		{"linear sum", Add(Scale(2, V(x)), C(3)), 1},
		{"bilinear product", Mul(V(x), V(y)), 2},
		{"square", PowOf(V(x), 2), 2},
		{"product with fixed", Mul(V(fixed), V(x)), 1},
		{"quotient constant denominator", Div(V(x), C(2)), 1},
		{"quotient variable denominator", Div(V(x), V(y)), DegreeNonlinear},
		{"negative exponent", PowOf(V(x), -1), DegreeNonlinear},
		{"zero exponent", PowOf(V(x), 0), 0},
		{"sum absorbs nonlinearity", Add(V(x), Div(C(1), V(y))), DegreeNonlinear},
		{"cube of linear sum", PowOf(Add(V(x), C(1)), 3), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.Degree())
		})
	}
}

func TestVarsOrderAndDedup(t *testing.T) {
	m := New("m")
	x := m.Root().NewVar("x", Continuous)
	y := m.Root().NewVar("y", Continuous)
	z := m.Root().NewVar("z", Continuous)
	fixed := m.Root().NewVar("f", Continuous)
	fixed.Fix(1)

	e := Add(Mul(V(y), V(x)), V(fixed), PowOf(V(x), 2), Div(V(z), C(2)))
	got := Vars(e)

	require.Len(t, got, 3)
	assert.Equal(t, []*Var{y, x, z}, got, "first-seen depth-first order, fixed excluded")
}

func TestSubstituteLeavesOriginalIntact(t *testing.T) {
	m := New("m")
	x := m.Root().NewVar("x", Continuous)
	u := m.Root().NewVar("u", Continuous)

	orig := Add(PowOf(V(x), 2), Scale(3, V(x)), C(1))
	repl := Substitute(orig, Substitution{x: V(u)})

	origVal, err := Eval(orig, map[*Var]float64{x: 2})
	require.NoError(t, err)
	assert.InDelta(t, 11, origVal, 1e-12)

	replVal, err := Eval(repl, map[*Var]float64{u: 2})
	require.NoError(t, err)
	assert.InDelta(t, 11, replVal, 1e-12)

	// The original tree still references x only.
	assert.Equal(t, []*Var{x}, Vars(orig))
	assert.Equal(t, []*Var{u}, Vars(repl))
}

func TestEval(t *testing.T) {
	m := New("m")
	x := m.Root().NewVar("x", Continuous)
	y := m.Root().NewVar("y", Continuous)
	p := m.Root().NewParam("p", 4)
	fixed := m.Root().NewVar("f", Continuous)
	fixed.Fix(-2)

	vals := map[*Var]float64{x: 3, y: 2}

	tests := []struct {
		name    string
		expr    Expr
		want    float64
		wantErr bool
	}{
		{"arithmetic", Add(Scale(2, V(x)), Mul(V(x), V(y)), C(1)), 13, false},
		{"parameter value", Mul(P(p), V(y)), 8, false},
		{"fixed value", Sub(V(x), V(fixed)), 5, false},
		{"quotient", Div(V(x), V(y)), 1.5, false},
		{"power", PowOf(V(y), 3), 8, false},
		{"negative power", PowOf(V(y), -2), 0.25, false},
		{"missing variable", V(m.Root().NewVar("w", Continuous)), 0, true},
		{"division by zero", Div(C(1), Sub(V(y), C(2))), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.expr, vals)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestBuilders(t *testing.T) {
	m := New("m")
	x := m.Root().NewVar("x", Continuous)

	t.Run("empty sum is zero", func(t *testing.T) {
		v, err := Eval(Add(), nil)
		require.NoError(t, err)
		assert.Zero(t, v)
	})
	t.Run("empty product is one", func(t *testing.T) {
		v, err := Eval(Mul(), nil)
		require.NoError(t, err)
		assert.Equal(t, 1.0, v)
	})
	t.Run("add flattens nested sums", func(t *testing.T) {
		e := Add(Add(V(x), C(1)), C(2))
		s, ok := e.(Sum)
		require.True(t, ok)
		assert.Len(t, s.Terms, 3)
	})
	t.Run("scale folds constants", func(t *testing.T) {
		e := Scale(3, C(2))
		c, ok := e.(Const)
		require.True(t, ok)
		assert.Equal(t, 6.0, c.Val)
	})
	t.Run("single term collapses", func(t *testing.T) {
		assert.Equal(t, V(x), Add(V(x)))
		assert.Equal(t, V(x), Mul(V(x)))
	})
}

func TestExprString(t *testing.T) {
	m := New("m")
	x := m.Root().NewVar("x", Continuous)

	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"constant", C(2.5), "2.5"},
		{"variable", V(x), "x"},
		{"sum", Add(V(x), C(1)), "(x + 1)"},
		{"product", Mul(C(2), V(x)), "2*x"},
		{"quotient", Div(V(x), C(3)), "x/3"},
		{"power", PowOf(V(x), 2), "x^2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}
