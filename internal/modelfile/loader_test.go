package modelfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyopt/gdphull/model"
)

const plantYAML = `
name: plant
vars:
  - name: x
    lb: 0
    ub: 10
  - name: fixed
    fix: 2
params:
  - name: price
    value: 3
constraints:
  - name: budget
    expr: price*x <= 30
blocks:
  - name: stage
    vars:
      - name: s
        lb: 0
        ub: 5
    constraints:
      - name: link
        expr: s <= x
disjunctions:
  - name: pick
    xor: true
    disjuncts:
      - name: cheap
        constraints:
          - name: cost
            expr: 2*x + 3 >= 5
      - name: costly
        active: false
        constraints:
          - name: cost
            expr: x <= 1
`

func TestLoadPlant(t *testing.T) {
	m, err := Load([]byte(plantYAML))
	require.NoError(t, err)
	assert.Equal(t, "plant", m.Root().Name())

	x, ok := m.Find("x").(*model.Var)
	require.True(t, ok)
	lb, hasLB := x.LB()
	require.True(t, hasLB)
	assert.Zero(t, lb)
	ub, hasUB := x.UB()
	require.True(t, hasUB)
	assert.Equal(t, 10.0, ub)

	fixed, ok := m.Find("fixed").(*model.Var)
	require.True(t, ok)
	assert.True(t, fixed.Fixed())
	assert.Equal(t, 2.0, fixed.FixedValue())

	budget, ok := m.Find("budget").(*model.Constraint)
	require.True(t, ok)
	row := budget.Row(model.ScalarKey)
	require.NotNil(t, row)
	require.NotNil(t, row.Upper())
	got, err := model.Eval(row.Body(), map[*model.Var]float64{x: 10})
	require.NoError(t, err)
	assert.InDelta(t, 0, got, 1e-12, "price*x - 30 at x=10")

	// Identifiers in nested blocks resolve through the enclosing scope.
	s, ok := m.Find("stage.s").(*model.Var)
	require.True(t, ok)
	link, ok := m.Find("stage.link").(*model.Constraint)
	require.True(t, ok)
	got, err = model.Eval(link.Row(model.ScalarKey).Body(), map[*model.Var]float64{x: 4, s: 4})
	require.NoError(t, err)
	assert.InDelta(t, 0, got, 1e-12)

	pick, ok := m.Find("pick").(*model.Disjunction)
	require.True(t, ok)
	prow := pick.Row(model.ScalarKey)
	require.NotNil(t, prow)
	assert.True(t, prow.Xor())
	require.Len(t, prow.Disjuncts(), 2)

	cheap := prow.Disjuncts()[0]
	assert.Equal(t, "cheap", cheap.Name())
	assert.True(t, cheap.Active())
	assert.NotNil(t, cheap.Indicator())

	costly := prow.Disjuncts()[1]
	assert.False(t, costly.Active(), "active: false carries over")
}

func TestLoadIndexedRows(t *testing.T) {
	const raw = `
vars:
  - name: x
    lb: 0
    ub: 1
constraints:
  - name: caps
    rows:
      - key: r1
        expr: x <= 0.5
      - key: r2
        expr: x >= 0.1
disjunctions:
  - name: pick
    rows:
      - key: r1
        xor: true
        disjuncts:
          - name: a
          - name: b
      - key: r2
        xor: false
        disjuncts:
          - name: c
          - name: d
`
	m, err := Load([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "model", m.Root().Name(), "default root name")

	caps, ok := m.Find("caps").(*model.Constraint)
	require.True(t, ok)
	assert.Equal(t, []model.Key{"r1", "r2"}, caps.Keys())

	pick, ok := m.Find("pick").(*model.Disjunction)
	require.True(t, ok)
	assert.True(t, pick.IsIndexed())
	assert.True(t, pick.Row("r1").Xor())
	assert.False(t, pick.Row("r2").Xor())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bad yaml", ":\n  - ["},
		{"unknown domain", "vars:\n  - name: x\n    domain: integer"},
		{"unknown identifier", "constraints:\n  - name: c\n    expr: y <= 1"},
		{"bad expression", "vars:\n  - name: x\nconstraints:\n  - name: c\n    expr: x <"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}
