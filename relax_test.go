package gdphull

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/polyopt/gdphull/internal/hull"
	"github.com/polyopt/gdphull/internal/modelfile"
	"github.com/polyopt/gdphull/model"
)

const plantYAML = `
name: plant
vars:
  - name: x
    lb: 0
    ub: 10
disjunctions:
  - name: pick
    xor: true
    disjuncts:
      - name: cheap
        constraints:
          - name: cost
            expr: 2*x + 3 >= 5
      - name: costly
        constraints:
          - name: cost
            expr: x <= 1
`

func TestRelaxEndToEnd(t *testing.T) {
	m, err := modelfile.Load([]byte(plantYAML))
	require.NoError(t, err)

	result, err := Relax(m, Options{})
	require.NoError(t, err)
	require.NotNil(t, result.Scope)

	x := m.Find("x").(*model.Var)
	pick := m.Find("pick").(*model.Disjunction)
	cheap := m.Find("cheap").(*model.Disjunct)
	costly := m.Find("costly").(*model.Disjunct)

	assert.False(t, pick.Active())
	assert.Equal(t, "hull", cheap.RelaxedBy())

	xor := result.Ledger.ExclusivityConstraint(pick)
	require.NotNil(t, xor)
	got, err := model.Eval(xor.Row(model.ScalarKey).Body(), map[*model.Var]float64{
		cheap.Indicator():  1,
		costly.Indicator(): 0,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0, got, 1e-12)

	// 2x + 3 >= 5 relaxes to 2*copy - 2*y >= 0 on the cheap side.
	cost := m.Find("cheap.cost").(*model.Constraint)
	gen := result.Ledger.Rewritten(cost)
	require.NotNil(t, gen)
	c1 := result.DisaggregatedVar(cheap, x)
	require.NotNil(t, c1)
	got, err = model.Eval(gen.Row("lb").Body(), map[*model.Var]float64{
		c1:                4,
		cheap.Indicator(): 0.5,
	})
	require.NoError(t, err)
	assert.InDelta(t, 2*4-2*0.5, got, 1e-9)
}

func TestRelaxTargeted(t *testing.T) {
	m, err := modelfile.Load([]byte(plantYAML))
	require.NoError(t, err)

	result, err := Relax(m, Options{Targets: []string{"pick"}, Mode: ModeClassic})
	require.NoError(t, err)
	assert.Len(t, result.Ledger.Disjuncts(), 2)

	_, err = Relax(m, Options{Targets: []string{"missing"}})
	require.Error(t, err)
	assert.True(t, hull.IsKind(err, hull.ErrTargetNotFound))
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gdphull.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"mode: classic\neps: 0.05\ntargets:\n  - pick\nverbose: true\n"), 0o644))

	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	opts, err := LoadOptions(path, logger)
	require.NoError(t, err)
	assert.Equal(t, ModeClassic, opts.Mode)
	assert.Equal(t, 0.05, opts.EPS)
	assert.Equal(t, []string{"pick"}, opts.Targets)

	// Unknown keys warn but do not fail.
	entries := logs.FilterMessage("unrecognized option").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "verbose", entries[0].ContextMap()["key"])
}

func TestLoadOptionsWarnsInStableOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gdphull.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"zeta: 1\nmode: robust\nalpha: 2\nmiddle: 3\n"), 0o644))

	core, logs := observer.New(zap.WarnLevel)
	_, err := LoadOptions(path, zap.New(core))
	require.NoError(t, err)

	entries := logs.FilterMessage("unrecognized option").All()
	require.Len(t, entries, 3)
	var keys []string
	for _, e := range entries {
		keys = append(keys, e.ContextMap()["key"].(string))
	}
	assert.Equal(t, []string{"alpha", "middle", "zeta"}, keys)
}

func TestLoadOptionsErrors(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: bigm\n"), 0o644))
	_, err = LoadOptions(path, nil)
	require.Error(t, err)
	assert.True(t, hull.IsKind(err, hull.ErrUnknownMode))
}

func TestParseModeReexport(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeRobust, mode)
	assert.Equal(t, 1e-2, DefaultEPS)
}
