// Package hull relaxes generalized disjunctive programs into continuous
// algebraic models by forming the convex hull of each disjunction: every
// variable used inside a disjunct is disaggregated into a per-disjunct copy
// tied to the indicator variable, and every constraint body is rewritten
// through a perspective-function convexification.
package hull

import (
	"strings"

	"go.uber.org/zap"

	"github.com/polyopt/gdphull/model"
)

// relaxTag marks disjuncts relaxed by this engine.
const relaxTag = "hull"

// Engine drives one transformation run. It is single threaded and not
// reentrant: one engine, one model, one run at a time. A run either completes
// or aborts on the first error with the model mutated as far as it got;
// callers needing atomicity must snapshot the model themselves.
type Engine struct {
	cfg Config
	log *zap.Logger

	m       *model.Model
	scope   *model.Block
	relaxed *model.Block
	ledger  *Ledger

	// Indexed containers seen during the run, in first-seen order. The
	// consistency pass deactivates the ones whose rows are all inactive.
	containers []*model.Disjunction
	seen       map[*model.Disjunction]bool
}

// New creates an engine with the given configuration.
func New(cfg Config) (*Engine, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:    cfg,
		log:    cfg.Logger,
		ledger: newLedger(),
		seen:   make(map[*model.Disjunction]bool),
	}, nil
}

// Apply transforms the targeted sub-trees of the model. Targets are
// dot-separated component paths; a disjunction target may address a single
// row as "path[key]". No targets means the whole model.
func (e *Engine) Apply(m *model.Model, targets ...string) (*Result, error) {
	if e.m != nil && e.m != m {
		return nil, newError(ErrTargetNotFound, m.Root().Name(),
			"engine already bound to model %q", e.m.Root().Name())
	}
	e.m = m

	if len(targets) == 0 {
		targets = []string{""}
	}
	for _, t := range targets {
		if err := e.applyTarget(t); err != nil {
			return nil, err
		}
	}

	e.checkContainers()
	return &Result{Scope: e.scope, Ledger: e.ledger}, nil
}

func (e *Engine) applyTarget(target string) error {
	path, rowKey, hasRow := splitRowTarget(target)
	comp := e.m.Find(path)
	if comp == nil {
		return newError(ErrTargetNotFound, target, "path does not resolve against model %q", e.m.Root().Name())
	}
	if !comp.Active() {
		return nil
	}

	switch c := comp.(type) {
	case *model.Disjunction:
		if hasRow {
			row := c.Row(rowKey)
			if row == nil {
				return newError(ErrTargetNotFound, target, "disjunction %q has no row %q", c.Name(), rowKey)
			}
			if !row.Active() {
				return nil
			}
			return e.transformDisjunctionRow(c, row)
		}
		return e.transformDisjunction(c)
	case *model.Disjunct:
		if hasRow {
			return newError(ErrUnsupportedTarget, target, "row addressing is only valid for disjunctions")
		}
		return e.transformBlock(&c.Block)
	case *model.Block:
		if hasRow {
			return newError(ErrUnsupportedTarget, target, "row addressing is only valid for disjunctions")
		}
		return e.transformBlock(c)
	default:
		return newError(ErrUnsupportedTarget, target, "component is a %s, want block, disjunct or disjunction", comp.Kind())
	}
}

// splitRowTarget splits "path[key]" into path and row key.
func splitRowTarget(target string) (path string, key model.Key, ok bool) {
	if !strings.HasSuffix(target, "]") {
		return target, "", false
	}
	i := strings.LastIndex(target, "[")
	if i < 0 {
		return target, "", false
	}
	return target[:i], model.Key(target[i+1 : len(target)-1]), true
}

// transformBlock relaxes every active disjunction reachable in the block's
// sub-tree, deepest first so that nested disjunctions are already relaxed
// when their enclosing disjunct is processed.
func (e *Engine) transformBlock(b *model.Block) error {
	for _, d := range collectDisjunctions(b) {
		if !d.Active() {
			continue
		}
		if err := e.transformDisjunction(d); err != nil {
			return err
		}
	}
	return nil
}

// collectDisjunctions gathers the active disjunctions of the sub-tree in
// post-order: nested blocks and disjuncts first, then the block's own
// disjunctions, all in declaration order.
func collectDisjunctions(b *model.Block) []*model.Disjunction {
	var out []*model.Disjunction
	for _, c := range b.Children() {
		if !c.Active() {
			continue
		}
		switch x := c.(type) {
		case *model.Disjunct:
			out = append(out, collectDisjunctions(&x.Block)...)
		case *model.Block:
			out = append(out, collectDisjunctions(x)...)
		}
	}
	for _, c := range b.Components(model.KindDisjunction) {
		if c.Active() {
			out = append(out, c.(*model.Disjunction))
		}
	}
	return out
}

// scopeBlock returns the run's relaxation scope, creating it on first use so
// that a run that relaxes nothing leaves the model untouched.
func (e *Engine) scopeBlock() *model.Block {
	if e.scope == nil {
		root := e.m.Root()
		e.scope = root.NewBlock(e.m.UniqueName(root, "hull_relaxation"))
		e.relaxed = e.scope.NewBlock("relaxed_disjuncts")
	}
	return e.scope
}

func (e *Engine) registerContainer(d *model.Disjunction) {
	if !e.seen[d] {
		e.seen[d] = true
		e.containers = append(e.containers, d)
	}
}

// checkContainers deactivates every visited container that is still active
// but has no active rows left. This is pure bookkeeping: indicator variables
// are not touched.
func (e *Engine) checkContainers() {
	for _, d := range e.containers {
		if !d.Active() {
			continue
		}
		allInactive := true
		for _, k := range d.Keys() {
			if d.Row(k).Active() {
				allInactive = false
				break
			}
		}
		if allInactive {
			d.Deactivate()
		}
	}
}

// Result exposes the artifacts of a run: the relaxation scope block (nil when
// nothing was relaxed) and the ledger's public views.
type Result struct {
	Scope  *model.Block
	Ledger *Ledger
}

// DisaggregatedVar returns the copy of v created for the given disjunct, or
// nil.
func (r *Result) DisaggregatedVar(d *model.Disjunct, v *model.Var) *model.Var {
	if rec := r.Ledger.Disjunct(d); rec != nil {
		return rec.CopyOf(v)
	}
	return nil
}
