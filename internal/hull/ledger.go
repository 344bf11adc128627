package hull

import "github.com/polyopt/gdphull/model"

// Ledger is the transformation side-table. All bookkeeping lives here, keyed
// by component identity; the engine never stashes metadata on model components
// themselves, so it can never collide with a user attribute.
type Ledger struct {
	disjuncts    map[*model.Disjunct]*DisjunctRecord
	djOrder      []*model.Disjunct
	disjunctions map[*model.Disjunction]*disjunctionCons
	rewritten    map[*model.Constraint]*model.Constraint
	source       map[*model.Constraint]*model.Constraint
	srcVar       map[*model.Var]*model.Var
}

// disjunctionCons holds the lazily created per-container generated
// constraints: one exclusivity (xor) container and one disaggregation-sum
// container, shared by all rows of an indexed disjunction.
type disjunctionCons struct {
	xor    *model.Constraint
	disagg *model.Constraint
}

// DisjunctRecord is the per-disjunct transformation metadata.
type DisjunctRecord struct {
	src   *model.Disjunct
	scope *model.Block

	// Disaggregation order is observable (it drives generated constraint
	// indices), so originals are kept as an ordered list beside the maps.
	order    []*model.Var
	copies   map[*model.Var]*model.Var
	bounds   map[*model.Var]*model.Constraint
	boundSrc map[*model.Constraint]*model.Var

	transformed bool
}

func newLedger() *Ledger {
	return &Ledger{
		disjuncts:    make(map[*model.Disjunct]*DisjunctRecord),
		disjunctions: make(map[*model.Disjunction]*disjunctionCons),
		rewritten:    make(map[*model.Constraint]*model.Constraint),
		source:       make(map[*model.Constraint]*model.Constraint),
		srcVar:       make(map[*model.Var]*model.Var),
	}
}

func (l *Ledger) newDisjunct(d *model.Disjunct, scope *model.Block) *DisjunctRecord {
	rec := &DisjunctRecord{
		src:      d,
		scope:    scope,
		copies:   make(map[*model.Var]*model.Var),
		bounds:   make(map[*model.Var]*model.Constraint),
		boundSrc: make(map[*model.Constraint]*model.Var),
	}
	l.disjuncts[d] = rec
	l.djOrder = append(l.djOrder, d)
	return rec
}

// Disjuncts returns the records of every disjunct relaxed by this engine, in
// transformation order.
func (l *Ledger) Disjuncts() []*DisjunctRecord {
	out := make([]*DisjunctRecord, 0, len(l.djOrder))
	for _, d := range l.djOrder {
		out = append(out, l.disjuncts[d])
	}
	return out
}

func (rec *DisjunctRecord) addCopy(orig, copy *model.Var) {
	rec.order = append(rec.order, orig)
	rec.copies[orig] = copy
}

// Source returns the original disjunct.
func (rec *DisjunctRecord) Source() *model.Disjunct { return rec.src }

// Scope returns the relaxation sub-scope holding the disjunct's artifacts.
func (rec *DisjunctRecord) Scope() *model.Block { return rec.scope }

// Disaggregated returns the original variables in disaggregation order.
func (rec *DisjunctRecord) Disaggregated() []*model.Var {
	out := make([]*model.Var, len(rec.order))
	copy(out, rec.order)
	return out
}

// CopyOf returns the disaggregated copy of an original variable, or nil.
func (rec *DisjunctRecord) CopyOf(v *model.Var) *model.Var { return rec.copies[v] }

// BoundConstraint returns the bound constraint generated for an original
// variable, or nil.
func (rec *DisjunctRecord) BoundConstraint(v *model.Var) *model.Constraint {
	return rec.bounds[v]
}

// BoundSource returns the original variable a generated bound constraint
// belongs to, or nil.
func (rec *DisjunctRecord) BoundSource(c *model.Constraint) *model.Var {
	return rec.boundSrc[c]
}

// Disjunct returns the record for a disjunct, or nil if it was never touched
// by this engine.
func (l *Ledger) Disjunct(d *model.Disjunct) *DisjunctRecord { return l.disjuncts[d] }

// Rewritten returns the generated constraint replacing an original, or nil.
func (l *Ledger) Rewritten(c *model.Constraint) *model.Constraint { return l.rewritten[c] }

// SourceConstraint returns the original behind a generated constraint, or nil.
func (l *Ledger) SourceConstraint(c *model.Constraint) *model.Constraint { return l.source[c] }

// SourceVar returns the original behind a disaggregated copy, or nil.
func (l *Ledger) SourceVar(v *model.Var) *model.Var { return l.srcVar[v] }

// ExclusivityConstraint returns the generated exactly-one constraint of a
// disjunction container, or nil.
func (l *Ledger) ExclusivityConstraint(d *model.Disjunction) *model.Constraint {
	if cons := l.disjunctions[d]; cons != nil {
		return cons.xor
	}
	return nil
}

// DisaggregationConstraint returns the generated sum constraint of a
// disjunction container, or nil.
func (l *Ledger) DisaggregationConstraint(d *model.Disjunction) *model.Constraint {
	if cons := l.disjunctions[d]; cons != nil {
		return cons.disagg
	}
	return nil
}
