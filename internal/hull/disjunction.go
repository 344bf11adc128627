package hull

import (
	"github.com/polyopt/gdphull/model"
)

// transformDisjunction relaxes every active row of the container, then
// deactivates it so a later pass knows it was handled.
func (e *Engine) transformDisjunction(d *model.Disjunction) error {
	for _, k := range d.Keys() {
		row := d.Row(k)
		if !row.Active() {
			continue
		}
		if err := e.transformDisjunctionRow(d, row); err != nil {
			return err
		}
	}
	d.Deactivate()
	return nil
}

// transformDisjunctionRow builds the convex hull of one disjunction row: the
// exclusivity constraint over the indicators, one relaxed sub-scope per
// disjunct, and the disaggregation sum constraints.
func (e *Engine) transformDisjunctionRow(d *model.Disjunction, row *model.DisjunctionData) error {
	if !row.Xor() {
		return newError(ErrNonExclusiveDisjunction, d.Name(),
			"row %q requires exactly-one semantics for the hull relaxation", row.Key())
	}

	e.registerContainer(d)
	xorC, disaggC := e.disjunctionConstraints(d)

	varSet := collectDisaggregationVars(row)

	var indicators []model.Expr
	for _, dj := range row.Disjuncts() {
		indicators = append(indicators, model.V(dj.Indicator()))
		if err := e.transformDisjunct(dj, varSet); err != nil {
			return err
		}
	}
	xorC.Add(row.Key(), model.EQ(model.Add(indicators...), model.C(1)))

	for i, v := range varSet {
		var copies []model.Expr
		for _, dj := range row.Disjuncts() {
			rec := e.ledger.Disjunct(dj)
			if rec == nil || !rec.transformed {
				// User-excluded disjunct: its indicator is fixed to 0 and it
				// contributes nothing to the sum.
				continue
			}
			if cv := rec.CopyOf(v); cv != nil {
				copies = append(copies, model.V(cv))
			}
		}
		key := model.KeyOf(i)
		if d.IsIndexed() {
			key = model.KeyOf(row.Key(), i)
		}
		disaggC.Add(key, model.EQ(model.V(v), model.Add(copies...)))
	}

	row.Deactivate()
	return nil
}

// disjunctionConstraints returns the container-level generated constraints,
// creating them on the disjunction's owning block on first use. Rows of the
// same indexed disjunction share one pair.
func (e *Engine) disjunctionConstraints(d *model.Disjunction) (xor, disagg *model.Constraint) {
	if cons := e.ledger.disjunctions[d]; cons != nil {
		return cons.xor, cons.disagg
	}

	owner := d.Owner()
	xor = owner.NewConstraint(e.m.UniqueName(owner, d.Name()+"_xor"))
	disagg = owner.NewConstraint(e.m.UniqueName(owner, d.Name()+"_disaggregation"))
	e.ledger.disjunctions[d] = &disjunctionCons{xor: xor, disagg: disagg}
	return xor, disagg
}

// collectDisaggregationVars gathers the variables referenced by any active
// constraint row inside any disjunct of the row, fixed variables excluded, in
// first-seen order across disjuncts in declaration order. The order is the
// disaggregation order.
func collectDisaggregationVars(row *model.DisjunctionData) []*model.Var {
	var out []*model.Var
	seen := make(map[*model.Var]bool)
	for _, dj := range row.Disjuncts() {
		for _, c := range activeConstraints(&dj.Block) {
			for _, k := range c.Keys() {
				cr := c.Row(k)
				if !cr.Active() {
					continue
				}
				for _, v := range model.Vars(cr.Body()) {
					if !seen[v] {
						seen[v] = true
						out = append(out, v)
					}
				}
			}
		}
	}
	return out
}

// activeConstraints returns the active constraint containers of the block's
// sub-tree, nested blocks included, in declaration order.
func activeConstraints(b *model.Block) []*model.Constraint {
	var out []*model.Constraint
	for _, c := range b.Children() {
		if !c.Active() {
			continue
		}
		switch x := c.(type) {
		case *model.Constraint:
			out = append(out, x)
		case *model.Disjunct:
			// Nested disjuncts belong to a nested disjunction and get their
			// own disaggregation set when it is transformed.
		case *model.Block:
			out = append(out, activeConstraints(x)...)
		}
	}
	return out
}
