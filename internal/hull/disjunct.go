package hull

import (
	"math"

	"go.uber.org/zap"

	"github.com/polyopt/gdphull/model"
)

// transformDisjunct relaxes one disjunct: disaggregated variable copies,
// indicator-scaled bound constraints, and the perspective rewrite of every
// constraint in the disjunct's sub-tree.
func (e *Engine) transformDisjunct(d *model.Disjunct, varSet []*model.Var) error {
	if rec := e.ledger.Disjunct(d); rec != nil && rec.transformed {
		return nil
	}
	switch tag := d.RelaxedBy(); tag {
	case "":
	case relaxTag:
		// Relaxed by an earlier hull run, reachable when a disjunct is shared
		// by disjunctions transformed in separate runs. A relaxed disjunct is
		// never re-relaxed and never mistaken for a user-excluded one.
		return nil
	default:
		// Another relaxation strategy owns this disjunct.
		e.log.Debug("skipping foreign-relaxed disjunct",
			zap.String("disjunct", d.Name()), zap.String("relaxedBy", tag))
		return nil
	}
	if !d.Active() {
		// Deactivated by the user: the alternative is excluded, so its
		// indicator is pinned to 0 and no relaxation scope is built.
		d.Indicator().Fix(0)
		return nil
	}

	e.scopeBlock()
	sub := e.relaxed.NewBlock(e.m.UniqueName(e.relaxed, d.Name()+"_hull"))
	rec := e.ledger.newDisjunct(d, sub)

	y := d.Indicator()
	varSub := make(model.Substitution, len(varSet))
	zeroSub := make(model.Substitution, len(varSet))
	for _, v := range varSet {
		lb, okLB := v.LB()
		ub, okUB := v.UB()
		if !okLB || !okUB {
			return newError(ErrUnboundedVariable, v.Name(),
				"variable used in disjunct %q needs both bounds for disaggregation", d.Name())
		}

		// Copies from many source blocks land on one scope, so names can
		// collide and go through the unique-naming facility. The copy's range
		// must include 0 so it can collapse there when the indicator is 0,
		// and so a nested relaxation can disaggregate the copy in turn.
		dv := sub.NewVar(e.m.UniqueName(sub, v.Name()), model.Continuous)
		dv.SetBounds(math.Min(0, lb), math.Max(0, ub))
		rec.addCopy(v, dv)
		e.ledger.srcVar[dv] = v

		bc := sub.NewConstraint(e.m.UniqueName(sub, dv.Name()+"_bounds"))
		bc.Add("lb", model.GE(model.V(dv), model.Scale(lb, model.V(y))))
		bc.Add("ub", model.LE(model.V(dv), model.Scale(ub, model.V(y))))
		rec.bounds[v] = bc
		rec.boundSrc[bc] = v

		varSub[v] = model.V(dv)
		zeroSub[v] = model.C(0)
	}

	if err := e.transformBlockComponents(&d.Block, d, rec, varSub, zeroSub, varSet); err != nil {
		return err
	}

	d.Deactivate()
	d.MarkRelaxed(relaxTag)
	rec.transformed = true
	return nil
}

// transformBlockComponents dispatches on every active component of the block,
// recursing into nested blocks. The disjunct, its relaxation record and the
// substitution maps are threaded through explicitly; a nested block reuses
// the disjunct's disaggregation set.
func (e *Engine) transformBlockComponents(
	b *model.Block,
	d *model.Disjunct,
	rec *DisjunctRecord,
	varSub, zeroSub model.Substitution,
	varSet []*model.Var,
) error {
	for _, c := range b.Children() {
		if !c.Active() {
			continue
		}
		switch x := c.(type) {
		case *model.Constraint:
			if err := e.rewriteConstraint(x, d, rec, varSub, zeroSub); err != nil {
				return err
			}
		case *model.Var, *model.Param:
			// Data components pass through untouched.
		case *model.Block:
			if err := e.transformBlockComponents(x, d, rec, varSub, zeroSub, varSet); err != nil {
				return err
			}
		case *model.Disjunction:
			if err := checkInnerDisjunction(x, d); err != nil {
				return err
			}
		case *model.Disjunct:
			return newError(ErrOrderingViolation, x.Name(),
				"active disjunct inside disjunct %q: its disjunction must be transformed first", d.Name())
		default:
			return newError(ErrUnsupportedComponent, c.Name(),
				"no hull handler for components of kind %s", c.Kind())
		}
	}
	return nil
}

// checkInnerDisjunction handles an active disjunction container found inside
// a disjunct being relaxed. If every row is already inactive the container
// just missed its bookkeeping deactivation and is deactivated here; an active
// row means the targets were given in the wrong nesting order.
func checkInnerDisjunction(inner *model.Disjunction, outer *model.Disjunct) error {
	for _, k := range inner.Keys() {
		if inner.Row(k).Active() {
			return newError(ErrOrderingViolation, inner.Name(),
				"untransformed disjunction inside disjunct %q: transform the disjunction first", outer.Name())
		}
	}
	inner.Deactivate()
	return nil
}
