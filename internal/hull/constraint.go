package hull

import (
	"go.uber.org/zap"

	"github.com/polyopt/gdphull/model"
)

// rewriteConstraint replaces an original constraint with its perspective
// convexification on the disjunct's relaxation scope. Rows are processed in
// sorted key order; each produces up to two generated rows, indexed by
// (original key, side), one per bound present on the original.
func (e *Engine) rewriteConstraint(
	c *model.Constraint,
	d *model.Disjunct,
	rec *DisjunctRecord,
	varSub, zeroSub model.Substitution,
) error {
	sub := rec.Scope()
	newC := sub.NewConstraint(e.m.UniqueName(sub, c.Name()))
	e.ledger.rewritten[c] = newC
	e.ledger.source[newC] = c

	y := model.V(d.Indicator())
	for _, k := range c.Keys() {
		row := c.Row(k)
		if !row.Active() {
			continue
		}
		row.Deactivate()

		body := row.Body()
		deg := body.Degree()
		nl := deg != 0 && deg != 1

		// h0 is the body at the origin of the disaggregated set: every
		// variable being disaggregated replaced by 0, everything else kept.
		// It must be computed before the disaggregation substitution.
		var h0 model.Expr
		if !nl || e.cfg.Mode == ModeRobust {
			h0 = model.Substitute(body, zeroSub)
		}

		var expr model.Expr
		if !nl {
			expr = model.Substitute(body, varSub)
		} else {
			var err error
			expr, err = e.perspective(body, y, h0, varSub)
			if err != nil {
				return err
			}
		}

		if lo := row.Lower(); lo != nil {
			lhs := expr
			if !nl {
				lhs = model.Sub(expr, model.Mul(model.Sub(model.C(1), y), h0))
			}
			newC.Add(model.KeyOf(k, "lb"), model.GE(lhs, model.Scale(*lo, y)))
			e.log.Debug("transformed constraint row",
				zap.String("constraint", c.Name()), zap.String("row", string(k)), zap.String("side", "lb"))
		}
		if up := row.Upper(); up != nil {
			lhs := expr
			if !nl {
				lhs = model.Sub(expr, model.Mul(model.Sub(model.C(1), y), h0))
			}
			newC.Add(model.KeyOf(k, "ub"), model.LE(lhs, model.Scale(*up, y)))
			e.log.Debug("transformed constraint row",
				zap.String("constraint", c.Name()), zap.String("row", string(k)), zap.String("side", "ub"))
		}
	}

	// Every row is rewritten, so the container itself is done.
	allInactive := true
	for _, k := range c.Keys() {
		if c.Row(k).Active() {
			allInactive = false
			break
		}
	}
	if allInactive {
		c.Deactivate()
	}
	return nil
}

// perspective applies the configured perspective-function formulation to a
// nonlinear body: variables are substituted with their disaggregated copies
// scaled by the mode's denominator, and the whole body is multiplied back.
func (e *Engine) perspective(body, y, h0 model.Expr, varSub model.Substitution) (model.Expr, error) {
	eps := e.cfg.EPS

	var den model.Expr
	switch e.cfg.Mode {
	case ModeClassic:
		den = y
	case ModeRegularized:
		den = model.Add(y, model.C(eps))
	case ModeRobust:
		den = model.Add(model.Scale(1-eps, y), model.C(eps))
	default:
		return nil, newError(ErrUnknownMode, e.cfg.Mode.String(), "invalid mode %d", int(e.cfg.Mode))
	}

	scaled := make(model.Substitution, len(varSub))
	for v, repl := range varSub {
		scaled[v] = model.Div(repl, den)
	}
	expr := model.Mul(den, model.Substitute(body, scaled))

	if e.cfg.Mode == ModeRobust {
		// Correction term keeping the relaxation exact at y in {0,1}.
		expr = model.Sub(expr, model.Scale(eps, model.Mul(h0, model.Sub(model.C(1), y))))
	}
	return expr, nil
}
