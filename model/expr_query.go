package model

import "fmt"

// Substitution maps variables to replacement expressions. Lookup is by
// variable identity.
type Substitution map[*Var]Expr

// Vars returns the variables referenced by the expression, excluding fixed
// ones, deduplicated, in first-seen (left to right, depth first) order. The
// order is observable downstream: disaggregation indices depend on it.
func Vars(e Expr) []*Var {
	var out []*Var
	seen := make(map[*Var]bool)
	walkVars(e, func(v *Var) {
		if v.Fixed() || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	})
	return out
}

func walkVars(e Expr, fn func(*Var)) {
	switch x := e.(type) {
	case Const, ParamRef:
	case VarRef:
		fn(x.V)
	case Sum:
		for _, t := range x.Terms {
			walkVars(t, fn)
		}
	case Prod:
		for _, f := range x.Factors {
			walkVars(f, fn)
		}
	case Quot:
		walkVars(x.Num, fn)
		walkVars(x.Den, fn)
	case Pow:
		walkVars(x.Base, fn)
	}
}

// Substitute returns a structural clone of the expression with variable leaves
// replaced per the substitution map. Variables absent from the map are kept.
func Substitute(e Expr, sub Substitution) Expr {
	switch x := e.(type) {
	case Const:
		return x
	case ParamRef:
		return x
	case VarRef:
		if repl, ok := sub[x.V]; ok {
			return repl
		}
		return x
	case Sum:
		terms := make([]Expr, len(x.Terms))
		for i, t := range x.Terms {
			terms[i] = Substitute(t, sub)
		}
		return Sum{Terms: terms}
	case Prod:
		factors := make([]Expr, len(x.Factors))
		for i, f := range x.Factors {
			factors[i] = Substitute(f, sub)
		}
		return Prod{Factors: factors}
	case Quot:
		return Quot{Num: Substitute(x.Num, sub), Den: Substitute(x.Den, sub)}
	case Pow:
		return Pow{Base: Substitute(x.Base, sub), Exp: x.Exp}
	default:
		return e
	}
}

// Eval computes the numeric value of the expression. Fixed variables evaluate
// to their fixed value; other variables must be present in vals.
func Eval(e Expr, vals map[*Var]float64) (float64, error) {
	switch x := e.(type) {
	case Const:
		return x.Val, nil
	case ParamRef:
		return x.P.Value(), nil
	case VarRef:
		if x.V.Fixed() {
			return x.V.FixedValue(), nil
		}
		v, ok := vals[x.V]
		if !ok {
			return 0, fmt.Errorf("no value for variable %q", x.V.Name())
		}
		return v, nil
	case Sum:
		total := 0.0
		for _, t := range x.Terms {
			v, err := Eval(t, vals)
			if err != nil {
				return 0, err
			}
			total += v
		}
		return total, nil
	case Prod:
		total := 1.0
		for _, f := range x.Factors {
			v, err := Eval(f, vals)
			if err != nil {
				return 0, err
			}
			total *= v
		}
		return total, nil
	case Quot:
		num, err := Eval(x.Num, vals)
		if err != nil {
			return 0, err
		}
		den, err := Eval(x.Den, vals)
		if err != nil {
			return 0, err
		}
		if den == 0 {
			return 0, fmt.Errorf("division by zero in %s", e)
		}
		return num / den, nil
	case Pow:
		base, err := Eval(x.Base, vals)
		if err != nil {
			return 0, err
		}
		out := 1.0
		n := x.Exp
		if n < 0 {
			if base == 0 {
				return 0, fmt.Errorf("zero base with negative exponent in %s", e)
			}
			base = 1 / base
			n = -n
		}
		for i := 0; i < n; i++ {
			out *= base
		}
		return out, nil
	default:
		return 0, fmt.Errorf("unknown expression node %T", e)
	}
}
