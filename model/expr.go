package model

import (
	"fmt"
	"strconv"
	"strings"
)

// DegreeNonlinear is returned by Degree for expressions that are not
// polynomial (or whose degree cannot be determined structurally).
const DegreeNonlinear = -1

// Expr is an algebraic expression tree over variables, parameters and
// constants. Trees are immutable once built; rewriting produces new trees.
type Expr interface {
	isExpr()

	// Degree reports the polynomial degree of the expression, with fixed
	// variables treated as constants. Non-polynomial structure yields
	// DegreeNonlinear.
	Degree() int

	String() string
}

// Const is a numeric literal.
type Const struct {
	Val float64
}

// VarRef references a model variable.
type VarRef struct {
	V *Var
}

// ParamRef references a named model parameter. Parameters are data, not
// decision variables: degree 0.
type ParamRef struct {
	P *Param
}

// Sum is an n-ary sum of terms.
type Sum struct {
	Terms []Expr
}

// Prod is an n-ary product of factors.
type Prod struct {
	Factors []Expr
}

// Quot is a quotient Num/Den.
type Quot struct {
	Num, Den Expr
}

// Pow raises Base to a constant integer exponent.
type Pow struct {
	Base Expr
	Exp  int
}

func (Const) isExpr()    {}
func (VarRef) isExpr()   {}
func (ParamRef) isExpr() {}
func (Sum) isExpr()      {}
func (Prod) isExpr()     {}
func (Quot) isExpr()     {}
func (Pow) isExpr()      {}

func (e Const) Degree() int    { return 0 }
func (e ParamRef) Degree() int { return 0 }

func (e VarRef) Degree() int {
	if e.V.Fixed() {
		return 0
	}
	return 1
}

func (e Sum) Degree() int {
	deg := 0
	for _, t := range e.Terms {
		d := t.Degree()
		if d == DegreeNonlinear {
			return DegreeNonlinear
		}
		if d > deg {
			deg = d
		}
	}
	return deg
}

func (e Prod) Degree() int {
	deg := 0
	for _, f := range e.Factors {
		d := f.Degree()
		if d == DegreeNonlinear {
			return DegreeNonlinear
		}
		deg += d
	}
	return deg
}

func (e Quot) Degree() int {
	if e.Den.Degree() != 0 {
		return DegreeNonlinear
	}
	return e.Num.Degree()
}

func (e Pow) Degree() int {
	base := e.Base.Degree()
	if e.Exp == 0 {
		return 0
	}
	if e.Exp < 0 {
		if base == 0 {
			return 0
		}
		return DegreeNonlinear
	}
	if base == DegreeNonlinear {
		return DegreeNonlinear
	}
	return base * e.Exp
}

func (e Const) String() string {
	return strconv.FormatFloat(e.Val, 'g', -1, 64)
}

func (e VarRef) String() string   { return e.V.Name() }
func (e ParamRef) String() string { return e.P.Name() }

func (e Sum) String() string {
	parts := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " + ") + ")"
}

func (e Prod) String() string {
	parts := make([]string, len(e.Factors))
	for i, f := range e.Factors {
		parts[i] = f.String()
	}
	return strings.Join(parts, "*")
}

func (e Quot) String() string {
	return e.Num.String() + "/" + e.Den.String()
}

func (e Pow) String() string {
	return fmt.Sprintf("%s^%d", e.Base.String(), e.Exp)
}

// C builds a constant expression.
func C(v float64) Expr { return Const{Val: v} }

// V builds a variable reference.
func V(v *Var) Expr { return VarRef{V: v} }

// P builds a parameter reference.
func P(p *Param) Expr { return ParamRef{P: p} }

// Add sums the given terms, flattening nested sums.
func Add(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	for _, t := range terms {
		if s, ok := t.(Sum); ok {
			flat = append(flat, s.Terms...)
			continue
		}
		flat = append(flat, t)
	}
	switch len(flat) {
	case 0:
		return Const{Val: 0}
	case 1:
		return flat[0]
	}
	return Sum{Terms: flat}
}

// Sub builds a - b.
func Sub(a, b Expr) Expr { return Add(a, Neg(b)) }

// Neg builds -e.
func Neg(e Expr) Expr { return Scale(-1, e) }

// Scale builds k*e, folding constants.
func Scale(k float64, e Expr) Expr {
	if c, ok := e.(Const); ok {
		return Const{Val: k * c.Val}
	}
	return Mul(C(k), e)
}

// Mul multiplies the given factors, flattening nested products.
func Mul(factors ...Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		if p, ok := f.(Prod); ok {
			flat = append(flat, p.Factors...)
			continue
		}
		flat = append(flat, f)
	}
	switch len(flat) {
	case 0:
		return Const{Val: 1}
	case 1:
		return flat[0]
	}
	return Prod{Factors: flat}
}

// Div builds num/den.
func Div(num, den Expr) Expr { return Quot{Num: num, Den: den} }

// PowOf builds base^exp for a constant integer exponent.
func PowOf(base Expr, exp int) Expr { return Pow{Base: base, Exp: exp} }
