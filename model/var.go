package model

// Domain classifies a variable.
type Domain int

const (
	Continuous Domain = iota
	Boolean
)

// Var is a decision variable. Bounds are optional: a missing bound is
// represented explicitly, never defaulted.
type Var struct {
	entity
	domain   Domain
	lb, ub   float64
	hasLB    bool
	hasUB    bool
	fixed    bool
	fixedVal float64
}

func (v *Var) Kind() Kind     { return KindVar }
func (v *Var) Domain() Domain { return v.domain }

// LB reports the lower bound and whether one is set.
func (v *Var) LB() (float64, bool) { return v.lb, v.hasLB }

// UB reports the upper bound and whether one is set.
func (v *Var) UB() (float64, bool) { return v.ub, v.hasUB }

func (v *Var) SetLB(lb float64) { v.lb, v.hasLB = lb, true }
func (v *Var) SetUB(ub float64) { v.ub, v.hasUB = ub, true }

func (v *Var) SetBounds(lb, ub float64) {
	v.SetLB(lb)
	v.SetUB(ub)
}

// Fix pins the variable to a value. Fixed variables are excluded from
// referenced-variable queries and evaluate to their fixed value.
func (v *Var) Fix(val float64) {
	v.fixed = true
	v.fixedVal = val
}

func (v *Var) Unfix()              { v.fixed = false }
func (v *Var) Fixed() bool         { return v.fixed }
func (v *Var) FixedValue() float64 { return v.fixedVal }

// Param is a named numeric datum. The transformation engine passes params
// through untouched.
type Param struct {
	entity
	val float64
}

func (p *Param) Kind() Kind     { return KindParam }
func (p *Param) Value() float64 { return p.val }
