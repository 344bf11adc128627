package model

import (
	"fmt"
	"sort"
	"strings"
)

// Key indexes a row inside an indexed component. Scalar components use
// ScalarKey. Composite keys are built with KeyOf.
type Key string

// ScalarKey is the index of the single row of a non-indexed component.
const ScalarKey Key = ""

// KeyOf joins parts into a composite key. Empty parts (a scalar parent key)
// are dropped, so KeyOf(ScalarKey, "lb") == "lb".
func KeyOf(parts ...any) Key {
	var fields []string
	for _, p := range parts {
		s := fmt.Sprint(p)
		if s == "" {
			continue
		}
		fields = append(fields, s)
	}
	return Key(strings.Join(fields, ","))
}

// Relation is a constraint row payload: a body expression with optional
// numeric bounds. Equality is both bounds equal; single-sided inequalities
// have one bound.
type Relation struct {
	Body  Expr
	Lower *float64
	Upper *float64
}

// GE builds body >= rhs as (body - rhs) >= 0.
func GE(body, rhs Expr) Relation {
	zero := 0.0
	return Relation{Body: Sub(body, rhs), Lower: &zero}
}

// LE builds body <= rhs as (body - rhs) <= 0.
func LE(body, rhs Expr) Relation {
	zero := 0.0
	return Relation{Body: Sub(body, rhs), Upper: &zero}
}

// EQ builds body == rhs as (body - rhs) == 0.
func EQ(body, rhs Expr) Relation {
	zero := 0.0
	return Relation{Body: Sub(body, rhs), Lower: &zero, Upper: &zero}
}

// Bounded builds a row with the body constrained by explicit numeric bounds;
// either bound may be nil.
func Bounded(body Expr, lower, upper *float64) Relation {
	return Relation{Body: body, Lower: lower, Upper: upper}
}

// ConRow is one row of a constraint. Rows carry their own active flag so an
// indexed constraint can be partially transformed.
type ConRow struct {
	key    Key
	rel    Relation
	active bool
}

func (r *ConRow) Key() Key        { return r.key }
func (r *ConRow) Body() Expr      { return r.rel.Body }
func (r *ConRow) Lower() *float64 { return r.rel.Lower }
func (r *ConRow) Upper() *float64 { return r.rel.Upper }
func (r *ConRow) Active() bool    { return r.active }
func (r *ConRow) Deactivate()     { r.active = false }

// Degree reports the polynomial degree of the row body.
func (r *ConRow) Degree() int { return r.rel.Body.Degree() }

// Constraint is an indexed container of rows. A scalar constraint is a
// container with a single row at ScalarKey.
type Constraint struct {
	entity
	rows  map[Key]*ConRow
	order []Key
}

func (c *Constraint) Kind() Kind { return KindConstraint }

// Add inserts a row at the given key. Re-adding an existing key panics: rows
// are write-once.
func (c *Constraint) Add(key Key, rel Relation) *ConRow {
	if c.rows == nil {
		c.rows = make(map[Key]*ConRow)
	}
	if _, dup := c.rows[key]; dup {
		panic(fmt.Sprintf("constraint %q: duplicate row key %q", c.name, key))
	}
	row := &ConRow{key: key, rel: rel, active: true}
	c.rows[key] = row
	c.order = append(c.order, key)
	return row
}

// Set defines the single row of a scalar constraint.
func (c *Constraint) Set(rel Relation) *ConRow { return c.Add(ScalarKey, rel) }

// Row returns the row at key, or nil.
func (c *Constraint) Row(key Key) *ConRow {
	return c.rows[key]
}

// Len reports the number of rows.
func (c *Constraint) Len() int { return len(c.rows) }

// Keys returns the row keys in sorted order. Indexed components iterate rows
// deterministically regardless of insertion order.
func (c *Constraint) Keys() []Key {
	keys := make([]Key, len(c.order))
	copy(keys, c.order)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// IsIndexed reports whether the constraint has any non-scalar row.
func (c *Constraint) IsIndexed() bool {
	for _, k := range c.order {
		if k != ScalarKey {
			return true
		}
	}
	return false
}
