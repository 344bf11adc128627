package model

import (
	"fmt"
	"sort"
)

// Disjunct is one alternative of a disjunction: a block of constraints plus an
// indicator variable that is 1 iff the alternative is selected.
type Disjunct struct {
	Block
	indicator *Var
	relaxedBy string
}

func (d *Disjunct) Kind() Kind      { return KindDisjunct }
func (d *Disjunct) Indicator() *Var { return d.indicator }

// MarkRelaxed tags the disjunct with the name of the transformation that
// relaxed it. A disjunct is relaxed at most once; the tag lets a second
// transformation pass distinguish "already mine" from "owned by another
// strategy" and from "deactivated by the user".
func (d *Disjunct) MarkRelaxed(tag string) {
	if d.relaxedBy == "" {
		d.relaxedBy = tag
	}
}

// RelaxedBy reports the tag of the transformation that relaxed the disjunct,
// or "" if none has.
func (d *Disjunct) RelaxedBy() string { return d.relaxedBy }

// DisjunctionData is one row of a (possibly indexed) disjunction: an ordered
// list of disjuncts plus the exclusivity kind.
type DisjunctionData struct {
	key       Key
	disjuncts []*Disjunct
	xor       bool
	active    bool
}

func (d *DisjunctionData) Key() Key     { return d.key }
func (d *DisjunctionData) Xor() bool    { return d.xor }
func (d *DisjunctionData) Active() bool { return d.active }
func (d *DisjunctionData) Deactivate()  { d.active = false }

// Disjuncts returns the row's disjuncts in declaration order.
func (d *DisjunctionData) Disjuncts() []*Disjunct {
	out := make([]*Disjunct, len(d.disjuncts))
	copy(out, d.disjuncts)
	return out
}

// Disjunction is an indexed container of DisjunctionData rows. A scalar
// disjunction is a container with a single row at ScalarKey.
type Disjunction struct {
	entity
	owner *Block
	rows  map[Key]*DisjunctionData
	order []Key
}

func (d *Disjunction) Kind() Kind { return KindDisjunction }

// Owner returns the block the disjunction was declared on.
func (d *Disjunction) Owner() *Block { return d.owner }

// Add inserts a row at the given key. xor selects exactly-one semantics;
// false means at-least-one.
func (d *Disjunction) Add(key Key, xor bool, disjuncts ...*Disjunct) *DisjunctionData {
	if d.rows == nil {
		d.rows = make(map[Key]*DisjunctionData)
	}
	if _, dup := d.rows[key]; dup {
		panic(fmt.Sprintf("disjunction %q: duplicate row key %q", d.name, key))
	}
	row := &DisjunctionData{key: key, xor: xor, disjuncts: disjuncts, active: true}
	d.rows[key] = row
	d.order = append(d.order, key)
	return row
}

// Set defines the single row of a scalar disjunction.
func (d *Disjunction) Set(xor bool, disjuncts ...*Disjunct) *DisjunctionData {
	return d.Add(ScalarKey, xor, disjuncts...)
}

// Row returns the row at key, or nil.
func (d *Disjunction) Row(key Key) *DisjunctionData {
	return d.rows[key]
}

// Len reports the number of rows.
func (d *Disjunction) Len() int { return len(d.rows) }

// Keys returns the row keys in sorted order.
func (d *Disjunction) Keys() []Key {
	keys := make([]Key, len(d.order))
	copy(keys, d.order)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// IsIndexed reports whether the disjunction has any non-scalar row.
func (d *Disjunction) IsIndexed() bool {
	for _, k := range d.order {
		if k != ScalarKey {
			return true
		}
	}
	return false
}
