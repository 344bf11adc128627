package model

import "fmt"

// Block is a named container of model components. Children keep declaration
// order; that order is the canonical deterministic iteration order.
type Block struct {
	entity
	model    *Model
	parent   *Block
	children []Component
	byName   map[string]Component
}

func (b *Block) Kind() Kind     { return KindBlock }
func (b *Block) Model() *Model  { return b.model }
func (b *Block) Parent() *Block { return b.parent }

func (b *Block) add(name string, c Component) {
	if b.byName == nil {
		b.byName = make(map[string]Component)
	}
	if _, dup := b.byName[name]; dup {
		panic(fmt.Sprintf("block %q: duplicate component name %q", b.name, name))
	}
	b.byName[name] = c
	b.children = append(b.children, c)
}

// Children returns all child components in declaration order.
func (b *Block) Children() []Component {
	out := make([]Component, len(b.children))
	copy(out, b.children)
	return out
}

// Components returns the children of the given kind in declaration order.
// Disjuncts are not reported as blocks, and vice versa.
func (b *Block) Components(kind Kind) []Component {
	var out []Component
	for _, c := range b.children {
		if c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the child with the given name, or nil.
func (b *Block) Child(name string) Component {
	return b.byName[name]
}

// NewBlock creates a nested block.
func (b *Block) NewBlock(name string) *Block {
	nb := &Block{
		entity: b.model.newEntity(name),
		model:  b.model,
		parent: b,
	}
	b.add(name, nb)
	return nb
}

// NewVar creates a variable on the block.
func (b *Block) NewVar(name string, domain Domain) *Var {
	v := &Var{entity: b.model.newEntity(name), domain: domain}
	b.add(name, v)
	return v
}

// NewParam creates a parameter on the block.
func (b *Block) NewParam(name string, val float64) *Param {
	p := &Param{entity: b.model.newEntity(name), val: val}
	b.add(name, p)
	return p
}

// NewConstraint creates an empty constraint container on the block.
func (b *Block) NewConstraint(name string) *Constraint {
	c := &Constraint{entity: b.model.newEntity(name)}
	b.add(name, c)
	return c
}

// NewDisjunct creates a disjunct on the block. The indicator variable is
// created with it: boolean, bounded to [0,1].
func (b *Block) NewDisjunct(name string) *Disjunct {
	d := &Disjunct{
		Block: Block{
			entity: b.model.newEntity(name),
			model:  b.model,
			parent: b,
		},
	}
	b.add(name, d)
	ind := d.NewVar(name+"_indicator", Boolean)
	ind.SetBounds(0, 1)
	d.indicator = ind
	return d
}

// NewDisjunction creates an empty disjunction container on the block.
func (b *Block) NewDisjunction(name string) *Disjunction {
	d := &Disjunction{entity: b.model.newEntity(name), owner: b}
	b.add(name, d)
	return d
}
