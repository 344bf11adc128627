// Package model holds the generalized disjunctive program representation: a
// tree of blocks containing variables, constraints, disjunctions and
// disjuncts, plus the expression algebra over them. The hull transformation
// engine reads and selectively mutates these components; it never deletes
// them.
package model

import (
	"fmt"
	"strings"
)

// Model is the root of a component tree. It owns model-wide identity
// allocation and the unique-naming facility.
type Model struct {
	root   *Block
	nextID uint64
}

// New creates an empty model whose root block has the given name.
func New(name string) *Model {
	m := &Model{}
	m.root = &Block{entity: m.newEntity(name), model: m}
	return m
}

func (m *Model) newEntity(name string) entity {
	m.nextID++
	return entity{id: m.nextID, name: name, active: true}
}

// Root returns the root block.
func (m *Model) Root() *Block { return m.root }

// UniqueName returns base if it is free on the block, otherwise base_2,
// base_3, ... Artifacts gathered from many blocks onto one scope can collide
// by name; this resolves the collision deterministically.
func (m *Model) UniqueName(b *Block, base string) string {
	if b.Child(base) == nil {
		return base
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s_%d", base, i)
		if b.Child(name) == nil {
			return name
		}
	}
}

// Find resolves a dot-separated path against the model, descending through
// blocks and disjuncts. The empty path resolves to the root block. Returns
// nil if any segment does not resolve.
func (m *Model) Find(path string) Component {
	if path == "" {
		return m.root
	}
	var cur Component = m.root
	for _, seg := range strings.Split(path, ".") {
		b := asBlock(cur)
		if b == nil {
			return nil
		}
		cur = b.Child(seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// asBlock returns the block view of a component, if it has one.
func asBlock(c Component) *Block {
	switch x := c.(type) {
	case *Block:
		return x
	case *Disjunct:
		return &x.Block
	default:
		return nil
	}
}
