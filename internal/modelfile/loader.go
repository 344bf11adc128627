package modelfile

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/polyopt/gdphull/model"
)

// File is the YAML shape of a GDP model.
type File struct {
	Name      string `yaml:"name"`
	blockSpec `yaml:",inline"`
}

type blockSpec struct {
	Vars         []varSpec   `yaml:"vars"`
	Params       []paramSpec `yaml:"params"`
	Constraints  []conSpec   `yaml:"constraints"`
	Blocks       []namedSpec `yaml:"blocks"`
	Disjunctions []disjSpec  `yaml:"disjunctions"`
}

type namedSpec struct {
	Name      string `yaml:"name"`
	blockSpec `yaml:",inline"`
}

type varSpec struct {
	Name   string   `yaml:"name"`
	Domain string   `yaml:"domain"`
	LB     *float64 `yaml:"lb"`
	UB     *float64 `yaml:"ub"`
	Fix    *float64 `yaml:"fix"`
}

type paramSpec struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
}

type conSpec struct {
	Name string    `yaml:"name"`
	Expr string    `yaml:"expr"`
	Rows []rowSpec `yaml:"rows"`
}

type rowSpec struct {
	Key  string `yaml:"key"`
	Expr string `yaml:"expr"`
}

type disjSpec struct {
	Name      string         `yaml:"name"`
	Xor       *bool          `yaml:"xor"`
	Disjuncts []disjunctSpec `yaml:"disjuncts"`
	Rows      []disjRowSpec  `yaml:"rows"`
}

type disjRowSpec struct {
	Key       string         `yaml:"key"`
	Xor       *bool          `yaml:"xor"`
	Disjuncts []disjunctSpec `yaml:"disjuncts"`
}

type disjunctSpec struct {
	Name      string `yaml:"name"`
	Active    *bool  `yaml:"active"`
	blockSpec `yaml:",inline"`
}

// Load parses a YAML model description into a model graph. Declaration order
// in the file becomes declaration order in the model, which the relaxation
// relies on for deterministic output.
func Load(raw []byte) (*model.Model, error) {
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing model file: %w", err)
	}
	name := file.Name
	if name == "" {
		name = "model"
	}

	m := model.New(name)
	if err := buildBlock(m.Root(), file.blockSpec, nil); err != nil {
		return nil, err
	}
	return m, nil
}

// scope is the lexical chain used to resolve identifiers in constraint
// expressions: the owning block first, then its ancestors.
type scope struct {
	names  map[string]model.Expr
	parent *scope
}

func (s *scope) lookup(name string) (model.Expr, error) {
	for cur := s; cur != nil; cur = cur.parent {
		if e, ok := cur.names[name]; ok {
			return e, nil
		}
	}
	return nil, fmt.Errorf("unknown identifier %q", name)
}

func (s *scope) define(name string, e model.Expr) { s.names[name] = e }

func buildBlock(b *model.Block, spec blockSpec, parent *scope) error {
	sc := &scope{names: make(map[string]model.Expr), parent: parent}

	for _, vs := range spec.Vars {
		domain := model.Continuous
		switch vs.Domain {
		case "", "continuous":
		case "boolean":
			domain = model.Boolean
		default:
			return fmt.Errorf("var %q: unknown domain %q", vs.Name, vs.Domain)
		}
		v := b.NewVar(vs.Name, domain)
		if vs.LB != nil {
			v.SetLB(*vs.LB)
		}
		if vs.UB != nil {
			v.SetUB(*vs.UB)
		}
		if vs.Fix != nil {
			v.Fix(*vs.Fix)
		}
		sc.define(vs.Name, model.V(v))
	}

	for _, ps := range spec.Params {
		p := b.NewParam(ps.Name, ps.Value)
		sc.define(ps.Name, model.P(p))
	}

	for _, cs := range spec.Constraints {
		c := b.NewConstraint(cs.Name)
		if cs.Expr != "" {
			rel, err := parseRelation(cs.Expr, sc.lookup)
			if err != nil {
				return fmt.Errorf("constraint %q: %w", cs.Name, err)
			}
			c.Set(rel)
		}
		for _, rs := range cs.Rows {
			rel, err := parseRelation(rs.Expr, sc.lookup)
			if err != nil {
				return fmt.Errorf("constraint %q row %q: %w", cs.Name, rs.Key, err)
			}
			c.Add(model.Key(rs.Key), rel)
		}
	}

	for _, bs := range spec.Blocks {
		nb := b.NewBlock(bs.Name)
		if err := buildBlock(nb, bs.blockSpec, sc); err != nil {
			return err
		}
	}

	for _, ds := range spec.Disjunctions {
		if err := buildDisjunction(b, ds, sc); err != nil {
			return err
		}
	}
	return nil
}

func buildDisjunction(b *model.Block, spec disjSpec, sc *scope) error {
	d := b.NewDisjunction(spec.Name)

	buildRow := func(key model.Key, xor *bool, disjuncts []disjunctSpec) error {
		members := make([]*model.Disjunct, 0, len(disjuncts))
		for _, djs := range disjuncts {
			dj := b.NewDisjunct(djs.Name)
			if err := buildBlock(&dj.Block, djs.blockSpec, sc); err != nil {
				return err
			}
			if djs.Active != nil && !*djs.Active {
				dj.Deactivate()
			}
			members = append(members, dj)
		}
		exclusive := true
		if xor != nil {
			exclusive = *xor
		}
		d.Add(key, exclusive, members...)
		return nil
	}

	if len(spec.Rows) > 0 {
		for _, row := range spec.Rows {
			xor := row.Xor
			if xor == nil {
				xor = spec.Xor
			}
			if err := buildRow(model.Key(row.Key), xor, row.Disjuncts); err != nil {
				return err
			}
		}
		return nil
	}
	return buildRow(model.ScalarKey, spec.Xor, spec.Disjuncts)
}
