package modelfile

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/polyopt/gdphull/model"
)

// WriteText dumps the model tree in a readable algebraic form: variables with
// their bounds and every active constraint row, components in declaration
// order.
func WriteText(w io.Writer, m *model.Model) error {
	return writeBlockText(w, m.Root(), model.KindBlock, 0)
}

func writeBlockText(w io.Writer, b *model.Block, kind model.Kind, depth int) error {
	indent := strings.Repeat("  ", depth)
	marker := ""
	if !b.Active() {
		marker = " (inactive)"
	}
	if _, err := fmt.Fprintf(w, "%s%s %s%s:\n", indent, kind, b.Name(), marker); err != nil {
		return err
	}

	for _, c := range b.Children() {
		switch x := c.(type) {
		case *model.Var:
			if _, err := fmt.Fprintf(w, "%s  var %s in %s\n", indent, x.Name(), varRange(x)); err != nil {
				return err
			}
		case *model.Param:
			if _, err := fmt.Fprintf(w, "%s  param %s = %g\n", indent, x.Name(), x.Value()); err != nil {
				return err
			}
		case *model.Constraint:
			if err := writeConstraintText(w, x, indent+"  "); err != nil {
				return err
			}
		case *model.Disjunction:
			state := "active"
			if !x.Active() {
				state = "inactive"
			}
			if _, err := fmt.Fprintf(w, "%s  disjunction %s (%s, %d rows)\n", indent, x.Name(), state, x.Len()); err != nil {
				return err
			}
		case *model.Disjunct:
			if err := writeBlockText(w, &x.Block, model.KindDisjunct, depth+1); err != nil {
				return err
			}
		case *model.Block:
			if err := writeBlockText(w, x, model.KindBlock, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeConstraintText(w io.Writer, c *model.Constraint, indent string) error {
	for _, k := range c.Keys() {
		row := c.Row(k)
		if !row.Active() {
			continue
		}
		label := c.Name()
		if k != model.ScalarKey {
			label = fmt.Sprintf("%s[%s]", c.Name(), k)
		}
		if _, err := fmt.Fprintf(w, "%s%s: %s\n", indent, label, rowText(row)); err != nil {
			return err
		}
	}
	return nil
}

func rowText(row *model.ConRow) string {
	body := row.Body().String()
	lo, up := row.Lower(), row.Upper()
	switch {
	case lo != nil && up != nil && *lo == *up:
		return fmt.Sprintf("%s = %g", body, *lo)
	case lo != nil && up != nil:
		return fmt.Sprintf("%g <= %s <= %g", *lo, body, *up)
	case lo != nil:
		return fmt.Sprintf("%s >= %g", body, *lo)
	case up != nil:
		return fmt.Sprintf("%s <= %g", body, *up)
	default:
		return body
	}
}

func varRange(v *model.Var) string {
	lo := "-inf"
	if lb, ok := v.LB(); ok {
		lo = fmt.Sprintf("%g", lb)
	}
	hi := "+inf"
	if ub, ok := v.UB(); ok {
		hi = fmt.Sprintf("%g", ub)
	}
	s := fmt.Sprintf("[%s, %s]", lo, hi)
	if v.Fixed() {
		s += fmt.Sprintf(" fixed to %g", v.FixedValue())
	}
	return s
}

// WriteJSON dumps the model tree as JSON, preserving declaration order of
// every container so two runs over the same model serialize identically.
func WriteJSON(w io.Writer, m *model.Model) error {
	out, err := json.MarshalIndent(blockMap(m.Root()), "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}

func blockMap(b *model.Block) *orderedmap.OrderedMap {
	out := orderedmap.New()
	out.Set("name", b.Name())
	out.Set("kind", b.Kind().String())
	out.Set("active", b.Active())

	children := make([]*orderedmap.OrderedMap, 0, len(b.Children()))
	for _, c := range b.Children() {
		children = append(children, componentMap(c))
	}
	if len(children) > 0 {
		out.Set("components", children)
	}
	return out
}

func componentMap(c model.Component) *orderedmap.OrderedMap {
	switch x := c.(type) {
	case *model.Var:
		out := orderedmap.New()
		out.Set("name", x.Name())
		out.Set("kind", x.Kind().String())
		if lb, ok := x.LB(); ok {
			out.Set("lb", lb)
		}
		if ub, ok := x.UB(); ok {
			out.Set("ub", ub)
		}
		if x.Fixed() {
			out.Set("fix", x.FixedValue())
		}
		return out
	case *model.Param:
		out := orderedmap.New()
		out.Set("name", x.Name())
		out.Set("kind", x.Kind().String())
		out.Set("value", x.Value())
		return out
	case *model.Constraint:
		out := orderedmap.New()
		out.Set("name", x.Name())
		out.Set("kind", x.Kind().String())
		out.Set("active", x.Active())
		rows := orderedmap.New()
		for _, k := range x.Keys() {
			row := x.Row(k)
			if row.Active() {
				rows.Set(string(k), rowText(row))
			}
		}
		if len(rows.Keys()) > 0 {
			out.Set("rows", rows)
		}
		return out
	case *model.Disjunction:
		out := orderedmap.New()
		out.Set("name", x.Name())
		out.Set("kind", x.Kind().String())
		out.Set("active", x.Active())
		rows := orderedmap.New()
		for _, k := range x.Keys() {
			row := x.Row(k)
			names := make([]string, 0, len(row.Disjuncts()))
			for _, dj := range row.Disjuncts() {
				names = append(names, dj.Name())
			}
			rows.Set(string(k), names)
		}
		out.Set("rows", rows)
		return out
	case *model.Disjunct:
		out := blockMap(&x.Block)
		out.Set("kind", x.Kind().String())
		out.Set("indicator", x.Indicator().Name())
		return out
	case *model.Block:
		return blockMap(x)
	default:
		out := orderedmap.New()
		out.Set("name", c.Name())
		out.Set("kind", c.Kind().String())
		return out
	}
}
