package model

// Kind identifies the concrete type of a model component. The set is closed:
// the transformation engine dispatches on it with exhaustive switches.
type Kind int

const (
	KindBlock Kind = iota + 1
	KindDisjunction
	KindDisjunct
	KindVar
	KindConstraint
	KindParam
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindDisjunction:
		return "disjunction"
	case KindDisjunct:
		return "disjunct"
	case KindVar:
		return "var"
	case KindConstraint:
		return "constraint"
	case KindParam:
		return "param"
	default:
		return "unknown"
	}
}

// Component is the interface shared by every model entity.
type Component interface {
	Kind() Kind
	Name() string
	ID() uint64
	Active() bool
	Deactivate()
}

// entity carries the state common to all components. Identity is the model-wide
// ID; names are only unique within their owning block. Deactivation is
// monotonic: there is no way to reactivate a component.
type entity struct {
	id     uint64
	name   string
	active bool
}

func (e *entity) Name() string { return e.name }
func (e *entity) ID() uint64   { return e.id }
func (e *entity) Active() bool { return e.active }
func (e *entity) Deactivate()  { e.active = false }
