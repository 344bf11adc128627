package hull

import (
	"errors"
	"fmt"
)

// ErrorKind classifies transformation failures. These are modeling errors:
// the run aborts on the first one, leaving the model mutated as far as it got.
type ErrorKind int

const (
	ErrTargetNotFound ErrorKind = iota + 1
	ErrUnsupportedTarget
	ErrNonExclusiveDisjunction
	ErrUnboundedVariable
	ErrUnsupportedComponent
	ErrOrderingViolation
	ErrUnknownMode
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTargetNotFound:
		return "target not found"
	case ErrUnsupportedTarget:
		return "unsupported target kind"
	case ErrNonExclusiveDisjunction:
		return "non-exclusive disjunction unsupported"
	case ErrUnboundedVariable:
		return "unbounded disaggregation variable"
	case ErrUnsupportedComponent:
		return "unsupported component kind"
	case ErrOrderingViolation:
		return "ordering violation"
	case ErrUnknownMode:
		return "unknown formulation mode"
	default:
		return "unknown error"
	}
}

// Error is a structured transformation failure: the kind plus the name of the
// offending component.
type Error struct {
	Kind   ErrorKind
	Entity string
	Detail string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %q", e.Kind, e.Entity)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func newError(kind ErrorKind, entity, format string, a ...any) *Error {
	return &Error{Kind: kind, Entity: entity, Detail: fmt.Sprintf(format, a...)}
}

// IsKind reports whether err is (or wraps) a transformation Error of the
// given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
