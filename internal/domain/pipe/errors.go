package pipe

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/typeexpr"
)

var (
	ErrInvalidFlags         = errors.New("invalid pipe flags")
	ErrInvalidPipeDirection = errors.New("invalid pipe direction")
	ErrPipeFull             = errors.New("pipe full")
	ErrPipeClosed           = errors.New("pipe closed")
	ErrInvalidScopeToken    = errors.New("invalid scope token")
)

// OpError records the operation and pipe behind a failure. Kind is one of
// the sentinel errors above (or a registry sentinel), so errors.Is works on
// the wrapped value.
type OpError struct {
	Op   string
	Pipe ID
	Name string
	Kind error
	Msg  string
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	target := e.Pipe.String()
	if e.Name != "" {
		target = fmt.Sprintf("%s(%s)", e.Name, e.Pipe)
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s pipe %s: %s", e.Op, target, e.Kind)
	}
	return fmt.Sprintf("%s pipe %s: %s: %s", e.Op, target, e.Kind, e.Msg)
}

func (e *OpError) Unwrap() error { return e.Kind }

// kinds maps every sentinel to its stable name. The registry package adds
// its own kinds through RegisterKind.
var kinds = []struct {
	err  error
	name string
}{
	{typeexpr.ErrInvalidTypeExpression, "InvalidTypeExpression"},
	{ErrInvalidFlags, "InvalidFlags"},
	{ErrInvalidPipeDirection, "InvalidPipeDirection"},
	{ErrPipeFull, "PipeFull"},
	{ErrPipeClosed, "PipeClosed"},
	{ErrInvalidScopeToken, "InvalidScopeToken"},
}

// RegisterKind adds a sentinel to the kind table. It is meant to be called
// from package init functions only.
func RegisterKind(err error, name string) {
	kinds = append(kinds, struct {
		err  error
		name string
	}{err, name})
}

// Kind returns the stable name of the error kind behind err, or "" when err
// is nil or not a pipe error.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}

// KindError returns the sentinel registered under name, or nil when the
// name is unknown. It reverses Kind for errors that crossed the wire.
func KindError(name string) error {
	for _, k := range kinds {
		if k.name == name {
			return k.err
		}
	}
	return nil
}
