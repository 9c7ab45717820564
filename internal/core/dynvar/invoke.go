package dynvar

import (
	"fmt"

	"github.com/yndnr/dynbind-go/internal/core/domain"
)

// Callable is implemented by values that can be invoked through a var.
type Callable interface {
	Invoke(args ...any) (any, error)
}

// Func adapts a plain function to Callable.
type Func func(args ...any) (any, error)

// Invoke calls f.
func (f Func) Invoke(args ...any) (any, error) {
	return f(args...)
}

// Fn returns the value visible to th as a Callable.
func (v *Var) Fn(th *Thread) (Callable, error) {
	val, err := v.Get(th)
	if err != nil {
		return nil, err
	}
	switch f := val.(type) {
	case Callable:
		return f, nil
	case func(args ...any) (any, error):
		return Func(f), nil
	default:
		return nil, domain.ErrNotCallable.
			WithSubject(v.String()).
			WithDetails(fmt.Sprintf("value of type %T", val))
	}
}

// Invoke calls the value visible to th with args.
func (v *Var) Invoke(th *Thread, args ...any) (any, error) {
	fn, err := v.Fn(th)
	if err != nil {
		return nil, err
	}
	return fn.Invoke(args...)
}
