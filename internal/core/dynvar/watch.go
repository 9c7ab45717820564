package dynvar

import (
	"fmt"

	"github.com/yndnr/dynbind-go/internal/core/domain"
	"github.com/yndnr/dynbind-go/pkg/pmap"
)

// Validator rejects a candidate value by returning a non-nil error.
type Validator func(val any) error

// WatchFunc is called synchronously after a committed root mutation.
// oldVal is Unbound if the var had no root before the mutation.
//
// Watches run while v's root lock is held. A watch may read v and mutate
// other vars, but must not change v's root or validator: that call waits
// on the lock the watch is running under and never returns.
type WatchFunc func(key string, v *Var, oldVal, newVal any)

// Validator returns the installed validator, or nil.
func (v *Var) Validator() Validator {
	if p := v.validator.Load(); p != nil {
		return *p
	}
	return nil
}

// SetValidator installs fn. If the var has a root, fn must accept it first;
// otherwise the previous validator stays in place and ErrValidation is
// returned. A nil fn removes the validator.
func (v *Var) SetValidator(fn Validator) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if r := v.root.Load(); r != nil {
		if err := v.validate(fn, r.val, OpSetValidator); err != nil {
			return err
		}
	}
	if fn == nil {
		v.validator.Store(nil)
		return nil
	}
	v.validator.Store(&fn)
	return nil
}

func (v *Var) validate(fn Validator, val any, op string) error {
	if fn == nil {
		return nil
	}
	if err := fn(val); err != nil {
		v.observer().ValidationRejected(op)
		return domain.ErrValidation.
			WithSubject(v.String()).
			WithDetails(fmt.Sprintf("rejected value %v", val)).
			WithValue(val).
			WithCause(err)
	}
	return nil
}

// AddWatch registers fn under key, replacing any watch with the same key.
// See WatchFunc for what fn may do.
func (v *Var) AddWatch(key string, fn WatchFunc) {
	v.watchMu.Lock()
	defer v.watchMu.Unlock()
	v.watches.Store(v.watches.Load().Assoc(key, fn))
}

// RemoveWatch unregisters the watch under key.
func (v *Var) RemoveWatch(key string) {
	v.watchMu.Lock()
	defer v.watchMu.Unlock()
	v.watches.Store(v.watches.Load().Without(key))
}

// Watches returns the current watch registry.
func (v *Var) Watches() *pmap.Map[string, WatchFunc] {
	return v.watches.Load()
}

func (v *Var) notifyWatches(old, val any) {
	v.watches.Load().Range(func(key string, fn WatchFunc) bool {
		fn(key, v, old, val)
		return true
	})
}
