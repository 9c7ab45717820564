package dynvar

import "github.com/yndnr/dynbind-go/pkg/pmap"

// Box is the mutable slot backing one thread binding. A fresh Box is
// allocated for every var on every push.
type Box struct {
	val any
}

// Value returns the slot's current value.
func (b *Box) Value() any {
	return b.val
}

// Frame is one level of a thread's binding stack.
type Frame struct {
	// introduced holds exactly the bindings passed to the push that created
	// this frame (Var -> value).
	introduced *pmap.Map[*Var, any]
	// bindings is introduced merged over the parent's bindings (Var -> Box).
	bindings *pmap.Map[*Var, *Box]
	prev     *Frame
}

func newBaseFrame() *Frame {
	return &Frame{
		introduced: pmap.New[*Var, any](varHash),
		bindings:   pmap.New[*Var, *Box](varHash),
	}
}

// IsBase reports whether f is a thread's bottom frame.
func (f *Frame) IsBase() bool {
	return f.prev == nil
}

// Introduced returns the vars bound by the push that created f.
func (f *Frame) Introduced() *pmap.Map[*Var, any] {
	return f.introduced
}
