package dynvar

import "github.com/yndnr/dynbind-go/internal/core/domain"

// ThreadID identifies a Thread in its Runtime's registry.
type ThreadID string

// Thread is a handle on one logical thread of execution and its binding
// stack. It must only be used by one goroutine at a time.
type Thread struct {
	id ThreadID
	rt *Runtime

	// frame is nil until first use and after Release.
	frame *Frame
}

// ID returns the thread's identity.
func (t *Thread) ID() ThreadID {
	return t.id
}

// Frame returns the current top frame, creating the base frame if needed.
func (t *Thread) Frame() *Frame {
	if t.frame == nil {
		t.frame = newBaseFrame()
	}
	return t.frame
}

// Depth returns the number of pushed frames above the base frame.
func (t *Thread) Depth() int {
	n := 0
	for f := t.frame; f != nil && !f.IsBase(); f = f.prev {
		n++
	}
	return n
}

func (t *Thread) binding(v *Var) *Box {
	if t.frame == nil {
		return nil
	}
	b, _ := t.frame.bindings.Get(v)
	return b
}

func (t *Thread) observer() Observer {
	if t.rt != nil {
		return t.rt.obs
	}
	return nopObserver{}
}

// Push binds every var in bindings to its value for the extent ending at
// the matching Pop. Every value is validated before anything changes; the
// first rejection is returned and the stack is left as it was.
func (t *Thread) Push(bindings map[*Var]any) error {
	for v, val := range bindings {
		if v == nil {
			return domain.ErrInvalidArgument.WithDetails("nil var in bindings")
		}
		if err := v.validate(v.Validator(), val, OpPush); err != nil {
			return err
		}
	}

	f := t.Frame()
	bmap := f.bindings
	introduced := f.introduced.Empty()
	for v, val := range bindings {
		v.count.Add(1)
		bmap = bmap.Assoc(v, &Box{val: val})
		introduced = introduced.Assoc(v, val)
	}
	t.frame = &Frame{introduced: introduced, bindings: bmap, prev: f}
	t.observer().FramePushed(len(bindings))
	return nil
}

// Pop removes the top frame, restoring exactly the bindings visible before
// the matching Push.
func (t *Thread) Pop() error {
	f := t.Frame()
	if f.IsBase() {
		return domain.ErrStackUnderflow.
			WithSubject(string(t.id)).
			WithDetails("pop without matching push")
	}
	f.introduced.Range(func(v *Var, _ any) bool {
		v.count.Add(-1)
		return true
	})
	t.frame = f.prev
	t.observer().FramePopped()
	return nil
}

// Release drops every pending frame at once, undoing the bind count of
// every push still on the stack, shadowed bindings included. The thread
// starts over from an empty base frame afterwards.
func (t *Thread) Release() error {
	f := t.Frame()
	if f.IsBase() {
		return domain.ErrStackUnderflow.
			WithSubject(string(t.id)).
			WithDetails("release without full unwind")
	}
	depth := 0
	for ; !f.IsBase(); f = f.prev {
		f.introduced.Range(func(v *Var, _ any) bool {
			v.count.Add(-1)
			return true
		})
		depth++
	}
	t.frame = nil
	t.observer().FramesReleased(depth)
	return nil
}

// Bindings returns a snapshot of every binding visible on the thread.
func (t *Thread) Bindings() map[*Var]any {
	if t.frame == nil {
		return map[*Var]any{}
	}
	out := make(map[*Var]any, t.frame.bindings.Len())
	t.frame.bindings.Range(func(v *Var, b *Box) bool {
		out[v] = b.val
		return true
	})
	return out
}

// With pushes bindings, runs fn and pops, even if fn panics.
func (t *Thread) With(bindings map[*Var]any, fn func() error) (err error) {
	if err := t.Push(bindings); err != nil {
		return err
	}
	defer func() {
		if perr := t.Pop(); perr != nil && err == nil {
			err = perr
		}
	}()
	return fn()
}
