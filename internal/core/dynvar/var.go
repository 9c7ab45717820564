package dynvar

import (
	"sync"
	"sync/atomic"

	"github.com/yndnr/dynbind-go/internal/core/domain"
	"github.com/yndnr/dynbind-go/pkg/pmap"
)

// Root mutation operation names, used for metrics labels.
const (
	OpBindRoot     = "bind_root"
	OpSwapRoot     = "swap_root"
	OpAlterRoot    = "alter_root"
	OpCommuteRoot  = "commute_root"
	OpUnbindRoot   = "unbind_root"
	OpSetValidator = "set_validator"
	OpPush         = "push"
	OpSet          = "set"
)

type unboundMarker struct{}

func (unboundMarker) String() string { return "#<Unbound>" }

// Unbound is the value observed for a var without a root: RawRoot returns
// it and watches receive it as the old value of a first binding.
var Unbound any = unboundMarker{}

// rootBox wraps the root so it can be published through an atomic pointer.
// A nil pointer means unbound.
type rootBox struct {
	val any
}

var varSeq atomic.Uint64

// Var is a dynamically-scoped binding cell.
type Var struct {
	id  uint64
	ns  *Namespace
	sym string

	root  atomic.Pointer[rootBox]
	count atomic.Int64

	validator atomic.Pointer[Validator]
	watches   atomic.Pointer[pmap.Map[string, WatchFunc]]
	watchMu   sync.Mutex

	meta   atomic.Pointer[pmap.Map[string, any]]
	metaMu sync.Mutex

	// mu serialises root mutation and validator installation.
	mu sync.Mutex
}

func varHash(v *Var) uint32 {
	return pmap.Uint64Hash(v.id)
}

func newVar(ns *Namespace, sym string) *Var {
	v := &Var{
		id:  varSeq.Add(1),
		ns:  ns,
		sym: sym,
	}
	v.watches.Store(pmap.New[string, WatchFunc](pmap.StringHash))
	v.SetMeta(pmap.New[string, any](pmap.StringHash))
	return v
}

// New creates an anonymous, unbound var.
func New() *Var {
	return newVar(nil, "")
}

// NewWithRoot creates an anonymous var bound to root.
func NewWithRoot(root any) *Var {
	v := New()
	v.root.Store(&rootBox{val: root})
	return v
}

// Namespace returns the owning namespace, or nil for anonymous vars.
func (v *Var) Namespace() *Namespace {
	return v.ns
}

// Name returns the var's unqualified name.
func (v *Var) Name() string {
	return v.sym
}

// Symbol returns the var's qualified identity.
func (v *Var) Symbol() domain.Symbol {
	if v.ns == nil {
		return domain.Symbol{Name: v.sym}
	}
	return domain.Symbol{Ns: v.ns.name, Name: v.sym}
}

// String renders the var as #'ns/name.
func (v *Var) String() string {
	if v.ns != nil {
		return "#'" + v.ns.name + "/" + v.sym
	}
	if v.sym == "" {
		return "#<Var: --unnamed-->"
	}
	return "#<Var: " + v.sym + ">"
}

// BindCount returns the number of live thread bindings of v across all threads.
func (v *Var) BindCount() int64 {
	return v.count.Load()
}

func (v *Var) observer() Observer {
	if v.ns != nil && v.ns.rt != nil {
		return v.ns.rt.obs
	}
	return nopObserver{}
}

// ============================================================================
// Root access
// ============================================================================

// HasRoot reports whether the var has a root binding.
func (v *Var) HasRoot() bool {
	return v.root.Load() != nil
}

// RawRoot returns the root value, or Unbound.
func (v *Var) RawRoot() any {
	if r := v.root.Load(); r != nil {
		return r.val
	}
	return Unbound
}

// GetRoot returns the root value, failing with ErrUnbound if there is none.
func (v *Var) GetRoot() (any, error) {
	if r := v.root.Load(); r != nil {
		return r.val, nil
	}
	return nil, v.unboundError()
}

func (v *Var) unboundError() error {
	return domain.ErrUnbound.WithSubject(v.String())
}

// ============================================================================
// Root mutation
// ============================================================================

// BindRoot validates val and installs it as the root. Binding a root always
// clears the macro flag. Watches are notified with the previous root (or
// Unbound) and val.
func (v *Var) BindRoot(val any) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.validate(v.Validator(), val, OpBindRoot); err != nil {
		return err
	}
	old := v.RawRoot()
	v.root.Store(&rootBox{val: val})
	v.AlterMeta(func(m *pmap.Map[string, any]) *pmap.Map[string, any] {
		return m.Without(MetaMacro)
	})
	v.commit(OpBindRoot, old, val)
	return nil
}

// Reset binds the root and returns the new value.
func (v *Var) Reset(val any) (any, error) {
	if err := v.BindRoot(val); err != nil {
		return nil, err
	}
	return val, nil
}

// SwapRoot validates val and installs it as the root without touching
// metadata.
func (v *Var) SwapRoot(val any) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.validate(v.Validator(), val, OpSwapRoot); err != nil {
		return err
	}
	old := v.RawRoot()
	v.root.Store(&rootBox{val: val})
	v.commit(OpSwapRoot, old, val)
	return nil
}

// AlterFunc computes a new value from the current one and extra arguments.
type AlterFunc func(old any, args ...any) (any, error)

// AlterRoot atomically replaces the root with fn(root, args...) and returns
// the new root. Concurrent root mutators cannot interleave between the read
// and the write. Fails with ErrUnbound if the var has no root.
func (v *Var) AlterRoot(fn AlterFunc, args ...any) (any, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	old, err := v.GetRoot()
	if err != nil {
		return nil, err
	}
	val, err := fn(old, args...)
	if err != nil {
		return nil, err
	}
	if err := v.validate(v.Validator(), val, OpAlterRoot); err != nil {
		return nil, err
	}
	v.root.Store(&rootBox{val: val})
	v.commit(OpAlterRoot, old, val)
	return val, nil
}

// CommuteRoot atomically replaces the root with fn(root).
// Fails with ErrUnbound if the var has no root.
func (v *Var) CommuteRoot(fn func(old any) (any, error)) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	old, err := v.GetRoot()
	if err != nil {
		return err
	}
	val, err := fn(old)
	if err != nil {
		return err
	}
	if err := v.validate(v.Validator(), val, OpCommuteRoot); err != nil {
		return err
	}
	v.root.Store(&rootBox{val: val})
	v.commit(OpCommuteRoot, old, val)
	return nil
}

// UnbindRoot removes the root. Watches and thread bindings are untouched.
func (v *Var) UnbindRoot() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.root.Store(nil)
	v.observer().RootChanged(OpUnbindRoot)
}

// commit notifies watches and records the mutation. Callers hold v.mu.
func (v *Var) commit(op string, old, val any) {
	v.notifyWatches(old, val)
	v.observer().RootChanged(op)
}

// ============================================================================
// Thread-aware reads and writes
// ============================================================================

// Get returns the value visible to th. When no thread anywhere binds v the
// root is returned without consulting th.
func (v *Var) Get(th *Thread) (any, error) {
	if v.count.Load() == 0 {
		if r := v.root.Load(); r != nil {
			return r.val, nil
		}
	}
	return v.Deref(th)
}

// Deref returns th's binding of v if any, else the root.
// Fails with ErrUnbound if neither exists.
func (v *Var) Deref(th *Thread) (any, error) {
	if b := v.ThreadBinding(th); b != nil {
		return b.val, nil
	}
	if r := v.root.Load(); r != nil {
		return r.val, nil
	}
	return nil, v.unboundError()
}

// ThreadBinding returns th's slot for v, or nil if th does not bind v.
func (v *Var) ThreadBinding(th *Thread) *Box {
	if th == nil || v.count.Load() <= 0 {
		return nil
	}
	return th.binding(v)
}

// IsBound reports whether a read through th would succeed.
func (v *Var) IsBound(th *Thread) bool {
	return v.HasRoot() || v.ThreadBinding(th) != nil
}

// Set replaces th's current binding of v and returns val. Set never
// establishes or changes the root: without a thread binding it fails with
// ErrNoThreadBinding.
func (v *Var) Set(th *Thread, val any) (any, error) {
	if err := v.validate(v.Validator(), val, OpSet); err != nil {
		return nil, err
	}
	if b := v.ThreadBinding(th); b != nil {
		b.val = val
		return val, nil
	}
	return nil, domain.ErrNoThreadBinding.WithSubject(v.String())
}

// Alter sets th's binding of v to fn(current, args...).
func (v *Var) Alter(th *Thread, fn AlterFunc, args ...any) (any, error) {
	cur, err := v.Deref(th)
	if err != nil {
		return nil, err
	}
	val, err := fn(cur, args...)
	if err != nil {
		return nil, err
	}
	return v.Set(th, val)
}
