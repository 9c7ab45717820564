package dynvar

import (
	"sort"

	"github.com/yndnr/dynbind-go/pkg/cmap"
)

// Namespace maps names to interned vars.
type Namespace struct {
	name string
	rt   *Runtime
	vars *cmap.Map[string, *Var]
}

func newNamespace(rt *Runtime, name string) *Namespace {
	return &Namespace{
		name: name,
		rt:   rt,
		vars: cmap.New[string, *Var](),
	}
}

// Name returns the namespace name.
func (n *Namespace) Name() string {
	return n.name
}

// String returns the namespace name.
func (n *Namespace) String() string {
	return n.name
}

// Intern returns the var called name, creating an unbound one if needed.
// Concurrent callers always receive the same var.
func (n *Namespace) Intern(name string) *Var {
	if v, ok := n.vars.Get(name); ok {
		return v
	}
	v, _ := n.vars.GetOrSet(name, newVar(n, name))
	return v
}

// FindInterned returns the var called name.
func (n *Namespace) FindInterned(name string) (*Var, bool) {
	return n.vars.Get(name)
}

// Unmap removes name from the namespace.
func (n *Namespace) Unmap(name string) bool {
	_, ok := n.vars.Pop(name)
	return ok
}

// Vars returns the sorted names of every interned var.
func (n *Namespace) Vars() []string {
	names := n.vars.Keys()
	sort.Strings(names)
	return names
}
