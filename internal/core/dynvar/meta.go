package dynvar

import "github.com/yndnr/dynbind-go/pkg/pmap"

// Metadata keys consulted by the runtime.
const (
	MetaName    = "name"
	MetaNs      = "ns"
	MetaPrivate = "private"
	MetaMacro   = "macro"
	MetaTag     = "tag"
)

// NewMeta builds a metadata map from kv.
func NewMeta(kv map[string]any) *pmap.Map[string, any] {
	return pmap.FromMap(pmap.StringHash, kv)
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// Meta returns the var's metadata.
func (v *Var) Meta() *pmap.Map[string, any] {
	return v.meta.Load()
}

// SetMeta replaces the metadata. The name and ns keys are always set to
// the var's identity, whatever m holds.
func (v *Var) SetMeta(m *pmap.Map[string, any]) {
	var ns any
	if v.ns != nil {
		ns = v.ns.name
	}

	v.metaMu.Lock()
	defer v.metaMu.Unlock()
	v.meta.Store(m.Assoc(MetaName, v.sym).Assoc(MetaNs, ns))
}

// AlterMeta atomically replaces the metadata with fn(current).
func (v *Var) AlterMeta(fn func(m *pmap.Map[string, any]) *pmap.Map[string, any]) {
	v.metaMu.Lock()
	defer v.metaMu.Unlock()
	v.meta.Store(fn(v.meta.Load()))
}

func (v *Var) assocMeta(key string, val any) {
	v.AlterMeta(func(m *pmap.Map[string, any]) *pmap.Map[string, any] {
		return m.Assoc(key, val)
	})
}

// IsMacro reports whether the var is flagged as a macro.
func (v *Var) IsMacro() bool {
	m, _ := v.Meta().Get(MetaMacro)
	return truthy(m)
}

// SetMacro flags the var as a macro until the next BindRoot.
func (v *Var) SetMacro() {
	v.assocMeta(MetaMacro, true)
}

// IsPublic reports whether the var is not private.
func (v *Var) IsPublic() bool {
	p, _ := v.Meta().Get(MetaPrivate)
	return !truthy(p)
}

// SetPrivate sets the private flag.
func (v *Var) SetPrivate(private bool) {
	v.assocMeta(MetaPrivate, private)
}

// Tag returns the tag metadata, or nil.
func (v *Var) Tag() any {
	t, _ := v.Meta().Get(MetaTag)
	return t
}

// SetTag sets the tag metadata.
func (v *Var) SetTag(tag any) {
	v.assocMeta(MetaTag, tag)
}
