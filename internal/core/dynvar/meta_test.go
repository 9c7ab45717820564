package dynvar

import (
	"testing"

	"github.com/yndnr/dynbind-go/pkg/pmap"
)

func TestMeta_IdentityKeysForced(t *testing.T) {
	rt := NewRuntime()
	v := rt.Intern("user", "x")

	v.SetMeta(NewMeta(map[string]any{
		MetaName: "spoofed",
		MetaNs:   "elsewhere",
		"doc":    "the x var",
	}))

	m := v.Meta()
	if name, _ := m.Get(MetaName); name != "x" {
		t.Errorf("meta name = %v, want x", name)
	}
	if ns, _ := m.Get(MetaNs); ns != "user" {
		t.Errorf("meta ns = %v, want user", ns)
	}
	if doc, _ := m.Get("doc"); doc != "the x var" {
		t.Errorf("meta doc = %v", doc)
	}
}

func TestMeta_AnonymousVar(t *testing.T) {
	v := New()
	ns, ok := v.Meta().Get(MetaNs)
	if !ok || ns != nil {
		t.Errorf("meta ns = %v, %v, want nil, true", ns, ok)
	}
}

func TestMeta_Flags(t *testing.T) {
	v := New()

	if !v.IsPublic() {
		t.Error("new var should be public")
	}
	v.SetPrivate(true)
	if v.IsPublic() {
		t.Error("SetPrivate(true) should hide the var")
	}
	v.SetPrivate(false)
	if !v.IsPublic() {
		t.Error("SetPrivate(false) should expose the var")
	}

	if v.Tag() != nil {
		t.Errorf("Tag() = %v, want nil", v.Tag())
	}
	v.SetTag("int")
	if v.Tag() != "int" {
		t.Errorf("Tag() = %v, want int", v.Tag())
	}
}

func TestMeta_AlterMeta(t *testing.T) {
	v := New()
	before := v.Meta()

	v.AlterMeta(func(m *pmap.Map[string, any]) *pmap.Map[string, any] {
		return m.Assoc("k", 1)
	})

	if _, ok := before.Get("k"); ok {
		t.Error("earlier metadata snapshot should be unchanged")
	}
	if got, _ := v.Meta().Get("k"); got != 1 {
		t.Errorf("meta k = %v, want 1", got)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0, true},
		{"", true},
	}

	for _, tt := range tests {
		if got := truthy(tt.in); got != tt.want {
			t.Errorf("truthy(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
