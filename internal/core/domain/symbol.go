package domain

import "strings"

// Symbol is an optionally namespace-qualified name such as "user/x".
type Symbol struct {
	Ns   string
	Name string
}

// ParseSymbol splits "ns/name" into its parts. A symbol without a slash,
// or the bare "/" symbol, has an empty namespace.
func ParseSymbol(s string) Symbol {
	if s == "/" {
		return Symbol{Name: s}
	}
	i := strings.IndexByte(s, '/')
	if i <= 0 || i == len(s)-1 {
		return Symbol{Name: s}
	}
	return Symbol{Ns: s[:i], Name: s[i+1:]}
}

// Qualified reports whether the symbol carries a namespace.
func (s Symbol) Qualified() bool {
	return s.Ns != ""
}

// String returns the printable form of the symbol.
func (s Symbol) String() string {
	if s.Ns == "" {
		return s.Name
	}
	return s.Ns + "/" + s.Name
}
