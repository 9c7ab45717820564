// Package pmap provides a persistent (immutable) hash map for DynBind.
//
// The map is a hash array mapped trie with path copying:
//
//   - Structural sharing: Assoc and Without copy only the nodes on the
//     path to the changed key, every other node is shared with the
//     previous version
//   - O(log32 n) lookup, insert and delete
//   - Collision nodes for keys whose 32-bit hashes are equal
//
// Usage:
//
//	m := pmap.New[string, int](pmap.StringHash)
//	m2 := m.Assoc("a", 1)
//	v, ok := m2.Get("a") // 1, true
//	_, ok = m.Get("a")   // false, m is unchanged
//
// Thread Safety:
//
// A *Map is never mutated after construction, so any version may be read
// from any goroutine without synchronisation.
package pmap
