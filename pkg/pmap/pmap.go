package pmap

import "math/bits"

const (
	bitsPerLevel = 5
	levelMask    = 1<<bitsPerLevel - 1
)

// Map is an immutable hash map. The zero value is not usable; create maps
// with New and derive new versions with Assoc and Without.
type Map[K comparable, V any] struct {
	root *node[K, V]
	size int
	hash HashFunc[K]
}

type entry[K comparable, V any] struct {
	hash uint32
	key  K
	val  V
}

// slot holds either a leaf entry or a child node, never both.
type slot[K comparable, V any] struct {
	leaf  *entry[K, V]
	child *node[K, V]
}

// node is a bitmap-indexed branch, or a collision bucket when coll is set.
type node[K comparable, V any] struct {
	bitmap uint32
	slots  []slot[K, V]
	coll   []*entry[K, V]
}

// New creates an empty map using hash to place keys.
func New[K comparable, V any](hash HashFunc[K]) *Map[K, V] {
	return &Map[K, V]{hash: hash}
}

// FromMap builds a persistent map holding every pair of src.
func FromMap[K comparable, V any](hash HashFunc[K], src map[K]V) *Map[K, V] {
	m := New[K, V](hash)
	for k, v := range src {
		m = m.Assoc(k, v)
	}
	return m
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return m.size
}

// Empty returns an empty map sharing m's hash function.
func (m *Map[K, V]) Empty() *Map[K, V] {
	return &Map[K, V]{hash: m.hash}
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	var zero V
	if m.root == nil {
		return zero, false
	}
	e := m.root.find(0, m.hash(key), key)
	if e == nil {
		return zero, false
	}
	return e.val, true
}

// Has reports whether key is present.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Assoc returns a map with key bound to val. m itself is unchanged.
func (m *Map[K, V]) Assoc(key K, val V) *Map[K, V] {
	e := &entry[K, V]{hash: m.hash(key), key: key, val: val}
	if m.root == nil {
		return &Map[K, V]{
			root: &node[K, V]{
				bitmap: bitFor(e.hash, 0),
				slots:  []slot[K, V]{{leaf: e}},
			},
			size: 1,
			hash: m.hash,
		}
	}
	root, added := m.root.assoc(0, e)
	size := m.size
	if added {
		size++
	}
	return &Map[K, V]{root: root, size: size, hash: m.hash}
}

// Without returns a map with key removed. If key is absent m is returned.
func (m *Map[K, V]) Without(key K) *Map[K, V] {
	if m.root == nil {
		return m
	}
	root, removed := m.root.without(0, m.hash(key), key)
	if !removed {
		return m
	}
	return &Map[K, V]{root: root, size: m.size - 1, hash: m.hash}
}

// Range calls fn for every entry in unspecified order.
// The callback returns false to stop iteration.
func (m *Map[K, V]) Range(fn func(key K, val V) bool) {
	if m.root == nil {
		return
	}
	m.root.each(fn)
}

// Keys returns all keys.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.size)
	m.Range(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// ToMap copies the entries into a regular Go map.
func (m *Map[K, V]) ToMap() map[K]V {
	out := make(map[K]V, m.size)
	m.Range(func(k K, v V) bool {
		out[k] = v
		return true
	})
	return out
}

func bitFor(hash uint32, shift uint) uint32 {
	return 1 << ((hash >> shift) & levelMask)
}

func (n *node[K, V]) index(bit uint32) int {
	return bits.OnesCount32(n.bitmap & (bit - 1))
}

func (n *node[K, V]) find(shift uint, hash uint32, key K) *entry[K, V] {
	for {
		if n.coll != nil {
			for _, e := range n.coll {
				if e.key == key {
					return e
				}
			}
			return nil
		}
		bit := bitFor(hash, shift)
		if n.bitmap&bit == 0 {
			return nil
		}
		s := n.slots[n.index(bit)]
		if s.leaf != nil {
			if s.leaf.key == key {
				return s.leaf
			}
			return nil
		}
		n = s.child
		shift += bitsPerLevel
	}
}

func (n *node[K, V]) assoc(shift uint, e *entry[K, V]) (*node[K, V], bool) {
	if n.coll != nil {
		coll := make([]*entry[K, V], len(n.coll), len(n.coll)+1)
		copy(coll, n.coll)
		for i, old := range coll {
			if old.key == e.key {
				coll[i] = e
				return &node[K, V]{coll: coll}, false
			}
		}
		return &node[K, V]{coll: append(coll, e)}, true
	}

	bit := bitFor(e.hash, shift)
	idx := n.index(bit)

	if n.bitmap&bit == 0 {
		slots := make([]slot[K, V], len(n.slots)+1)
		copy(slots, n.slots[:idx])
		slots[idx] = slot[K, V]{leaf: e}
		copy(slots[idx+1:], n.slots[idx:])
		return &node[K, V]{bitmap: n.bitmap | bit, slots: slots}, true
	}

	s := n.slots[idx]
	var (
		repl  slot[K, V]
		added bool
	)
	switch {
	case s.child != nil:
		child, ok := s.child.assoc(shift+bitsPerLevel, e)
		repl, added = slot[K, V]{child: child}, ok
	case s.leaf.key == e.key:
		repl = slot[K, V]{leaf: e}
	default:
		repl, added = slot[K, V]{child: merge(shift+bitsPerLevel, s.leaf, e)}, true
	}
	return n.withSlot(idx, repl), added
}

// merge builds the smallest subtree holding two entries with distinct keys.
func merge[K comparable, V any](shift uint, a, b *entry[K, V]) *node[K, V] {
	if a.hash == b.hash {
		return &node[K, V]{coll: []*entry[K, V]{a, b}}
	}
	ba, bb := bitFor(a.hash, shift), bitFor(b.hash, shift)
	if ba == bb {
		return &node[K, V]{
			bitmap: ba,
			slots:  []slot[K, V]{{child: merge(shift+bitsPerLevel, a, b)}},
		}
	}
	slots := []slot[K, V]{{leaf: a}, {leaf: b}}
	if bb < ba {
		slots[0], slots[1] = slots[1], slots[0]
	}
	return &node[K, V]{bitmap: ba | bb, slots: slots}
}

func (n *node[K, V]) withSlot(idx int, s slot[K, V]) *node[K, V] {
	slots := make([]slot[K, V], len(n.slots))
	copy(slots, n.slots)
	slots[idx] = s
	return &node[K, V]{bitmap: n.bitmap, slots: slots}
}

func (n *node[K, V]) withoutSlot(bit uint32, idx int) *node[K, V] {
	if len(n.slots) == 1 {
		return nil
	}
	slots := make([]slot[K, V], len(n.slots)-1)
	copy(slots, n.slots[:idx])
	copy(slots[idx:], n.slots[idx+1:])
	return &node[K, V]{bitmap: n.bitmap &^ bit, slots: slots}
}

// single returns the only entry of n if n holds exactly one leaf.
func (n *node[K, V]) single() *entry[K, V] {
	if n.coll != nil {
		if len(n.coll) == 1 {
			return n.coll[0]
		}
		return nil
	}
	if len(n.slots) == 1 && n.slots[0].leaf != nil {
		return n.slots[0].leaf
	}
	return nil
}

func (n *node[K, V]) without(shift uint, hash uint32, key K) (*node[K, V], bool) {
	if n.coll != nil {
		for i, e := range n.coll {
			if e.key != key {
				continue
			}
			if len(n.coll) == 1 {
				return nil, true
			}
			coll := make([]*entry[K, V], 0, len(n.coll)-1)
			coll = append(coll, n.coll[:i]...)
			coll = append(coll, n.coll[i+1:]...)
			return &node[K, V]{coll: coll}, true
		}
		return n, false
	}

	bit := bitFor(hash, shift)
	if n.bitmap&bit == 0 {
		return n, false
	}
	idx := n.index(bit)
	s := n.slots[idx]

	if s.leaf != nil {
		if s.leaf.key != key {
			return n, false
		}
		return n.withoutSlot(bit, idx), true
	}

	child, removed := s.child.without(shift+bitsPerLevel, hash, key)
	if !removed {
		return n, false
	}
	if child == nil {
		return n.withoutSlot(bit, idx), true
	}
	if e := child.single(); e != nil {
		return n.withSlot(idx, slot[K, V]{leaf: e}), true
	}
	return n.withSlot(idx, slot[K, V]{child: child}), true
}

func (n *node[K, V]) each(fn func(K, V) bool) bool {
	if n.coll != nil {
		for _, e := range n.coll {
			if !fn(e.key, e.val) {
				return false
			}
		}
		return true
	}
	for _, s := range n.slots {
		if s.leaf != nil {
			if !fn(s.leaf.key, s.leaf.val) {
				return false
			}
			continue
		}
		if !s.child.each(fn) {
			return false
		}
	}
	return true
}
