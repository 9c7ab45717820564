package pmap

import (
	"encoding/binary"
	"hash"
	"sync"

	"github.com/spaolacci/murmur3"
)

// HashFunc maps a key to its 32-bit hash.
type HashFunc[K any] func(K) uint32

// Pooled streaming hashers. murmur3.Sum32 trips checkptr under -race; the
// streaming form gives the same sums without it.
var hasherPool = sync.Pool{
	New: func() any { return murmur3.New32() },
}

func sum32(b []byte) uint32 {
	h := hasherPool.Get().(hash.Hash32)
	h.Reset()
	h.Write(b)
	sum := h.Sum32()
	hasherPool.Put(h)
	return sum
}

// StringHash hashes a string key with murmur3.
func StringHash(s string) uint32 {
	return sum32([]byte(s))
}

// Uint64Hash hashes an integer key with murmur3.
func Uint64Hash(x uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	return sum32(buf[:])
}
