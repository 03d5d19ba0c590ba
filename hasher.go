package hashtable

import (
	"encoding/binary"
	"hash/maphash"
)

// Hasher maps a key to a 64-bit unsigned value. It must be
// deterministic for the lifetime of a Map and equality-consistent:
// two keys considered equal by the Map's less function must hash to
// the same value.
type Hasher[K any] func(key K) uint64

// LessFunc imposes a strict weak order over keys, used to keep a
// bucket's red-black regime sorted. less(a, b) must be false whenever
// a and b compare equal.
type LessFunc[K any] func(a, b K) bool

// NewStringHasher returns a Hasher for string keys backed by
// hash/maphash, seeded once per call so repeated calls (e.g. across
// test runs) don't produce identical hash floors.
func NewStringHasher() Hasher[string] {
	seed := maphash.MakeSeed()
	return func(key string) uint64 {
		return maphash.String(seed, key)
	}
}

// NewBytesHasher returns a Hasher for []byte keys backed by
// hash/maphash.
func NewBytesHasher() Hasher[[]byte] {
	seed := maphash.MakeSeed()
	return func(key []byte) uint64 {
		return maphash.Bytes(seed, key)
	}
}

// NewInt64Hasher returns a Hasher for int64 keys backed by
// hash/maphash, applied to the key's little-endian byte
// representation.
func NewInt64Hasher() Hasher[int64] {
	seed := maphash.MakeSeed()
	return func(key int64) uint64 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(key))
		return maphash.Bytes(seed, buf[:])
	}
}

// NewIntHasher returns a Hasher for int keys backed by hash/maphash,
// convenient for the common case of small-integer keys in tests and
// examples.
func NewIntHasher() Hasher[int] {
	inner := NewInt64Hasher()
	return func(key int) uint64 {
		return inner(int64(key))
	}
}
