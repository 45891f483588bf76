package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Integer is any built-in signed or unsigned integer type, wide enough to
// cover both page.PageID (an int64) and the plain ints test code and
// callers reach for.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// IntHasher returns a Hasher for any integer-backed key type, grounded on
// cespare/xxhash/v2 rather than a hand-rolled mix function — the same
// dependency the teacher's go.mod already declares (transitively, via
// ristretto) but never imports.
func IntHasher[K Integer]() Hasher[K] {
	return func(key K) uint64 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(key)))
		return xxhash.Sum64(buf[:])
	}
}

// Int64Hasher is IntHasher specialized for ~int64 key types such as
// page.PageID; kept as a distinct name at call sites that only ever deal
// in page ids, for readability.
func Int64Hasher[K ~int64]() Hasher[K] {
	return IntHasher[K]()
}

// StringHasher returns a Hasher for string-backed key types.
func StringHasher[K ~string]() Hasher[K] {
	return func(key K) uint64 {
		return xxhash.Sum64String(string(key))
	}
}
