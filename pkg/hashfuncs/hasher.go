package hashfuncs

import (
	"github.com/cespare/xxhash/v2"
)

type HashSum64[K any] interface {
	HashSum64(k K) uint64
}

type StringHasher struct{}

func (sh StringHasher) HashSum64(k string) uint64 {
	return xxhash.Sum64String(k)
}

// Partition maps a join key onto one of numPartitions instances.
func Partition[K any](h HashSum64[K], k K, numPartitions uint32) uint32 {
	return uint32(h.HashSum64(k) % uint64(numPartitions))
}
