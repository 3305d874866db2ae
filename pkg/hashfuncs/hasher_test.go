package hashfuncs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionIsStableAndBounded(t *testing.T) {
	for _, k := range []string{"a", "b", "user-42", ""} {
		p := Partition[string](StringHasher{}, k, 7)
		assert.Less(t, p, uint32(7))
		assert.Equal(t, p, Partition[string](StringHasher{}, k, 7))
	}
}

func TestPartitionSpreadsKeys(t *testing.T) {
	seen := make(map[uint32]bool)
	for _, k := range []string{"k0", "k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8", "k9"} {
		seen[Partition[string](StringHasher{}, k, 4)] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestPartitionSingle(t *testing.T) {
	assert.Equal(t, uint32(0), Partition[string](StringHasher{}, "anything", 1))
}
