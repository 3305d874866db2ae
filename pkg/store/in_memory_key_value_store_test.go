package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kvStoreCase func(ctx context.Context, store KeyValueStoreG[int, string], t testing.TB)

var kvStoreCases = map[string]kvStoreCase{
	"NotIncludeDeletedFromRange": ShouldNotIncludeDeletedFromRangeResult,
	"MissingKeyIsAbsent":         ShouldReportMissingKeyAsAbsent,
	"OverwriteExisting":          ShouldOverwriteExistingValue,
	"ClearAllEntries":            ShouldClearAllEntries,
	"StopRangeOnError":           ShouldStopRangeOnError,
}

var intLess = KeyLess(func(k int) int { return k })

func TestInMemoryBTreeKeyValueStore(t *testing.T) {
	for name, tc := range kvStoreCases {
		t.Run(name, func(t *testing.T) {
			tc(context.Background(), NewInMemoryBTreeKeyValueStoreG[int, string]("btree", intLess), t)
		})
	}
}

func TestInMemorySkipmapKeyValueStore(t *testing.T) {
	for name, tc := range kvStoreCases {
		t.Run(name, func(t *testing.T) {
			tc(context.Background(), NewInMemorySkipmapKeyValueStoreG[int, string]("skipmap", intLess), t)
		})
	}
}

func TestBTreeRangeIsOrdered(t *testing.T) {
	ctx := context.Background()
	st := NewInMemoryBTreeKeyValueStoreG[int, string]("ordered", intLess)
	for _, k := range []int{5, 3, 9, 1} {
		require.NoError(t, st.Put(ctx, k, "v"))
	}
	var keys []int
	require.NoError(t, st.Range(ctx, func(k int, _ string) error {
		keys = append(keys, k)
		return nil
	}))
	assert.Equal(t, []int{1, 3, 5, 9}, keys)
}

func TestSkipmapRangeFollowsLess(t *testing.T) {
	ctx := context.Background()
	byLen := KeyLess(func(s string) int { return len(s) })
	st := NewInMemorySkipmapKeyValueStoreG[string, int]("by-len", func(a, b string) bool { return byLen(b, a) })
	for _, k := range []string{"bb", "a", "dddd", "ccc"} {
		require.NoError(t, st.Put(ctx, k, len(k)))
	}
	var keys []string
	require.NoError(t, st.Range(ctx, func(k string, _ int) error {
		keys = append(keys, k)
		return nil
	}))
	assert.Equal(t, []string{"dddd", "ccc", "bb", "a"}, keys)
}
