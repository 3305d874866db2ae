package store

import (
	"context"

	"github.com/google/btree"
)

type kvPairG[K, V any] struct {
	key K
	val V
}

// InMemoryBTreeKeyValueStoreG keeps entries ordered by lessFunc. It is not
// safe for concurrent use; a join instance owns its stores exclusively.
type InMemoryBTreeKeyValueStoreG[K, V any] struct {
	store *btree.BTreeG[kvPairG[K, V]]
	name  string
}

var _ = KeyValueStoreG[int, int](&InMemoryBTreeKeyValueStoreG[int, int]{})

func NewInMemoryBTreeKeyValueStoreG[K, V any](name string, lessFunc LessFunc[K]) *InMemoryBTreeKeyValueStoreG[K, V] {
	return &InMemoryBTreeKeyValueStoreG[K, V]{
		name: name,
		store: btree.NewG(2, btree.LessFunc[kvPairG[K, V]](
			func(a, b kvPairG[K, V]) bool {
				return lessFunc(a.key, b.key)
			})),
	}
}

func (st *InMemoryBTreeKeyValueStoreG[K, V]) Name() string {
	return st.name
}

func (st *InMemoryBTreeKeyValueStoreG[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	ret, exists := st.store.Get(kvPairG[K, V]{key: key})
	return ret.val, exists, nil
}

func (st *InMemoryBTreeKeyValueStoreG[K, V]) Put(ctx context.Context, key K, value V) error {
	st.store.ReplaceOrInsert(kvPairG[K, V]{key: key, val: value})
	return nil
}

func (st *InMemoryBTreeKeyValueStoreG[K, V]) Delete(ctx context.Context, key K) error {
	st.store.Delete(kvPairG[K, V]{key: key})
	return nil
}

func (st *InMemoryBTreeKeyValueStoreG[K, V]) Clear(ctx context.Context) error {
	st.store.Clear(false)
	return nil
}

func (st *InMemoryBTreeKeyValueStoreG[K, V]) ApproximateNumEntries(ctx context.Context) (uint64, error) {
	return uint64(st.store.Len()), nil
}

func (st *InMemoryBTreeKeyValueStoreG[K, V]) Range(ctx context.Context, iterFunc func(K, V) error) error {
	var err error
	st.store.Ascend(btree.ItemIteratorG[kvPairG[K, V]](func(kv kvPairG[K, V]) bool {
		err = iterFunc(kv.key, kv.val)
		return err == nil
	}))
	return err
}

func (st *InMemoryBTreeKeyValueStoreG[K, V]) TableType() TABLE_TYPE {
	return IN_MEM
}
