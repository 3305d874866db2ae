package store

import (
	"context"

	"github.com/zhangyunhao116/skipmap"
)

type InMemorySkipmapKeyValueStoreG[K, V any] struct {
	store *skipmap.FuncMap[K, V]
	less  LessFunc[K]
	name  string
}

var _ = KeyValueStoreG[int, int](&InMemorySkipmapKeyValueStoreG[int, int]{})

func NewInMemorySkipmapKeyValueStoreG[K, V any](name string, lessFunc LessFunc[K]) *InMemorySkipmapKeyValueStoreG[K, V] {
	return &InMemorySkipmapKeyValueStoreG[K, V]{
		name:  name,
		less:  lessFunc,
		store: skipmap.NewFunc[K, V](lessFunc),
	}
}

func (st *InMemorySkipmapKeyValueStoreG[K, V]) Name() string {
	return st.name
}

func (st *InMemorySkipmapKeyValueStoreG[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	ret, exists := st.store.Load(key)
	return ret, exists, nil
}

func (st *InMemorySkipmapKeyValueStoreG[K, V]) Put(ctx context.Context, key K, value V) error {
	st.store.Store(key, value)
	return nil
}

func (st *InMemorySkipmapKeyValueStoreG[K, V]) Delete(ctx context.Context, key K) error {
	st.store.Delete(key)
	return nil
}

// Clear swaps in a fresh skipmap; readers ranging over the old one finish on
// the old contents.
func (st *InMemorySkipmapKeyValueStoreG[K, V]) Clear(ctx context.Context) error {
	st.store = skipmap.NewFunc[K, V](st.less)
	return nil
}

func (st *InMemorySkipmapKeyValueStoreG[K, V]) ApproximateNumEntries(ctx context.Context) (uint64, error) {
	return uint64(st.store.Len()), nil
}

func (st *InMemorySkipmapKeyValueStoreG[K, V]) Range(ctx context.Context, iterFunc func(K, V) error) error {
	var err error
	st.store.Range(func(key K, value V) bool {
		err = iterFunc(key, value)
		return err == nil
	})
	return err
}

func (st *InMemorySkipmapKeyValueStoreG[K, V]) TableType() TABLE_TYPE {
	return IN_MEM
}
