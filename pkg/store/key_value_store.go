package store

import "context"

type StateStore interface {
	Name() string
}

// KeyValueStoreG is the map-like state a join keeps for one side. A missing
// key is reported as (zero, false, nil), never as an error.
type KeyValueStoreG[K, V any] interface {
	StateStore
	Get(ctx context.Context, key K) (V, bool, error)
	Put(ctx context.Context, key K, value V) error
	Delete(ctx context.Context, key K) error
	Clear(ctx context.Context) error
	Range(ctx context.Context, iterFunc func(K, V) error) error
	ApproximateNumEntries(ctx context.Context) (uint64, error)
	TableType() TABLE_TYPE
}
