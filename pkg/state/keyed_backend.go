// Package state provides keyed state backends: every state handle it returns
// is scoped to the key set by the latest SetCurrentKey call.
package state

import (
	"context"

	"changelog-join/pkg/commtypes"
	"changelog-join/pkg/store"

	"github.com/moznion/go-optional"
)

type RowMapState = store.KeyValueStoreG[commtypes.Row, commtypes.MultiplicityEntry]

// TimerState holds at most one processing-time instant per key.
type TimerState interface {
	Get(ctx context.Context) (optional.Option[int64], error)
	Set(ctx context.Context, ts int64) error
	Clear(ctx context.Context) error
}

type KeyedStateBackend interface {
	SetCurrentKey(key string)
	CurrentKey() string
	RowMapState(name string) (RowMapState, error)
	TimerState(name string) (TimerState, error)
}

type StoreKind uint8

const (
	BTreeStore StoreKind = iota
	SkipmapStore
)

func (k StoreKind) String() string {
	switch k {
	case BTreeStore:
		return "btree"
	case SkipmapStore:
		return "skipmap"
	default:
		return "unknown"
	}
}
