package state

import (
	"context"
	"fmt"

	"changelog-join/pkg/commtypes"
	"changelog-join/pkg/common_errors"
	"changelog-join/pkg/store"

	"github.com/moznion/go-optional"
	"golang.org/x/xerrors"
)

// InMemoryKeyedBackend keeps a separate store per (state name, key). Per-key
// stores are created on first write and dropped when cleared.
type InMemoryKeyedBackend struct {
	kind       StoreKind
	currentKey string
	maps       map[string]map[string]RowMapState
	timers     map[string]map[string]int64
}

var _ = KeyedStateBackend(&InMemoryKeyedBackend{})

var rowLess = store.KeyLess(commtypes.Row.Key)

func NewInMemoryKeyedBackend(kind StoreKind) (*InMemoryKeyedBackend, error) {
	if kind != BTreeStore && kind != SkipmapStore {
		return nil, xerrors.Errorf("%v: %w", kind, common_errors.ErrUnknownStoreKind)
	}
	return &InMemoryKeyedBackend{
		kind:   kind,
		maps:   make(map[string]map[string]RowMapState),
		timers: make(map[string]map[string]int64),
	}, nil
}

func (b *InMemoryKeyedBackend) SetCurrentKey(key string) {
	b.currentKey = key
}

func (b *InMemoryKeyedBackend) CurrentKey() string {
	return b.currentKey
}

func (b *InMemoryKeyedBackend) RowMapState(name string) (RowMapState, error) {
	if _, ok := b.maps[name]; !ok {
		b.maps[name] = make(map[string]RowMapState)
	}
	return &scopedRowMapState{backend: b, name: name}, nil
}

func (b *InMemoryKeyedBackend) TimerState(name string) (TimerState, error) {
	if _, ok := b.timers[name]; !ok {
		b.timers[name] = make(map[string]int64)
	}
	return &inMemTimerState{backend: b, name: name}, nil
}

// NumKeys reports how many keys currently hold state in the named map.
func (b *InMemoryKeyedBackend) NumKeys(name string) int {
	return len(b.maps[name])
}

func (b *InMemoryKeyedBackend) newStore(name string) RowMapState {
	storeName := fmt.Sprintf("%s/%x", name, b.currentKey)
	switch b.kind {
	case SkipmapStore:
		return store.NewInMemorySkipmapKeyValueStoreG[commtypes.Row, commtypes.MultiplicityEntry](storeName, rowLess)
	default:
		return store.NewInMemoryBTreeKeyValueStoreG[commtypes.Row, commtypes.MultiplicityEntry](storeName, rowLess)
	}
}

type scopedRowMapState struct {
	backend *InMemoryKeyedBackend
	name    string
}

var _ = RowMapState(&scopedRowMapState{})

func (s *scopedRowMapState) lookup() (RowMapState, bool) {
	st, ok := s.backend.maps[s.name][s.backend.currentKey]
	return st, ok
}

func (s *scopedRowMapState) lookupOrCreate() RowMapState {
	st, ok := s.lookup()
	if !ok {
		st = s.backend.newStore(s.name)
		s.backend.maps[s.name][s.backend.currentKey] = st
	}
	return st
}

func (s *scopedRowMapState) Name() string {
	return s.name
}

func (s *scopedRowMapState) Get(ctx context.Context, key commtypes.Row) (commtypes.MultiplicityEntry, bool, error) {
	st, ok := s.lookup()
	if !ok {
		return commtypes.MultiplicityEntry{}, false, nil
	}
	return st.Get(ctx, key)
}

func (s *scopedRowMapState) Put(ctx context.Context, key commtypes.Row, value commtypes.MultiplicityEntry) error {
	return s.lookupOrCreate().Put(ctx, key, value)
}

func (s *scopedRowMapState) Delete(ctx context.Context, key commtypes.Row) error {
	st, ok := s.lookup()
	if !ok {
		return nil
	}
	if err := st.Delete(ctx, key); err != nil {
		return err
	}
	n, err := st.ApproximateNumEntries(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		delete(s.backend.maps[s.name], s.backend.currentKey)
	}
	return nil
}

func (s *scopedRowMapState) Clear(ctx context.Context) error {
	delete(s.backend.maps[s.name], s.backend.currentKey)
	return nil
}

func (s *scopedRowMapState) Range(ctx context.Context, iterFunc func(commtypes.Row, commtypes.MultiplicityEntry) error) error {
	st, ok := s.lookup()
	if !ok {
		return nil
	}
	return st.Range(ctx, iterFunc)
}

func (s *scopedRowMapState) ApproximateNumEntries(ctx context.Context) (uint64, error) {
	st, ok := s.lookup()
	if !ok {
		return 0, nil
	}
	return st.ApproximateNumEntries(ctx)
}

func (s *scopedRowMapState) TableType() store.TABLE_TYPE {
	return store.IN_MEM
}

type inMemTimerState struct {
	backend *InMemoryKeyedBackend
	name    string
}

func (s *inMemTimerState) Get(ctx context.Context) (optional.Option[int64], error) {
	ts, ok := s.backend.timers[s.name][s.backend.currentKey]
	if !ok {
		return optional.None[int64](), nil
	}
	return optional.Some(ts), nil
}

func (s *inMemTimerState) Set(ctx context.Context, ts int64) error {
	s.backend.timers[s.name][s.backend.currentKey] = ts
	return nil
}

func (s *inMemTimerState) Clear(ctx context.Context) error {
	delete(s.backend.timers[s.name], s.backend.currentKey)
	return nil
}
