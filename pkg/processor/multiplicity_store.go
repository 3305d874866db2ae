package processor

import (
	"context"

	"changelog-join/pkg/commtypes"
	"changelog-join/pkg/debug"
	"changelog-join/pkg/state"
)

// RowMultiplicityStore counts the outstanding occurrences of every distinct
// row seen on one side of the join.
type RowMultiplicityStore struct {
	kv   state.RowMapState
	side commtypes.Side
}

func NewRowMultiplicityStore(side commtypes.Side, kv state.RowMapState) *RowMultiplicityStore {
	return &RowMultiplicityStore{kv: kv, side: side}
}

func (s *RowMultiplicityStore) Side() commtypes.Side {
	return s.side
}

func (s *RowMultiplicityStore) Name() string {
	return s.kv.Name()
}

// Lookup treats an absent row as (0, NoExpiration). A row holding an
// unsupported field value is rejected before it reaches the store.
func (s *RowMultiplicityStore) Lookup(ctx context.Context, row commtypes.Row) (commtypes.MultiplicityEntry, bool, error) {
	if _, err := row.CanonicalKey(); err != nil {
		return commtypes.MultiplicityEntry{}, false, err
	}
	e, ok, err := s.kv.Get(ctx, row)
	if err != nil {
		return commtypes.MultiplicityEntry{}, false, err
	}
	if !ok {
		return commtypes.MultiplicityEntry{Count: 0, ExpireAt: commtypes.NoExpiration}, false, nil
	}
	return e, true, nil
}

// ApplyChange reads the old entry, computes the new one and writes it back.
// An entry whose count drops to <= 0 is removed. The resulting pair is
// returned either way.
func (s *RowMultiplicityStore) ApplyChange(ctx context.Context, row commtypes.Row, isInsert bool,
	now int64, retention RetentionConfig,
) (commtypes.MultiplicityEntry, error) {
	old, _, err := s.Lookup(ctx, row)
	if err != nil {
		return commtypes.MultiplicityEntry{}, err
	}
	next := commtypes.MultiplicityEntry{
		Count:    old.Count,
		ExpireAt: retention.NextExpiry(now, old.ExpireAt),
	}
	debug.Assert(next.ExpireAt >= old.ExpireAt, "expiration must not move backwards")
	if isInsert {
		next.Count++
	} else {
		next.Count--
	}
	if next.Count <= 0 {
		if err := s.kv.Delete(ctx, row); err != nil {
			return commtypes.MultiplicityEntry{}, err
		}
		return next, nil
	}
	if err := s.kv.Put(ctx, row, next); err != nil {
		return commtypes.MultiplicityEntry{}, err
	}
	return next, nil
}

// Range visits every present row. Stored counts are always > 0.
func (s *RowMultiplicityStore) Range(ctx context.Context, fn func(commtypes.Row, commtypes.MultiplicityEntry) error) error {
	return s.kv.Range(ctx, fn)
}

func (s *RowMultiplicityStore) Clear(ctx context.Context) error {
	return s.kv.Clear(ctx)
}

func (s *RowMultiplicityStore) Len(ctx context.Context) (uint64, error) {
	return s.kv.ApproximateNumEntries(ctx)
}
