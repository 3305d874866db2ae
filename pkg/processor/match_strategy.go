package processor

import (
	"context"

	"changelog-join/pkg/commtypes"
)

// MatchInput is everything a join kind needs to decide what to emit for one
// record: the record, the entry it produced on its own side, the other side's
// store and the predicate bound in canonical argument order.
type MatchInput struct {
	Key         string
	Side        commtypes.Side
	Record      commtypes.ChangeRecord
	TimestampMs int64
	Current     commtypes.MultiplicityEntry
	Other       *RowMultiplicityStore
	Join        SideJoinFunc
}

// MatchStrategy implements one join kind on top of the shared bookkeeping.
type MatchStrategy interface {
	Match(ctx context.Context, in MatchInput, out Collector) error
}

// InnerJoinStrategy evaluates the predicate once per present row on the other
// side and forwards every produced row once per outstanding occurrence of that
// row, carrying the change flag of the triggering record.
type InnerJoinStrategy struct{}

var _ = MatchStrategy(InnerJoinStrategy{})

func (InnerJoinStrategy) Match(ctx context.Context, in MatchInput, out Collector) error {
	var produced []commtypes.Row
	emit := func(r commtypes.Row) {
		produced = append(produced, r)
	}
	return in.Other.Range(ctx, func(other commtypes.Row, e commtypes.MultiplicityEntry) error {
		if e.Count <= 0 {
			return nil
		}
		produced = produced[:0]
		if err := in.Join(in.Record.Row, other, emit); err != nil {
			return err
		}
		for _, r := range produced {
			for i := int64(0); i < e.Count; i++ {
				err := out.Collect(ctx, commtypes.Message{
					Key:         in.Key,
					Value:       commtypes.ChangeRecord{Row: r, Insert: in.Record.Insert},
					TimestampMs: in.TimestampMs,
				})
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}
