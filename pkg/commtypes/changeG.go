package commtypes

import (
	"fmt"

	"github.com/moznion/go-optional"
)

// ChangeG is a table-style update carrying the previous and the new value of
// one logical row.
type ChangeG[V any] struct {
	NewVal optional.Option[V]
	OldVal optional.Option[V]
}

func NewChangeOnlyNewValG[V any](newVal V) ChangeG[V] {
	return ChangeG[V]{
		NewVal: optional.Some(newVal),
		OldVal: optional.None[V](),
	}
}

func NewChangeOnlyOldValG[V any](oldVal V) ChangeG[V] {
	return ChangeG[V]{
		NewVal: optional.None[V](),
		OldVal: optional.Some(oldVal),
	}
}

func NewChangeG[V any](newVal, oldVal V) ChangeG[V] {
	return ChangeG[V]{
		NewVal: optional.Some(newVal),
		OldVal: optional.Some(oldVal),
	}
}

func (c ChangeG[V]) String() string {
	return fmt.Sprintf("Change: {NewVal: %v, OldVal: %v}", c.NewVal, c.OldVal)
}

// ChangeToRecords expands an update into the changelog records a join
// consumes: the retraction of the old row first, then the insertion of the new.
func ChangeToRecords(c ChangeG[Row]) []ChangeRecord {
	out := make([]ChangeRecord, 0, 2)
	if c.OldVal.IsSome() {
		out = append(out, RetractRecord(c.OldVal.Unwrap()))
	}
	if c.NewVal.IsSome() {
		out = append(out, InsertRecord(c.NewVal.Unwrap()))
	}
	return out
}
