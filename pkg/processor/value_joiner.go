package processor

import "changelog-join/pkg/commtypes"

// EmitFunc receives the rows a predicate produces for one candidate pair.
type EmitFunc func(commtypes.Row)

// JoinPredicate decides whether a (left, right) pair matches and what it
// produces. It may emit zero or more rows and must have no side effects other
// than calling emit.
type JoinPredicate interface {
	Evaluate(left commtypes.Row, right commtypes.Row, emit EmitFunc) error
}

type JoinPredicateFunc func(left commtypes.Row, right commtypes.Row, emit EmitFunc) error

func (fn JoinPredicateFunc) Evaluate(left commtypes.Row, right commtypes.Row, emit EmitFunc) error {
	return fn(left, right, emit)
}

// SideJoinFunc is called with the row of the triggering side first.
type SideJoinFunc func(current commtypes.Row, other commtypes.Row, emit EmitFunc) error

// CanonicalJoinFunc adapts p so that it always receives (left, right) no
// matter which side triggered the match.
func CanonicalJoinFunc(p JoinPredicate, currentSide commtypes.Side) SideJoinFunc {
	if currentSide == commtypes.LeftSide {
		return func(current, other commtypes.Row, emit EmitFunc) error {
			return p.Evaluate(current, other, emit)
		}
	}
	return func(current, other commtypes.Row, emit EmitFunc) error {
		return p.Evaluate(other, current, emit)
	}
}
