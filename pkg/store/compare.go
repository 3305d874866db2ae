package store

import (
	"golang.org/x/exp/constraints"
)

// LessFunc orders the keys of the in-memory stores.
type LessFunc[K any] func(k1, k2 K) bool

// KeyLess orders values by an ordered projection, such as a row's canonical
// encoding.
func KeyLess[K any, P constraints.Ordered](proj func(K) P) LessFunc[K] {
	return func(k1, k2 K) bool {
		return proj(k1) < proj(k2)
	}
}
