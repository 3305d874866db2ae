package state

import (
	"context"
	"testing"

	"changelog-join/pkg/commtypes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowMapStateIsScopedToCurrentKey(t *testing.T) {
	for _, kind := range []StoreKind{BTreeStore, SkipmapStore} {
		t.Run(kind.String(), func(t *testing.T) {
			ctx := context.Background()
			b, err := NewInMemoryKeyedBackend(kind)
			require.NoError(t, err)
			st, err := b.RowMapState("left")
			require.NoError(t, err)

			row := commtypes.Row{int64(1), "a"}
			b.SetCurrentKey("k1")
			require.NoError(t, st.Put(ctx, row, commtypes.MultiplicityEntry{Count: 2, ExpireAt: 10}))

			b.SetCurrentKey("k2")
			_, ok, err := st.Get(ctx, row)
			require.NoError(t, err)
			assert.False(t, ok)
			n, err := st.ApproximateNumEntries(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)

			b.SetCurrentKey("k1")
			e, ok, err := st.Get(ctx, commtypes.Row{int64(1), "a"})
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, commtypes.MultiplicityEntry{Count: 2, ExpireAt: 10}, e)
		})
	}
}

func TestClearAndDeleteReleasePerKeyStore(t *testing.T) {
	ctx := context.Background()
	b, err := NewInMemoryKeyedBackend(BTreeStore)
	require.NoError(t, err)
	st, err := b.RowMapState("right")
	require.NoError(t, err)

	b.SetCurrentKey("a")
	require.NoError(t, st.Put(ctx, commtypes.Row{"x"}, commtypes.MultiplicityEntry{Count: 1}))
	b.SetCurrentKey("b")
	require.NoError(t, st.Put(ctx, commtypes.Row{"y"}, commtypes.MultiplicityEntry{Count: 1}))
	assert.Equal(t, 2, b.NumKeys("right"))

	require.NoError(t, st.Clear(ctx))
	assert.Equal(t, 1, b.NumKeys("right"))

	b.SetCurrentKey("a")
	require.NoError(t, st.Delete(ctx, commtypes.Row{"x"}))
	assert.Equal(t, 0, b.NumKeys("right"))
}

func TestTimerStateLifecycle(t *testing.T) {
	ctx := context.Background()
	b, err := NewInMemoryKeyedBackend(SkipmapStore)
	require.NoError(t, err)
	ts, err := b.TimerState("cleanup")
	require.NoError(t, err)

	b.SetCurrentKey("k")
	v, err := ts.Get(ctx)
	require.NoError(t, err)
	assert.True(t, v.IsNone())

	require.NoError(t, ts.Set(ctx, 2000))
	v, err = ts.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), v.Unwrap())

	b.SetCurrentKey("other")
	v, err = ts.Get(ctx)
	require.NoError(t, err)
	assert.True(t, v.IsNone())

	b.SetCurrentKey("k")
	require.NoError(t, ts.Clear(ctx))
	v, err = ts.Get(ctx)
	require.NoError(t, err)
	assert.True(t, v.IsNone())
}

func TestUnknownStoreKind(t *testing.T) {
	_, err := NewInMemoryKeyedBackend(StoreKind(9))
	assert.Error(t, err)
}
