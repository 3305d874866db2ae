package store

import (
	"context"
	"testing"
)

func checkMapEqual(t testing.TB, expected map[int]string, got map[int]string) {
	if len(expected) != len(got) {
		t.Fatalf("expected and got have different length, expected. expected: %v, got: %v", expected, got)
	}
	for k, v := range expected {
		vgot := got[k]
		if vgot != v {
			t.Fatalf("k: %d, expected: %s, got: %s", k, v, vgot)
		}
	}
}

func checkErr(err error, t testing.TB) {
	if err != nil {
		t.Fatal(err.Error())
	}
}

func collect(ctx context.Context, store KeyValueStoreG[int, string], t testing.TB) map[int]string {
	ret := make(map[int]string)
	err := store.Range(ctx, func(kt int, vt string) error {
		ret[kt] = vt
		return nil
	})
	checkErr(err, t)
	return ret
}

func ShouldNotIncludeDeletedFromRangeResult(ctx context.Context, store KeyValueStoreG[int, string], t testing.TB) {
	checkErr(store.Put(ctx, 0, "zero"), t)
	checkErr(store.Put(ctx, 1, "one"), t)
	checkErr(store.Put(ctx, 2, "two"), t)
	checkErr(store.Delete(ctx, 0), t)
	checkErr(store.Delete(ctx, 1), t)

	expected := make(map[int]string)
	expected[2] = "two"

	val2, ok, err := store.Get(ctx, 2)
	if err != nil {
		t.Fatalf("fail to get 2: %v", err)
	}
	if !ok {
		t.Fatal("2 should be in the map")
	}
	if val2 != "two" {
		t.Fatalf("expected two, got %s", val2)
	}
	checkMapEqual(t, expected, collect(ctx, store, t))
}

func ShouldReportMissingKeyAsAbsent(ctx context.Context, store KeyValueStoreG[int, string], t testing.TB) {
	v, ok, err := store.Get(ctx, 42)
	checkErr(err, t)
	if ok {
		t.Fatalf("42 should not be in the map, got %s", v)
	}
	checkErr(store.Delete(ctx, 42), t)
}

func ShouldOverwriteExistingValue(ctx context.Context, store KeyValueStoreG[int, string], t testing.TB) {
	checkErr(store.Put(ctx, 7, "seven"), t)
	checkErr(store.Put(ctx, 7, "SEVEN"), t)
	v, ok, err := store.Get(ctx, 7)
	checkErr(err, t)
	if !ok || v != "SEVEN" {
		t.Fatalf("expected SEVEN, got %s (present=%v)", v, ok)
	}
	n, err := store.ApproximateNumEntries(ctx)
	checkErr(err, t)
	if n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}
}

func ShouldClearAllEntries(ctx context.Context, store KeyValueStoreG[int, string], t testing.TB) {
	for i := 0; i < 10; i++ {
		checkErr(store.Put(ctx, i, "v"), t)
	}
	checkErr(store.Clear(ctx), t)
	n, err := store.ApproximateNumEntries(ctx)
	checkErr(err, t)
	if n != 0 {
		t.Fatalf("expected empty store after clear, got %d entries", n)
	}
	checkMapEqual(t, map[int]string{}, collect(ctx, store, t))
	checkErr(store.Put(ctx, 3, "three"), t)
	checkMapEqual(t, map[int]string{3: "three"}, collect(ctx, store, t))
}

func ShouldStopRangeOnError(ctx context.Context, store KeyValueStoreG[int, string], t testing.TB) {
	checkErr(store.Put(ctx, 0, "zero"), t)
	checkErr(store.Put(ctx, 1, "one"), t)
	stop := errStopRange{}
	visited := 0
	err := store.Range(ctx, func(int, string) error {
		visited++
		return stop
	})
	if err != stop {
		t.Fatalf("expected range to return the iterator error, got %v", err)
	}
	if visited != 1 {
		t.Fatalf("expected range to stop after one entry, visited %d", visited)
	}
}

type errStopRange struct{}

func (errStopRange) Error() string { return "stop range" }
