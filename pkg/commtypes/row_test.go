package commtypes

import (
	"math"
	"testing"
	"time"

	"changelog-join/pkg/common_errors"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestRowEquality(t *testing.T) {
	a := Row{int64(1), "a", []byte("x"), nil}
	b := Row{int64(1), "a", []byte("x"), nil}
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())

	assert.False(t, Row{int64(1)}.Equal(Row{float64(1)}))
	assert.False(t, Row{int64(1)}.Equal(Row{int64(1), nil}))
	assert.False(t, Row{"a"}.Equal(Row{"b"}))
}

func TestNaNEqualsItself(t *testing.T) {
	r := Row{math.NaN()}
	assert.True(t, r.Equal(Row{math.NaN()}))
	assert.Equal(t, r.Key(), Row{math.NaN()}.Key())
}

func TestCanonicalKeyRejectsUnsupportedValues(t *testing.T) {
	_, err := Row{int64(1), struct{}{}}.CanonicalKey()
	assert.True(t, xerrors.Is(err, common_errors.ErrUnsupportedFieldValue))
	assert.Panics(t, func() { _ = Row{uint8(1)}.Key() })
}

func TestValidateHashable(t *testing.T) {
	require.NoError(t, NewRowType(Int64Field, Float64Field, StringField, BoolField, BytesField, TimestampField).ValidateHashable())
	for _, ft := range []FieldType{ListField, MapField, GenericField} {
		err := NewRowType(Int64Field, ft).ValidateHashable()
		assert.True(t, xerrors.Is(err, common_errors.ErrNotHashable), ft.String())
	}
}

func TestRowTypeConforms(t *testing.T) {
	rt := NewRowType(Int64Field, StringField, TimestampField)
	assert.NoError(t, rt.Conforms(Row{int64(1), "a", time.Now()}))
	assert.NoError(t, rt.Conforms(Row{nil, nil, nil}))
	assert.True(t, xerrors.Is(rt.Conforms(Row{int64(1), "a"}), common_errors.ErrRowTypeMismatch))
	assert.True(t, xerrors.Is(rt.Conforms(Row{"1", "a", time.Now()}), common_errors.ErrRowTypeMismatch))
}

func TestParseFieldType(t *testing.T) {
	ft, err := ParseFieldType(" Int64 ")
	require.NoError(t, err)
	assert.Equal(t, Int64Field, ft)
	ft, err = ParseFieldType("timestamp")
	require.NoError(t, err)
	assert.Equal(t, TimestampField, ft)
	_, err = ParseFieldType("decimal")
	assert.Error(t, err)
}

func TestRowConcatAndKeyFromFields(t *testing.T) {
	l := Row{int64(1), "a"}
	r := Row{int64(2)}
	c := l.Concat(r)
	assert.True(t, c.Equal(Row{int64(1), "a", int64(2)}))
	assert.Len(t, l, 2)
	k, err := KeyFromFields(c, 1)
	require.NoError(t, err)
	other, err := KeyFromFields(Row{"a", int64(9)}, 0)
	require.NoError(t, err)
	assert.Equal(t, other, k)
	_, err = KeyFromFields(c, 3)
	assert.True(t, xerrors.Is(err, common_errors.ErrRowTypeMismatch))
	assert.Equal(t, "(1, a, 2)", c.String())
}

func TestChangeToRecords(t *testing.T) {
	oldRow := Row{int64(1)}
	newRow := Row{int64(2)}
	recs := ChangeToRecords(NewChangeG(newRow, oldRow))
	require.Len(t, recs, 2)
	assert.Equal(t, RetractRecord(oldRow), recs[0])
	assert.Equal(t, InsertRecord(newRow), recs[1])

	recs = ChangeToRecords(NewChangeOnlyNewValG(newRow))
	assert.Equal(t, []ChangeRecord{InsertRecord(newRow)}, recs)
	recs = ChangeToRecords(NewChangeOnlyOldValG(oldRow))
	assert.Equal(t, []ChangeRecord{RetractRecord(oldRow)}, recs)
	assert.Empty(t, ChangeToRecords(ChangeG[Row]{NewVal: optional.None[Row](), OldVal: optional.None[Row]()}))
}

func TestSideOther(t *testing.T) {
	assert.Equal(t, RightSide, LeftSide.Other())
	assert.Equal(t, LeftSide, RightSide.Other())
}
