package commtypes

import (
	"testing"
	"time"

	"changelog-join/pkg/common_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"
	"golang.org/x/xerrors"
)

func TestRowMsgpSerde(t *testing.T) {
	s := RowMsgpSerdeG{}
	row := Row{int64(-3), 2.5, "abc", true, []byte{0x1, 0x2}, time.Unix(1700000000, 42).UTC(), nil}
	bts, err := s.Encode(row)
	require.NoError(t, err)
	got, err := s.Decode(bts)
	require.NoError(t, err)
	require.Len(t, got, len(row))
	assert.True(t, row.Equal(got))
	assert.Equal(t, int64(-3), got[0])
	assert.Equal(t, "abc", got[2])
	assert.Nil(t, got[6])
}

func TestRowDecodeUnsignedAsInt64(t *testing.T) {
	bts := msgp.AppendArrayHeader(nil, 1)
	bts = msgp.AppendUint64(bts, 7)
	got, err := RowMsgpSerdeG{}.Decode(bts)
	require.NoError(t, err)
	assert.Equal(t, Row{int64(7)}, got)
}

func TestRowEncodeRejectsUnsupportedValue(t *testing.T) {
	_, err := RowMsgpSerdeG{}.Encode(Row{int32(1)})
	assert.True(t, xerrors.Is(err, common_errors.ErrUnsupportedFieldValue))
}

func TestEntrySerdes(t *testing.T) {
	entry := MultiplicityEntry{Count: 3, ExpireAt: 3500}
	for _, format := range []SerdeFormat{JSON, MSGP} {
		s, err := GetEntrySerdeG(format)
		require.NoError(t, err)
		bts, err := s.Encode(entry)
		require.NoError(t, err)
		got, err := s.Decode(bts)
		require.NoError(t, err)
		assert.Equal(t, entry, got, format.String())
	}
	_, err := GetEntrySerdeG(SerdeFormat(9))
	assert.ErrorIs(t, err, common_errors.ErrUnrecognizedSerdeFormat)
}

func TestParseSerdeFormat(t *testing.T) {
	f, err := ParseSerdeFormat("json")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)
	f, err = ParseSerdeFormat("")
	require.NoError(t, err)
	assert.Equal(t, MSGP, f)
	_, err = ParseSerdeFormat("avro")
	assert.True(t, xerrors.Is(err, common_errors.ErrUnrecognizedSerdeFormat))
}

func BenchmarkRowKey(b *testing.B) {
	row := Row{int64(100000), "some-string", 1.5, true}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = row.Key()
	}
}
