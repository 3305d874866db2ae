package commtypes

import (
	"time"

	"changelog-join/pkg/common_errors"

	"github.com/tinylib/msgp/msgp"
	"golang.org/x/xerrors"
)

// MarshalMsg implements msgp.Marshaler. Every value type maps to exactly one
// msgpack encoding so the output is canonical.
func (r Row) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, r.Msgsize())
	o = msgp.AppendArrayHeader(o, uint32(len(r)))
	for i, v := range r {
		switch x := v.(type) {
		case nil:
			o = msgp.AppendNil(o)
		case int64:
			o = msgp.AppendInt64(o, x)
		case float64:
			o = msgp.AppendFloat64(o, x)
		case string:
			o = msgp.AppendString(o, x)
		case bool:
			o = msgp.AppendBool(o, x)
		case []byte:
			o = msgp.AppendBytes(o, x)
		case time.Time:
			o = msgp.AppendTime(o, x)
		default:
			err = xerrors.Errorf("field %d has type %T: %w", i, v, common_errors.ErrUnsupportedFieldValue)
			return
		}
	}
	return
}

// UnmarshalMsg implements msgp.Unmarshaler.
func (r *Row) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var sz uint32
	sz, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		err = msgp.WrapError(err)
		return
	}
	row := make(Row, sz)
	for i := range row {
		switch msgp.NextType(bts) {
		case msgp.NilType:
			bts, err = msgp.ReadNilBytes(bts)
		case msgp.IntType:
			var v int64
			v, bts, err = msgp.ReadInt64Bytes(bts)
			row[i] = v
		case msgp.UintType:
			var v uint64
			v, bts, err = msgp.ReadUint64Bytes(bts)
			row[i] = int64(v)
		case msgp.Float64Type, msgp.Float32Type:
			var v float64
			v, bts, err = msgp.ReadFloat64Bytes(bts)
			row[i] = v
		case msgp.StrType:
			var v string
			v, bts, err = msgp.ReadStringBytes(bts)
			row[i] = v
		case msgp.BoolType:
			var v bool
			v, bts, err = msgp.ReadBoolBytes(bts)
			row[i] = v
		case msgp.BinType:
			var v []byte
			v, bts, err = msgp.ReadBytesBytes(bts, nil)
			row[i] = v
		case msgp.TimeType:
			var v time.Time
			v, bts, err = msgp.ReadTimeBytes(bts)
			row[i] = v
		default:
			err = xerrors.Errorf("field %d: %w", i, common_errors.ErrUnsupportedFieldValue)
		}
		if err != nil {
			err = msgp.WrapError(err, i)
			return
		}
	}
	*r = row
	o = bts
	return
}

// Msgsize returns an upper bound estimate of the number of bytes occupied by the serialized message
func (r Row) Msgsize() (s int) {
	s = msgp.ArrayHeaderSize
	for _, v := range r {
		switch x := v.(type) {
		case int64:
			s += msgp.Int64Size
		case float64:
			s += msgp.Float64Size
		case string:
			s += msgp.StringPrefixSize + len(x)
		case bool:
			s += msgp.BoolSize
		case []byte:
			s += msgp.BytesPrefixSize + len(x)
		case time.Time:
			s += msgp.TimeSize
		default:
			s += msgp.NilSize
		}
	}
	return
}

// MarshalMsg implements msgp.Marshaler
func (z MultiplicityEntry) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	// map header, size 2
	// string "cnt"
	o = append(o, 0x82, 0xa3, 0x63, 0x6e, 0x74)
	o = msgp.AppendInt64(o, z.Count)
	// string "exp"
	o = append(o, 0xa3, 0x65, 0x78, 0x70)
	o = msgp.AppendInt64(o, z.ExpireAt)
	return
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *MultiplicityEntry) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var field []byte
	_ = field
	var zb0001 uint32
	zb0001, bts, err = msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		err = msgp.WrapError(err)
		return
	}
	for zb0001 > 0 {
		zb0001--
		field, bts, err = msgp.ReadMapKeyZC(bts)
		if err != nil {
			err = msgp.WrapError(err)
			return
		}
		switch msgp.UnsafeString(field) {
		case "cnt":
			z.Count, bts, err = msgp.ReadInt64Bytes(bts)
			if err != nil {
				err = msgp.WrapError(err, "Count")
				return
			}
		case "exp":
			z.ExpireAt, bts, err = msgp.ReadInt64Bytes(bts)
			if err != nil {
				err = msgp.WrapError(err, "ExpireAt")
				return
			}
		default:
			bts, err = msgp.Skip(bts)
			if err != nil {
				err = msgp.WrapError(err)
				return
			}
		}
	}
	o = bts
	return
}

// Msgsize returns an upper bound estimate of the number of bytes occupied by the serialized message
func (z MultiplicityEntry) Msgsize() (s int) {
	s = 1 + 4 + msgp.Int64Size + 4 + msgp.Int64Size
	return
}
