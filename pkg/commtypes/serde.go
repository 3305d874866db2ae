package commtypes

import (
	"encoding/json"

	"changelog-join/pkg/common_errors"

	"golang.org/x/xerrors"
)

type SerdeFormat uint8

const (
	JSON SerdeFormat = 0
	MSGP SerdeFormat = 1
)

func (f SerdeFormat) String() string {
	switch f {
	case JSON:
		return "json"
	case MSGP:
		return "msgp"
	default:
		return "unknown"
	}
}

func ParseSerdeFormat(s string) (SerdeFormat, error) {
	switch s {
	case "json", "JSON":
		return JSON, nil
	case "msgp", "MSGP", "":
		return MSGP, nil
	default:
		return 0, xerrors.Errorf("%q: %w", s, common_errors.ErrUnrecognizedSerdeFormat)
	}
}

type EncoderG[V any] interface {
	Encode(v V) ([]byte, error)
}

type DecoderG[V any] interface {
	Decode([]byte) (V, error)
}

type SerdeG[V any] interface {
	EncoderG[V]
	DecoderG[V]
}

type RowMsgpSerdeG struct{}

var _ = SerdeG[Row](RowMsgpSerdeG{})

func (s RowMsgpSerdeG) Encode(value Row) ([]byte, error) {
	return value.MarshalMsg(nil)
}

func (s RowMsgpSerdeG) Decode(value []byte) (Row, error) {
	var r Row
	if _, err := r.UnmarshalMsg(value); err != nil {
		return nil, err
	}
	return r, nil
}

type EntryJSONSerdeG struct{}

var _ = SerdeG[MultiplicityEntry](EntryJSONSerdeG{})

func (s EntryJSONSerdeG) Encode(value MultiplicityEntry) ([]byte, error) {
	return json.Marshal(value)
}

func (s EntryJSONSerdeG) Decode(value []byte) (MultiplicityEntry, error) {
	v := MultiplicityEntry{}
	if err := json.Unmarshal(value, &v); err != nil {
		return MultiplicityEntry{}, err
	}
	return v, nil
}

type EntryMsgpSerdeG struct{}

var _ = SerdeG[MultiplicityEntry](EntryMsgpSerdeG{})

func (s EntryMsgpSerdeG) Encode(value MultiplicityEntry) ([]byte, error) {
	return value.MarshalMsg(nil)
}

func (s EntryMsgpSerdeG) Decode(value []byte) (MultiplicityEntry, error) {
	v := MultiplicityEntry{}
	if _, err := v.UnmarshalMsg(value); err != nil {
		return MultiplicityEntry{}, err
	}
	return v, nil
}

func GetEntrySerdeG(serdeFormat SerdeFormat) (SerdeG[MultiplicityEntry], error) {
	switch serdeFormat {
	case JSON:
		return EntryJSONSerdeG{}, nil
	case MSGP:
		return EntryMsgpSerdeG{}, nil
	default:
		return nil, common_errors.ErrUnrecognizedSerdeFormat
	}
}
