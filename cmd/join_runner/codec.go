package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"time"

	"changelog-join/pkg/commtypes"
	"changelog-join/pkg/common_errors"
	"changelog-join/pkg/execution"

	"github.com/Jeffail/gabs/v2"
	"golang.org/x/xerrors"
)

// lineDecoder turns JSON lines such as
//
//	{"side":"left","key":"k","insert":true,"row":[1,"a"],"ts":0}
//	{"side":"right","old":[1,"a"],"new":[1,"b"]}
//
// into join inputs, coercing field values to the row type of the side. An
// update line expands into the retraction of old followed by the insertion of
// new. Without "key" the key is derived from the side's key fields.
type lineDecoder struct {
	rowTypes  [2]commtypes.RowType
	keyFields [2][]int
}

func newLineDecoder(rowTypes [2]commtypes.RowType, keyFields [2][]int) (*lineDecoder, error) {
	for side, idx := range keyFields {
		for _, i := range idx {
			if i >= rowTypes[side].Arity() {
				return nil, &common_errors.ValidationError{
					Subject: commtypes.Side(side).String() + " key fields",
					Err: xerrors.Errorf("field %d out of range for arity %d: %w",
						i, rowTypes[side].Arity(), common_errors.ErrRowTypeMismatch),
				}
			}
		}
	}
	return &lineDecoder{rowTypes: rowTypes, keyFields: keyFields}, nil
}

func (d *lineDecoder) Decode(line []byte) ([]execution.Input, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	jsonParsed, err := gabs.ParseJSONDecoder(dec)
	if err != nil {
		return nil, err
	}
	var side commtypes.Side
	switch s, _ := jsonParsed.S("side").Data().(string); s {
	case "left", "l":
		side = commtypes.LeftSide
	case "right", "r":
		side = commtypes.RightSide
	default:
		return nil, xerrors.Errorf("unknown side %q", s)
	}
	var key string
	hasKey := jsonParsed.Exists("key")
	if hasKey {
		var ok bool
		if key, ok = jsonParsed.S("key").Data().(string); !ok {
			return nil, xerrors.New("key must be a string")
		}
	} else if len(d.keyFields[side]) == 0 {
		return nil, xerrors.New("missing key and no key fields configured")
	}
	var ts int64
	if jsonParsed.Exists("ts") {
		if ts, err = toInt64(jsonParsed.S("ts").Data()); err != nil {
			return nil, xerrors.Errorf("ts: %w", err)
		}
	}

	var records []commtypes.ChangeRecord
	switch {
	case jsonParsed.Exists("row"):
		row, err := d.decodeRow(jsonParsed.S("row"), side)
		if err != nil {
			return nil, err
		}
		insert := true
		if jsonParsed.Exists("insert") {
			var ok bool
			if insert, ok = jsonParsed.S("insert").Data().(bool); !ok {
				return nil, xerrors.New("insert must be a bool")
			}
		}
		records = []commtypes.ChangeRecord{{Row: row, Insert: insert}}
	case jsonParsed.Exists("old") || jsonParsed.Exists("new"):
		change, err := d.decodeChange(jsonParsed, side)
		if err != nil {
			return nil, err
		}
		records = commtypes.ChangeToRecords(change)
	default:
		return nil, xerrors.New(`line carries neither "row" nor "old"/"new"`)
	}

	inputs := make([]execution.Input, 0, len(records))
	for _, rec := range records {
		k := key
		if !hasKey {
			if k, err = commtypes.KeyFromFields(rec.Row, d.keyFields[side]...); err != nil {
				return nil, err
			}
		}
		inputs = append(inputs, execution.Input{
			Side: side,
			Msg:  commtypes.Message{Key: k, Value: rec, TimestampMs: ts},
		})
	}
	return inputs, nil
}

func (d *lineDecoder) decodeChange(jsonParsed *gabs.Container, side commtypes.Side) (commtypes.ChangeG[commtypes.Row], error) {
	var oldRow, newRow commtypes.Row
	var err error
	if jsonParsed.Exists("old") {
		if oldRow, err = d.decodeRow(jsonParsed.S("old"), side); err != nil {
			return commtypes.ChangeG[commtypes.Row]{}, xerrors.Errorf("old: %w", err)
		}
	}
	if jsonParsed.Exists("new") {
		if newRow, err = d.decodeRow(jsonParsed.S("new"), side); err != nil {
			return commtypes.ChangeG[commtypes.Row]{}, xerrors.Errorf("new: %w", err)
		}
	}
	switch {
	case oldRow != nil && newRow != nil:
		return commtypes.NewChangeG(newRow, oldRow), nil
	case newRow != nil:
		return commtypes.NewChangeOnlyNewValG(newRow), nil
	default:
		return commtypes.NewChangeOnlyOldValG(oldRow), nil
	}
}

func (d *lineDecoder) decodeRow(c *gabs.Container, side commtypes.Side) (commtypes.Row, error) {
	fields, ok := c.Data().([]interface{})
	rt := d.rowTypes[side]
	if !ok || len(fields) != rt.Arity() {
		return nil, xerrors.Errorf("expected an array of %d fields: %w", rt.Arity(), common_errors.ErrRowTypeMismatch)
	}
	row := make(commtypes.Row, len(fields))
	for i, f := range fields {
		v, err := coerce(f, rt.Types[i])
		if err != nil {
			return nil, xerrors.Errorf("field %d: %w", i, err)
		}
		row[i] = v
	}
	return row, nil
}

func toInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case json.Number:
		return x.Int64()
	case float64:
		return int64(x), nil
	default:
		return 0, xerrors.Errorf("expected a number, got %T", v)
	}
}

func coerce(v interface{}, ft commtypes.FieldType) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch ft {
	case commtypes.Int64Field:
		return toInt64(v)
	case commtypes.Float64Field:
		if n, ok := v.(json.Number); ok {
			return n.Float64()
		}
	case commtypes.StringField:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case commtypes.BoolField:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case commtypes.BytesField:
		if s, ok := v.(string); ok {
			return base64.StdEncoding.DecodeString(s)
		}
	case commtypes.TimestampField:
		switch x := v.(type) {
		case string:
			return time.Parse(time.RFC3339Nano, x)
		case json.Number:
			ms, err := x.Int64()
			if err != nil {
				return nil, err
			}
			return time.UnixMilli(ms).UTC(), nil
		}
	}
	return nil, xerrors.Errorf("cannot use %T as %v", v, ft)
}

func encodeOutput(partition uint32, msg commtypes.Message) (string, error) {
	out := gabs.New()
	fields := make([]interface{}, len(msg.Value.Row))
	for i, v := range msg.Value.Row {
		switch x := v.(type) {
		case []byte:
			fields[i] = base64.StdEncoding.EncodeToString(x)
		case time.Time:
			fields[i] = x.UTC().Format(time.RFC3339Nano)
		default:
			fields[i] = x
		}
	}
	for path, v := range map[string]interface{}{
		"key":       msg.Key,
		"insert":    msg.Value.Insert,
		"row":       fields,
		"ts":        msg.TimestampMs,
		"partition": partition,
	} {
		if _, err := out.Set(v, path); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}
