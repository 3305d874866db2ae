package commtypes

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"changelog-join/pkg/common_errors"

	"golang.org/x/xerrors"
)

type FieldType uint8

const (
	Int64Field FieldType = iota
	Float64Field
	StringField
	BoolField
	BytesField
	TimestampField
	// the field types below have no well-defined equality/hash
	ListField
	MapField
	GenericField
)

var fieldTypeNames = map[FieldType]string{
	Int64Field:     "int64",
	Float64Field:   "float64",
	StringField:    "string",
	BoolField:      "bool",
	BytesField:     "bytes",
	TimestampField: "timestamp",
	ListField:      "list",
	MapField:       "map",
	GenericField:   "generic",
}

func (t FieldType) String() string {
	if n, ok := fieldTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("FieldType(%d)", uint8(t))
}

func (t FieldType) Hashable() bool {
	return t <= TimestampField
}

func ParseFieldType(s string) (FieldType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, n := range fieldTypeNames {
		if n == s {
			return t, nil
		}
	}
	return GenericField, xerrors.Errorf("unknown field type %q", s)
}

// RowType describes the fixed arity and field types of the rows on one input.
type RowType struct {
	Names []string
	Types []FieldType
}

func NewRowType(types ...FieldType) RowType {
	names := make([]string, len(types))
	for i := range types {
		names[i] = fmt.Sprintf("f%d", i)
	}
	return RowType{Names: names, Types: types}
}

func (rt RowType) Arity() int {
	return len(rt.Types)
}

func (rt RowType) fieldName(i int) string {
	if i < len(rt.Names) && rt.Names[i] != "" {
		return rt.Names[i]
	}
	return fmt.Sprintf("f%d", i)
}

// ValidateHashable fails if any field lacks a well-defined equality and hash.
func (rt RowType) ValidateHashable() error {
	for i, t := range rt.Types {
		if !t.Hashable() {
			return xerrors.Errorf("field %s of type %s: %w", rt.fieldName(i), t, common_errors.ErrNotHashable)
		}
	}
	return nil
}

// Conforms checks that row has the arity and field value types of rt. A nil
// field value is accepted for every type.
func (rt RowType) Conforms(row Row) error {
	if len(row) != len(rt.Types) {
		return xerrors.Errorf("expected %d fields, got %d: %w", len(rt.Types), len(row), common_errors.ErrRowTypeMismatch)
	}
	for i, v := range row {
		if v == nil {
			continue
		}
		ok := false
		switch rt.Types[i] {
		case Int64Field:
			_, ok = v.(int64)
		case Float64Field:
			_, ok = v.(float64)
		case StringField:
			_, ok = v.(string)
		case BoolField:
			_, ok = v.(bool)
		case BytesField:
			_, ok = v.([]byte)
		case TimestampField:
			_, ok = v.(time.Time)
		}
		if !ok {
			return xerrors.Errorf("field %s expects %s, got %T: %w",
				rt.fieldName(i), rt.Types[i], v, common_errors.ErrRowTypeMismatch)
		}
	}
	return nil
}

// Row is a fixed-arity tuple. Field values are nil, int64, float64, string,
// bool, []byte or time.Time.
type Row []interface{}

// CanonicalKey returns the canonical encoding of the row. Two rows are equal
// iff their keys are equal. It fails with ErrUnsupportedFieldValue if a field
// holds a value outside the types listed on Row.
func (r Row) CanonicalKey() (string, error) {
	b, err := r.MarshalMsg(nil)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Key is CanonicalKey for rows already known to hold supported values, such
// as rows that passed RowType.Conforms. It panics otherwise.
func (r Row) Key() string {
	k, err := r.CanonicalKey()
	if err != nil {
		panic(err)
	}
	return k
}

func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	return r.Key() == other.Key()
}

// Concat returns a new row holding r's fields followed by other's.
func (r Row) Concat(other Row) Row {
	out := make(Row, 0, len(r)+len(other))
	out = append(out, r...)
	return append(out, other...)
}

func (r Row) Project(idx ...int) Row {
	out := make(Row, len(idx))
	for i, j := range idx {
		out[i] = r[j]
	}
	return out
}

func (r Row) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range r {
		if i > 0 {
			sb.WriteString(", ")
		}
		switch x := v.(type) {
		case nil:
			sb.WriteString("null")
		case []byte:
			fmt.Fprintf(&sb, "0x%x", x)
		case time.Time:
			sb.WriteString(x.UTC().Format(time.RFC3339Nano))
		default:
			fmt.Fprintf(&sb, "%v", x)
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

// KeyFromFields builds a join key from the given field positions: the hex
// form of the projection's canonical encoding.
func KeyFromFields(row Row, idx ...int) (string, error) {
	for _, i := range idx {
		if i < 0 || i >= len(row) {
			return "", xerrors.Errorf("key field %d out of range for arity %d: %w",
				i, len(row), common_errors.ErrRowTypeMismatch)
		}
	}
	k, err := row.Project(idx...).CanonicalKey()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString([]byte(k)), nil
}
