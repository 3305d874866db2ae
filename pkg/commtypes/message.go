package commtypes

import "fmt"

type Side uint8

const (
	LeftSide  Side = 0
	RightSide Side = 1
)

func (s Side) Other() Side {
	if s == LeftSide {
		return RightSide
	}
	return LeftSide
}

func (s Side) String() string {
	if s == LeftSide {
		return "left"
	}
	return "right"
}

// ChangeRecord pairs a row with its change flag. Insert=false retracts one
// prior occurrence of exactly this row.
type ChangeRecord struct {
	Row    Row
	Insert bool
}

func InsertRecord(row Row) ChangeRecord {
	return ChangeRecord{Row: row, Insert: true}
}

func RetractRecord(row Row) ChangeRecord {
	return ChangeRecord{Row: row, Insert: false}
}

func (c ChangeRecord) String() string {
	if c.Insert {
		return "+" + c.Row.String()
	}
	return "-" + c.Row.String()
}

// Message is the unit delivered on one input channel. Key is the equality join
// key of the record, extracted upstream.
type Message struct {
	Key         string
	Value       ChangeRecord
	TimestampMs int64
}

var _ = fmt.Stringer(Message{})

func (m Message) String() string {
	return fmt.Sprintf("Msg: {Key: %q, Value: %v, Ts: %d}", m.Key, m.Value, m.TimestampMs)
}

// NoExpiration marks an entry for which no cleanup deadline was computed.
const NoExpiration int64 = -1

// MultiplicityEntry is the bookkeeping kept per distinct row on one side.
// Count is never stored as <= 0.
type MultiplicityEntry struct {
	Count    int64 `json:"cnt" msg:"cnt"`
	ExpireAt int64 `json:"exp" msg:"exp"`
}

func (e MultiplicityEntry) String() string {
	return fmt.Sprintf("{cnt: %d, exp: %d}", e.Count, e.ExpireAt)
}
