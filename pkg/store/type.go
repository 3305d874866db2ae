package store

type TABLE_TYPE uint8

const (
	IN_MEM TABLE_TYPE = 0
	REDIS  TABLE_TYPE = 1
)

func (t TABLE_TYPE) String() string {
	switch t {
	case IN_MEM:
		return "in_mem"
	case REDIS:
		return "redis"
	default:
		return "unknown"
	}
}
