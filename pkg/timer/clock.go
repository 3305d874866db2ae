package timer

import (
	"sync/atomic"
	"time"
)

// Clock supplies processing time in milliseconds.
type Clock interface {
	NowMs() int64
}

type SystemClock struct{}

func (SystemClock) NowMs() int64 {
	return time.Now().UnixMilli()
}

// ManualClock only moves when told to. It may be moved from another
// goroutine than the one reading it.
type ManualClock struct {
	now int64
}

func NewManualClock(start int64) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) NowMs() int64 {
	return atomic.LoadInt64(&c.now)
}

func (c *ManualClock) Set(ts int64) {
	atomic.StoreInt64(&c.now, ts)
}

func (c *ManualClock) Advance(d time.Duration) {
	atomic.AddInt64(&c.now, d.Milliseconds())
}
