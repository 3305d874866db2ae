package stats

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// AtomicCounter may be ticked from the operator goroutine and read from any
// other goroutine.
type AtomicCounter struct {
	tag   string
	count uint64
}

func NewAtomicCounter(tag string) AtomicCounter {
	return AtomicCounter{
		tag:   tag,
		count: 0,
	}
}

func (c *AtomicCounter) Tick(count uint64) {
	atomic.AddUint64(&c.count, count)
}

func (c *AtomicCounter) GetCount() uint64 {
	return atomic.LoadUint64(&c.count)
}

func (c *AtomicCounter) Tag() string {
	return c.tag
}

func (c *AtomicCounter) Report() {
	log.Info().Uint64(c.tag+"_count", c.GetCount()).Msg("counter")
}
