package stats

import (
	"time"

	"changelog-join/pkg/utils/syncutils"

	"github.com/rs/zerolog/log"
)

// ConcurrentThroughputCounter logs the observed rate at most once per report
// interval.
type ConcurrentThroughputCounter struct {
	mu           syncutils.Mutex
	tag          string
	count        uint64
	last_count   uint64
	report_timer ReportTimer
}

func NewConcurrentThroughputCounter(tag string, duration time.Duration) *ConcurrentThroughputCounter {
	return &ConcurrentThroughputCounter{
		tag:          tag,
		count:        0,
		last_count:   0,
		report_timer: NewReportTimer(duration),
	}
}

func (c *ConcurrentThroughputCounter) Tick(count uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count += count
	duration, due := c.report_timer.Due()
	if c.count > c.last_count && due && duration > 0 {
		tp := float64(c.count-c.last_count) / duration.Seconds()
		c.last_count = c.count
		log.Info().Str("counter", c.tag).Dur("dur", duration).Uint64("value", c.count).
			Float64("rate", tp).Msg("throughput")
	}
}

func (c *ConcurrentThroughputCounter) GetCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
