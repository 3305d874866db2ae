package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReportTimerDue(t *testing.T) {
	now := time.Unix(100, 0)
	rt := NewReportTimer(time.Second)
	rt.now = func() time.Time { return now }

	_, due := rt.Due()
	assert.False(t, due)
	now = now.Add(500 * time.Millisecond)
	_, due = rt.Due()
	assert.False(t, due)
	now = now.Add(600 * time.Millisecond)
	elapsed, due := rt.Due()
	assert.True(t, due)
	assert.Equal(t, 1100*time.Millisecond, elapsed)
	_, due = rt.Due()
	assert.False(t, due)
}

func TestThroughputCounterCounts(t *testing.T) {
	c := NewConcurrentThroughputCounter("out", time.Hour)
	c.Tick(3)
	c.Tick(2)
	assert.Equal(t, uint64(5), c.GetCount())
}
