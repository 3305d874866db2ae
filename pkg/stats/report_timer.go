package stats

import (
	"time"
)

// ReportTimer paces periodic log reports. The first call to Due starts the
// interval.
type ReportTimer struct {
	now      func() time.Time
	lastTs   time.Time
	interval time.Duration
}

func NewReportTimer(interval time.Duration) ReportTimer {
	return ReportTimer{
		now:      time.Now,
		interval: interval,
	}
}

// Due returns the time since the previous report and true once interval has
// passed; the interval then restarts.
func (r *ReportTimer) Due() (time.Duration, bool) {
	now := r.now()
	if r.lastTs.IsZero() {
		r.lastTs = now
	}
	elapsed := now.Sub(r.lastTs)
	if elapsed < r.interval {
		return elapsed, false
	}
	r.lastTs = now
	return elapsed, true
}
