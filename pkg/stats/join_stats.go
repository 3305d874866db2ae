package stats

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// JoinStats counts the work done by one join instance.
type JoinStats struct {
	LeftRecords        AtomicCounter
	RightRecords       AtomicCounter
	EmittedRows        AtomicCounter
	TimerRegistrations AtomicCounter
	CleanupFirings     AtomicCounter
	StoreClears        AtomicCounter
}

func NewJoinStats() *JoinStats {
	return &JoinStats{
		LeftRecords:        NewAtomicCounter("left_records"),
		RightRecords:       NewAtomicCounter("right_records"),
		EmittedRows:        NewAtomicCounter("emitted_rows"),
		TimerRegistrations: NewAtomicCounter("timer_registrations"),
		CleanupFirings:     NewAtomicCounter("cleanup_firings"),
		StoreClears:        NewAtomicCounter("store_clears"),
	}
}

func (s *JoinStats) counters() []*AtomicCounter {
	return []*AtomicCounter{&s.LeftRecords, &s.RightRecords, &s.EmittedRows,
		&s.TimerRegistrations, &s.CleanupFirings, &s.StoreClears}
}

// Merge adds the counts of other into s.
func (s *JoinStats) Merge(other *JoinStats) {
	mine := s.counters()
	for i, c := range other.counters() {
		mine[i].Tick(c.GetCount())
	}
}

func (s *JoinStats) Report(name string) {
	ev := log.Info().Str("join", name)
	s.addFields(ev)
	ev.Msg("join stats")
}

func (s *JoinStats) addFields(ev *zerolog.Event) {
	for _, c := range s.counters() {
		ev.Uint64(c.Tag(), c.GetCount())
	}
}
