package timer

import (
	"context"

	"github.com/google/btree"
	"github.com/rs/zerolog/log"
)

// TimerService is what an operator needs from the host: the current
// processing time and per-key timer registration. Registering again for a key
// replaces the previous target.
type TimerService interface {
	CurrentProcessingTime() int64
	RegisterProcessingTimeTimer(key string, atMs int64)
}

type FireFunc func(ctx context.Context, key string, ts int64) error

type timerItem struct {
	fireAt int64
	key    string
}

func timerItemLess(a, b timerItem) bool {
	if a.fireAt != b.fireAt {
		return a.fireAt < b.fireAt
	}
	return a.key < b.key
}

// ProcessingTimeService keeps at most one pending timer per key, ordered by
// fire time. It is driven by the goroutine that owns the operator.
type ProcessingTimeService struct {
	clock Clock
	queue *btree.BTreeG[timerItem]
	byKey map[string]int64
}

var _ = TimerService(&ProcessingTimeService{})

func NewProcessingTimeService(clock Clock) *ProcessingTimeService {
	return &ProcessingTimeService{
		clock: clock,
		queue: btree.NewG(8, btree.LessFunc[timerItem](timerItemLess)),
		byKey: make(map[string]int64),
	}
}

func (s *ProcessingTimeService) CurrentProcessingTime() int64 {
	return s.clock.NowMs()
}

func (s *ProcessingTimeService) RegisterProcessingTimeTimer(key string, atMs int64) {
	if old, ok := s.byKey[key]; ok {
		if old == atMs {
			return
		}
		s.queue.Delete(timerItem{fireAt: old, key: key})
	}
	s.byKey[key] = atMs
	s.queue.ReplaceOrInsert(timerItem{fireAt: atMs, key: key})
	log.Debug().Str("key", key).Int64("fireAt", atMs).Msg("registered processing time timer")
}

// FireDue invokes fn for every timer due at the current processing time, in
// fire time order. A timer is removed before its callback runs, so each
// registration fires at most once. The first callback error stops the sweep.
func (s *ProcessingTimeService) FireDue(ctx context.Context, fn FireFunc) (int, error) {
	now := s.clock.NowMs()
	fired := 0
	for {
		item, ok := s.queue.Min()
		if !ok || item.fireAt > now {
			return fired, nil
		}
		s.queue.Delete(item)
		delete(s.byKey, item.key)
		fired++
		if err := fn(ctx, item.key, item.fireAt); err != nil {
			return fired, err
		}
	}
}

func (s *ProcessingTimeService) NextFireTime() (int64, bool) {
	item, ok := s.queue.Min()
	return item.fireAt, ok
}

func (s *ProcessingTimeService) PendingFor(key string) (int64, bool) {
	ts, ok := s.byKey[key]
	return ts, ok
}

func (s *ProcessingTimeService) Pending() int {
	return s.queue.Len()
}
