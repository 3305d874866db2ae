package processor

import (
	"context"

	"changelog-join/pkg/common_errors"
	"changelog-join/pkg/state"
	"changelog-join/pkg/stats"
	"changelog-join/pkg/timer"

	"github.com/rs/zerolog/log"
)

// CleanupScheduler keeps one processing-time timer per join key. The timer is
// only moved when the retention policy pushes an entry's deadline past it.
// When it fires both side stores of the key are cleared in full.
type CleanupScheduler struct {
	retention  RetentionConfig
	timerState state.TimerState
	timers     timer.TimerService
	stores     [2]*RowMultiplicityStore
	metrics    *stats.JoinStats
}

func NewCleanupScheduler(retention RetentionConfig, timerState state.TimerState, timers timer.TimerService,
	left, right *RowMultiplicityStore, metrics *stats.JoinStats,
) *CleanupScheduler {
	return &CleanupScheduler{
		retention:  retention,
		timerState: timerState,
		timers:     timers,
		stores:     [2]*RowMultiplicityStore{left, right},
		metrics:    metrics,
	}
}

// ProcessCleanupTimer registers a timer at expireAt when none is pending for
// key, or moves the pending one when expireAt is later.
func (c *CleanupScheduler) ProcessCleanupTimer(ctx context.Context, key string, expireAt int64) error {
	if !c.retention.CleanupEnabled() {
		return nil
	}
	pending, err := c.timerState.Get(ctx)
	if err != nil {
		return err
	}
	if pending.IsSome() && expireAt <= pending.Unwrap() {
		return nil
	}
	if err := c.timerState.Set(ctx, expireAt); err != nil {
		return err
	}
	c.timers.RegisterProcessingTimeTimer(key, expireAt)
	c.metrics.TimerRegistrations.Tick(1)
	return nil
}

// OnCleanupFire clears both side stores of key regardless of the deadlines of
// individual rows.
func (c *CleanupScheduler) OnCleanupFire(ctx context.Context, key string, ts int64) error {
	if !c.retention.CleanupEnabled() {
		return &common_errors.PreconditionError{Key: key, Err: common_errors.ErrCleanupDisabled}
	}
	pending, err := c.timerState.Get(ctx)
	if err != nil {
		return err
	}
	if pending.IsNone() {
		return &common_errors.PreconditionError{Key: key, Err: common_errors.ErrNoPendingTimer}
	}
	if ts < pending.Unwrap() {
		log.Debug().Str("key", key).Int64("ts", ts).Int64("pending", pending.Unwrap()).
			Msg("ignoring superseded cleanup timer")
		return nil
	}
	for _, st := range c.stores {
		if err := st.Clear(ctx); err != nil {
			return err
		}
		c.metrics.StoreClears.Tick(1)
	}
	if err := c.timerState.Clear(ctx); err != nil {
		return err
	}
	c.metrics.CleanupFirings.Tick(1)
	log.Debug().Str("key", key).Int64("ts", ts).Msg("cleared join state")
	return nil
}
