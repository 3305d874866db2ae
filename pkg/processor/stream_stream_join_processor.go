package processor

import (
	"context"
	"os"

	"changelog-join/pkg/commtypes"
	"changelog-join/pkg/common_errors"
	"changelog-join/pkg/debug"
	"changelog-join/pkg/state"
	"changelog-join/pkg/stats"
	"changelog-join/pkg/timer"

	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

type JoinPhase uint8

const (
	Initializing JoinPhase = iota
	Ready
)

func (p JoinPhase) String() string {
	if p == Ready {
		return "ready"
	}
	return "initializing"
}

type StreamStreamJoinConfig struct {
	Name      string
	LeftType  commtypes.RowType
	RightType commtypes.RowType
	Retention RetentionConfig
	Predicate PredicateSource
	// Strategy defaults to InnerJoinStrategy.
	Strategy MatchStrategy
}

// StreamStreamJoinProcessor joins two changelog streams without windows. Both
// inputs and the cleanup timers of a key must be delivered from one goroutine.
type StreamStreamJoinProcessor struct {
	name      string
	rowTypes  [2]commtypes.RowType
	retention RetentionConfig
	source    PredicateSource
	registry  *PredicateRegistry
	strategy  MatchStrategy
	backend   state.KeyedStateBackend
	timers    timer.TimerService
	metrics   *stats.JoinStats

	predicate *PredicateHandle
	stores    [2]*RowMultiplicityStore
	joinFuncs [2]SideJoinFunc
	scheduler *CleanupScheduler
	phase     JoinPhase
}

// NewStreamStreamJoinProcessor validates the configuration. It touches
// neither the backend nor the timer service, so a rejected configuration
// leaves no state behind.
func NewStreamStreamJoinProcessor(cfg StreamStreamJoinConfig, registry *PredicateRegistry,
	backend state.KeyedStateBackend, timers timer.TimerService,
) (*StreamStreamJoinProcessor, error) {
	if err := cfg.LeftType.ValidateHashable(); err != nil {
		return nil, &common_errors.ValidationError{Subject: "left row type", Err: err}
	}
	if err := cfg.RightType.ValidateHashable(); err != nil {
		return nil, &common_errors.ValidationError{Subject: "right row type", Err: err}
	}
	if _, err := NewRetentionConfig(cfg.Retention.MinRetention, cfg.Retention.MaxRetention); err != nil {
		return nil, &common_errors.ValidationError{Subject: "retention", Err: err}
	}
	strategy := cfg.Strategy
	if strategy == nil {
		strategy = InnerJoinStrategy{}
	}
	if registry == nil {
		registry = NewPredicateRegistry()
	}
	return &StreamStreamJoinProcessor{
		name:      cfg.Name,
		rowTypes:  [2]commtypes.RowType{cfg.LeftType, cfg.RightType},
		retention: cfg.Retention,
		source:    cfg.Predicate,
		registry:  registry,
		strategy:  strategy,
		backend:   backend,
		timers:    timers,
		metrics:   stats.NewJoinStats(),
		phase:     Initializing,
	}, nil
}

func (p *StreamStreamJoinProcessor) Name() string {
	return p.name
}

func (p *StreamStreamJoinProcessor) Phase() JoinPhase {
	return p.phase
}

func (p *StreamStreamJoinProcessor) Stats() *stats.JoinStats {
	return p.metrics
}

func (p *StreamStreamJoinProcessor) Retention() RetentionConfig {
	return p.retention
}

// Store exposes one side's multiplicity store, scoped to the backend's
// current key.
func (p *StreamStreamJoinProcessor) Store(side commtypes.Side) *RowMultiplicityStore {
	return p.stores[side]
}

// Open loads the predicate and binds the side stores and timer state.
// Failures are fatal for this instance.
func (p *StreamStreamJoinProcessor) Open(ctx context.Context) error {
	if p.phase != Initializing {
		return xerrors.Errorf("open %s in phase %v: %w", p.name, p.phase, common_errors.ErrInvalidStateTransition)
	}
	handle, err := p.registry.Load(p.source, p.rowTypes[commtypes.LeftSide], p.rowTypes[commtypes.RightSide])
	if err != nil {
		return err
	}
	left, err := p.backend.RowMapState(p.name + "-left")
	if err != nil {
		return &common_errors.InitializationError{Component: "left store", Err: err}
	}
	right, err := p.backend.RowMapState(p.name + "-right")
	if err != nil {
		return &common_errors.InitializationError{Component: "right store", Err: err}
	}
	timerState, err := p.backend.TimerState(p.name + "-cleanup")
	if err != nil {
		return &common_errors.InitializationError{Component: "cleanup timer state", Err: err}
	}
	p.predicate = handle
	p.stores = [2]*RowMultiplicityStore{
		NewRowMultiplicityStore(commtypes.LeftSide, left),
		NewRowMultiplicityStore(commtypes.RightSide, right),
	}
	p.joinFuncs = [2]SideJoinFunc{
		CanonicalJoinFunc(handle, commtypes.LeftSide),
		CanonicalJoinFunc(handle, commtypes.RightSide),
	}
	p.scheduler = NewCleanupScheduler(p.retention, timerState, p.timers, p.stores[0], p.stores[1], p.metrics)
	p.phase = Ready
	log.Info().Str("join", p.name).Str("predicate", handle.Name()).
		Bool("cleanup", p.retention.CleanupEnabled()).Msg("join processor ready")
	return nil
}

func (p *StreamStreamJoinProcessor) ProcessLeft(ctx context.Context, msg commtypes.Message, out Collector) error {
	return p.Process(ctx, commtypes.LeftSide, msg, out)
}

func (p *StreamStreamJoinProcessor) ProcessRight(ctx context.Context, msg commtypes.Message, out Collector) error {
	return p.Process(ctx, commtypes.RightSide, msg, out)
}

// Process updates side's store with the record, keeps the cleanup timer of
// the key current and lets the match strategy probe the other side.
func (p *StreamStreamJoinProcessor) Process(ctx context.Context, side commtypes.Side,
	msg commtypes.Message, out Collector,
) error {
	if p.phase != Ready {
		return common_errors.ErrNotReady
	}
	rec := msg.Value
	if rec.Row == nil {
		log.Warn().Msgf("skipping record due to null row. key=%q, side=%v", msg.Key, side)
		return nil
	}
	if err := p.rowTypes[side].Conforms(rec.Row); err != nil {
		return &common_errors.ProcessingError{Key: msg.Key, Err: xerrors.Errorf("%v input: %w", side, err)}
	}
	if side == commtypes.LeftSide {
		p.metrics.LeftRecords.Tick(1)
	} else {
		p.metrics.RightRecords.Tick(1)
	}

	p.backend.SetCurrentKey(msg.Key)
	now := p.timers.CurrentProcessingTime()
	entry, err := p.stores[side].ApplyChange(ctx, rec.Row, rec.Insert, now, p.retention)
	if err != nil {
		return &common_errors.ProcessingError{Key: msg.Key, Err: err}
	}
	debug.Fprintf(os.Stderr, "%s %v %v -> %v\n", p.name, side, rec, entry)
	if err := p.scheduler.ProcessCleanupTimer(ctx, msg.Key, entry.ExpireAt); err != nil {
		return &common_errors.ProcessingError{Key: msg.Key, Err: err}
	}

	in := MatchInput{
		Key:         msg.Key,
		Side:        side,
		Record:      rec,
		TimestampMs: msg.TimestampMs,
		Current:     entry,
		Other:       p.stores[side.Other()],
		Join:        p.joinFuncs[side],
	}
	counted := CollectorFunc(func(ctx context.Context, m commtypes.Message) error {
		p.metrics.EmittedRows.Tick(1)
		return out.Collect(ctx, m)
	})
	if err := p.strategy.Match(ctx, in, counted); err != nil {
		return &common_errors.ProcessingError{Key: msg.Key, Err: err}
	}
	return nil
}

// OnTimer handles a cleanup timer of key. It produces no output.
func (p *StreamStreamJoinProcessor) OnTimer(ctx context.Context, key string, ts int64) error {
	if p.phase != Ready {
		return common_errors.ErrNotReady
	}
	p.backend.SetCurrentKey(key)
	return p.scheduler.OnCleanupFire(ctx, key, ts)
}

// SideProcessor feeds one input channel into the join.
type SideProcessor struct {
	join *StreamStreamJoinProcessor
	name string
	side commtypes.Side
}

var _ = Processor(&SideProcessor{})

func (p *StreamStreamJoinProcessor) SideProcessor(side commtypes.Side) *SideProcessor {
	return &SideProcessor{
		join: p,
		name: p.name + "-" + side.String(),
		side: side,
	}
}

func (sp *SideProcessor) Name() string {
	return sp.name
}

func (sp *SideProcessor) ProcessAndReturn(ctx context.Context, msg commtypes.Message) ([]commtypes.Message, error) {
	var out SliceCollector
	err := sp.join.Process(ctx, sp.side, msg, &out)
	return out.Msgs, err
}
