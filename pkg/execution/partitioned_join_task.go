package execution

import (
	"context"
	"fmt"
	"time"

	"changelog-join/pkg/commtypes"
	"changelog-join/pkg/hashfuncs"
	"changelog-join/pkg/processor"
	"changelog-join/pkg/state"
	"changelog-join/pkg/stats"
	"changelog-join/pkg/timer"

	"github.com/gammazero/deque"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

const (
	DEFAULT_BATCH_SIZE = 128
	DEFAULT_CHAN_SIZE  = 1024
	DEFAULT_TIMER_TICK = 100 * time.Millisecond
)

// Input is one record arriving on the left or right channel of the join.
type Input struct {
	Side commtypes.Side
	Msg  commtypes.Message
}

type BackendFactory func(partition uint32) (state.KeyedStateBackend, error)

type PartitionedJoinTaskConfig struct {
	Join        processor.StreamStreamJoinConfig
	Registry    *processor.PredicateRegistry
	Parallelism uint32
	NewBackend  BackendFactory
	// Clock defaults to timer.SystemClock.
	Clock     timer.Clock
	TimerTick time.Duration
	BatchSize int
	ChanSize  int
}

// PartitionedJoinTask runs Parallelism independent join instances. Records
// are routed by join key, so all state of a key lives in exactly one worker.
type PartitionedJoinTask struct {
	workers   []*joinWorker
	sink      *ConcurrentSink
	timerTick time.Duration
}

func NewPartitionedJoinTask(ctx context.Context, cfg PartitionedJoinTaskConfig, sink Sink) (*PartitionedJoinTask, error) {
	if cfg.Parallelism == 0 {
		cfg.Parallelism = 1
	}
	if cfg.Clock == nil {
		cfg.Clock = timer.SystemClock{}
	}
	if cfg.TimerTick <= 0 {
		cfg.TimerTick = DEFAULT_TIMER_TICK
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DEFAULT_BATCH_SIZE
	}
	if cfg.ChanSize <= 0 {
		cfg.ChanSize = DEFAULT_CHAN_SIZE
	}
	if cfg.NewBackend == nil {
		cfg.NewBackend = func(uint32) (state.KeyedStateBackend, error) {
			return state.NewInMemoryKeyedBackend(state.BTreeStore)
		}
	}
	registry := cfg.Registry
	if registry == nil {
		registry = processor.NewPredicateRegistry()
	}
	t := &PartitionedJoinTask{
		workers:   make([]*joinWorker, 0, cfg.Parallelism),
		sink:      NewConcurrentSink(sink, cfg.Join.Name),
		timerTick: cfg.TimerTick,
	}
	for par := uint32(0); par < cfg.Parallelism; par++ {
		backend, err := cfg.NewBackend(par)
		if err != nil {
			return nil, xerrors.Errorf("backend of partition %d: %w", par, err)
		}
		timers := timer.NewProcessingTimeService(cfg.Clock)
		joinCfg := cfg.Join
		joinCfg.Name = fmt.Sprintf("%s-%d", cfg.Join.Name, par)
		proc, err := processor.NewStreamStreamJoinProcessor(joinCfg, registry, backend, timers)
		if err != nil {
			return nil, err
		}
		if err := proc.Open(ctx); err != nil {
			return nil, err
		}
		t.workers = append(t.workers, &joinWorker{
			partition: par,
			proc:      proc,
			timers:    timers,
			in:        make(chan Input, cfg.ChanSize),
			batch:     deque.New[Input](cfg.BatchSize),
			batchSize: cfg.BatchSize,
		})
	}
	return t, nil
}

func (t *PartitionedJoinTask) NumPartitions() uint32 {
	return uint32(len(t.workers))
}

// Partition returns the worker that owns key.
func (t *PartitionedJoinTask) Partition(key string) uint32 {
	return hashfuncs.Partition[string](hashfuncs.StringHasher{}, key, t.NumPartitions())
}

// Run routes inputs to the workers until inputs is closed and every worker
// has drained its queue. The first error of any worker cancels the others.
func (t *PartitionedJoinTask) Run(ctx context.Context, inputs <-chan Input) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range t.workers {
		w := w
		g.Go(func() error {
			return w.run(gctx, t.sink, t.timerTick)
		})
	}
	g.Go(func() error {
		defer func() {
			for _, w := range t.workers {
				close(w.in)
			}
		}()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case in, ok := <-inputs:
				if !ok {
					return nil
				}
				w := t.workers[t.Partition(in.Msg.Key)]
				select {
				case w.in <- in:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
	})
	err := g.Wait()
	t.Stats().Report(t.sink.name)
	return err
}

// Stats merges the counters of all workers.
func (t *PartitionedJoinTask) Stats() *stats.JoinStats {
	merged := stats.NewJoinStats()
	for _, w := range t.workers {
		merged.Merge(w.proc.Stats())
	}
	return merged
}

type joinWorker struct {
	proc      *processor.StreamStreamJoinProcessor
	timers    *timer.ProcessingTimeService
	in        chan Input
	batch     *deque.Deque[Input]
	batchSize int
	partition uint32
}

func (w *joinWorker) run(ctx context.Context, sink *ConcurrentSink, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	out := processor.CollectorFunc(func(ctx context.Context, msg commtypes.Message) error {
		return sink.Emit(ctx, w.partition, msg)
	})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.fireTimers(ctx); err != nil {
				return err
			}
		case in, ok := <-w.in:
			if !ok {
				return w.fireTimers(ctx)
			}
			w.batch.PushBack(in)
			closed := w.fill()
			if err := w.processBatch(ctx, out); err != nil {
				return err
			}
			if err := w.fireTimers(ctx); err != nil {
				return err
			}
			if closed {
				return nil
			}
		}
	}
}

// fill moves whatever is already queued into the batch without blocking. It
// reports whether the input channel has been closed.
func (w *joinWorker) fill() bool {
	for w.batch.Len() < w.batchSize {
		select {
		case in, ok := <-w.in:
			if !ok {
				return true
			}
			w.batch.PushBack(in)
		default:
			return false
		}
	}
	return false
}

func (w *joinWorker) processBatch(ctx context.Context, out processor.Collector) error {
	for w.batch.Len() > 0 {
		in := w.batch.PopFront()
		if err := w.proc.Process(ctx, in.Side, in.Msg, out); err != nil {
			w.batch.Clear()
			return err
		}
	}
	return nil
}

func (w *joinWorker) fireTimers(ctx context.Context) error {
	fired, err := w.timers.FireDue(ctx, w.proc.OnTimer)
	if fired > 0 {
		log.Debug().Str("join", w.proc.Name()).Int("fired", fired).Msg("cleanup timers fired")
	}
	return err
}
