package execution

import (
	"context"
	"time"

	"changelog-join/pkg/commtypes"
	"changelog-join/pkg/stats"
	"changelog-join/pkg/utils/syncutils"
)

// Sink receives the joined changes of every partition.
type Sink interface {
	Emit(ctx context.Context, partition uint32, msg commtypes.Message) error
}

type SinkFunc func(ctx context.Context, partition uint32, msg commtypes.Message) error

func (fn SinkFunc) Emit(ctx context.Context, partition uint32, msg commtypes.Message) error {
	return fn(ctx, partition, msg)
}

// ConcurrentSink lets all workers share one Sink that is not safe for
// concurrent use.
type ConcurrentSink struct {
	mu   syncutils.Mutex
	sink Sink
	name string
	tp   *stats.ConcurrentThroughputCounter
}

var _ = Sink(&ConcurrentSink{})

func NewConcurrentSink(sink Sink, name string) *ConcurrentSink {
	return &ConcurrentSink{
		sink: sink,
		name: name,
		tp:   stats.NewConcurrentThroughputCounter(name+"_out", 10*time.Second),
	}
}

func (s *ConcurrentSink) Emit(ctx context.Context, partition uint32, msg commtypes.Message) error {
	s.mu.Lock()
	err := s.sink.Emit(ctx, partition, msg)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.tp.Tick(1)
	return nil
}

func (s *ConcurrentSink) Count() uint64 {
	return s.tp.GetCount()
}
