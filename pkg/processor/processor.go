package processor

import (
	"context"

	"changelog-join/pkg/commtypes"
)

type Processor interface {
	Name() string
	ProcessAndReturn(ctx context.Context, msg commtypes.Message) ([]commtypes.Message, error)
}

// Collector is the output sink of a join. Rows arrive in the order the match
// strategy produced them.
type Collector interface {
	Collect(ctx context.Context, msg commtypes.Message) error
}

type CollectorFunc func(ctx context.Context, msg commtypes.Message) error

func (fn CollectorFunc) Collect(ctx context.Context, msg commtypes.Message) error {
	return fn(ctx, msg)
}

type SliceCollector struct {
	Msgs []commtypes.Message
}

func (c *SliceCollector) Collect(ctx context.Context, msg commtypes.Message) error {
	c.Msgs = append(c.Msgs, msg)
	return nil
}

func (c *SliceCollector) Reset() {
	c.Msgs = c.Msgs[:0]
}
