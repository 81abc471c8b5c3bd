package consumers

import (
	"context"
	"sync/atomic"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type ConsumeFunc func(ctx context.Context, consumer *kafka.Consumer)

// ConsumerWrapper flips health flags while the wrapped consumer loop runs so
// a liveness probe can tell a stopped loop from a quiet topic.
type ConsumerWrapper struct {
	fn     ConsumeFunc
	health []*atomic.Bool
}

func WrapConsumer(fn ConsumeFunc, health ...*atomic.Bool) ConsumerWrapper {
	return ConsumerWrapper{
		fn:     fn,
		health: health,
	}
}

func (cw ConsumerWrapper) WithHealthCheck(health *atomic.Bool) ConsumerWrapper {
	cw.health = append(cw.health, health)
	return cw
}

func (cw ConsumerWrapper) Handler() func(ctx context.Context, consumer *kafka.Consumer) {
	return func(ctx context.Context, consumer *kafka.Consumer) {
		for _, h := range cw.health {
			h.Store(true)
		}
		defer func() {
			for _, h := range cw.health {
				h.Store(false)
			}
		}()
		cw.fn(ctx, consumer)
	}
}
