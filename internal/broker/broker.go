package broker

import (
	"context"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/retry"
)

type Producer interface {
	Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error
	Close() error
}

type Consumer interface {
	StartConsuming(ctx context.Context, out chan<- kafka.Message, strategy retry.Strategy)
	Commit(ctx context.Context, msg kafka.Message) error
	Close() error
}
