package kafka

import (
	"context"
	"errors"

	"github.com/vladmycode/imager/internal/config"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/retry"
)

// KafkaClient bundles the worker-side pair: a consumer of compose tasks
// and a producer of results.
type KafkaClient struct {
	producer *ProducerClient
	consumer *ConsumerClient
}

func NewKafkaClient(cfg *config.Config) *KafkaClient {
	return &KafkaClient{
		producer: NewResultsProducer(cfg),
		consumer: NewComposeConsumer(cfg),
	}
}

func (k *KafkaClient) Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error {
	return k.producer.Send(ctx, strategy, key, value)
}

func (k *KafkaClient) Fetch(ctx context.Context, strategy retry.Strategy) (kafka.Message, error) {
	return k.consumer.Fetch(ctx, strategy)
}

func (k *KafkaClient) Commit(ctx context.Context, msg kafka.Message) error {
	return k.consumer.Commit(ctx, msg)
}

func (k *KafkaClient) StartConsuming(ctx context.Context, out chan<- kafka.Message, strategy retry.Strategy) {
	k.consumer.StartConsuming(ctx, out, strategy)
}

func (k *KafkaClient) Close() error {
	var errs []error

	if k.producer != nil {
		if err := k.producer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if k.consumer != nil {
		if err := k.consumer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
