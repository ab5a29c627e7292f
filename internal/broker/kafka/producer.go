package kafka

import (
	"context"

	"github.com/vladmycode/imager/internal/broker"
	"github.com/vladmycode/imager/internal/config"

	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

type ProducerClient struct {
	producer *wbkafka.Producer
}

var _ broker.Producer = (*ProducerClient)(nil)

// NewComposeProducer publishes composition tasks for the worker.
func NewComposeProducer(cfg *config.Config) *ProducerClient {
	return &ProducerClient{
		producer: wbkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ComposeTopic),
	}
}

// NewResultsProducer publishes finished composition results.
func NewResultsProducer(cfg *config.Config) *ProducerClient {
	return &ProducerClient{
		producer: wbkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ResultsTopic),
	}
}

func (p *ProducerClient) Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error {
	return p.producer.SendWithRetry(ctx, strategy, key, value)
}

func (p *ProducerClient) Close() error {
	return p.producer.Close()
}
