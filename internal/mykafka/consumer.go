package mykafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/okoval/contacts_api/internal/logging"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(address, topic, group string) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{address},
		Topic:          topic,
		GroupID:        group,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
	return &Consumer{reader: r}
}

// Run fetches until ctx is cancelled. Handler failures are logged and the
// message is committed anyway; a poison message must not wedge the worker.
func (c *Consumer) Run(ctx context.Context, handle func(ctx context.Context, key, value []byte) error) error {
	log := logging.FromContext(ctx)
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		if err := handle(ctx, m.Key, m.Value); err != nil {
			log.Error("message handling failed", "topic", m.Topic, "offset", m.Offset, "err", err)
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			log.Error("commit failed", "topic", m.Topic, "offset", m.Offset, "err", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
