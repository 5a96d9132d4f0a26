package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/okoval/contacts_api/internal/config"
	"github.com/okoval/contacts_api/internal/es"
	"github.com/okoval/contacts_api/internal/logging"
	"github.com/okoval/contacts_api/internal/mykafka"
	"github.com/okoval/contacts_api/internal/service/search"
)

// The indexer keeps the contacts search index in sync with the store by
// replaying contact events.
func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	consumer := mykafka.NewConsumer(configuration.KAFKA_ADDRESS, mykafka.ContactTopic, "indexer")
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	logger.Info("indexer started", "topic", mykafka.ContactTopic, "index", search.DefaultIndex)

	err = consumer.Run(ctx, func(ctx context.Context, key, value []byte) error {
		var event mykafka.ContactEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return fmt.Errorf("bad contact event: %w", err)
		}

		switch event.Type {
		case mykafka.ContactCreated, mykafka.ContactUpdated:
			return search.IndexContact(ctx, esClient, search.DefaultIndex, event.Contact)
		case mykafka.ContactDeleted:
			return search.DeleteContact(ctx, esClient, search.DefaultIndex, event.Contact.ID)
		default:
			return fmt.Errorf("unknown contact event type %q", event.Type)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "err", err)
	}

	logger.Info("indexer stopped")
}
