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
	"github.com/okoval/contacts_api/internal/logging"
	"github.com/okoval/contacts_api/internal/mailer"
	"github.com/okoval/contacts_api/internal/mykafka"
)

// The mailer worker is the only process that talks SMTP. The API publishes
// mail jobs and answers immediately; delivery failures end up here, in the
// logs, never in an HTTP response.
func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	m := &mailer.Mailer{
		Host:     configuration.MAIL_HOST,
		Port:     configuration.MAIL_PORT,
		Username: configuration.MAIL_USERNAME,
		Password: configuration.MAIL_PASSWORD,
		From:     configuration.MAIL_FROM,
	}

	consumer := mykafka.NewConsumer(configuration.KAFKA_ADDRESS, mykafka.EmailTopic, "mailer")
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	logger.Info("mailer started", "topic", mykafka.EmailTopic)

	err = consumer.Run(ctx, func(ctx context.Context, key, value []byte) error {
		var event mykafka.EmailEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return fmt.Errorf("bad email event: %w", err)
		}

		switch event.Type {
		case mykafka.EmailTypeConfirm:
			return m.Send(event.To, "Confirm your email", mailer.ConfirmEmailBody(event.Username, event.Link))
		case mykafka.EmailTypeReset:
			return m.Send(event.To, "Important: Update your account information", mailer.ResetPasswordBody(event.Username, event.Link))
		default:
			return fmt.Errorf("unknown email event type %q", event.Type)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "err", err)
	}

	logger.Info("mailer stopped")
}
