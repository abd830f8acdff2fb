package worker

import (
	"context"
	"encoding/json"
	"errors"

	"UploadInbox/config"
	"UploadInbox/internal/mq"
	"UploadInbox/internal/service"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RunConsumer consumes inbound events from RabbitMQ and dispatches them.
// Messages are processed sequentially so downstream decisions for the same
// file are applied in delivery order.
func RunConsumer(ctx context.Context, cfg config.Config, client *mq.Client, dispatcher *Dispatcher, log *zap.SugaredLogger) error {
	if err := client.DeclareTopology(); err != nil {
		return err
	}

	prefetch := cfg.RabbitMQPrefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := client.Channel.Qos(prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := client.Channel.Consume(
		mq.QueueInbound,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	burst := cfg.ConsumerBurst
	if burst <= 0 {
		burst = 1
	}
	var limiter *rate.Limiter
	if cfg.ConsumerRate <= 0 {
		limiter = rate.NewLimiter(rate.Inf, burst)
	} else {
		limiter = rate.NewLimiter(rate.Limit(cfg.ConsumerRate), burst)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("consumer: delivery channel closed")
			}
			if err := limiter.Wait(ctx); err != nil {
				_ = delivery.Nack(false, true)
				return nil
			}
			if err := handleDelivery(ctx, client, dispatcher, delivery, log); err != nil {
				return err
			}
		}
	}
}

func handleDelivery(ctx context.Context, client *mq.Client, dispatcher *Dispatcher, delivery amqp.Delivery, log *zap.SugaredLogger) error {
	err := dispatcher.Dispatch(ctx, delivery.Type, delivery.Body)
	if err == nil {
		return delivery.Ack(false)
	}

	if errors.Is(err, ErrUnknownEventType) {
		// The inbound set is closed; an unrecognized type means a broken
		// contract, so stop consuming instead of dropping messages.
		_ = delivery.Nack(false, true)
		log.Errorw("unrecognized inbound event type",
			"event_type", delivery.Type, "severity", "critical")
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		_ = delivery.Nack(false, true)
		return nil
	}

	if isFatalForMessage(err) {
		log.Errorw("event could not be processed, parking on dead letter queue",
			"event_type", delivery.Type, "error", err)
		if dlqErr := client.PublishDLQ(ctx, delivery.Type, delivery.Body); dlqErr != nil {
			_ = delivery.Nack(false, true)
			return dlqErr
		}
		return delivery.Ack(false)
	}

	// Infrastructure trouble: leave the message for a later retry.
	log.Warnw("event processing failed, requeueing",
		"event_type", delivery.Type, "error", err)
	return delivery.Nack(false, true)
}

// isFatalForMessage reports whether redelivering the message could ever
// succeed. Domain validation failures and malformed payloads stay broken no
// matter how often they are retried.
func isFatalForMessage(err error) bool {
	var (
		syntaxErr     *json.SyntaxError
		typeErr       *json.UnmarshalTypeError
		fileUnknown   *service.FileUnknownError
		invalidUpdate *service.InvalidMetadataUpdateError
		mismatch      *service.UploadStatusMismatchError
		noLatest      *service.NoLatestUploadError
		outOfSync     *service.OutOfSyncError
		unknownAlias  *service.UnknownStorageAliasError
	)
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.As(err, &fileUnknown) ||
		errors.As(err, &invalidUpdate) ||
		errors.As(err, &mismatch) ||
		errors.As(err, &noLatest) ||
		errors.As(err, &outOfSync) ||
		errors.As(err, &unknownAlias)
}
