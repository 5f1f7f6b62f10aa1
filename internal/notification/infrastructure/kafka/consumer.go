package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/btechtrader/checkout-service/internal/notification/application"
	notifdomain "github.com/btechtrader/checkout-service/internal/notification/domain"
	"github.com/btechtrader/checkout-service/internal/purchase/domain"
	"github.com/btechtrader/checkout-service/pkg/idempotency"
	"github.com/btechtrader/checkout-service/pkg/retry"
	"github.com/btechtrader/checkout-service/pkg/tracing"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// MessageSource is the slice of kafka.Reader the consumer uses.
type MessageSource interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Dedup tracks fully processed messages. Seen never claims; Mark claims
// only after the message's emails went out.
type Dedup interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// Consumer is the queued email path: it reads PurchaseRecorded events and
// feeds them to the dispatcher. An event's offset is committed and its
// dedup key claimed only after both emails were sent, so a transient send
// failure leaves the event to be redelivered and retried. Poison messages
// (unparseable payload, invalid notice) are committed and dropped.
type Consumer struct {
	log        *slog.Logger
	reader     MessageSource
	dispatcher *application.Dispatcher
	idem       Dedup
	retry      retry.Policy
	tracer     trace.Tracer
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, dispatcher *application.Dispatcher, idem Dedup) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return NewConsumerWithSource(log, r, dispatcher, idem)
}

// NewConsumerWithSource is used by tests to swap the Kafka reader out.
func NewConsumerWithSource(log *slog.Logger, src MessageSource, dispatcher *application.Dispatcher, idem Dedup) *Consumer {
	return &Consumer{
		log:        log,
		reader:     src,
		dispatcher: dispatcher,
		idem:       idem,
		retry:      retry.Default(),
		tracer:     otel.Tracer("notification-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		if err := c.process(ctx, msg); err != nil {
			// The offset stays uncommitted and the dedup key unclaimed, so
			// the group redelivers the event and the sends are retried.
			return err
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	key := idempotency.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return c.reader.CommitMessages(ctx, msg)
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumePurchaseRecorded")
	defer span.End()

	var event domain.PurchaseRecorded
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.log.Error("unmarshal failed, dropping message", "key", key, "err", err)
		return c.reader.CommitMessages(ctx, msg)
	}

	notice := notifdomain.PurchaseNotice{
		UserID:      event.UserID,
		UserEmail:   event.UserEmail,
		UserName:    event.UserName,
		CourseTitle: event.CourseTitle,
		PricePaise:  event.PricePaise,
		Token:       event.Token,
	}

	sendErr := c.retry.Do(msgCtx, func() error {
		report, err := c.dispatcher.DispatchPurchase(msgCtx, notice)
		if err != nil {
			var vErr *notifdomain.ValidationError
			if errors.As(err, &vErr) {
				return retry.Permanent(err)
			}
			return err
		}
		if report.Failed() {
			return report.Err()
		}
		return nil
	})
	if sendErr != nil {
		var vErr *notifdomain.ValidationError
		if errors.As(sendErr, &vErr) {
			c.log.Error("purchase notice rejected, dropping message", "order_id", event.OrderID, "err", sendErr)
			return c.reader.CommitMessages(ctx, msg)
		}
		c.log.Warn("purchase emails failed, leaving event for redelivery", "order_id", event.OrderID, "err", sendErr)
		return sendErr
	}

	if err := c.idem.Mark(ctx, key); err != nil {
		// Worst case the redelivered event re-sends; the emails are not lost.
		c.log.Error("idempotency mark failed", "key", key, "err", err)
	}
	c.log.Info("purchase emails sent", "order_id", event.OrderID)
	return c.reader.CommitMessages(ctx, msg)
}
