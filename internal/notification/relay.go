package notification

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/observability"
)

// Relay drains messages published by AMQPMailer and hands them to a final mailer.
// Failed deliveries are dropped without requeue.
type Relay struct {
	mailer  Mailer
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewRelay constructs a relay.
func NewRelay(mailer Mailer, logger *zap.Logger, metrics *observability.Metrics) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{mailer: mailer, logger: logger, metrics: metrics}
}

// Run processes deliveries until ctx is done or the channel closes.
func (r *Relay) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			r.Process(ctx, d)
		}
	}
}

// Process sends one delivery and settles it.
func (r *Relay) Process(ctx context.Context, d amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.To == "" {
		r.logger.Warn("discarding malformed mail message", zap.String("message_id", d.MessageId), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	if err := r.mailer.Send(ctx, msg); err != nil {
		r.metrics.RecordNotification(observability.NotificationFailed)
		r.logger.Warn("relay delivery failed",
			zap.String("complaint_id", msg.ComplaintID),
			zap.String("to", msg.To),
			zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	r.metrics.RecordNotification(observability.NotificationSent)
	r.logger.Info("relay delivered mail", zap.String("complaint_id", msg.ComplaintID), zap.String("to", msg.To))
	_ = d.Ack(false)
}
