package notification

import "context"

// JSONPublisher publishes a JSON document under a routing key.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// AMQPMailer relays messages to a broker; cmd/mailer performs the SMTP delivery.
type AMQPMailer struct {
	publisher JSONPublisher
	key       string
}

// NewAMQPMailer builds a relaying mailer.
func NewAMQPMailer(publisher JSONPublisher, routingKey string) *AMQPMailer {
	return &AMQPMailer{publisher: publisher, key: routingKey}
}

func (m *AMQPMailer) Send(ctx context.Context, msg Message) error {
	if err := m.publisher.PublishJSON(ctx, m.key, msg); err != nil {
		return &TransportError{Transport: "amqp", To: msg.To, Err: err}
	}
	return nil
}
