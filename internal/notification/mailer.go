package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Mailer delivers a message to an external mail transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// TransportError reports a failed delivery attempt. It never leaves the dispatcher.
type TransportError struct {
	Transport string
	To        string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: deliver to %s: %v", e.Transport, e.To, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	logger *zap.Logger
	from   string
}

// NewLogMailer builds a mailer for development setups.
func NewLogMailer(logger *zap.Logger, from string) *LogMailer {
	return &LogMailer{logger: logger, from: from}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email",
		zap.String("from", m.from),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("complaint_id", msg.ComplaintID),
		zap.Int("body_bytes", len(msg.Body)))
	return nil
}
