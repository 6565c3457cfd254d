package notification

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/worker"
)

// Submitter accepts background tasks without blocking.
type Submitter interface {
	Submit(task worker.Task) bool
}

// Dispatcher turns "complaint created" facts into mail deliveries off the request path.
// Delivery outcomes are logged and counted, never returned.
type Dispatcher struct {
	pool     Submitter
	mailer   Mailer
	resolver RecipientResolver
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// DispatcherDependencies bundles collaborators for the dispatcher.
type DispatcherDependencies struct {
	Pool     Submitter
	Mailer   Mailer
	Resolver RecipientResolver
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

// NewDispatcher constructs the dispatcher.
func NewDispatcher(deps DispatcherDependencies) *Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		pool:     deps.Pool,
		mailer:   deps.Mailer,
		resolver: deps.Resolver,
		logger:   logger,
		metrics:  deps.Metrics,
	}
}

// NotifyCreated schedules the acknowledgement mail for complaint and returns immediately.
func (d *Dispatcher) NotifyCreated(complaint domain.Complaint) {
	if !d.pool.Submit(func(ctx context.Context) { d.deliver(ctx, complaint) }) {
		d.metrics.RecordNotification(observability.NotificationDropped)
		d.logger.Warn("notification queue full; dropping complaint notification",
			zap.String("complaint_id", complaint.ID))
	}
}

func (d *Dispatcher) deliver(ctx context.Context, complaint domain.Complaint) {
	log := d.logger.With(zap.String("complaint_id", complaint.ID), zap.String("owner_id", complaint.OwnerID))

	to, err := d.resolver.ResolveRecipient(ctx, complaint.OwnerID)
	if err != nil {
		d.metrics.RecordNotification(observability.NotificationUnresolved)
		if errors.Is(err, ErrUnresolvedRecipient) {
			log.Warn("no recipient address for complaint owner; notification skipped")
		} else {
			log.Warn("recipient resolution failed; notification skipped", zap.Error(err))
		}
		return
	}

	msg := NewComplaintCreatedMessage(to, complaint)
	if err := d.mailer.Send(ctx, msg); err != nil {
		d.metrics.RecordNotification(observability.NotificationFailed)
		log.Error("complaint notification failed", zap.String("to", to), zap.Error(err))
		return
	}
	d.metrics.RecordNotification(observability.NotificationSent)
	log.Debug("complaint notification sent", zap.String("to", to))
}
