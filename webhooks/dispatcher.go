package webhooks

import (
	"context"

	"github.com/goliatone/go-enigma/adapters/gojob"
	"github.com/goliatone/go-enigma/core"

	job "github.com/goliatone/go-job"
	jobqueue "github.com/goliatone/go-job/queue"
)

type NotificationEnqueuer interface {
	Enqueue(ctx context.Context, notification core.Notification) error
}

// Dispatcher schedules notifications by enqueueing them. It never waits for
// delivery.
type Dispatcher struct {
	enqueuer NotificationEnqueuer
}

func NewDispatcher(enqueuer NotificationEnqueuer) *Dispatcher {
	return &Dispatcher{enqueuer: enqueuer}
}

// NewQueueDispatcher wires a dispatcher straight onto a go-job enqueuer.
func NewQueueDispatcher(enqueuer jobqueue.Enqueuer) *Dispatcher {
	return NewDispatcher(gojob.NewEnqueuerAdapter(enqueuer))
}

func (d *Dispatcher) Schedule(ctx context.Context, notification core.Notification) error {
	if d == nil || d.enqueuer == nil {
		return core.NewDependencyError("webhooks: dispatcher has no enqueuer")
	}
	if err := d.enqueuer.Enqueue(ctx, notification); err != nil {
		return core.NewNotificationError(err, "webhooks: enqueue notification")
	}
	return nil
}

// Handler turns queued messages back into notifications and delivers them.
type Handler struct {
	notifier *Notifier
}

func NewHandler(notifier *Notifier) *Handler {
	return &Handler{notifier: notifier}
}

func (h *Handler) Handle(ctx context.Context, msg *job.ExecutionMessage) error {
	if h == nil || h.notifier == nil {
		return core.NewDependencyError("webhooks: handler has no notifier")
	}
	notification, err := gojob.FromExecutionMessage(msg)
	if err != nil {
		return core.NewValidationError("message", err.Error())
	}
	return h.notifier.Notify(ctx, notification)
}

var _ core.NotificationScheduler = (*Dispatcher)(nil)
