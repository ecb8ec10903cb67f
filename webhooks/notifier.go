package webhooks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goliatone/go-enigma/core"
	"github.com/goliatone/go-enigma/transport"
	glog "github.com/goliatone/go-logger/glog"
)

// Payload is the body posted to the callback URL, in the IFTTT maker webhook
// shape.
type Payload struct {
	Value1 string `json:"value1"`
	Value2 string `json:"value2"`
	Value3 string `json:"value3"`
}

func NewPayload(n core.Notification) Payload {
	return Payload{
		Value1: n.Secret,
		Value2: strconv.FormatInt(n.Count, 10),
		Value3: n.Name,
	}
}

type Notifier struct {
	rest    *transport.RESTAdapter
	timeout time.Duration
	logger  glog.Logger
}

type NotifierOption func(*Notifier)

func WithHTTPClient(client transport.HTTPDoer) NotifierOption {
	return func(n *Notifier) {
		if client != nil {
			n.rest = transport.NewRESTAdapter(client)
		}
	}
}

// WithTimeout bounds each webhook call. Zero leaves calls unbounded.
func WithTimeout(timeout time.Duration) NotifierOption {
	return func(n *Notifier) {
		if timeout >= 0 {
			n.timeout = timeout
		}
	}
}

func WithLogger(logger glog.Logger) NotifierOption {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

func NewNotifier(opts ...NotifierOption) *Notifier {
	n := &Notifier{
		rest:   transport.NewRESTAdapter(nil),
		logger: glog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Notify posts one notification. Only HTTP 200 counts as delivered; every
// outcome is logged and failures are returned so the worker can report them.
func (n *Notifier) Notify(ctx context.Context, notification core.Notification) error {
	if n == nil || n.rest == nil {
		return core.NewDependencyError("webhooks: notifier is not configured")
	}
	if err := notification.Validate(); err != nil {
		return core.NewValidationError("notification", err.Error())
	}
	count := strconv.FormatInt(notification.Count, 10)
	logger := n.logger.WithContext(ctx)
	fields := []any{
		"enigma_id", notification.EnigmaID,
		"secret", notification.Secret,
		"count", count,
	}

	res, err := n.rest.PostJSON(ctx, notification.URL, NewPayload(notification), n.timeout)
	if err != nil {
		logger.Error(
			fmt.Sprintf("webhook for enigma %q count %q failed: %s", notification.Secret, count, err.Error()),
			fields...,
		)
		return core.NewNotificationError(err, "webhooks: deliver notification")
	}
	if !res.OK() {
		logger.Error(
			fmt.Sprintf("webhook for enigma %q count %q failed: %s", notification.Secret, count, res.Reason),
			append(fields, "status_code", res.StatusCode)...,
		)
		return core.NewNotificationError(nil, fmt.Sprintf("webhooks: callback answered %d %s", res.StatusCode, res.Reason)).
			WithMetadata(map[string]any{"status_code": res.StatusCode})
	}

	logger.Info(
		fmt.Sprintf("webhook for enigma %q count %q was successful", notification.Secret, count),
		fields...,
	)
	return nil
}
