package gojob

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-enigma/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

const JobIDWebhookNotify = "enigma.webhook.notify"

const (
	paramEnigmaID = "enigma_id"
	paramURL      = "url"
	paramSecret   = "secret"
	paramCount    = "count"
	paramName     = "name"
)

// ToExecutionMessage maps a webhook notification to a go-job message. The count
// travels as a decimal string so it survives JSON backed queues unchanged.
func ToExecutionMessage(n core.Notification) *job.ExecutionMessage {
	return &job.ExecutionMessage{
		JobID:      JobIDWebhookNotify,
		ScriptPath: JobIDWebhookNotify,
		Parameters: map[string]any{
			paramEnigmaID: n.EnigmaID,
			paramURL:      n.URL,
			paramSecret:   n.Secret,
			paramCount:    strconv.FormatInt(n.Count, 10),
			paramName:     n.Name,
		},
	}
}

// FromExecutionMessage maps a go-job message back into a notification.
func FromExecutionMessage(msg *job.ExecutionMessage) (core.Notification, error) {
	if msg == nil {
		return core.Notification{}, fmt.Errorf("gojob: execution message is required")
	}
	if jobID := strings.TrimSpace(msg.JobID); jobID != JobIDWebhookNotify {
		return core.Notification{}, fmt.Errorf("gojob: unsupported job id %q", jobID)
	}
	count, err := parseCount(msg.Parameters[paramCount])
	if err != nil {
		return core.Notification{}, err
	}
	n := core.Notification{
		EnigmaID: stringParam(msg.Parameters, paramEnigmaID),
		URL:      stringParam(msg.Parameters, paramURL),
		Secret:   stringParam(msg.Parameters, paramSecret),
		Count:    count,
		Name:     stringParam(msg.Parameters, paramName),
	}
	if err := n.Validate(); err != nil {
		return core.Notification{}, err
	}
	return n, nil
}

type EnqueuerAdapter struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuerAdapter(enqueuer queue.Enqueuer) *EnqueuerAdapter {
	return &EnqueuerAdapter{enqueuer: enqueuer}
}

func (a *EnqueuerAdapter) Enqueue(ctx context.Context, n core.Notification) error {
	if a == nil || a.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if err := n.Validate(); err != nil {
		return err
	}
	return a.enqueuer.Enqueue(ctx, ToExecutionMessage(n))
}

// LoggingHook reports worker events through a glog logger.
type LoggingHook struct {
	logger core.Logger
}

func NewLoggingHook(logger core.Logger) *LoggingHook {
	return &LoggingHook{logger: logger}
}

func (h *LoggingHook) OnStart(ctx context.Context, event worker.Event) {
	h.log(ctx, "debug", "notification job started", event)
}

func (h *LoggingHook) OnSuccess(ctx context.Context, event worker.Event) {
	h.log(ctx, "debug", "notification job completed", event)
}

func (h *LoggingHook) OnFailure(ctx context.Context, event worker.Event) {
	h.log(ctx, "error", "notification job failed", event)
}

func (h *LoggingHook) OnRetry(ctx context.Context, event worker.Event) {
	h.log(ctx, "warn", "notification job retry requested", event)
}

func (h *LoggingHook) log(ctx context.Context, level string, msg string, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	logger := h.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	args := core.FlattenFields(eventFields(event))
	switch level {
	case "error":
		logger.Error(msg, args...)
	case "warn":
		logger.Warn(msg, args...)
	default:
		logger.Debug(msg, args...)
	}
}

func eventFields(event worker.Event) map[string]any {
	fields := map[string]any{
		"attempt": event.Attempt,
	}
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	if message != nil {
		fields["job_id"] = message.JobID
		if id := stringParam(message.Parameters, paramEnigmaID); id != "" {
			fields["enigma_id"] = id
		}
	}
	if event.Duration > 0 {
		fields["duration_ms"] = event.Duration.Milliseconds()
	}
	if event.Err != nil {
		fields["error"] = event.Err.Error()
	}
	return fields
}

func stringParam(params map[string]any, key string) string {
	value, ok := params[key]
	if !ok || value == nil {
		return ""
	}
	if typed, ok := value.(string); ok {
		return typed
	}
	return fmt.Sprint(value)
}

func parseCount(value any) (int64, error) {
	switch typed := value.(type) {
	case int64:
		return typed, nil
	case int:
		return int64(typed), nil
	case float64:
		return int64(typed), nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("gojob: invalid count %q: %w", typed, err)
		}
		return parsed, nil
	case nil:
		return 0, fmt.Errorf("gojob: count is required")
	default:
		return 0, fmt.Errorf("gojob: unsupported count type %T", value)
	}
}

var _ worker.Hook = (*LoggingHook)(nil)
