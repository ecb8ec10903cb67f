package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-enigma/adapters/gojob"
	"github.com/goliatone/go-enigma/core"
	"github.com/goliatone/go-enigma/queue"
	goerrors "github.com/goliatone/go-errors"

	job "github.com/goliatone/go-job"
)

func TestDispatcher_ScheduleDoesNotWaitForDelivery(t *testing.T) {
	q := queue.NewMemoryQueue()
	dispatcher := NewQueueDispatcher(q)

	err := dispatcher.Schedule(context.Background(), core.Notification{
		EnigmaID: "e1",
		URL:      "https://hooks.example.com/x",
		Secret:   "abc123",
		Count:    6,
		Name:     "Ana",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("expected one queued notification, got %d", q.Len())
	}
}

func TestDispatcher_EnqueueFailureIsNotificationError(t *testing.T) {
	dispatcher := NewDispatcher(failingEnqueuer{err: errors.New("redis down")})
	err := dispatcher.Schedule(context.Background(), core.Notification{URL: "https://x", Secret: "s"})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.TextCode != core.EnigmaErrorNotificationFailed {
		t.Fatalf("expected %q, got %q", core.EnigmaErrorNotificationFailed, rich.TextCode)
	}

	var nilDispatcher *Dispatcher
	if err := nilDispatcher.Schedule(context.Background(), core.Notification{}); err == nil {
		t.Fatalf("expected nil dispatcher error")
	}
}

func TestHandler_RejectsForeignMessages(t *testing.T) {
	handler := NewHandler(NewNotifier())
	if err := handler.Handle(context.Background(), &job.ExecutionMessage{JobID: "other"}); err == nil {
		t.Fatalf("expected foreign job to be rejected")
	}
}

func TestDispatcherWorkerRoundTrip(t *testing.T) {
	received := make(chan map[string]string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body := map[string]string{}
		_ = json.Unmarshal(raw, &body)
		received <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	q := queue.NewMemoryQueue()
	notifier := NewNotifier(WithHTTPClient(server.Client()))
	w, err := queue.NewWorker(q, NewHandler(notifier), queue.WithHook(gojob.NewLoggingHook(nil)))
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start worker: %v", err)
	}
	defer func() { _ = w.Stop(context.Background()) }()

	err = NewQueueDispatcher(q).Schedule(context.Background(), core.Notification{
		EnigmaID: "e1",
		URL:      server.URL,
		Secret:   "abc123",
		Count:    6,
		Name:     "Ana",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	select {
	case body := <-received:
		if body["value1"] != "abc123" || body["value2"] != "6" || body["value3"] != "Ana" {
			t.Fatalf("unexpected webhook body %v", body)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected webhook delivery")
	}
}

type failingEnqueuer struct {
	err error
}

func (f failingEnqueuer) Enqueue(context.Context, core.Notification) error {
	return f.err
}
