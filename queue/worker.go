package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	job "github.com/goliatone/go-job"
	jobqueue "github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

// Handler processes one dequeued message.
type Handler interface {
	Handle(ctx context.Context, msg *job.ExecutionMessage) error
}

type HandlerFunc func(ctx context.Context, msg *job.ExecutionMessage) error

func (f HandlerFunc) Handle(ctx context.Context, msg *job.ExecutionMessage) error {
	return f(ctx, msg)
}

// Worker drains a Dequeuer. Every delivery is acked once handled, including
// failed ones: notifications are never retried.
type Worker struct {
	dequeuer    jobqueue.Dequeuer
	handler     Handler
	hook        worker.Hook
	logger      glog.Logger
	concurrency int
	errBackoff  time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

type WorkerOption func(*Worker)

func WithHook(hook worker.Hook) WorkerOption {
	return func(w *Worker) {
		w.hook = hook
	}
}

func WithWorkerLogger(logger glog.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithConcurrency(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

func WithErrorBackoff(backoff time.Duration) WorkerOption {
	return func(w *Worker) {
		if backoff > 0 {
			w.errBackoff = backoff
		}
	}
}

func NewWorker(dequeuer jobqueue.Dequeuer, handler Handler, opts ...WorkerOption) (*Worker, error) {
	if dequeuer == nil {
		return nil, fmt.Errorf("queue: dequeuer is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("queue: handler is required")
	}
	w := &Worker{
		dequeuer:    dequeuer,
		handler:     handler,
		logger:      glog.Nop(),
		concurrency: 1,
		errBackoff:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Start launches the consumer goroutines and returns immediately.
func (w *Worker) Start(ctx context.Context) error {
	if w == nil {
		return fmt.Errorf("queue: worker is nil")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("queue: worker already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	var wg sync.WaitGroup
	for i := range w.concurrency {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			w.loop(runCtx, slot)
		}(i)
	}
	go func() {
		wg.Wait()
		close(w.done)
	}()
	return nil
}

// Stop cancels the consumers and waits for in-flight messages to finish or
// ctx to expire.
func (w *Worker) Stop(ctx context.Context) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel, done := w.cancel, w.done
	w.running = false
	w.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run consumes until ctx is done or the dequeuer is closed.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-w.done
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

func (w *Worker) loop(ctx context.Context, slot int) {
	for {
		delivery, err := w.dequeuer.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrClosed) {
				return
			}
			w.logger.Error("queue dequeue failed", "worker", slot, "error", err.Error())
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.errBackoff):
			}
			continue
		}
		if delivery == nil {
			continue
		}
		w.process(ctx, delivery)
	}
}

func (w *Worker) process(ctx context.Context, delivery jobqueue.Delivery) {
	// Delivery outlives shutdown of the consumer loop.
	handleCtx := context.WithoutCancel(ctx)
	msg := delivery.Message()
	event := worker.Event{
		Message:   msg,
		Delivery:  delivery,
		Attempt:   1,
		StartedAt: time.Now().UTC(),
	}
	w.onStart(handleCtx, event)

	err := w.handle(handleCtx, msg)
	event.Duration = time.Since(event.StartedAt)
	if err != nil {
		event.Err = err
		w.onFailure(handleCtx, event)
	} else {
		w.onSuccess(handleCtx, event)
	}

	if ackErr := delivery.Ack(handleCtx); ackErr != nil {
		w.logger.Error("queue ack failed", "error", ackErr.Error())
	}
}

func (w *Worker) handle(ctx context.Context, msg *job.ExecutionMessage) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("queue: handler panic: %v", recovered)
		}
	}()
	if msg == nil {
		return fmt.Errorf("queue: delivery has no message")
	}
	return w.handler.Handle(ctx, msg)
}

func (w *Worker) onStart(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnStart(ctx, event)
	}
}

func (w *Worker) onSuccess(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnSuccess(ctx, event)
	}
}

func (w *Worker) onFailure(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnFailure(ctx, event)
	}
}
