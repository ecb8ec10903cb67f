package queue

import (
	"context"
	"fmt"
	"sync"

	job "github.com/goliatone/go-job"
	jobqueue "github.com/goliatone/go-job/queue"
)

// MemoryQueue is an unbounded in-process FIFO. Enqueue never blocks.
type MemoryQueue struct {
	mu     sync.Mutex
	items  []*job.ExecutionMessage
	signal chan struct{}
	closed bool
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{signal: make(chan struct{}, 1)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	if q == nil {
		return fmt.Errorf("queue: memory queue is nil")
	}
	if msg == nil {
		return fmt.Errorf("queue: execution message is required")
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, msg)
	q.mu.Unlock()
	q.notify()
	return nil
}

// Dequeue blocks until a message is available, the queue is closed or ctx is
// done.
func (q *MemoryQueue) Dequeue(ctx context.Context) (jobqueue.Delivery, error) {
	if q == nil {
		return nil, fmt.Errorf("queue: memory queue is nil")
	}
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			msg := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			remaining := len(q.items)
			q.mu.Unlock()
			if remaining > 0 {
				q.notify()
			}
			return &memoryDelivery{queue: q, msg: msg}, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			q.notify()
			return nil, ErrClosed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.signal:
		}
	}
}

// Len reports the number of pending messages.
func (q *MemoryQueue) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting messages. Pending messages can still be dequeued.
func (q *MemoryQueue) Close() error {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.notify()
	return nil
}

func (q *MemoryQueue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

type memoryDelivery struct {
	queue *MemoryQueue
	msg   *job.ExecutionMessage
}

func (d *memoryDelivery) Message() *job.ExecutionMessage {
	return d.msg
}

func (d *memoryDelivery) Ack(context.Context) error {
	return nil
}

func (d *memoryDelivery) Nack(ctx context.Context, opts jobqueue.NackOptions) error {
	if !opts.Requeue || opts.DeadLetter {
		return nil
	}
	return d.queue.Enqueue(ctx, d.msg)
}
