package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	job "github.com/goliatone/go-job"
	jobqueue "github.com/goliatone/go-job/queue"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisKey         = "enigma:notifications"
	defaultRedisPollTimeout = time.Second
)

// RedisQueue stores messages in a Redis list: LPUSH on enqueue, BRPOP on
// dequeue, which keeps FIFO order across processes.
type RedisQueue struct {
	client      redis.UniversalClient
	key         string
	pollTimeout time.Duration
}

type RedisOption func(*RedisQueue)

func WithRedisKey(key string) RedisOption {
	return func(q *RedisQueue) {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			q.key = trimmed
		}
	}
}

func WithPollTimeout(timeout time.Duration) RedisOption {
	return func(q *RedisQueue) {
		if timeout > 0 {
			q.pollTimeout = timeout
		}
	}
}

func NewRedisQueue(client redis.UniversalClient, opts ...RedisOption) (*RedisQueue, error) {
	if client == nil {
		return nil, fmt.Errorf("queue: redis client is required")
	}
	q := &RedisQueue{
		client:      client,
		key:         DefaultRedisKey,
		pollTimeout: defaultRedisPollTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	return q, nil
}

// NewRedisQueueFromURL parses a redis:// URL and connects a client.
func NewRedisQueueFromURL(redisURL string, opts ...RedisOption) (*RedisQueue, error) {
	redisOpts, err := redis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("queue: invalid redis url: %w", err)
	}
	return NewRedisQueue(redis.NewClient(redisOpts), opts...)
}

func (q *RedisQueue) Enqueue(ctx context.Context, msg *job.ExecutionMessage) error {
	if q == nil || q.client == nil {
		return fmt.Errorf("queue: redis queue is not configured")
	}
	if msg == nil {
		return fmt.Errorf("queue: execution message is required")
	}
	payload, err := json.Marshal(newRedisEnvelope(msg))
	if err != nil {
		return fmt.Errorf("queue: encode message: %w", err)
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context) (jobqueue.Delivery, error) {
	if q == nil || q.client == nil {
		return nil, fmt.Errorf("queue: redis queue is not configured")
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
		// BRPOP replies with [key, value].
		if len(result) != 2 {
			return nil, fmt.Errorf("queue: unexpected brpop reply of %d elements", len(result))
		}
		var envelope redisEnvelope
		if err := json.Unmarshal([]byte(result[1]), &envelope); err != nil {
			return nil, fmt.Errorf("queue: decode message: %w", err)
		}
		return &redisDelivery{queue: q, msg: envelope.message()}, nil
	}
}

// Len reports the number of pending messages.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	if q == nil || q.client == nil {
		return 0, fmt.Errorf("queue: redis queue is not configured")
	}
	return q.client.LLen(ctx, q.key).Result()
}

func (q *RedisQueue) Close() error {
	if q == nil || q.client == nil {
		return nil
	}
	return q.client.Close()
}

type redisEnvelope struct {
	JobID          string         `json:"job_id"`
	ScriptPath     string         `json:"script_path,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
	DedupPolicy    string         `json:"dedup_policy,omitempty"`
}

func newRedisEnvelope(msg *job.ExecutionMessage) redisEnvelope {
	return redisEnvelope{
		JobID:          msg.JobID,
		ScriptPath:     msg.ScriptPath,
		Parameters:     msg.Parameters,
		IdempotencyKey: msg.IdempotencyKey,
		DedupPolicy:    string(msg.DedupPolicy),
	}
}

func (e redisEnvelope) message() *job.ExecutionMessage {
	return &job.ExecutionMessage{
		JobID:          e.JobID,
		ScriptPath:     e.ScriptPath,
		Parameters:     e.Parameters,
		IdempotencyKey: e.IdempotencyKey,
		DedupPolicy:    job.DeduplicationPolicy(e.DedupPolicy),
	}
}

type redisDelivery struct {
	queue *RedisQueue
	msg   *job.ExecutionMessage
}

func (d *redisDelivery) Message() *job.ExecutionMessage {
	return d.msg
}

// Ack is a no-op: BRPOP already removed the message from the list.
func (d *redisDelivery) Ack(context.Context) error {
	return nil
}

func (d *redisDelivery) Nack(ctx context.Context, opts jobqueue.NackOptions) error {
	if !opts.Requeue || opts.DeadLetter {
		return nil
	}
	return d.queue.Enqueue(ctx, d.msg)
}

var (
	_ jobqueue.Enqueuer = (*RedisQueue)(nil)
	_ jobqueue.Dequeuer = (*RedisQueue)(nil)
	_ jobqueue.Enqueuer = (*MemoryQueue)(nil)
	_ jobqueue.Dequeuer = (*MemoryQueue)(nil)
)
