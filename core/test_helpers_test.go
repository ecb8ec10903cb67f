package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type memoryEnigmaStore struct {
	mu        sync.Mutex
	records   map[string]Enigma
	findCalls int
	incCalls  int
	findErr   error
	incErr    error
	nextID    int
	createErr error
}

func newMemoryEnigmaStore(records ...Enigma) *memoryEnigmaStore {
	store := &memoryEnigmaStore{records: map[string]Enigma{}}
	for _, record := range records {
		store.records[record.ID] = record
	}
	return store
}

func (s *memoryEnigmaStore) FindBySecret(_ context.Context, secret string) (Enigma, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.findErr != nil {
		return Enigma{}, false, s.findErr
	}
	if secret == "" {
		return Enigma{}, false, nil
	}
	for _, record := range s.records {
		if record.Secret == secret {
			return record, true, nil
		}
	}
	return Enigma{}, false, nil
}

func (s *memoryEnigmaStore) IncrementDiscoveryCount(_ context.Context, id string) (Enigma, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incCalls++
	if s.incErr != nil {
		return Enigma{}, s.incErr
	}
	record, ok := s.records[id]
	if !ok {
		return Enigma{}, fmt.Errorf("memory store: enigma %q not found", id)
	}
	record.DiscoveryCount++
	s.records[id] = record
	return record, nil
}

func (s *memoryEnigmaStore) Create(_ context.Context, in CreateEnigmaInput) (Enigma, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return Enigma{}, s.createErr
	}
	for _, record := range s.records {
		if record.Secret == in.Secret {
			return Enigma{}, errors.New("UNIQUE constraint failed: enigma.secret")
		}
	}
	s.nextID++
	record := Enigma{
		ID:         fmt.Sprintf("enigma_%d", s.nextID),
		Secret:     in.Secret,
		TargetURL:  in.TargetURL,
		WebhookURL: in.WebhookURL,
		CreatedAt:  time.Now().UTC(),
	}
	s.records[record.ID] = record
	return record, nil
}

func (s *memoryEnigmaStore) Get(_ context.Context, id string) (Enigma, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return Enigma{}, fmt.Errorf("memory store: enigma %q not found", id)
	}
	return record, nil
}

func (s *memoryEnigmaStore) List(context.Context) ([]Enigma, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Enigma, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, nil
}

func (s *memoryEnigmaStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("memory store: enigma %q not found", id)
	}
	delete(s.records, id)
	return nil
}

func (s *memoryEnigmaStore) count(id string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id].DiscoveryCount
}

type capturingScheduler struct {
	mu            sync.Mutex
	notifications []Notification
	err           error
}

func (s *capturingScheduler) Schedule(_ context.Context, notification Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, notification)
	return s.err
}

func (s *capturingScheduler) calls() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.notifications...)
}

type logCall struct {
	level string
	msg   string
	args  []any
}

type stubLogger struct {
	mu    *sync.Mutex
	calls *[]logCall
}

func newStubLogger() stubLogger {
	return stubLogger{mu: &sync.Mutex{}, calls: &[]logCall{}}
}

func (s stubLogger) record(level string, msg string, args []any) {
	if s.mu == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.calls = append(*s.calls, logCall{level: level, msg: msg, args: append([]any(nil), args...)})
}

func (s stubLogger) entries() []logCall {
	if s.mu == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logCall(nil), (*s.calls)...)
}

func (s stubLogger) Trace(msg string, args ...any) { s.record("trace", msg, args) }
func (s stubLogger) Debug(msg string, args ...any) { s.record("debug", msg, args) }
func (s stubLogger) Info(msg string, args ...any)  { s.record("info", msg, args) }
func (s stubLogger) Warn(msg string, args ...any)  { s.record("warn", msg, args) }
func (s stubLogger) Error(msg string, args ...any) { s.record("error", msg, args) }
func (s stubLogger) Fatal(msg string, args ...any) { s.record("fatal", msg, args) }
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

func newTestService(store EnigmaStore, scheduler NotificationScheduler, opts ...Option) (*Service, error) {
	base := []Option{WithEnigmaStore(store)}
	if scheduler != nil {
		base = append(base, WithNotificationScheduler(scheduler))
	}
	return NewService(Config{}, append(base, opts...)...)
}
