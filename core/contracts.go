package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// EnigmaStore is the record store. FindBySecret reports found=false with a nil
// error for empty or unmatched secrets; errors are reserved for backend
// failures.
type EnigmaStore interface {
	FindBySecret(ctx context.Context, secret string) (Enigma, bool, error)
	IncrementDiscoveryCount(ctx context.Context, id string) (Enigma, error)
}

// EnigmaAdminStore covers the administrative lifecycle used by the CLI.
type EnigmaAdminStore interface {
	EnigmaStore
	Create(ctx context.Context, in CreateEnigmaInput) (Enigma, error)
	Get(ctx context.Context, id string) (Enigma, error)
	List(ctx context.Context) ([]Enigma, error)
	Delete(ctx context.Context, id string) error
}

type StoreProvider interface {
	EnigmaStore() EnigmaAdminStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

// NotificationScheduler hands a notification off for background delivery.
// Implementations must not block on delivery.
type NotificationScheduler interface {
	Schedule(ctx context.Context, notification Notification) error
}

type NotificationSchedulerFunc func(ctx context.Context, notification Notification) error

func (f NotificationSchedulerFunc) Schedule(ctx context.Context, notification Notification) error {
	return f(ctx, notification)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider
