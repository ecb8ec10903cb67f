package enigma

import "github.com/goliatone/go-enigma/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type EnigmaStore = core.EnigmaStore
type EnigmaAdminStore = core.EnigmaAdminStore
type NotificationScheduler = core.NotificationScheduler

type Enigma = core.Enigma
type CreateEnigmaInput = core.CreateEnigmaInput
type VerifyRequest = core.VerifyRequest
type VerifyResult = core.VerifyResult
type Notification = core.Notification

var (
	WithLogger                = core.WithLogger
	WithLoggerProvider        = core.WithLoggerProvider
	WithErrorMapper           = core.WithErrorMapper
	WithPersistenceClient     = core.WithPersistenceClient
	WithRepositoryFactory     = core.WithRepositoryFactory
	WithConfigProvider        = core.WithConfigProvider
	WithOptionsResolver       = core.WithOptionsResolver
	WithEnigmaStore           = core.WithEnigmaStore
	WithNotificationScheduler = core.WithNotificationScheduler
	WithClock                 = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
