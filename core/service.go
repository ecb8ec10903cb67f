package core

import (
	"context"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	store             EnigmaStore
	scheduler         NotificationScheduler
	scheduleTimeout   time.Duration
	now               func() time.Time
}

// DefaultScheduleTimeout caps the notification hand-off inside Verify.
const DefaultScheduleTimeout = 2 * time.Second

type ServiceDependencies struct {
	Logger                Logger
	LoggerProvider        LoggerProvider
	ErrorMapper           ErrorMapper
	PersistenceClient     any
	RepositoryFactory     any
	ConfigProvider        ConfigProvider
	OptionsResolver       OptionsResolver
	EnigmaStore           EnigmaStore
	NotificationScheduler NotificationScheduler
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("enigma", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("enigma"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorMapper == nil {
		builder.errorMapper = MapError
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.scheduleTimeout <= 0 {
		builder.scheduleTimeout = DefaultScheduleTimeout
	}
	if builder.now == nil {
		builder.now = func() time.Time {
			return time.Now().UTC()
		}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.store == nil && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			stores, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			if stores != nil {
				builder.store = stores.EnigmaStore()
			}
		}
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		store:             builder.store,
		scheduler:         builder.scheduler,
		scheduleTimeout:   builder.scheduleTimeout,
		now:               builder.now,
	}, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:                s.logger,
		LoggerProvider:        s.loggerProvider,
		ErrorMapper:           s.errorMapper,
		PersistenceClient:     s.persistenceClient,
		RepositoryFactory:     s.repositoryFactory,
		ConfigProvider:        s.configProvider,
		OptionsResolver:       s.optionsResolver,
		EnigmaStore:           s.store,
		NotificationScheduler: s.scheduler,
	}
}

// Verify checks a secret attempt. Validation failures and unmatched secrets
// are reported through the result with a nil error; a non-nil error always
// means the record store failed and the request must be aborted.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (result VerifyResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "verify", err, fields)
	}()

	if s == nil || s.store == nil {
		return VerifyResult{}, NewDependencyError("core: enigma store is required")
	}

	if req.Name == "" {
		fields["outcome"] = "name_missing"
		return failedVerification(ReasonNameRequired), nil
	}
	if req.Secret == "" {
		fields["outcome"] = "secret_missing"
		return failedVerification(ReasonSecretRequired), nil
	}

	enigma, found, err := s.store.FindBySecret(ctx, req.Secret)
	if err != nil {
		return VerifyResult{}, storageError(err, "lookup")
	}
	if !found {
		fields["outcome"] = "mismatch"
		return failedVerification(ReasonSecretMismatch), nil
	}
	fields["enigma_id"] = enigma.ID

	updated, err := s.store.IncrementDiscoveryCount(ctx, enigma.ID)
	if err != nil {
		return VerifyResult{}, storageError(err, "increment")
	}
	fields["outcome"] = "discovered"
	fields["discovery_count"] = updated.DiscoveryCount

	if updated.HasWebhook() {
		s.scheduleNotification(ctx, updated, req.Name)
	}

	return VerifyResult{
		Status: StatusSuccess,
		Reason: ReasonDiscovered,
		URL:    updated.TargetURL,
	}, nil
}

// scheduleNotification never fails the caller. The request context is
// detached so the hand-off survives the response being written, and the
// hand-off is bounded by scheduleTimeout.
func (s *Service) scheduleNotification(ctx context.Context, enigma Enigma, name string) {
	if name == "" {
		name = UnknownDisplayName
	}
	notification := Notification{
		EnigmaID: enigma.ID,
		URL:      strings.TrimSpace(enigma.WebhookURL),
		Secret:   enigma.Secret,
		Count:    enigma.DiscoveryCount,
		Name:     name,
	}
	fields := map[string]any{
		"enigma_id":       enigma.ID,
		"discovery_count": enigma.DiscoveryCount,
	}
	if s.scheduler == nil {
		s.logWarn(ctx, "webhook configured but no notification scheduler is wired", fields)
		return
	}
	scheduleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.scheduleTimeout)
	defer cancel()
	if err := s.scheduler.Schedule(scheduleCtx, notification); err != nil {
		fields["error"] = err.Error()
		s.logError(ctx, "webhook notification could not be scheduled", fields)
	}
}

func (s *Service) CreateEnigma(ctx context.Context, in CreateEnigmaInput) (created Enigma, err error) {
	startedAt := time.Now()
	defer func() {
		s.observeOperation(ctx, startedAt, "create_enigma", err, map[string]any{"enigma_id": created.ID})
	}()
	store, err := s.adminStore()
	if err != nil {
		return Enigma{}, err
	}
	if err := in.Validate(); err != nil {
		return Enigma{}, s.mapError(err)
	}
	created, err = store.Create(ctx, in)
	if err != nil {
		return Enigma{}, s.mapError(err)
	}
	return created, nil
}

func (s *Service) GetEnigma(ctx context.Context, id string) (Enigma, error) {
	store, err := s.adminStore()
	if err != nil {
		return Enigma{}, err
	}
	if strings.TrimSpace(id) == "" {
		return Enigma{}, NewValidationError("id", "id is required")
	}
	enigma, err := store.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return Enigma{}, s.mapError(err)
	}
	return enigma, nil
}

func (s *Service) ListEnigmas(ctx context.Context) ([]Enigma, error) {
	store, err := s.adminStore()
	if err != nil {
		return nil, err
	}
	enigmas, err := store.List(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return enigmas, nil
}

func (s *Service) DeleteEnigma(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	defer func() {
		s.observeOperation(ctx, startedAt, "delete_enigma", err, map[string]any{"enigma_id": id})
	}()
	store, err := s.adminStore()
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return NewValidationError("id", "id is required")
	}
	if err := store.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *Service) adminStore() (EnigmaAdminStore, error) {
	if s == nil || s.store == nil {
		return nil, NewDependencyError("core: enigma store is required")
	}
	store, ok := s.store.(EnigmaAdminStore)
	if !ok {
		return nil, NewDependencyError("core: enigma store does not support administration")
	}
	return store, nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	mapper := MapError
	if s != nil && s.errorMapper != nil {
		mapper = s.errorMapper
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

func storageError(err error, operation string) error {
	if IsStorageError(err) {
		return err
	}
	return NewStorageError(err, operation)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}
