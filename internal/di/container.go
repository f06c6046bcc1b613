package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/vesper-voice/vesper/internal/adapters/authapi"
	"github.com/vesper-voice/vesper/internal/adapters/httpapi"
	"github.com/vesper-voice/vesper/internal/adapters/people"
	"github.com/vesper-voice/vesper/internal/adapters/prefs"
	"github.com/vesper-voice/vesper/internal/bus"
	"github.com/vesper-voice/vesper/internal/config"
	"github.com/vesper-voice/vesper/internal/core"
	"github.com/vesper-voice/vesper/internal/extract"
	"github.com/vesper-voice/vesper/internal/factory"
	"github.com/vesper-voice/vesper/internal/logging"
	"github.com/vesper-voice/vesper/internal/phonetic"
	"github.com/vesper-voice/vesper/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
// for the broker binary.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewNormalizerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewPrefsFactory); err != nil {
		return nil, err
	}

	// Register normalizer
	if err := container.Provide(func(f *factory.NormalizerFactory) (core.Normalizer, error) {
		return f.CreateNormalizer()
	}); err != nil {
		return nil, err
	}

	// Register contact cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.ContactCache, error) {
		return f.CreateContactCache()
	}); err != nil {
		return nil, err
	}

	// Register preference store
	if err := container.Provide(func(f *factory.PrefsFactory) (prefs.Store, error) {
		return f.CreatePreferenceStore()
	}); err != nil {
		return nil, err
	}

	// Register People API contact source
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.ContactSource, error) {
		peopleCfg := cfg.GetPeople()
		ts := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.GetString("people.access_token"),
		})
		return people.NewClient(context.Background(), ts, peopleCfg.PageSize, peopleCfg.MaxPages, logger)
	}); err != nil {
		return nil, err
	}

	// Register directory service
	if err := container.Provide(core.NewDirectoryService); err != nil {
		return nil, err
	}

	// Register phonetic matcher
	if err := container.Provide(func(cfg *config.Config) core.PhoneticMatcher {
		resolverCfg := cfg.GetResolver()
		if !resolverCfg.PhoneticFallback {
			return nil
		}
		return phonetic.New(phonetic.WithThreshold(resolverCfg.PhoneticThreshold))
	}); err != nil {
		return nil, err
	}

	// Register resolver
	if err := container.Provide(core.NewContactResolver); err != nil {
		return nil, err
	}

	// Register extractor
	if err := container.Provide(func() core.Extractor {
		return extract.New()
	}); err != nil {
		return nil, err
	}

	// Register pipeline service
	if err := container.Provide(core.NewPipelineService); err != nil {
		return nil, err
	}

	// Register bus dispatcher with handlers
	if err := container.Provide(func(
		pipeline *core.PipelineService,
		directory *core.DirectoryService,
		logger *zap.Logger,
	) *bus.Dispatcher {
		dispatcher := bus.NewDispatcher(logger)
		handlers := bus.NewHandlers(pipeline, directory, nil, logger)
		handlers.RegisterAll(dispatcher)
		return dispatcher
	}); err != nil {
		return nil, err
	}

	// Register auth service client
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*authapi.Client, error) {
		timeout, err := cfg.GetDuration("auth.timeout")
		if err != nil {
			return nil, err
		}
		return authapi.NewClient(cfg.GetString("auth.base_url"), cfg.GetString("auth.service_key"), timeout, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register broker API server
	if err := container.Provide(func(
		cfg *config.Config,
		auth *authapi.Client,
		prefStore prefs.Store,
		dispatcher *bus.Dispatcher,
		logger *zap.Logger,
	) *httpapi.Server {
		return httpapi.NewServer(cfg.GetString("server.listen_address"), auth, prefStore, dispatcher, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
