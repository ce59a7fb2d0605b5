package di

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goliatone/go-experience-repository/cache"
	"github.com/goliatone/go-experience-repository/config"
	"github.com/goliatone/go-experience-repository/localstore"
	"github.com/goliatone/go-experience-repository/logging"
	"github.com/goliatone/go-experience-repository/projection"
	"github.com/goliatone/go-experience-repository/remote"
	"github.com/goliatone/go-experience-repository/repository"
	"github.com/goliatone/go-experience-repository/storecache"
	"github.com/goliatone/go-experience-repository/usecase"
)

// memoNamespace prefixes every memo key written by the store decorator.
const memoNamespace = "experiences"

// Container wires the experience graph: logger, remote client, local store,
// optional memo, repository, use cases and projections. Components are
// built once and shared.
type Container struct {
	config config.Config
	logger logging.Logger

	remote        *remote.Client
	store         *localstore.BunStore
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	repository    *repository.ExperienceRepository

	recommended *usecase.GetRecommendedExperiences
	recent      *usecase.GetRecentExperiences
	details     *usecase.GetExperienceDetails
	search      *usecase.SearchExperiences
	like        *usecase.LikeExperience

	closers []func() error
}

// Option customizes container construction.
type Option func(*Container)

// WithLogger replaces the logger built from configuration.
func WithLogger(logger logging.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// NewContainer validates cfg and builds every component. Call Close to
// release the store and log shippers.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c := &Container{config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		logger, err := c.newLogger()
		if err != nil {
			return nil, err
		}
		c.logger = logger
	}

	if err := c.build(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.logger.Info("container ready", logging.Fields{
		"base_url":     cfg.API.BaseURL,
		"memo_enabled": cfg.Memo.Enabled,
	})
	return c, nil
}

// NewContainerFromEnv loads configuration with config.Load and builds the container.
func NewContainerFromEnv(ctx context.Context, envPath ...string) (*Container, error) {
	cfg, err := config.Load(envPath...)
	if err != nil {
		return nil, err
	}
	return NewContainer(ctx, cfg)
}

func (c *Container) newLogger() (logging.Logger, error) {
	level := logging.ParseLevel(c.config.Log.Level)
	loggers := []logging.Logger{
		logging.NewSlogLogger(logging.SlogConfig{
			Writer: os.Stdout,
			Level:  level,
			Format: c.config.Log.Format,
		}),
	}

	if fb := c.config.FluentBit; fb.Enabled {
		fluentCfg := logging.FluentConfig{
			Host:     fb.Host,
			Port:     fb.Port,
			Tag:      fb.Tag,
			MinLevel: level,
			Async:    true,
		}
		client, err := logging.NewFluentClient(fluentCfg)
		if err != nil {
			return nil, err
		}
		fluentLogger, err := logging.NewFluentLogger(client, fluentCfg)
		if err != nil {
			client.Close()
			return nil, err
		}
		c.closers = append(c.closers, fluentLogger.Close)
		loggers = append(loggers, fluentLogger)
	}

	return logging.NewMultiLogger(loggers...)
}

func (c *Container) build(ctx context.Context) error {
	client, err := remote.NewClient(c.config.RemoteConfig(), c.logger)
	if err != nil {
		return err
	}
	c.remote = client

	store, err := localstore.Open(ctx, c.config.Store.DSN, c.logger)
	if err != nil {
		return err
	}
	c.store = store
	c.closers = append(c.closers, store.Close)

	var base localstore.Store = store
	if c.config.Memo.Enabled {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.TTL = c.config.Memo.TTL
		cacheCfg.Capacity = c.config.Memo.Capacity
		cacheService, err := cache.NewCacheService(cacheCfg)
		if err != nil {
			return err
		}
		c.cacheService = cacheService
		c.keySerializer = cache.NewNamespacedKeySerializer(memoNamespace)
		base = storecache.New(store, c.cacheService, c.keySerializer, c.logger)
	}

	c.repository = repository.New(c.remote, base, c.logger)
	c.recommended = usecase.NewGetRecommendedExperiences(c.repository)
	c.recent = usecase.NewGetRecentExperiences(c.repository)
	c.details = usecase.NewGetExperienceDetails(c.repository)
	c.search = usecase.NewSearchExperiences(c.repository, c.config.Search.MinQueryLength)
	c.like = usecase.NewLikeExperience(c.repository)
	return nil
}

// Close releases resources in reverse construction order.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Container) Config() config.Config { return c.config }

func (c *Container) Logger() logging.Logger { return c.logger }

func (c *Container) Remote() *remote.Client { return c.remote }

// Store returns the underlying SQLite store, bypassing the memo.
func (c *Container) Store() *localstore.BunStore { return c.store }

// CacheService returns the memo service, or nil when the memo is disabled.
func (c *Container) CacheService() cache.CacheService { return c.cacheService }

func (c *Container) KeySerializer() cache.KeySerializer { return c.keySerializer }

func (c *Container) Repository() *repository.ExperienceRepository { return c.repository }

func (c *Container) GetRecommendedExperiences() *usecase.GetRecommendedExperiences {
	return c.recommended
}

func (c *Container) GetRecentExperiences() *usecase.GetRecentExperiences { return c.recent }

func (c *Container) GetExperienceDetails() *usecase.GetExperienceDetails { return c.details }

func (c *Container) SearchExperiences() *usecase.SearchExperiences { return c.search }

func (c *Container) LikeExperience() *usecase.LikeExperience { return c.like }

// NewHome returns a fresh home projection bound to the shared use cases.
func (c *Container) NewHome() *projection.Home {
	return projection.NewHome(projection.HomeDeps{
		Recommended: c.recommended,
		Recent:      c.recent,
		Search:      c.search,
		Like:        c.like,
	}, c.logger)
}

// NewDetail returns a fresh detail projection for id.
func (c *Container) NewDetail(id string) *projection.Detail {
	return projection.NewDetail(id, c.details, c.like, c.logger)
}
