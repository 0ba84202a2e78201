package app

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-enrollment-client/auth"
	"github.com/jrsteele09/go-enrollment-client/enrollment"
	"github.com/jrsteele09/go-enrollment-client/httpclient"
	"github.com/jrsteele09/go-enrollment-client/internal/config"
	apperrors "github.com/jrsteele09/go-enrollment-client/internal/errors"
	"github.com/jrsteele09/go-enrollment-client/redirect"
	"github.com/jrsteele09/go-enrollment-client/storage"
	"github.com/jrsteele09/go-enrollment-client/storage/redis"
	"github.com/jrsteele09/go-enrollment-client/storage/repofake"
	"github.com/jrsteele09/go-enrollment-client/storage/sqlite"
	"github.com/jrsteele09/go-enrollment-client/token"
	"github.com/jrsteele09/go-enrollment-client/token/refresh"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// App owns every long-lived piece of the session client. The shell builds one
// at start-up and closes it on exit.
type App struct {
	Config   config.Config
	Storage  storage.Repo
	Store    *token.Store
	Notifier *redirect.Notifier
	Refresh  *refresh.Coordinator
	Auth     *auth.Service
	API      *enrollment.API

	log zerolog.Logger
}

// Option customises New.
type Option func(*options)

type options struct {
	toaster   redirect.Toaster
	fallback  redirect.Navigator
	storage   storage.Repo
	transport http.RoundTripper
}

// WithToaster sets how messages are shown before a login redirect.
func WithToaster(t redirect.Toaster) Option {
	return func(o *options) { o.toaster = t }
}

// WithFallbackNavigator sets the navigator used until the shell registers one.
func WithFallbackNavigator(n redirect.Navigator) Option {
	return func(o *options) { o.fallback = n }
}

// WithStorage overrides the configured storage driver.
func WithStorage(repo storage.Repo) Option {
	return func(o *options) { o.storage = repo }
}

// WithTransport replaces http.DefaultTransport under the interceptor chain.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	o := options{transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	repo := o.storage
	if repo == nil {
		var err error
		if repo, err = OpenStorage(ctx, cfg); err != nil {
			return nil, err
		}
	}

	a, err := build(ctx, cfg, log, repo, o)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg config.Config, log zerolog.Logger, repo storage.Repo, o options) (*App, error) {
	jar, err := httpclient.NewCookieJar(ctx, repo, log)
	if err != nil {
		return nil, errors.Wrap(err, "[app New] cookie jar")
	}

	store := token.NewStore(repo, log)
	notifier := redirect.New(redirect.Config{
		LoginPath:     cfg.GetLoginPath(),
		LoginURL:      cfg.GetLoginURL(),
		ToastDelay:    cfg.GetToastDelay(),
		NavigateDelay: cfg.GetNavigateDelay(),
	}, o.toaster, o.fallback, log)

	paths := cfg.GetAuthPaths()

	// The refresh call goes out on a client without the auth interceptor so it
	// can never trigger another refresh.
	raw, err := httpclient.New(cfg.GetBaseURL(), &http.Client{
		Transport: httpclient.Chain(o.transport, httpclient.RequestIDInterceptor(), httpclient.LoggingInterceptor(log)),
		Jar:       jar,
		Timeout:   cfg.GetRequestTimeout(),
	}, log)
	if err != nil {
		return nil, errors.Wrap(err, "[app New] refresh client")
	}
	coordinator := refresh.New(raw, store, notifier, paths.Refresh, log)
	store.OnClear(coordinator.Forget)

	transport := httpclient.Chain(o.transport,
		httpclient.RequestIDInterceptor(),
		httpclient.LoggingInterceptor(log),
		httpclient.AuthInterceptor(store, coordinator, cfg.GetBaseURL(), paths.All(), log),
	)
	api, err := httpclient.New(cfg.GetBaseURL(), &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   cfg.GetRequestTimeout(),
	}, log)
	if err != nil {
		return nil, errors.Wrap(err, "[app New] api client")
	}

	return &App{
		Config:   cfg,
		Storage:  repo,
		Store:    store,
		Notifier: notifier,
		Refresh:  coordinator,
		Auth:     auth.NewService(api, store, coordinator, notifier, auth.Paths{Login: paths.Login, Logout: paths.Logout}, log),
		API:      enrollment.NewAPI(api),
		log:      log,
	}, nil
}

// OpenStorage opens the session storage selected by the configuration.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (storage.Repo, error) {
	switch driver := cfg.GetStorageDriver(); driver {
	case config.StorageDriverMemory:
		return repofake.NewFakeStorageRepo(), nil
	case config.StorageDriverSQLite:
		repo, err := sqlite.Open(ctx, cfg.GetStoragePath())
		if err != nil {
			return nil, errors.Wrap(err, "[app OpenStorage] sqlite")
		}
		return repo, nil
	case config.StorageDriverRedis:
		repo, err := redis.New(ctx, redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
			Prefix:   cfg.GetRedisPrefix(),
		})
		if err != nil {
			return nil, errors.Wrap(err, "[app OpenStorage] redis")
		}
		return repo, nil
	default:
		return nil, apperrors.Wrapf(apperrors.ErrUnsupportedStorage, "[app OpenStorage] %q", driver)
	}
}

// Close waits for scheduled redirects and releases the storage.
func (a *App) Close() error {
	a.Notifier.Wait()
	if err := a.Storage.Close(); err != nil {
		a.log.Err(err).Msg("Failed to close session storage")
		return err
	}
	return nil
}
