package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/coreapi/component"
	"github.com/kbukum/coreapi/config"
	"github.com/kbukum/coreapi/connectivity"
	"github.com/kbukum/coreapi/encryption"
	"github.com/kbukum/coreapi/logger"
	"github.com/kbukum/coreapi/observability"
	"github.com/kbukum/coreapi/repository"
	"github.com/kbukum/coreapi/tokenstore"
	"github.com/kbukum/coreapi/transport"
	"github.com/kbukum/coreapi/version"
)

// Stack holds every collaborator a repository needs.
type Stack struct {
	cfg        config.Config
	log        *logger.Logger
	tokens     tokenstore.Store
	probe      connectivity.Probe
	transport  *transport.Adapter
	components *component.Registry
	policy     repository.StatusPolicy

	tracerProvider  *sdktrace.TracerProvider
	meterProvider   *sdkmetric.MeterProvider
	metrics         *observability.RepositoryMetrics
	gracefulTimeout time.Duration
}

// New builds a stack from cfg. Defaults are applied and the result is
// validated. Nothing is started until Start.
func New(cfg config.Config, opts ...Option) (*Stack, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	o := resolveOptions(opts)

	policy, err := repository.ParseStatusPolicy(cfg.API.StatusPolicy)
	if err != nil {
		return nil, err
	}

	s := &Stack{
		cfg:             cfg,
		log:             o.logger,
		policy:          policy,
		gracefulTimeout: o.gracefulTimeout,
	}
	if s.log == nil {
		s.log = logger.New(cfg.Logging, cfg.Name)
	}
	s.components = component.NewRegistry(s.log)

	if err := s.init(o); err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
		defer cancel()
		if discardErr := s.components.Discard(ctx); discardErr != nil {
			s.log.Warn("releasing partial stack failed", logger.Fields(logger.FieldError, discardErr.Error()))
		}
		return nil, err
	}
	return s, nil
}

// init builds the collaborators in dependency order. Everything that holds
// resources is registered as a component as soon as it exists.
func (s *Stack) init(o *stackOptions) error {
	if err := s.initObservability(); err != nil {
		return err
	}
	if err := s.initTokenStore(o); err != nil {
		return err
	}
	if err := s.initProbe(o); err != nil {
		return err
	}
	return s.initTransport(o)
}

func (s *Stack) initObservability() error {
	if !s.cfg.Observability.Enabled {
		return nil
	}
	ctx := context.Background()
	prevTracer, prevMeter, prevPropagator := otel.GetTracerProvider(), otel.GetMeterProvider(), otel.GetTextMapPropagator()
	restoreGlobals := func() {
		otel.SetTracerProvider(prevTracer)
		otel.SetMeterProvider(prevMeter)
		otel.SetTextMapPropagator(prevPropagator)
	}

	tp, err := observability.InitTracer(ctx, s.cfg.Observability, s.log)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	mp, err := observability.InitMeter(ctx, s.cfg.Observability, s.log)
	if err != nil {
		restoreGlobals()
		_ = tp.Shutdown(ctx)
		return fmt.Errorf("init meter: %w", err)
	}
	metrics, err := observability.NewRepositoryMetrics(observability.Meter(mp))
	if err != nil {
		restoreGlobals()
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return err
	}
	s.tracerProvider, s.meterProvider, s.metrics = tp, mp, metrics

	return s.components.Register(component.Hook{
		ID: "telemetry",
		OnStop: func(ctx context.Context) error {
			restoreGlobals()
			return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
		},
	})
}

func (s *Stack) initTokenStore(o *stackOptions) error {
	tc := s.cfg.TokenStore
	storeOpts := []tokenstore.Option{
		tokenstore.WithTTL(tc.TTL),
		tokenstore.WithKeyPrefix(tc.KeyPrefix),
		tokenstore.WithLogger(s.log),
	}

	var store tokenstore.Store
	switch tc.Backend {
	case config.BackendRedis:
		client := o.redisClient
		if client == nil {
			client = tokenstore.NewRedisClient(s.cfg.Redis)
		}
		rs := tokenstore.NewRedis(client, storeOpts...)
		if err := s.components.Register(component.Hook{
			ID:      "redis",
			OnStart: rs.Ping,
			OnStop:  func(context.Context) error { return rs.Close() },
		}); err != nil {
			return err
		}
		store = rs
	default:
		store = tokenstore.NewMemory(storeOpts...)
	}

	if tc.Encryption.Enabled {
		c, err := encryption.New(tc.Encryption.Key, encryption.Algorithm(tc.Encryption.Algorithm))
		if err != nil {
			return fmt.Errorf("token encryption: %w", err)
		}
		store = tokenstore.NewEncrypted(store, c)
	}
	if tc.ExpiryCheck.Enabled {
		expiryOpts := []tokenstore.ExpiryOption{
			tokenstore.WithLeeway(tc.ExpiryCheck.Leeway),
			tokenstore.WithExpiryLogger(s.log),
		}
		if tc.ExpiryCheck.RemoveExpired {
			expiryOpts = append(expiryOpts, tokenstore.WithRemoveExpired())
		}
		store = tokenstore.NewExpiryChecked(store, expiryOpts...)
	}

	s.tokens = store
	return nil
}

func (s *Stack) initProbe(o *stackOptions) error {
	if o.probe != nil {
		s.probe = o.probe
		return nil
	}
	if s.cfg.Connectivity.Mode == config.ModeAlways {
		s.probe = connectivity.Always
		return nil
	}

	monitorOpts := []connectivity.MonitorOption{connectivity.WithLogger(s.log)}
	if o.dialer != nil {
		monitorOpts = append(monitorOpts, connectivity.WithDialer(o.dialer))
	}
	m := connectivity.NewMonitor(s.cfg.Connectivity.MonitorConfig, monitorOpts...)
	s.probe = m
	return s.components.Register(m)
}

func (s *Stack) initTransport(o *stackOptions) error {
	adapterOpts := []transport.Option{transport.WithLogger(s.log)}
	if o.httpClient != nil {
		adapterOpts = append(adapterOpts, transport.WithHTTPClient(o.httpClient))
	}
	a, err := transport.New(s.cfg.Transport, adapterOpts...)
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	s.transport = a
	return s.components.Register(component.Hook{
		ID:     "transport",
		OnStop: func(context.Context) error { return a.Close() },
	})
}

// Start starts every component in dependency order.
func (s *Stack) Start(ctx context.Context) error {
	s.log.Info("starting repository stack", logger.Fields(
		logger.FieldHost, s.cfg.API.Host,
		logger.FieldBackend, s.cfg.TokenStore.Backend,
		"version", version.Get().Short(),
	))
	if err := s.components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}
	return nil
}

// Stop stops every started component in reverse order.
func (s *Stack) Stop(ctx context.Context) error {
	err := s.components.StopAll(ctx)
	if err != nil {
		s.log.Error("shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	s.log.Info("repository stack stopped")
	return nil
}

// Run starts the stack, runs task and stops the stack again. SIGINT and
// SIGTERM cancel the task's context.
func (s *Stack) Run(ctx context.Context, task func(ctx context.Context) error) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			s.log.Info("received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer stopCancel()
	if stopErr := s.Stop(stopCtx); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// Health reports the health of every component.
func (s *Stack) Health(ctx context.Context) []component.Health {
	return s.components.HealthAll(ctx)
}

// Tokens returns the token store, for login and logout flows.
func (s *Stack) Tokens() tokenstore.Store { return s.tokens }

// Probe returns the connectivity probe.
func (s *Stack) Probe() connectivity.Probe { return s.probe }

// Logger returns the stack logger.
func (s *Stack) Logger() *logger.Logger { return s.log }

// Config returns the effective configuration.
func (s *Stack) Config() config.Config { return s.cfg }

// NewRepository returns a repository for T bound to the configured API host.
// opts are applied after the stack's own settings.
func NewRepository[T any](s *Stack, opts ...repository.Option) *repository.Repository[T] {
	base := []repository.Option{
		repository.WithStatusPolicy(s.policy),
		repository.WithLogger(s.log),
	}
	if s.tracerProvider != nil {
		base = append(base, repository.WithTracerProvider(s.tracerProvider))
	}
	if s.metrics != nil {
		base = append(base, repository.WithMetrics(s.metrics))
	}
	return repository.New[T](s.cfg.API.Host, s.transport, s.tokens, s.probe, append(base, opts...)...)
}
