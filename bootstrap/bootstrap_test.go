package bootstrap

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/coreapi/component"
	"github.com/kbukum/coreapi/config"
	"github.com/kbukum/coreapi/connectivity"
	apperrors "github.com/kbukum/coreapi/errors"
	"github.com/kbukum/coreapi/logger"
	"github.com/kbukum/coreapi/observability"
	"github.com/kbukum/coreapi/tokenstore"
	"github.com/kbukum/coreapi/transport"
)

func baseConfig() config.Config {
	return config.Config{
		Name:         "stack-test",
		API:          config.APIConfig{Host: "api.example.com"},
		Connectivity: config.ConnectivityConfig{Mode: config.ModeAlways},
	}
}

func TestNew_MemoryAlways(t *testing.T) {
	s, err := New(baseConfig(), WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.Tokens().(*tokenstore.Memory); !ok {
		t.Errorf("expected memory store, got %T", s.Tokens())
	}
	if !s.Probe().IsConnected() {
		t.Error("always mode should report connected")
	}
	if s.Config().API.StatusPolicy != "standard" {
		t.Errorf("defaults not applied: %+v", s.Config().API)
	}

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Tokens().Save(ctx, "tok"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.API.Host = ""
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for missing host")
	}

	cfg = baseConfig()
	cfg.TokenStore.Encryption.Enabled = true
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for encryption without key")
	}
}

func TestNew_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := baseConfig()
	cfg.TokenStore.Backend = config.BackendRedis
	cfg.TokenStore.KeyPrefix = "app"
	cfg.Redis.Addr = mr.Addr()

	s, err := New(cfg, WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(ctx)

	if err := s.Tokens().Save(ctx, "abc"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := mr.Get("app:token")
	if err != nil || got != "abc" {
		t.Errorf("redis value = %q, %v", got, err)
	}
}

func TestStart_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := baseConfig()
	cfg.TokenStore.Backend = config.BackendRedis
	cfg.Redis.Addr = addr
	cfg.Redis.DialTimeout = 200 * time.Millisecond

	s, err := New(cfg, WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail when redis is down")
	}
}

func TestNew_FailureReleasesResources(t *testing.T) {
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()
	mr := miniredis.RunT(t)
	client := tokenstore.NewRedisClient(tokenstore.RedisConfig{Addr: mr.Addr()})

	cfg := baseConfig()
	cfg.Observability = observability.Config{
		Enabled:    true,
		Endpoint:   collector.Listener.Addr().String(),
		Insecure:   true,
		SampleRate: 1,
	}
	cfg.TokenStore.Backend = config.BackendRedis
	cfg.Redis.Addr = mr.Addr()
	cfg.Transport.TLS = &transport.TLSConfig{CAFile: "/nonexistent/ca.pem"}

	s, err := New(cfg, WithLogger(logger.NewNop()), WithRedisClient(client), WithGracefulTimeout(5*time.Second))
	if err == nil {
		t.Fatal("expected New to fail on a missing CA file")
	}
	if s != nil {
		t.Error("failed New should not return a stack")
	}

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); ok {
		t.Error("tracer provider of the failed stack is still installed globally")
	}
	if _, ok := otel.GetMeterProvider().(*sdkmetric.MeterProvider); ok {
		t.Error("meter provider of the failed stack is still installed globally")
	}
	if err := client.Ping(context.Background()).Err(); !errors.Is(err, goredis.ErrClosed) {
		t.Errorf("redis client should be closed, ping err = %v", err)
	}
}

func TestStop_RestoresTelemetryGlobals(t *testing.T) {
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	cfg := baseConfig()
	cfg.Observability = observability.Config{
		Enabled:    true,
		Endpoint:   collector.Listener.Addr().String(),
		Insecure:   true,
		SampleRate: 1,
	}

	s, err := New(cfg, WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatal("enabled observability should install the SDK tracer provider")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); ok {
		t.Error("Stop should restore the previous tracer provider")
	}
}

func TestNew_EncryptedExpiryChecked(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := baseConfig()
	cfg.TokenStore.Backend = config.BackendRedis
	cfg.Redis.Addr = mr.Addr()
	cfg.TokenStore.Encryption = config.EncryptionConfig{Enabled: true, Key: "passphrase", Algorithm: "chacha20-poly1305"}
	cfg.TokenStore.ExpiryCheck = config.ExpiryCheckConfig{Enabled: true, RemoveExpired: true}

	s, err := New(cfg, WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.Tokens().(*tokenstore.ExpiryChecked); !ok {
		t.Fatalf("expected expiry-checked store, got %T", s.Tokens())
	}

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(ctx)

	if err := s.Tokens().Save(ctx, "opaque-token"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := mr.Get("token")
	if err != nil {
		t.Fatalf("redis Get: %v", err)
	}
	if raw == "opaque-token" {
		t.Error("token stored in plaintext")
	}

	tok, ok, err := s.Tokens().Retrieve(ctx)
	if err != nil || !ok || tok != "opaque-token" {
		t.Errorf("Retrieve = %q, %v, %v", tok, ok, err)
	}
}

func TestNew_MonitorProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	cfg := baseConfig()
	cfg.Connectivity.Mode = config.ModeMonitor
	cfg.Connectivity.Target = ln.Addr().String()
	cfg.Connectivity.Interval = time.Hour

	s, err := New(cfg, WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.Probe().(*connectivity.Monitor); !ok {
		t.Fatalf("expected monitor probe, got %T", s.Probe())
	}
	if s.Probe().IsConnected() {
		t.Error("monitor should report disconnected before start")
	}

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(ctx)

	if !s.Probe().IsConnected() {
		t.Error("monitor should report connected after start")
	}
	var found bool
	for _, h := range s.Health(ctx) {
		if h.Name == "connectivity" {
			found = true
			if h.Status != component.StatusHealthy {
				t.Errorf("connectivity health = %s", h.Status)
			}
		}
	}
	if !found {
		t.Error("connectivity component not registered")
	}
}

func TestWithProbe_Overrides(t *testing.T) {
	cfg := baseConfig()
	cfg.Connectivity.Mode = config.ModeMonitor
	s, err := New(cfg, WithLogger(logger.NewNop()), WithProbe(connectivity.Static(false)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Probe().IsConnected() {
		t.Error("expected injected probe")
	}
}

type widget struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestNewRepository_EndToEnd(t *testing.T) {
	var gotAuth string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"name":"gear"}`))
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.API.Host = srv.Listener.Addr().String()

	s, err := New(cfg, WithLogger(logger.NewNop()), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(ctx)

	if err := s.Tokens().Save(ctx, "secret"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	repo := NewRepository[widget](s)
	if repo.Host() != cfg.API.Host {
		t.Errorf("Host = %q", repo.Host())
	}
	w, err := repo.FetchOne(ctx, "/widgets/7", nil)
	if err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if w.ID != 7 || w.Name != "gear" {
		t.Errorf("widget = %+v", w)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestNewRepository_LegacyPolicy(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":1,"name":"x"}`))
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.API.Host = srv.Listener.Addr().String()
	cfg.API.StatusPolicy = "legacy"

	s, err := New(cfg, WithLogger(logger.NewNop()), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = NewRepository[widget](s).FetchOne(context.Background(), "/w", nil)
	if !apperrors.IsServerError(err) {
		t.Fatalf("legacy policy should reject 200, got %v", err)
	}
}

func TestRun(t *testing.T) {
	s, err := New(baseConfig(), WithLogger(logger.NewNop()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sentinel := errors.New("task failed")
	var ran bool
	err = s.Run(context.Background(), func(ctx context.Context) error {
		ran = true
		return sentinel
	})
	if !ran {
		t.Error("task did not run")
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("Run error = %v, want %v", err, sentinel)
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	s, err := New(baseConfig(), WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	err = s.Run(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return nil
	})
	if err != nil {
		t.Errorf("Run error = %v", err)
	}
}
