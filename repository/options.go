package repository

import (
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/coreapi/logger"
	"github.com/kbukum/coreapi/observability"
)

// Option configures a Repository.
type Option func(*settings)

type settings struct {
	policy  StatusPolicy
	log     *logger.Logger
	tp      trace.TracerProvider
	metrics *observability.RepositoryMetrics
}

// WithStatusPolicy selects the response status policy. The default is
// StatusPolicyStandard.
func WithStatusPolicy(p StatusPolicy) Option {
	return func(s *settings) { s.policy = p }
}

// WithLogger sets the repository logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithTracerProvider sets the provider spans are created from. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *settings) { s.tp = tp }
}

// WithMetrics sets the instruments calls are recorded into.
func WithMetrics(m *observability.RepositoryMetrics) Option {
	return func(s *settings) { s.metrics = m }
}

func buildSettings(opts []Option) settings {
	s := settings{policy: StatusPolicyStandard}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.metrics == nil {
		s.metrics = defaultMetrics()
	}
	return s
}

// defaultMetrics records into the global meter provider, which is a no-op
// until one is installed.
func defaultMetrics() *observability.RepositoryMetrics {
	m, err := observability.NewRepositoryMetrics(observability.Meter(nil))
	if err != nil {
		m, _ = observability.NewRepositoryMetrics(noop.NewMeterProvider().Meter(observability.InstrumentationName))
	}
	return m
}
