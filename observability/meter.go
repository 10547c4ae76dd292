package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/coreapi/logger"
)

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The caller shuts the provider down on exit.
func InitMeter(ctx context.Context, cfg Config, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	if log != nil {
		log.Info("meter initialized", logger.Fields(
			"service", cfg.ServiceName,
			"endpoint", cfg.Endpoint,
			"interval", cfg.MetricInterval.String(),
		))
	}
	return mp, nil
}

// Meter returns a meter for this module from mp, or from the global provider
// when mp is nil.
func Meter(mp metric.MeterProvider) metric.Meter {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	return mp.Meter(InstrumentationName)
}

// Metric names recorded by the repository.
const (
	MetricRequests = "coreapi.repository.requests"
	MetricDuration = "coreapi.repository.duration"
)

// Attribute keys on repository metrics.
const (
	AttrOperation = "operation"
	AttrOutcome   = "outcome"
)

// RepositoryMetrics holds the instruments a repository records into.
// A nil *RepositoryMetrics records nothing.
type RepositoryMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewRepositoryMetrics creates the repository instruments on meter.
func NewRepositoryMetrics(meter metric.Meter) (*RepositoryMetrics, error) {
	requests, err := meter.Int64Counter(MetricRequests,
		metric.WithDescription("Repository calls by operation and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequests, err)
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Duration of repository calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricDuration, err)
	}

	return &RepositoryMetrics{requests: requests, duration: duration}, nil
}

// Record counts one call. outcome is "ok" or an error code.
func (m *RepositoryMetrics) Record(ctx context.Context, operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrOperation, operation),
		attribute.String(AttrOutcome, outcome),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrOperation, operation),
	))
}
