// Package observability sets up OpenTelemetry tracing and metrics for the
// repository stack.
//
//	tp, err := observability.InitTracer(ctx, cfg, log)
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, cfg, log)
//	defer mp.Shutdown(ctx)
//
// Both providers export over OTLP/HTTP and are installed globally.
// NewRepositoryMetrics builds the request counter and duration histogram the
// repository records into.
package observability
