package repository

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/coreapi/connectivity"
	apperrors "github.com/kbukum/coreapi/errors"
	"github.com/kbukum/coreapi/logger"
	"github.com/kbukum/coreapi/observability"
	"github.com/kbukum/coreapi/transport"
)

// RequestTimeout bounds every request a repository sends.
const RequestTimeout = 20 * time.Second

// operation describes one public method.
type operation struct {
	name   string
	method string
	query  bool
	body   bool
}

var (
	opFetchOne      = operation{name: "FetchOne", method: http.MethodGet, query: true}
	opFetchMany     = operation{name: "FetchMany", method: http.MethodGet, query: true}
	opCreate        = operation{name: "Create", method: http.MethodPost, body: true}
	opUpdatePartial = operation{name: "UpdatePartial", method: http.MethodPatch, body: true}
	opUpdateFull    = operation{name: "UpdateFull", method: http.MethodPut, body: true}
	opRemove        = operation{name: "Remove", method: http.MethodDelete}
)

// Repository is a typed client for one API host. It holds no mutable state
// and is safe for concurrent use.
type Repository[T any] struct {
	host      string
	transport transport.Transport
	tokens    TokenSource
	probe     connectivity.Probe
	policy    StatusPolicy
	log       *logger.Logger
	tracer    trace.Tracer
	metrics   *observability.RepositoryMetrics
}

// New creates a repository for host (name or IP, optional :port). tr must not
// be nil. A nil tokens sends every request unauthenticated; a nil probe
// reports disconnected, so every call fails with NO_INTERNET.
func New[T any](host string, tr transport.Transport, tokens TokenSource, probe connectivity.Probe, opts ...Option) *Repository[T] {
	s := buildSettings(opts)
	return &Repository[T]{
		host:      host,
		transport: tr,
		tokens:    tokens,
		probe:     probe,
		policy:    s.policy,
		log:       s.log.WithComponent("repository").WithFields(logger.Fields(logger.FieldHost, host)),
		tracer:    observability.Tracer(s.tp),
		metrics:   s.metrics,
	}
}

// Host returns the target host.
func (r *Repository[T]) Host() string { return r.host }

// FetchOne GETs path with params as the query and decodes a single T.
func (r *Repository[T]) FetchOne(ctx context.Context, path string, params any) (T, error) {
	var out T
	err := r.execute(ctx, opFetchOne, path, params, &out)
	return out, err
}

// FetchMany GETs path with params as the query and decodes a list of T.
func (r *Repository[T]) FetchMany(ctx context.Context, path string, params any) ([]T, error) {
	var out []T
	err := r.execute(ctx, opFetchMany, path, params, &out)
	return out, err
}

// Create POSTs params as JSON and decodes a list of T.
func (r *Repository[T]) Create(ctx context.Context, path string, params any) ([]T, error) {
	var out []T
	err := r.execute(ctx, opCreate, path, params, &out)
	return out, err
}

// UpdatePartial PATCHes params as JSON and decodes a single T.
func (r *Repository[T]) UpdatePartial(ctx context.Context, path string, params any) (T, error) {
	var out T
	err := r.execute(ctx, opUpdatePartial, path, params, &out)
	return out, err
}

// UpdateFull PUTs params as JSON and decodes a single T.
func (r *Repository[T]) UpdateFull(ctx context.Context, path string, params any) (T, error) {
	var out T
	err := r.execute(ctx, opUpdateFull, path, params, &out)
	return out, err
}

// Remove DELETEs path and decodes a single T.
func (r *Repository[T]) Remove(ctx context.Context, path string) (T, error) {
	var out T
	err := r.execute(ctx, opRemove, path, nil, &out)
	return out, err
}

// execute runs the request pipeline and decodes into out. The returned error
// is always nil or an *errors.AppError.
func (r *Repository[T]) execute(ctx context.Context, op operation, path string, params any, out any) (err error) {
	start := time.Now()
	requestID := uuid.NewString()
	ctx, span := r.tracer.Start(ctx, "repository."+op.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("coreapi.request.id", requestID),
			attribute.String("http.request.method", op.method),
			attribute.String("url.path", path),
			attribute.String("server.address", r.host),
		),
	)
	status := 0
	defer func() {
		err = apperrors.Normalize(err)
		r.finish(ctx, span, op, path, requestID, status, time.Since(start), err)
	}()

	if r.probe == nil || !r.probe.IsConnected() {
		return apperrors.NoInternet()
	}

	req, err := r.newRequest(ctx, op, path, params)
	if err != nil {
		return err
	}

	resp, err := r.transport.Send(ctx, req)
	if err != nil {
		return apperrors.ServerError(err)
	}
	if resp == nil {
		return apperrors.ServerError(nil).WithDetail("reason", "no response")
	}
	status = resp.StatusCode

	if err := r.policy.Check(resp.StatusCode); err != nil {
		return err
	}
	return decode(resp.Body, out)
}

func (r *Repository[T]) finish(ctx context.Context, span trace.Span, op operation, path, requestID string, status int, d time.Duration, err error) {
	defer span.End()

	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}

	fields := logger.Fields(
		logger.FieldOperation, op.name,
		logger.FieldMethod, op.method,
		logger.FieldPath, path,
		logger.FieldStatus, status,
		logger.FieldDuration, d.Milliseconds(),
		logger.FieldRequestID, requestID,
	)

	if err == nil {
		span.SetStatus(codes.Ok, "")
		r.metrics.Record(ctx, op.name, "ok", d)
		r.log.Debug("request completed", fields)
		return
	}

	code := string(apperrors.CodeOf(err))
	span.RecordError(err)
	span.SetStatus(codes.Error, code)
	span.SetAttributes(attribute.String("error.type", code))
	r.metrics.Record(ctx, op.name, code, d)

	fields[logger.FieldCode] = code
	fields[logger.FieldError] = err.Error()
	r.log.Warn("request failed", fields)
}
