package tokenstore

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/kbukum/coreapi/errors"
	"github.com/kbukum/coreapi/logger"
)

// ExpiryChecked reports EXPIRED_TOKEN for JWTs whose exp claim has passed.
// Tokens that do not parse as JWTs pass through unchanged. Signatures are not
// verified; that is the server's job.
type ExpiryChecked struct {
	inner         Store
	leeway        time.Duration
	now           func() time.Time
	removeExpired bool
	parser        *jwt.Parser
	log           *logger.Logger
}

var _ Store = (*ExpiryChecked)(nil)

// ExpiryOption configures an ExpiryChecked store.
type ExpiryOption func(*ExpiryChecked)

// WithLeeway tolerates clock skew: a token counts as expired only once
// exp+leeway has passed.
func WithLeeway(d time.Duration) ExpiryOption {
	return func(e *ExpiryChecked) { e.leeway = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ExpiryOption {
	return func(e *ExpiryChecked) { e.now = now }
}

// WithRemoveExpired deletes an expired token from the inner store when it is
// detected.
func WithRemoveExpired() ExpiryOption {
	return func(e *ExpiryChecked) { e.removeExpired = true }
}

// WithExpiryLogger sets the logger used to report failed removals.
func WithExpiryLogger(l *logger.Logger) ExpiryOption {
	return func(e *ExpiryChecked) { e.log = l }
}

// NewExpiryChecked wraps inner with a JWT expiry check.
func NewExpiryChecked(inner Store, opts ...ExpiryOption) *ExpiryChecked {
	e := &ExpiryChecked{
		inner:  inner,
		now:    time.Now,
		parser: jwt.NewParser(),
		log:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithComponent("tokenstore")
	return e
}

// Save stores token unchanged.
func (e *ExpiryChecked) Save(ctx context.Context, token string) error {
	return e.inner.Save(ctx, token)
}

// Retrieve returns the token unless it is a JWT past its expiry.
func (e *ExpiryChecked) Retrieve(ctx context.Context) (string, bool, error) {
	token, ok, err := e.inner.Retrieve(ctx)
	if err != nil || !ok {
		return token, ok, err
	}

	claims := jwt.MapClaims{}
	if _, _, err := e.parser.ParseUnverified(token, claims); err != nil {
		return token, true, nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return "", false, apperrors.ExpiredToken().WithCause(err)
	}
	if exp != nil && e.now().After(exp.Add(e.leeway)) {
		if e.removeExpired {
			if err := e.inner.Remove(ctx); err != nil {
				e.log.Warn("failed to remove expired token", logger.Fields(logger.FieldError, err.Error()))
			}
		}
		return "", false, apperrors.ExpiredToken().WithDetail("expired_at", exp.Time)
	}
	return token, true, nil
}

// Remove deletes the token from the inner store.
func (e *ExpiryChecked) Remove(ctx context.Context) error {
	return e.inner.Remove(ctx)
}
