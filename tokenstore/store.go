package tokenstore

import (
	"context"
	"time"
	"unicode/utf8"

	apperrors "github.com/kbukum/coreapi/errors"
	"github.com/kbukum/coreapi/logger"
)

// Store holds a single bearer token.
type Store interface {
	// Save stores token, replacing any previous one.
	Save(ctx context.Context, token string) error
	// Retrieve returns the current token. ok is false when none is stored.
	Retrieve(ctx context.Context) (token string, ok bool, err error)
	// Remove deletes the token. Removing an absent token is not an error.
	Remove(ctx context.Context) error
}

const defaultKey = "token"

// Option configures a backend.
type Option func(*options)

type options struct {
	ttl       time.Duration
	keyPrefix string
	log       *logger.Logger
}

// WithTTL makes a saved token disappear after ttl. Zero keeps it until removed.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithKeyPrefix namespaces the storage key as "<prefix>:token".
func WithKeyPrefix(prefix string) Option {
	return func(o *options) { o.keyPrefix = prefix }
}

// WithLogger sets the store logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func applyOptions(backend string, opts []Option) options {
	o := options{log: logger.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = o.log.WithComponent("tokenstore").WithFields(logger.Fields(logger.FieldBackend, backend))
	return o
}

func (o options) key() string {
	if o.keyPrefix == "" {
		return defaultKey
	}
	return o.keyPrefix + ":" + defaultKey
}

func errEmptyToken() error {
	return apperrors.Custom("error while saving token: token is empty")
}

func errSave(cause error) error {
	return apperrors.Customf("error while saving token: %v", cause).WithCause(cause)
}

func errRetrieve(cause error) error {
	return apperrors.Customf("error while retrieving token: %v", cause).WithCause(cause)
}

func errRemove(cause error) error {
	return apperrors.Customf("error while deleting token: %v", cause).WithCause(cause)
}

// checkToken rejects stored data that cannot be used as a header value.
func checkToken(raw string) error {
	if raw == "" || !utf8.ValidString(raw) {
		return apperrors.ExpiredToken()
	}
	return nil
}
