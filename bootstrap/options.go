package bootstrap

import (
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/coreapi/connectivity"
	"github.com/kbukum/coreapi/logger"
)

// Option configures a Stack during creation.
type Option func(*stackOptions)

type stackOptions struct {
	logger          *logger.Logger
	httpClient      *http.Client
	redisClient     goredis.UniversalClient
	probe           connectivity.Probe
	dialer          connectivity.DialFunc
	gracefulTimeout time.Duration
}

func resolveOptions(opts []Option) *stackOptions {
	o := &stackOptions{gracefulTimeout: 15 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger. Otherwise one is built from the logging
// section of the config.
func WithLogger(l *logger.Logger) Option {
	return func(o *stackOptions) { o.logger = l }
}

// WithHTTPClient makes the transport send through c.
func WithHTTPClient(c *http.Client) Option {
	return func(o *stackOptions) { o.httpClient = c }
}

// WithRedisClient supplies the Redis client for the redis backend instead of
// dialing redis.addr.
func WithRedisClient(c goredis.UniversalClient) Option {
	return func(o *stackOptions) { o.redisClient = c }
}

// WithProbe replaces the probe selected by connectivity.mode.
func WithProbe(p connectivity.Probe) Option {
	return func(o *stackOptions) { o.probe = p }
}

// WithDialer replaces the connectivity monitor's TCP dialer.
func WithDialer(d connectivity.DialFunc) Option {
	return func(o *stackOptions) { o.dialer = d }
}

// WithGracefulTimeout bounds Stop when Run shuts the stack down.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *stackOptions) { o.gracefulTimeout = d }
}
