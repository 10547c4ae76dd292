package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr        string        `yaml:"addr" mapstructure:"addr"`
	Password    string        `yaml:"password" mapstructure:"password"`
	DB          int           `yaml:"db" mapstructure:"db"`
	DialTimeout time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
}

// NewRedisClient creates a go-redis client from cfg. It does not connect.
func NewRedisClient(cfg RedisConfig) *goredis.Client {
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = 5 * time.Second
	}
	return goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dial,
	})
}

// Redis keeps the token in Redis under "<prefix>:token".
type Redis struct {
	client goredis.UniversalClient
	opts   options
}

var _ Store = (*Redis)(nil)

// NewRedis creates a Redis-backed store using client.
func NewRedis(client goredis.UniversalClient, opts ...Option) *Redis {
	return &Redis{client: client, opts: applyOptions("redis", opts)}
}

// Ping verifies the connection.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Save stores token with the configured TTL.
func (r *Redis) Save(ctx context.Context, token string) error {
	if token == "" {
		return errEmptyToken()
	}
	if err := r.client.Set(ctx, r.opts.key(), token, r.opts.ttl).Err(); err != nil {
		return errSave(err)
	}
	r.opts.log.Info("token saved")
	return nil
}

// Retrieve returns the stored token, if any.
func (r *Redis) Retrieve(ctx context.Context) (string, bool, error) {
	token, err := r.client.Get(ctx, r.opts.key()).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errRetrieve(err)
	}
	if err := checkToken(token); err != nil {
		return "", false, err
	}
	return token, true, nil
}

// Remove deletes the token.
func (r *Redis) Remove(ctx context.Context) error {
	if err := r.client.Del(ctx, r.opts.key()).Err(); err != nil {
		return errRemove(err)
	}
	r.opts.log.Info("token removed")
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
