package tokenstore

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory keeps the token in process memory.
type Memory struct {
	c    *gocache.Cache
	opts options
}

var _ Store = (*Memory)(nil)

// NewMemory creates an in-memory store.
func NewMemory(opts ...Option) *Memory {
	o := applyOptions("memory", opts)
	ttl := o.ttl
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Memory{c: gocache.New(ttl, time.Minute), opts: o}
}

// Save stores token.
func (m *Memory) Save(_ context.Context, token string) error {
	if token == "" {
		return errEmptyToken()
	}
	m.c.SetDefault(m.opts.key(), token)
	m.opts.log.Info("token saved")
	return nil
}

// Retrieve returns the stored token, if any.
func (m *Memory) Retrieve(_ context.Context) (string, bool, error) {
	v, ok := m.c.Get(m.opts.key())
	if !ok {
		return "", false, nil
	}
	token, isString := v.(string)
	if !isString {
		return "", false, checkToken("")
	}
	if err := checkToken(token); err != nil {
		return "", false, err
	}
	return token, true, nil
}

// Remove deletes the token.
func (m *Memory) Remove(_ context.Context) error {
	m.c.Delete(m.opts.key())
	m.opts.log.Info("token removed")
	return nil
}
