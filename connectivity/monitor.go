package connectivity

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/coreapi/component"
	"github.com/kbukum/coreapi/logger"
)

const (
	defaultInterval    = 10 * time.Second
	defaultDialTimeout = 3 * time.Second
)

// DialFunc opens a connection to address. It matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	// Target is the host:port dialed on every check.
	Target      string        `yaml:"target" mapstructure:"target"`
	Interval    time.Duration `yaml:"interval" mapstructure:"interval"`
	DialTimeout time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
}

// ApplyDefaults fills zero values.
func (c *MonitorConfig) ApplyDefaults() {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
}

// Validate checks the configuration.
func (c *MonitorConfig) Validate() error {
	if c.Target == "" {
		return fmt.Errorf("connectivity: target is required")
	}
	if _, _, err := net.SplitHostPort(c.Target); err != nil {
		return fmt.Errorf("connectivity: invalid target %q: %w", c.Target, err)
	}
	return nil
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithDialer replaces the TCP dialer.
func WithDialer(d DialFunc) MonitorOption {
	return func(m *Monitor) { m.dial = d }
}

// WithLogger sets the monitor logger.
func WithLogger(l *logger.Logger) MonitorOption {
	return func(m *Monitor) { m.log = l }
}

// Monitor periodically dials a target and reports the last result.
// It reports disconnected until the first check completes.
type Monitor struct {
	cfg       MonitorConfig
	dial      DialFunc
	log       *logger.Logger
	connected atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var (
	_ Probe               = (*Monitor)(nil)
	_ component.Component = (*Monitor)(nil)
)

// NewMonitor creates a monitor. Call Start to begin checking.
func NewMonitor(cfg MonitorConfig, opts ...MonitorOption) *Monitor {
	cfg.ApplyDefaults()
	d := &net.Dialer{}
	m := &Monitor{
		cfg:  cfg,
		dial: d.DialContext,
		log:  logger.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.WithComponent("connectivity")
	return m
}

// IsConnected returns the result of the most recent check.
func (m *Monitor) IsConnected() bool {
	return m.connected.Load()
}

// Name returns the component name.
func (m *Monitor) Name() string { return "connectivity" }

// Start runs one check synchronously, then keeps checking every interval
// until Stop is called. ctx only bounds the first check.
func (m *Monitor) Start(ctx context.Context) error {
	if err := m.cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return fmt.Errorf("connectivity: monitor already started")
	}

	m.Check(ctx)

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.loop(loopCtx, m.done)

	m.log.Info("connectivity monitor started", logger.Fields(
		logger.FieldTarget, m.cfg.Target,
		"interval", m.cfg.Interval.String(),
	))
	return nil
}

// Stop ends the background loop and waits for it to exit.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		m.log.Info("connectivity monitor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health reports the last observed reachability.
func (m *Monitor) Health(_ context.Context) component.Health {
	if m.IsConnected() {
		return component.Health{Name: m.Name(), Status: component.StatusHealthy}
	}
	return component.Health{
		Name:    m.Name(),
		Status:  component.StatusDegraded,
		Message: fmt.Sprintf("%s unreachable", m.cfg.Target),
	}
}

// Check dials the target once and records the result.
func (m *Monitor) Check(ctx context.Context) bool {
	dialCtx, cancel := context.WithTimeout(ctx, m.cfg.DialTimeout)
	defer cancel()

	conn, err := m.dial(dialCtx, "tcp", m.cfg.Target)
	up := err == nil
	if conn != nil {
		_ = conn.Close()
	}

	if prev := m.connected.Swap(up); prev != up {
		if up {
			m.log.Info("network reachable", logger.Fields(logger.FieldTarget, m.cfg.Target))
		} else {
			m.log.Warn("network unreachable", logger.Fields(
				logger.FieldTarget, m.cfg.Target,
				logger.FieldError, errString(err),
			))
		}
	}
	return up
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
