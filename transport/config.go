package transport

import (
	"fmt"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config configures the net/http adapter.
type Config struct {
	// Timeout is the ceiling applied when a request carries no timeout of its own.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are sent before the request's own headers.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// TLS configures the client TLS settings.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("transport: timeout must be positive")
	}
	return nil
}
