package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/kbukum/coreapi/connectivity"
	"github.com/kbukum/coreapi/logger"
	"github.com/kbukum/coreapi/observability"
	"github.com/kbukum/coreapi/tokenstore"
	"github.com/kbukum/coreapi/transport"
)

// Token store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Connectivity modes.
const (
	ModeMonitor = "monitor"
	ModeAlways  = "always"
)

// Config is the full configuration of a repository stack.
type Config struct {
	Name          string                 `yaml:"name" mapstructure:"name"`
	API           APIConfig              `yaml:"api" mapstructure:"api"`
	TokenStore    TokenStoreConfig       `yaml:"token_store" mapstructure:"token_store"`
	Redis         tokenstore.RedisConfig `yaml:"redis" mapstructure:"redis"`
	Connectivity  ConnectivityConfig     `yaml:"connectivity" mapstructure:"connectivity"`
	Transport     transport.Config       `yaml:"transport" mapstructure:"transport"`
	Logging       logger.Config          `yaml:"logging" mapstructure:"logging"`
	Observability observability.Config   `yaml:"observability" mapstructure:"observability"`
}

// APIConfig identifies the target API.
type APIConfig struct {
	// Host is the API host name or IP, with an optional :port.
	Host string `yaml:"host" mapstructure:"host" validate:"required,api_host"`
	// StatusPolicy is "standard" (2xx succeeds) or "legacy".
	StatusPolicy string `yaml:"status_policy" mapstructure:"status_policy" validate:"oneof=standard legacy"`
}

// TokenStoreConfig selects and configures the token store.
type TokenStoreConfig struct {
	Backend     string            `yaml:"backend" mapstructure:"backend" validate:"oneof=memory redis"`
	TTL         time.Duration     `yaml:"ttl" mapstructure:"ttl" validate:"gte=0"`
	KeyPrefix   string            `yaml:"key_prefix" mapstructure:"key_prefix"`
	Encryption  EncryptionConfig  `yaml:"encryption" mapstructure:"encryption"`
	ExpiryCheck ExpiryCheckConfig `yaml:"expiry_check" mapstructure:"expiry_check"`
}

// EncryptionConfig configures sealing tokens at rest.
type EncryptionConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Key       string `yaml:"key" mapstructure:"key" validate:"required_if=Enabled true"`
	Algorithm string `yaml:"algorithm" mapstructure:"algorithm" validate:"oneof=aes-256-gcm chacha20-poly1305"`
}

// ExpiryCheckConfig configures JWT expiry detection on retrieve.
type ExpiryCheckConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	Leeway        time.Duration `yaml:"leeway" mapstructure:"leeway" validate:"gte=0"`
	RemoveExpired bool          `yaml:"remove_expired" mapstructure:"remove_expired"`
}

// ConnectivityConfig selects the connectivity probe.
type ConnectivityConfig struct {
	Mode                       string `yaml:"mode" mapstructure:"mode" validate:"oneof=monitor always"`
	connectivity.MonitorConfig `yaml:",inline" mapstructure:",squash"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "coreapi"
	}
	if c.API.StatusPolicy == "" {
		c.API.StatusPolicy = "standard"
	}

	if c.TokenStore.Backend == "" {
		c.TokenStore.Backend = BackendMemory
	}
	if c.TokenStore.Encryption.Algorithm == "" {
		c.TokenStore.Encryption.Algorithm = "aes-256-gcm"
	}
	if c.Redis.DialTimeout <= 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}

	if c.Connectivity.Mode == "" {
		c.Connectivity.Mode = ModeMonitor
	}
	if c.Connectivity.Target == "" && c.API.Host != "" {
		c.Connectivity.Target = defaultTarget(c.API.Host)
	}
	c.Connectivity.ApplyDefaults()

	c.Transport.ApplyDefaults()
	c.Logging.ApplyDefaults()

	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	c.Observability.ApplyDefaults()
}

// Validate checks struct tags and the rules that span sections.
func (c *Config) Validate() error {
	var errs []error
	if err := validateStruct(c); err != nil {
		errs = append(errs, err)
	}
	if c.TokenStore.Backend == BackendRedis && c.Redis.Addr == "" {
		errs = append(errs, fmt.Errorf("redis.addr: is required when token_store.backend is redis"))
	}
	if c.Connectivity.Mode == ModeMonitor {
		if err := c.Connectivity.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, v := range []interface{ Validate() error }{&c.Transport, &c.Logging, &c.Observability} {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// defaultTarget is the host the connectivity monitor dials: the API host on
// its own port, or 443.
func defaultTarget(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, "443")
}
