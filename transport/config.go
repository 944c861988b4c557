package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"
)

// KeepaliveConfig holds keepalive settings for provider connections.
type KeepaliveConfig struct {
	// Time is the interval between keepalive pings.
	Time time.Duration `mapstructure:"time"`
	// Timeout is the time to wait for a keepalive ping ack before closing.
	Timeout time.Duration `mapstructure:"timeout"`
	// PermitWithoutStream allows keepalive pings when there are no active RPCs.
	PermitWithoutStream bool `mapstructure:"permit_without_stream"`
}

// TLSConfig holds TLS settings for provider connections.
type TLSConfig struct {
	// Enabled enables TLS for the connection.
	Enabled bool `mapstructure:"enabled"`
	// CertFile is the path to the client TLS certificate file.
	CertFile string `mapstructure:"cert_file"`
	// KeyFile is the path to the client TLS key file.
	KeyFile string `mapstructure:"key_file"`
	// CAFile is the path to the CA certificate file for verifying providers.
	CAFile string `mapstructure:"ca_file"`
	// InsecureSkipVerify disables provider certificate verification.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// Build constructs a *tls.Config, or nil when TLS is disabled.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if c == nil || !c.Enabled {
		return nil, nil
	}

	tlsCfg := &tls.Config{
		InsecureSkipVerify: c.InsecureSkipVerify,
	}

	if c.CertFile != "" && c.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tls keypair: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	if c.CAFile != "" {
		ca, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("tls ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(ca) {
			return nil, fmt.Errorf("tls ca file %q: no certificates found", c.CAFile)
		}
		tlsCfg.RootCAs = pool
	}

	return tlsCfg, nil
}

// Config holds configuration for the connector.
type Config struct {
	// MaxRecvMsgSize is the maximum message size the consumer can receive (bytes).
	MaxRecvMsgSize int `mapstructure:"max_recv_msg_size"`
	// MaxSendMsgSize is the maximum message size the consumer can send (bytes).
	MaxSendMsgSize int `mapstructure:"max_send_msg_size"`
	// ConnectTimeout bounds a synchronous connect (waiting for READY).
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// Keepalive holds keepalive configuration.
	Keepalive KeepaliveConfig `mapstructure:"keepalive"`
	// TLS holds TLS configuration.
	TLS TLSConfig `mapstructure:"tls"`
}

const (
	defaultMaxRecvMsgSize   = 4 * 1024 * 1024 // 4 MB
	defaultMaxSendMsgSize   = 4 * 1024 * 1024 // 4 MB
	defaultConnectTimeout   = 10 * time.Second
	defaultKeepaliveTime    = 30 * time.Second
	defaultKeepaliveTimeout = 10 * time.Second
)

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxRecvMsgSize == 0 {
		c.MaxRecvMsgSize = defaultMaxRecvMsgSize
	}
	if c.MaxSendMsgSize == 0 {
		c.MaxSendMsgSize = defaultMaxSendMsgSize
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.Keepalive.Time == 0 {
		c.Keepalive.Time = defaultKeepaliveTime
	}
	if c.Keepalive.Timeout == 0 {
		c.Keepalive.Timeout = defaultKeepaliveTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxRecvMsgSize <= 0 {
		return fmt.Errorf("transport: max_recv_msg_size must be positive, got %d", c.MaxRecvMsgSize)
	}
	if c.MaxSendMsgSize <= 0 {
		return fmt.Errorf("transport: max_send_msg_size must be positive, got %d", c.MaxSendMsgSize)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("transport: connect_timeout must be positive, got %s", c.ConnectTimeout)
	}
	if c.TLS.Enabled {
		if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
			return fmt.Errorf("transport: tls cert_file and key_file must be set together")
		}
	}
	return nil
}
