package session

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// TLSConfig holds TLS settings for an https session.
type TLSConfig struct {
	// SkipVerify disables server certificate verification.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`

	// CAFile is a PEM bundle used instead of the system roots.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// CertFile and KeyFile hold the client certificate for mTLS.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"`

	// ServerName overrides the name checked against the server certificate.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	// MinVersion is the minimum TLS version. Defaults to TLS 1.2.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`
}

// Validate checks that the settings are consistent. A nil config is valid.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return errors.New("tls: cert_file and key_file must be provided together")
	}
	return nil
}

// Build creates a *tls.Config, or nil when nothing is configured.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if c == nil || !c.hasSettings() {
		return nil, nil
	}

	minVersion := c.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}
	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // opt-in via config
		ServerName:         c.ServerName,
		MinVersion:         minVersion,
	}

	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("tls: read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("tls: no certificates found in %s", c.CAFile)
		}
		cfg.RootCAs = pool
	}

	if c.CertFile != "" && c.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tls: load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

func (c *TLSConfig) hasSettings() bool {
	return c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.ServerName != "" || c.MinVersion != 0
}
