package session

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultConnLimit   = 20
	DefaultDNSCacheTTL = 10 * time.Second
	DefaultTimeout     = 300 * time.Second
)

// Config describes how to build one named session. It is copied into the
// registry on Add and never mutated afterwards.
type Config struct {
	// Name is the unique key the session is looked up by.
	Name string `yaml:"name" mapstructure:"name" validate:"required"`

	// BaseURL is an absolute URL. Only its origin (scheme and host) is used;
	// any path, query or fragment is dropped.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// DNSCache enables cached host resolution. Nil means enabled.
	DNSCache *bool `yaml:"dns_cache" mapstructure:"dns_cache"`

	// DNSCacheTTL is how often cached entries are refreshed. Defaults to 10s.
	DNSCacheTTL time.Duration `yaml:"dns_cache_ttl" mapstructure:"dns_cache_ttl" validate:"gte=0"`

	// ConnLimit caps concurrent connections to the origin. Defaults to 20.
	ConnLimit int `yaml:"conn_limit" mapstructure:"conn_limit" validate:"gte=0"`

	// Timeout bounds a whole request, body included. Defaults to 300s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// Headers are sent with every request made through the session.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// TLS configures the transport for https origins.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ConfigOption adjusts a Config built by NewConfig.
type ConfigOption func(*Config)

// NewConfig returns a Config with defaults applied.
func NewConfig(name, baseURL string, opts ...ConfigOption) Config {
	cfg := Config{Name: name, BaseURL: baseURL}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.ApplyDefaults()
	return cfg
}

// WithDNSCache enables or disables cached DNS resolution.
func WithDNSCache(enabled bool) ConfigOption {
	return func(c *Config) { c.DNSCache = &enabled }
}

// WithDNSCacheTTL sets the DNS cache refresh interval.
func WithDNSCacheTTL(d time.Duration) ConfigOption {
	return func(c *Config) { c.DNSCacheTTL = d }
}

// WithConnLimit sets the connection limit.
func WithConnLimit(n int) ConfigOption {
	return func(c *Config) { c.ConnLimit = n }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) { c.Timeout = d }
}

// WithHeaders sets default request headers.
func WithHeaders(h map[string]string) ConfigOption {
	return func(c *Config) { c.Headers = h }
}

// WithTLS sets TLS options.
func WithTLS(t *TLSConfig) ConfigOption {
	return func(c *Config) { c.TLS = t }
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	c.Name = strings.TrimSpace(c.Name)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.DNSCache == nil {
		enabled := true
		c.DNSCache = &enabled
	}
	if c.DNSCacheTTL == 0 {
		c.DNSCacheTTL = DefaultDNSCacheTTL
	}
	if c.ConnLimit == 0 {
		c.ConnLimit = DefaultConnLimit
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// clone returns a deep copy so callers cannot mutate a stored config.
func (c Config) clone() Config {
	out := c
	out.Headers = maps.Clone(c.Headers)
	if c.DNSCache != nil {
		v := *c.DNSCache
		out.DNSCache = &v
	}
	if c.TLS != nil {
		t := *c.TLS
		out.TLS = &t
	}
	return out
}

// DNSCacheEnabled reports whether cached DNS resolution is on.
func (c *Config) DNSCacheEnabled() bool {
	return c.DNSCache == nil || *c.DNSCache
}

// Validate checks the struct constraints, the base URL origin and TLS settings.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return validationError(c.Name, err)
	}
	if _, err := c.Origin(); err != nil {
		return err
	}
	if err := c.TLS.Validate(); err != nil {
		return newError(ErrCodeInvalidConfig, c.Name, err.Error(), err)
	}
	return nil
}

// Origin returns scheme://host[:port] of BaseURL.
func (c *Config) Origin() (*url.URL, error) {
	raw := strings.TrimSpace(c.BaseURL)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, newError(ErrCodeInvalidBaseURL, c.Name, fmt.Sprintf("cannot parse %q", raw), err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, newError(ErrCodeInvalidBaseURL, c.Name,
			fmt.Sprintf("%q must use http or https scheme", raw), nil)
	}
	if u.Hostname() == "" {
		return nil, newError(ErrCodeInvalidBaseURL, c.Name, fmt.Sprintf("%q has no host", raw), nil)
	}
	return &url.URL{Scheme: scheme, Host: u.Host}, nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

func validationError(name string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return newError(ErrCodeInvalidConfig, name, err.Error(), err)
	}

	code := ErrCodeInvalidConfig
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.StructField() == "BaseURL" {
			code = ErrCodeInvalidBaseURL
		}
		messages = append(messages, fe.Field()+": "+describeField(fe))
	}
	return newError(code, name, strings.Join(messages, "; "), err)
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be an absolute URL"
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}
