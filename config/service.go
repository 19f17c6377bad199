package config

import (
	"fmt"
	"slices"

	"github.com/juniofirstpay/httpsessions/logger"
)

// Environments accepted by ServiceConfig.Validate.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig contains the fields every binary in this module needs.
// Binaries embed it in their own config structs:
//
//	type probeConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Sessions []session.Config `yaml:"sessions" mapstructure:"sessions"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults fills in the environment and logging defaults. Development
// builds log at debug level unless a level was set explicitly.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the service fields and the logging section.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if !slices.Contains(Environments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", Environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// GetServiceConfig returns c. Embedding structs get it promoted, which is
// what bootstrap.Config relies on.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}
