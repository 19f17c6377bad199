package main

import (
	"fmt"

	"github.com/juniofirstpay/httpsessions/config"
	"github.com/juniofirstpay/httpsessions/session"
)

type probeConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Sessions             []session.Config `yaml:"sessions" mapstructure:"sessions"`
}

func (c *probeConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	for i := range c.Sessions {
		c.Sessions[i].ApplyDefaults()
	}
}

func (c *probeConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if len(c.Sessions) == 0 {
		return fmt.Errorf("config.sessions: at least one session is required")
	}
	for i := range c.Sessions {
		if err := c.Sessions[i].Validate(); err != nil {
			return fmt.Errorf("config.sessions[%d]: %w", i, err)
		}
	}
	return nil
}
