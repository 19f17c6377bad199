package bootstrap

import (
	"github.com/juniofirstpay/httpsessions/config"
)

// Config is the constraint for application config types. Any struct that
// embeds config.ServiceConfig by value satisfies it through promoted
// methods when used by pointer.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
