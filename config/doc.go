// Package config loads service configuration from a YAML file, an optional
// .env file and prefixed environment variables.
//
// # Usage
//
//	var cfg probeConfig
//	err := config.Load("sessionprobe", &cfg, config.WithConfigFile(path))
//
// Environment variables override file values when they carry the service
// prefix: for service "sessionprobe", SESSIONPROBE_LOGGING_LEVEL=warn sets
// logging.level. When cfg implements ApplyDefaults or Validate they are
// called after unmarshalling.
package config
