// Package logger provides structured logging backed by zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped child loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("sessions")
//	log.Info("session configured", logger.Fields("session", "billing"))
package logger
