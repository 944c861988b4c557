// Package logger provides structured logging for rpckit using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
// Standard field keys for the RPC consumer domain (service, method,
// provider, conn_id, ...) are defined in fields.go.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault("my-consumer").WithComponent("transport")
//	log.Info("connected", map[string]interface{}{logger.FieldProvider: "10.0.0.7:50051"})
package logger
