// Package telemetry builds the zerolog loggers and the Prometheus metrics
// shared by the CLI, the HTTP server and the inbox watcher.
package telemetry
