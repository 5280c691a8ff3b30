// Package logger sets up structured JSON logging for the service using
// log/slog, with the level taken from configuration, and carries
// request-scoped loggers through the context.
package logger
