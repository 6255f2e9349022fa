// Package logger provides the structured slog logger used across the
// service, with text output for development and JSON output in production.
package logger
