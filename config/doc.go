// Package config loads the service configuration from YAML files and
// environment variables and validates it. It covers the HTTP listener, the
// probe (timeout, redirect budget, user agent), the result cache backend and
// its circuit breaker, the metrics pipeline and logging.
package config
