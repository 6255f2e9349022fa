// Package cache stores recent check results keyed by normalized URL.
//
// Results are kept as JSON so a read always yields a fresh copy; the stored
// entry is never mutated. Two backends implement Store: an in-process
// MemoryStore and a RedisStore for deployments running several instances.
// ResultCache wraps either one with a circuit breaker and treats every
// backend failure as a miss.
package cache
