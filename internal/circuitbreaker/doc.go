// Package circuitbreaker implements the circuit breaker that guards the
// result cache backend. When the backend keeps failing, the breaker opens
// and cache calls are skipped, so checks keep answering at probe speed
// instead of waiting on a dead Redis.
//
// States:
//
//   - CLOSED: calls pass through
//   - OPEN: calls are rejected with ErrOpen
//   - HALF-OPEN: one trial call decides whether to close or reopen
//
// Usage:
//
//	cb := circuitbreaker.NewCircuitBreaker(5, 30*time.Second)
//	err := cb.Execute(func() error {
//	    return store.Set(ctx, key, raw, ttl)
//	}, nil)
package circuitbreaker
