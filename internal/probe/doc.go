// Package probe issues the network requests of a check. A Fetcher sends a
// HEAD request with automatic redirects disabled and follows 3xx responses
// itself, recording each hop, up to a fixed budget. One deadline covers the
// whole chain. If the very first HEAD produces no response at all, the
// request is retried once as a single-byte ranged GET.
package probe
