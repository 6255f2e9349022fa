// Package metrics collects in-process statistics about checks.
//
// Request handlers emit MetricEvents into a buffered channel with Emit,
// which never blocks; a single collector goroutine applies them to the
// Metrics store. On context cancellation the collector drains whatever is
// still buffered before closing Done.
//
// Tracked per host: number of fresh checks, cache hits, HTTP status code
// distribution, last classification and response-time average and
// percentiles (P50, P95, P99) over the last 1000 checks. Globally: counts
// per classification, validation failures and failed cache writes.
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//	collector.Emit(metrics.MetricEvent{
//		Type:           metrics.EventCheckCompleted,
//		Host:           "example.com",
//		Classification: "Success",
//		StatusCode:     200,
//		Duration:       150 * time.Millisecond,
//	})
//	snapshot := collector.Snapshot()
package metrics
