// Package healthcheck runs the on-demand website check. A Checker
// normalizes the requested URL, consults the result cache, probes the
// site through its redirect chain, classifies and scores the outcome, and
// writes the result back to the cache in the background.
package healthcheck
