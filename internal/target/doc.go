// Package target turns user input into a normalized absolute URL and rejects
// input that cannot name a website. No network access happens here.
package target
