// Package httpserver runs the API's http.Server with validated listen
// addresses and bounded graceful shutdown.
package httpserver
