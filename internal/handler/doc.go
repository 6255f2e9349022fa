// Package handler exposes the check service over HTTP. It builds the chi
// router with request id, recovery, logging and CORS middleware and maps
// check results and validation failures onto JSON responses.
package handler
