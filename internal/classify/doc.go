// Package classify maps probe failures and HTTP status codes onto the fixed
// failure taxonomy, and derives the reason token and advice text that go
// with each category.
//
// Rules are evaluated in order and the first match wins. Status code rules
// come first, so a 4xx response is a client_error whatever the error text
// says. Structured errors from the network stack (net.DNSError, x509 and
// tls errors, context deadlines) are recognized directly; the substring
// rules cover everything else.
package classify
