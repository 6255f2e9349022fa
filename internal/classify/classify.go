package classify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
)

type Category string

const (
	None                    Category = ""
	InvalidDomain           Category = "invalid_domain"
	DNSError                Category = "dns_error"
	SSLError                Category = "ssl_error"
	Timeout                 Category = "timeout"
	ClientError             Category = "client_error"
	ServerError             Category = "server_error"
	CloudflareInternalError Category = "cloudflare_internal_error"
	NetworkError            Category = "network_error"
	UnknownError            Category = "unknown_error"
)

// Success is reported in place of a classification when the check
// completed without error and below status 400.
const Success = "Success"

// UnresolvableDomainMessage replaces the error text of fetch failures that
// carry the edge-to-origin marker.
const UnresolvableDomainMessage = "Domain does not exist or cannot be resolved"

var (
	abortMarkers = []string{"timeout", "AbortError", "operation aborted"}

	notFoundMarkers = []string{
		"getaddrinfo ENOTFOUND",
		"ENOTFOUND",
		"Name or service not known",
		"No such host",
		"no such host",
		"nodename nor servname provided",
	}

	edgeMarkers = []string{
		"internal error; reference",
		"Connection failed between Cloudflare edge and target origin",
	}
)

type failure struct {
	err  error
	msg  string
	code int
}

type rule struct {
	match    func(f failure) bool
	category Category
}

var rules = []rule{
	{func(f failure) bool { return f.code >= 400 && f.code < 500 }, ClientError},
	{func(f failure) bool { return f.code >= 500 && f.code < 600 }, ServerError},
	{isTimeout, Timeout},
	{isHostNotFound, InvalidDomain},
	{isDNSFailure, DNSError},
	{isTLSFailure, SSLError},
	{func(f failure) bool { return containsAny(f.msg, edgeMarkers) }, CloudflareInternalError},
	{isNetworkFailure, NetworkError},
}

// Classify returns the category for a probe error and/or status code. err
// may be nil and statusCode may be 0 when either is absent. A nil error
// with a status below 400 is still unknown_error; callers only classify
// when something went wrong.
func Classify(err error, statusCode int) Category {
	f := failure{err: err, code: statusCode}
	if err != nil {
		f.msg = err.Error()
	}

	for _, r := range rules {
		if r.match(f) {
			return r.category
		}
	}
	return UnknownError
}

// IsEdgeUnreachable reports whether err carries the reverse-proxy
// edge-to-origin failure signature.
func IsEdgeUnreachable(err error) bool {
	return err != nil && containsAny(err.Error(), edgeMarkers)
}

func isTimeout(f failure) bool {
	if f.err != nil {
		if errors.Is(f.err, context.DeadlineExceeded) || errors.Is(f.err, context.Canceled) {
			return true
		}
		var netErr net.Error
		if errors.As(f.err, &netErr) && netErr.Timeout() {
			return true
		}
	}
	return containsAny(f.msg, abortMarkers)
}

func isHostNotFound(f failure) bool {
	var dnsErr *net.DNSError
	if errors.As(f.err, &dnsErr) && dnsErr.IsNotFound {
		return true
	}
	return containsAny(f.msg, notFoundMarkers)
}

func isDNSFailure(f failure) bool {
	var dnsErr *net.DNSError
	if errors.As(f.err, &dnsErr) {
		return true
	}
	return strings.Contains(f.msg, "DNS")
}

func isTLSFailure(f failure) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostnameErr      x509.HostnameError
		invalidCert      x509.CertificateInvalidError
		verifyErr        *tls.CertificateVerificationError
		recordErr        tls.RecordHeaderError
	)
	switch {
	case errors.As(f.err, &unknownAuthority),
		errors.As(f.err, &hostnameErr),
		errors.As(f.err, &invalidCert),
		errors.As(f.err, &verifyErr),
		errors.As(f.err, &recordErr):
		return true
	}
	return strings.Contains(f.msg, "SSL") || strings.Contains(f.msg, "certificate")
}

func isNetworkFailure(f failure) bool {
	var opErr *net.OpError
	if errors.As(f.err, &opErr) {
		return true
	}
	return strings.Contains(f.msg, "fetch failed")
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
