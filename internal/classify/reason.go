package classify

var reasons = map[Category]string{
	InvalidDomain:           "invalid_domain",
	DNSError:                "dns_unreachable",
	SSLError:                "ssl_failure",
	Timeout:                 "timeout",
	ClientError:             "client_error",
	ServerError:             "server_error",
	CloudflareInternalError: "edge_unreachable",
	NetworkError:            "network_unreachable",
	None:                    "ok",
}

var advice = map[Category]string{
	InvalidDomain:           "This is not a valid website address. Please check the spelling.",
	DNSError:                "The domain name could not be resolved. Verify DNS records.",
	SSLError:                "SSL handshake failed. Check the certificate configuration.",
	Timeout:                 "The site took too long to respond. Possibly under heavy load.",
	ClientError:             "Client-side error (4xx). Verify the request or endpoint.",
	ServerError:             "Server-side error (5xx). The server may be down.",
	CloudflareInternalError: "Cloudflare edge could not connect to the target. Check SSL/DNS.",
	NetworkError:            "Network unreachable or blocked by target.",
}

// Reason returns the stable machine token for c: "ok" for None and
// "unknown" for anything without a mapping.
func Reason(c Category) string {
	if r, ok := reasons[c]; ok {
		return r
	}
	return "unknown"
}

// Advice returns the remediation hint for c, or "" when there is none.
func Advice(c Category) string {
	return advice[c]
}
