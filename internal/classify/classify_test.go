package classify_test

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/sitecheck/internal/classify"
)

var _ = Describe("Classify", func() {
	DescribeTable("message rules in precedence order",
		func(msg string, code int, want classify.Category) {
			Expect(classifyMessage(msg, code)).To(Equal(want))
		},
		Entry("4xx", "", 404, classify.ClientError),
		Entry("5xx", "", 503, classify.ServerError),
		Entry("timeout", "request timeout after 10s", 0, classify.Timeout),
		Entry("abort marker", "AbortError: The operation was aborted", 0, classify.Timeout),
		Entry("probe abort marker", "operation aborted: context deadline exceeded", 0, classify.Timeout),
		Entry("node not found", "getaddrinfo ENOTFOUND nope.example", 0, classify.InvalidDomain),
		Entry("glibc not found", "Name or service not known", 0, classify.InvalidDomain),
		Entry("windows not found", "No such host is known", 0, classify.InvalidDomain),
		Entry("go not found", "dial tcp: lookup nope.example: no such host", 0, classify.InvalidDomain),
		Entry("darwin not found", "nodename nor servname provided, or not known", 0, classify.InvalidDomain),
		Entry("generic DNS", "DNS server failure", 0, classify.DNSError),
		Entry("SSL", "SSL routines:ssl3_get_record", 0, classify.SSLError),
		Entry("certificate", "certificate has expired", 0, classify.SSLError),
		Entry("edge reference", "internal error; reference = 8a2b", 0, classify.CloudflareInternalError),
		Entry("edge to origin", "Connection failed between Cloudflare edge and target origin", 0, classify.CloudflareInternalError),
		Entry("fetch failed", "TypeError: fetch failed", 0, classify.NetworkError),
		Entry("anything else", "something odd", 0, classify.UnknownError),
		Entry("timeout beats DNS", "DNS timeout", 0, classify.Timeout),
		Entry("not found beats DNS", "DNS: ENOTFOUND", 0, classify.InvalidDomain),
		Entry("DNS beats SSL", "DNS lookup for SSL endpoint", 0, classify.DNSError),
	)

	DescribeTable("status codes take precedence over messages",
		func(code int) {
			Expect(classifyMessage("timeout ENOTFOUND DNS SSL fetch failed", code)).To(Equal(classify.ClientError))
		},
		Entry("400", 400),
		Entry("401", 401),
		Entry("404", 404),
		Entry("429", 429),
		Entry("499", 499),
	)

	It("treats 600 and above as a non-status", func() {
		Expect(classifyMessage("", 600)).To(Equal(classify.UnknownError))
	})

	Context("structured errors", func() {
		It("recognizes deadline exceeded", func() {
			err := &url.Error{Op: "Head", URL: "https://example.com/", Err: context.DeadlineExceeded}
			Expect(classify.Classify(err, 0)).To(Equal(classify.Timeout))
		})

		It("recognizes a missing host", func() {
			err := &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{
				Err: "no such host", Name: "nope.example", IsNotFound: true,
			}}
			Expect(classify.Classify(err, 0)).To(Equal(classify.InvalidDomain))
		})

		It("recognizes other resolver failures", func() {
			err := &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{
				Err: "server misbehaving", Name: "example.com",
			}}
			Expect(classify.Classify(err, 0)).To(Equal(classify.DNSError))
		})

		It("recognizes untrusted certificates", func() {
			err := fmt.Errorf("tls handshake: %w", x509.UnknownAuthorityError{})
			Expect(classify.Classify(err, 0)).To(Equal(classify.SSLError))
		})

		It("recognizes refused connections", func() {
			err := &url.Error{Op: "Head", URL: "https://example.com/", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused"),
			}}
			Expect(classify.Classify(err, 0)).To(Equal(classify.NetworkError))
		})
	})

	Describe("IsEdgeUnreachable", func() {
		It("matches the edge signature", func() {
			Expect(classify.IsEdgeUnreachable(errors.New("error code: 1016 internal error; reference"))).To(BeTrue())
		})

		It("ignores other errors", func() {
			Expect(classify.IsEdgeUnreachable(errors.New("fetch failed"))).To(BeFalse())
			Expect(classify.IsEdgeUnreachable(nil)).To(BeFalse())
		})
	})
})

var _ = Describe("Reason and Advice", func() {
	DescribeTable("reason tokens",
		func(c classify.Category, want string) {
			Expect(classify.Reason(c)).To(Equal(want))
		},
		Entry("invalid domain", classify.InvalidDomain, "invalid_domain"),
		Entry("dns", classify.DNSError, "dns_unreachable"),
		Entry("ssl", classify.SSLError, "ssl_failure"),
		Entry("timeout", classify.Timeout, "timeout"),
		Entry("client", classify.ClientError, "client_error"),
		Entry("server", classify.ServerError, "server_error"),
		Entry("edge", classify.CloudflareInternalError, "edge_unreachable"),
		Entry("network", classify.NetworkError, "network_unreachable"),
		Entry("none", classify.None, "ok"),
		Entry("unknown error", classify.UnknownError, "unknown"),
	)

	It("has advice for every failure category but unknown_error", func() {
		for _, c := range []classify.Category{
			classify.InvalidDomain, classify.DNSError, classify.SSLError, classify.Timeout,
			classify.ClientError, classify.ServerError, classify.CloudflareInternalError, classify.NetworkError,
		} {
			Expect(classify.Advice(c)).NotTo(BeEmpty(), string(c))
		}
		Expect(classify.Advice(classify.UnknownError)).To(BeEmpty())
		Expect(classify.Advice(classify.None)).To(BeEmpty())
	})
})

func classifyMessage(msg string, statusCode int) classify.Category {
	if msg == "" {
		return classify.Classify(nil, statusCode)
	}
	return classify.Classify(errors.New(msg), statusCode)
}
