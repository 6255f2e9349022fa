package target_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/sitecheck/internal/target"
)

var _ = Describe("Normalize", func() {
	DescribeTable("accepted input",
		func(raw, want string) {
			u, err := target.Normalize(raw)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.String()).To(Equal(want))
		},
		Entry("bare domain gets https", "example.com", "https://example.com/"),
		Entry("explicit http is kept", "http://example.com", "http://example.com/"),
		Entry("host is lowercased", "https://WWW.Example.COM/Path", "https://www.example.com/Path"),
		Entry("default https port is dropped", "https://example.com:443/a", "https://example.com/a"),
		Entry("default http port is dropped", "http://example.com:80", "http://example.com/"),
		Entry("other ports are kept", "example.com:8443/status", "https://example.com:8443/status"),
		Entry("query is kept", "example.com/search?q=go", "https://example.com/search?q=go"),
		Entry("surrounding whitespace is ignored", "  example.org  ", "https://example.org/"),
		Entry("ip address hosts pass", "http://127.0.0.1:8080/", "http://127.0.0.1:8080/"),
	)

	DescribeTable("rejected hostnames",
		func(raw string) {
			_, err := target.Normalize(raw)
			Expect(err).To(MatchError(target.ErrInvalidDomain))
			Expect(target.PublicMessage(err)).To(Equal("Invalid domain name"))
		},
		Entry("single label", "localhost"),
		Entry("single label with scheme", "https://intranet/"),
		Entry("trailing dot", "example.com."),
		Entry("empty host", "https:///path"),
	)

	DescribeTable("unparseable input",
		func(raw string) {
			_, err := target.Normalize(raw)
			Expect(err).To(MatchError(target.ErrInvalidURL))
			Expect(target.PublicMessage(err)).To(Equal("Invalid URL"))
		},
		Entry("spaces in host", "not a domain"),
		Entry("missing scheme before separator", "://example.com"),
		Entry("bad port", "example.com:http"),
	)

	It("exposes the parsed parts", func() {
		u, err := target.Normalize("Example.com/docs")
		Expect(err).NotTo(HaveOccurred())
		Expect(u.Scheme()).To(Equal("https"))
		Expect(u.Hostname()).To(Equal("example.com"))
		Expect(u.Path()).To(Equal("/docs"))
		Expect(u.IsHTTPS()).To(BeTrue())
	})

	It("is deterministic", func() {
		a, _ := target.Normalize("example.com")
		b, _ := target.Normalize("example.com")
		Expect(a.String()).To(Equal(b.String()))
	})
})
