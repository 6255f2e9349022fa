package target

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const defaultScheme = "https://"

var (
	ErrInvalidURL    = errors.New("invalid url")
	ErrInvalidDomain = errors.New("invalid domain name")
)

var hostnameRules = []validation.Rule{
	validation.Required.ErrorObject(validation.NewError("validation_empty_host", "hostname is empty")),
	validation.By(hasLabelSeparator),
	validation.By(noTrailingDot),
}

// URL is a validated absolute URL.
type URL struct {
	u *url.URL
}

// Normalize parses raw into a URL. Input without a scheme separator is
// treated as https. Scheme and host are lowercased, default ports are
// dropped and an empty path becomes "/".
func Normalize(raw string) (URL, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = defaultScheme + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return URL{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() {
		return URL{}, fmt.Errorf("%w: missing scheme", ErrInvalidURL)
	}

	if err := validation.Validate(u.Hostname(), hostnameRules...); err != nil {
		return URL{}, fmt.Errorf("%w: %v", ErrInvalidDomain, err)
	}

	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "http" && u.Port() == "80") || (u.Scheme == "https" && u.Port() == "443") {
		u.Host = u.Hostname()
	}
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}

	return URL{u: u}, nil
}

// PublicMessage is the error text returned to API callers for a failed
// Normalize.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidDomain):
		return "Invalid domain name"
	default:
		return "Invalid URL"
	}
}

func (t URL) String() string {
	if t.u == nil {
		return ""
	}
	return t.u.String()
}

func (t URL) Scheme() string   { return t.u.Scheme }
func (t URL) Host() string     { return t.u.Host }
func (t URL) Hostname() string { return t.u.Hostname() }
func (t URL) Path() string     { return t.u.Path }
func (t URL) IsHTTPS() bool    { return t.u.Scheme == "https" }

func hasLabelSeparator(value interface{}) error {
	host, _ := value.(string)
	if !strings.Contains(host, ".") {
		return validation.NewError("validation_single_label_host", "hostname must contain a dot")
	}
	return nil
}

func noTrailingDot(value interface{}) error {
	host, _ := value.(string)
	if strings.HasSuffix(host, ".") {
		return validation.NewError("validation_trailing_dot_host", "hostname must not end with a dot")
	}
	return nil
}
