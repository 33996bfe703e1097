// Package matcher finds the rules that apply to a navigated URL.
package matcher

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMalformedURL is returned for URLs without a usable host.
var ErrMalformedURL = errors.New("malformed url")

// Target is a parsed navigation destination.
type Target struct {
	Raw  string   // the URL as navigated
	URL  *url.URL // parsed form
	Host string   // lowercase hostname, "www." stripped
}

// Path returns the URL path ("/" when empty).
func (t Target) Path() string {
	if t.URL == nil || t.URL.Path == "" {
		return "/"
	}
	return t.URL.Path
}

// Parse parses rawURL into a Target. URLs without a host are rejected.
func Parse(rawURL string) (Target, error) {
	raw := strings.TrimSpace(rawURL)
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	host := NormalizeHost(u.Hostname())
	if host == "" {
		return Target{}, fmt.Errorf("%w: no host in %q", ErrMalformedURL, rawURL)
	}
	return Target{Raw: raw, URL: u, Host: host}, nil
}

// NormalizeHost lowercases a hostname and strips a leading "www.".
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimSuffix(host, ".")
	return strings.TrimPrefix(host, "www.")
}
