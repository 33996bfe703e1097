// Package platform holds the hard-coded per-site path exceptions.
// Each site (Twitter/X, Discord, YouTube, ...) has its own policy deciding
// which of its pages stay reachable while a rule blocks the site.
package platform

import (
	"context"
	"strings"
)

// Request is the navigation a policy inspects.
type Request struct {
	Host string // normalized hostname
	Path string // URL path, "/" at least
	URL  string // full URL as navigated
}

// PingChecker reports whether a conversation was recently pinged.
type PingChecker interface {
	IsActive(ctx context.Context, key string) bool
}

// Policy defines the path exceptions for one platform.
type Policy interface {
	// ID returns unique identifier (e.g., "twitter", "discord").
	ID() string

	// Name returns human-readable name for display.
	Name() string

	// Hosts returns the hostnames this policy covers. Subdomains match too.
	Hosts() []string

	// Exempt reports whether the request stays reachable.
	// pings may be nil, in which case ping-gated pages are not exempt.
	Exempt(ctx context.Context, req Request, pings PingChecker) bool
}

// coversHost reports whether host is one of hosts or a subdomain of one.
func coversHost(host string, hosts []string) bool {
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// segments splits a path into its non-empty parts.
func segments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// hasPathPrefix matches "/music", "/music/..." and "/musicals" alike,
// which is how the site exceptions have always behaved.
func hasPathPrefix(path, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(path), prefix)
}

func pingActive(ctx context.Context, pings PingChecker, key string) bool {
	if pings == nil {
		return false
	}
	return pings.IsActive(ctx, key)
}
