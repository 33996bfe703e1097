package matcher

import (
	"context"
	"strings"

	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
	"github.com/eliteGoblin/focusd/web_gate/internal/platform"
)

// IsSubdomainException reports whether host equals, or is a subdomain of,
// one of the exception hostnames.
func IsSubdomainException(host string, exceptions []string) bool {
	for _, e := range exceptions {
		e = NormalizeHost(e)
		if e == "" {
			continue
		}
		if host == e || strings.HasSuffix(host, "."+e) {
			return true
		}
	}
	return false
}

// ExceptionMatcher decides whether a URL matched by a rule is exempt from it.
type ExceptionMatcher struct {
	platforms *platform.Registry
	pings     platform.PingChecker
}

// NewExceptionMatcher creates a matcher over the given platform policies.
func NewExceptionMatcher(platforms *platform.Registry, pings platform.PingChecker) *ExceptionMatcher {
	return &ExceptionMatcher{platforms: platforms, pings: pings}
}

// IsExempt checks the rule's subdomain exceptions first, then the
// hard-coded platform path exceptions.
func (m *ExceptionMatcher) IsExempt(ctx context.Context, t Target, rule domain.Rule) bool {
	if IsSubdomainException(t.Host, rule.Exceptions) {
		return true
	}
	if m.platforms == nil {
		return false
	}
	return m.platforms.Exempt(ctx, platform.Request{
		Host: t.Host,
		Path: t.Path(),
		URL:  t.Raw,
	}, m.pings)
}
