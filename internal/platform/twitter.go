package platform

import (
	"context"
	"regexp"
	"strings"
)

// directChat is a one-to-one conversation id such as 1234-5678.
var directChat = regexp.MustCompile(`^/i/chat/[0-9-]+$`)

// TwitterPolicy keeps direct messages and notifications reachable on
// Twitter/X. Group chats open only inside a ping window.
type TwitterPolicy struct{}

func NewTwitterPolicy() *TwitterPolicy {
	return &TwitterPolicy{}
}

func (p *TwitterPolicy) ID() string {
	return "twitter"
}

func (p *TwitterPolicy) Name() string {
	return "Twitter/X"
}

func (p *TwitterPolicy) Hosts() []string {
	return []string{"twitter.com", "x.com"}
}

func (p *TwitterPolicy) Exempt(ctx context.Context, req Request, pings PingChecker) bool {
	path := strings.TrimSuffix(req.Path, "/")
	switch {
	case strings.HasPrefix(path, "/i/chat/g"):
		parts := segments(path)
		return pingActive(ctx, pings, "twitter:"+parts[len(parts)-1])
	case path == "/i/chat", directChat.MatchString(path):
		return true
	case strings.HasPrefix(path, "/messages"):
		return true
	case path == "/notifications":
		return true
	}
	return false
}

// Ensure TwitterPolicy implements Policy.
var _ Policy = (*TwitterPolicy)(nil)
