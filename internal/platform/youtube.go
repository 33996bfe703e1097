package platform

import (
	"context"

	"github.com/eliteGoblin/focusd/web_gate/internal/music"
)

// YouTubePolicy keeps search reachable and lets music videos through when
// the URL alone gives them away. Title-based detection happens earlier,
// in the metadata check.
type YouTubePolicy struct{}

func NewYouTubePolicy() *YouTubePolicy {
	return &YouTubePolicy{}
}

func (p *YouTubePolicy) ID() string {
	return "youtube"
}

func (p *YouTubePolicy) Name() string {
	return "YouTube"
}

func (p *YouTubePolicy) Hosts() []string {
	return []string{"youtube.com", "youtu.be"}
}

func (p *YouTubePolicy) Exempt(_ context.Context, req Request, _ PingChecker) bool {
	switch {
	case hasPathPrefix(req.Path, "/results"):
		return true
	case hasPathPrefix(req.Path, "/watch"), hasPathPrefix(req.Path, "/shorts"):
		return music.IsMusicURL(req.URL)
	}
	return false
}

// Ensure YouTubePolicy implements Policy.
var _ Policy = (*YouTubePolicy)(nil)
