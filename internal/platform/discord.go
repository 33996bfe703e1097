package platform

import "context"

// DiscordPolicy keeps direct messages reachable on Discord. Server channels
// open only inside a ping window for that channel.
type DiscordPolicy struct{}

func NewDiscordPolicy() *DiscordPolicy {
	return &DiscordPolicy{}
}

func (p *DiscordPolicy) ID() string {
	return "discord"
}

func (p *DiscordPolicy) Name() string {
	return "Discord"
}

func (p *DiscordPolicy) Hosts() []string {
	return []string{"discord.com", "discordapp.com"}
}

// Exempt handles /channels/@me[/<id>] and /channels/<server>/<channel>[/<message>].
func (p *DiscordPolicy) Exempt(ctx context.Context, req Request, pings PingChecker) bool {
	parts := segments(req.Path)
	if len(parts) < 2 || parts[0] != "channels" {
		return false
	}
	if parts[1] == "@me" {
		return len(parts) <= 3
	}
	if len(parts) >= 3 {
		return pingActive(ctx, pings, "discord:"+parts[2])
	}
	return false
}

// Ensure DiscordPolicy implements Policy.
var _ Policy = (*DiscordPolicy)(nil)
