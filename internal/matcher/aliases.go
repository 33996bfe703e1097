package matcher

import "strings"

// siteDomains lists the extra domains a streaming or social site serves
// from, mostly video and image CDNs. Blocking the site blocks all of them.
var siteDomains = map[string][]string{
	"netflix":   {"netflix.com", "nflxvideo.net", "nflximg.net", "nflxso.net"},
	"youtube":   {"youtube.com", "youtu.be", "googlevideo.com", "ytimg.com"},
	"tiktok":    {"tiktok.com", "tiktokcdn.com", "tiktokv.com"},
	"reddit":    {"reddit.com", "redd.it", "redditmedia.com"},
	"twitter":   {"twitter.com", "x.com", "twimg.com"},
	"instagram": {"instagram.com", "cdninstagram.com"},
	"facebook":  {"facebook.com", "fb.com", "fbcdn.net"},
	"twitch":    {"twitch.tv", "twitchcdn.net"},
	"disney+":   {"disneyplus.com", "disney-plus.net"},
	"hulu":      {"hulu.com", "huluim.com"},
	"hbo":       {"hbomax.com", "max.com"},
	"amazon":    {"primevideo.com", "aiv-cdn.net"},
}

// siteAliases returns the alias domains for a normalized item. The item
// may be a site name ("netflix") or one of the site's domains, including
// a subdomain of one ("m.youtube.com").
func siteAliases(item string) []string {
	if domains, ok := siteDomains[item]; ok {
		return domains
	}
	for _, domains := range siteDomains {
		for _, d := range domains {
			if hostUnder(item, d) {
				return domains
			}
		}
	}
	return nil
}

// MatchesAlias reports whether host belongs to one of the alias domains
// of item.
func MatchesAlias(host, item string) bool {
	for _, d := range siteAliases(item) {
		if hostUnder(host, d) {
			return true
		}
	}
	return false
}

func hostUnder(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
