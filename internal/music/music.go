// Package music tells music content apart from general video content on
// media sites using text markers. It favors letting music through: false
// positives are acceptable, missed music is not a bug either.
package music

import "strings"

// markers are lowercase substrings that indicate music content in a URL,
// title, description or channel name.
var markers = []string{
	// titles
	"official video",
	"official music video",
	"official audio",
	"official lyric",
	"lyric video",
	"lyrics",
	"visualizer",
	"music video",
	"(audio)",
	"[audio]",
	"feat.",
	"ft. ",
	"remix",
	"acoustic version",
	"live session",
	"full album",
	"karaoke",
	"instrumental",
	"soundtrack",
	"playlist",

	// channels
	"vevo",
	"- topic",
	"records",
	"recordings",
	"sony music",
	"universal music",
	"warner music",
	"atlantic records",
	"columbia records",
	"island records",
	"def jam",
	"interscope",
	"capitol records",
	"epic records",
	"ncs release",

	// descriptions
	"provided to youtube",
	"auto-generated by youtube",
	"released on:",
	"℗",
	"stream/download",

	// streaming services
	"spotify",
	"apple music",
	"soundcloud",
	"bandcamp",
	"deezer",
	"tidal",
}

// IsMusicVideo reports whether the page looks like music. A category of
// exactly "music" decides on its own; otherwise all fields are searched
// for a known marker. Empty fields are fine.
func IsMusicVideo(url, title, description, channel, category string) bool {
	if strings.EqualFold(strings.TrimSpace(category), "music") {
		return true
	}
	text := strings.ToLower(strings.Join([]string{url, title, description, channel, category}, " "))
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// IsMusicURL runs the heuristic on a URL alone.
func IsMusicURL(url string) bool {
	return IsMusicVideo(url, "", "", "", "")
}
