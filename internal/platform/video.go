package platform

import (
	"context"
	"strings"
)

// The remaining video platforms only expose their music sections.

// VKPolicy exempts VK music and audio pages.
type VKPolicy struct{}

func NewVKPolicy() *VKPolicy { return &VKPolicy{} }

func (p *VKPolicy) ID() string      { return "vk" }
func (p *VKPolicy) Name() string    { return "VK" }
func (p *VKPolicy) Hosts() []string { return []string{"vk.com", "vk.ru", "vkvideo.ru"} }

func (p *VKPolicy) Exempt(_ context.Context, req Request, _ PingChecker) bool {
	return hasPathPrefix(req.Path, "/music") || hasPathPrefix(req.Path, "/audio")
}

// TwitchPolicy exempts the Twitch music category.
type TwitchPolicy struct{}

func NewTwitchPolicy() *TwitchPolicy { return &TwitchPolicy{} }

func (p *TwitchPolicy) ID() string      { return "twitch" }
func (p *TwitchPolicy) Name() string    { return "Twitch" }
func (p *TwitchPolicy) Hosts() []string { return []string{"twitch.tv"} }

func (p *TwitchPolicy) Exempt(_ context.Context, req Request, _ PingChecker) bool {
	url := strings.ToLower(req.URL)
	return strings.Contains(url, "/directory/game/music") ||
		strings.Contains(url, "category=music") ||
		strings.TrimSuffix(strings.ToLower(req.Path), "/") == "/directory/all/tags/music"
}

// DailymotionPolicy exempts Dailymotion music pages.
type DailymotionPolicy struct{}

func NewDailymotionPolicy() *DailymotionPolicy { return &DailymotionPolicy{} }

func (p *DailymotionPolicy) ID() string      { return "dailymotion" }
func (p *DailymotionPolicy) Name() string    { return "Dailymotion" }
func (p *DailymotionPolicy) Hosts() []string { return []string{"dailymotion.com"} }

func (p *DailymotionPolicy) Exempt(_ context.Context, req Request, _ PingChecker) bool {
	return hasPathPrefix(req.Path, "/music") || strings.Contains(strings.ToLower(req.URL), "channel=music")
}

// YandexPolicy exempts music paths on Yandex and Dzen.
type YandexPolicy struct{}

func NewYandexPolicy() *YandexPolicy { return &YandexPolicy{} }

func (p *YandexPolicy) ID() string      { return "yandex" }
func (p *YandexPolicy) Name() string    { return "Yandex/Dzen" }
func (p *YandexPolicy) Hosts() []string { return []string{"dzen.ru", "yandex.ru", "yandex.com"} }

func (p *YandexPolicy) Exempt(_ context.Context, req Request, _ PingChecker) bool {
	return strings.Contains(strings.ToLower(req.Path), "/music")
}

// BilibiliPolicy exempts any Bilibili path mentioning music.
type BilibiliPolicy struct{}

func NewBilibiliPolicy() *BilibiliPolicy { return &BilibiliPolicy{} }

func (p *BilibiliPolicy) ID() string      { return "bilibili" }
func (p *BilibiliPolicy) Name() string    { return "Bilibili" }
func (p *BilibiliPolicy) Hosts() []string { return []string{"bilibili.com"} }

// Exempt covers /v/music as well, since that path contains "music".
func (p *BilibiliPolicy) Exempt(_ context.Context, req Request, _ PingChecker) bool {
	return strings.Contains(strings.ToLower(req.Path), "music")
}

var (
	_ Policy = (*VKPolicy)(nil)
	_ Policy = (*TwitchPolicy)(nil)
	_ Policy = (*DailymotionPolicy)(nil)
	_ Policy = (*YandexPolicy)(nil)
	_ Policy = (*BilibiliPolicy)(nil)
)
