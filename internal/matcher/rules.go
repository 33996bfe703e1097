package matcher

import (
	"strings"

	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// MatchesItem is the loose bidirectional substring test between a
// normalized hostname and one blocked item. It over-matches on purpose:
// "youtube" matches "youtube.com" and "m.youtube.com" matches "youtube.com".
// Known sites also match their CDN domains, so "netflix" covers
// "nflxvideo.net".
func MatchesItem(host, item string) bool {
	item = NormalizeHost(item)
	if host == "" || item == "" {
		return false
	}
	if strings.Contains(host, item) || strings.Contains(item, host) {
		return true
	}
	return MatchesAlias(host, item)
}

// RuleMatches reports whether an enabled rule blocks host by any item.
func RuleMatches(host string, rule domain.Rule) bool {
	if !rule.Enabled {
		return false
	}
	for _, item := range rule.Items {
		if MatchesItem(host, item) {
			return true
		}
	}
	return false
}

// FindMatchingRules returns the enabled rules matching host, in stored order.
func FindMatchingRules(host string, rules []domain.Rule) []domain.Rule {
	var matched []domain.Rule
	for _, r := range rules {
		if RuleMatches(host, r) {
			matched = append(matched, r)
		}
	}
	return matched
}

// AnyEnabled reports whether at least one rule is enabled.
func AnyEnabled(rules []domain.Rule) bool {
	for _, r := range rules {
		if r.Enabled {
			return true
		}
	}
	return false
}
