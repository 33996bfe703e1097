package platform

import (
	"context"
	"sort"
)

// Registry holds all platform policies.
type Registry struct {
	policies map[string]Policy
}

// NewRegistry creates a registry with all default policies.
func NewRegistry() *Registry {
	return NewRegistryWithPolicies(
		NewTwitterPolicy(),
		NewDiscordPolicy(),
		NewYouTubePolicy(),
		NewVKPolicy(),
		NewTwitchPolicy(),
		NewDailymotionPolicy(),
		NewYandexPolicy(),
		NewBilibiliPolicy(),
	)
}

// NewRegistryWithPolicies creates a registry with custom policies (for testing).
func NewRegistryWithPolicies(policies ...Policy) *Registry {
	r := &Registry{
		policies: make(map[string]Policy),
	}
	for _, p := range policies {
		r.Register(p)
	}
	return r
}

// Register adds a policy to the registry.
func (r *Registry) Register(p Policy) {
	r.policies[p.ID()] = p
}

// Get returns a policy by ID.
func (r *Registry) Get(id string) (Policy, bool) {
	p, ok := r.policies[id]
	return p, ok
}

// List returns all policy IDs, sorted.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.policies))
	for id := range r.policies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ForHost returns the policy covering host.
func (r *Registry) ForHost(host string) (Policy, bool) {
	for _, id := range r.List() {
		p := r.policies[id]
		if coversHost(host, p.Hosts()) {
			return p, true
		}
	}
	return nil, false
}

// Exempt runs the policy covering req.Host, if any.
func (r *Registry) Exempt(ctx context.Context, req Request, pings PingChecker) bool {
	p, ok := r.ForHost(req.Host)
	if !ok {
		return false
	}
	return p.Exempt(ctx, req, pings)
}
