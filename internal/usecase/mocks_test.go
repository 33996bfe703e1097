package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// memStore implements domain.Store in memory for testing
type memStore struct {
	mu       sync.Mutex
	rules    []domain.Rule
	progress domain.Progress
	kv       map[string]string
	secrets  map[string]string
	listErr  error
	saveErr  error
}

func newMemStore(rules ...domain.Rule) *memStore {
	return &memStore{
		rules:   rules,
		kv:      make(map[string]string),
		secrets: make(map[string]string),
	}
}

func (m *memStore) ListRules(context.Context) ([]domain.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.Rule(nil), m.rules...), nil
}

func (m *memStore) SaveRule(_ context.Context, rule domain.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	for i, r := range m.rules {
		if r.ID == rule.ID {
			m.rules[i] = rule
			return nil
		}
	}
	m.rules = append(m.rules, rule)
	return nil
}

func (m *memStore) DeleteRule(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rules {
		if r.ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return domain.ErrRuleNotFound
}

func (m *memStore) ReplaceRules(_ context.Context, rules []domain.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append([]domain.Rule(nil), rules...)
	return nil
}

func (m *memStore) GetProgress(context.Context) (domain.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress, nil
}

func (m *memStore) SaveProgress(_ context.Context, p domain.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = p
	return nil
}

func (m *memStore) AddProgress(_ context.Context, date string, steps, workoutMinutes int) (domain.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.progress.Date != date {
		m.progress = domain.Progress{Date: date}
	}
	m.progress.Steps += steps
	m.progress.WorkoutMinutes += workoutMinutes
	return m.progress, nil
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.kv, key)
	return nil
}

func (m *memStore) List(_ context.Context, prefix string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string)
	for k, v := range m.kv {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}

func (m *memStore) GetSecret(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.secrets[key]
	if !ok {
		return "", domain.ErrSecretNotFound
	}
	return v, nil
}

func (m *memStore) SetSecret(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[key] = value
	return nil
}

func (m *memStore) DeleteSecret(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.secrets[key]; !ok {
		return domain.ErrSecretNotFound
	}
	delete(m.secrets, key)
	return nil
}

func (m *memStore) Close() error { return nil }

var _ domain.Store = (*memStore)(nil)

// mockClock is a settable clock for testing
type mockClock struct {
	now time.Time
}

func (c *mockClock) Now() time.Time          { return c.now }
func (c *mockClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// panickyRepo implements domain.RuleRepository and panics on read
type panickyRepo struct{ *memStore }

func (panickyRepo) ListRules(context.Context) ([]domain.Rule, error) {
	panic("boom")
}

var errDiskGone = errors.New("disk gone")
