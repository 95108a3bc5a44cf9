// Package memory provides an in-process Store used by tests and by
// redis-less development runs. Semantics mirror the redis store:
// composite site records, insertion-order listing, async change
// callbacks.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/store"
)

type Memory struct {
	mu        sync.RWMutex
	sites     map[string]*domain.Site
	order     []string
	settings  *domain.Settings
	fired     map[string]time.Time
	listeners map[string][]func()
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		sites:     make(map[string]*domain.Site),
		fired:     make(map[string]time.Time),
		listeners: make(map[string][]func()),
	}
}

func (m *Memory) GetSites(ctx context.Context) ([]*domain.Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sites := make([]*domain.Site, 0, len(m.order))
	for _, id := range m.order {
		if site, ok := m.sites[id]; ok {
			sites = append(sites, cloneSite(site))
		}
	}
	return sites, nil
}

func (m *Memory) GetSite(ctx context.Context, id string) (*domain.Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	site, ok := m.sites[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "site", ID: id}
	}
	return cloneSite(site), nil
}

func (m *Memory) SaveSite(ctx context.Context, site *domain.Site) error {
	m.mu.Lock()
	if _, exists := m.sites[site.ID]; !exists {
		m.order = append(m.order, site.ID)
	}
	m.sites[site.ID] = cloneSite(site)
	m.mu.Unlock()

	m.notify(store.KeySites)
	return nil
}

func (m *Memory) DeleteSite(ctx context.Context, id string) error {
	m.mu.Lock()
	if _, exists := m.sites[id]; exists {
		delete(m.sites, id)
		for i, oid := range m.order {
			if oid == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	m.mu.Unlock()

	m.notify(store.KeySites)
	return nil
}

func (m *Memory) ClearSites(ctx context.Context) error {
	m.mu.Lock()
	m.sites = make(map[string]*domain.Site)
	m.order = nil
	m.mu.Unlock()

	m.notify(store.KeySites)
	return nil
}

func (m *Memory) GetSettings(ctx context.Context) (*domain.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return nil, nil
	}
	cp := *m.settings
	cp.Reminder.Times = append([]string(nil), m.settings.Reminder.Times...)
	return &cp, nil
}

func (m *Memory) SaveSettings(ctx context.Context, settings *domain.Settings) error {
	m.mu.Lock()
	cp := *settings
	cp.Reminder.Times = append([]string(nil), settings.Reminder.Times...)
	m.settings = &cp
	m.mu.Unlock()

	m.notify(store.KeySettings)
	return nil
}

func (m *Memory) LastFired(ctx context.Context, alarm string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fired[alarm], nil
}

func (m *Memory) MarkFired(ctx context.Context, alarm string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fired[alarm] = at
	return nil
}

func (m *Memory) OnChange(key string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners[key] = append(m.listeners[key], fn)
}

func (m *Memory) Close() error { return nil }

func (m *Memory) notify(key string) {
	m.mu.RLock()
	fns := make([]func(), len(m.listeners[key]))
	copy(fns, m.listeners[key])
	m.mu.RUnlock()

	for _, fn := range fns {
		go fn()
	}
}

// cloneSite copies the record so callers never alias stored state.
func cloneSite(s *domain.Site) *domain.Site {
	cp := *s
	if s.Tags != nil {
		cp.Tags = append([]string(nil), s.Tags...)
	}
	if s.LastVisitedAt != nil {
		t := *s.LastVisitedAt
		cp.LastVisitedAt = &t
	}
	if s.LastCheckedInAt != nil {
		t := *s.LastCheckedInAt
		cp.LastCheckedInAt = &t
	}
	return &cp
}
