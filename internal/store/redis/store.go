// Package redis implements the coordinator Store on a Redis backend.
//
// Each site is one JSON blob under its own key so every mutation is a
// single atomic write; insertion order lives in a separate list. Change
// notification rides a pub/sub channel carrying the logical key name.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/logger"
	"github.com/MrSnakeDoc/revisit/internal/store"
)

// FiredTTL bounds how long fired-ledger entries live. Catch-up only
// ever looks at the current day, so anything older is dead weight.
const FiredTTL = 48 * time.Hour

type Store struct {
	client *goredis.Client
	logger logger.Logger

	mu        sync.RWMutex
	listeners map[string][]func()
}

var _ store.Store = (*Store)(nil)

// NewStore creates a Redis-backed Store.
func NewStore(client *goredis.Client, log logger.Logger) *Store {
	return &Store{
		client:    client,
		logger:    log,
		listeners: make(map[string][]func()),
	}
}

// Start begins delivering change notifications to OnChange listeners.
// It returns once the subscription is established; delivery runs until
// ctx is cancelled.
func (s *Store) Start(ctx context.Context) {
	sub := s.client.Subscribe(ctx, ChangesChannel)
	go func() {
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				s.dispatch(msg.Payload)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Store) dispatch(key string) {
	s.mu.RLock()
	fns := make([]func(), len(s.listeners[key]))
	copy(fns, s.listeners[key])
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Store) OnChange(key string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[key] = append(s.listeners[key], fn)
}

func (s *Store) publish(ctx context.Context, key string) {
	if err := s.client.Publish(ctx, ChangesChannel, key).Err(); err != nil {
		s.logger.Warn("failed to publish change notification",
			logger.String("key", key),
			logger.Error(err))
	}
}

// SaveSite writes the composite record and registers the ID in the
// order list on first save.
func (s *Store) SaveSite(ctx context.Context, site *domain.Site) error {
	data, err := json.Marshal(site)
	if err != nil {
		return &domain.StoreError{Op: "marshal site", Err: err}
	}

	if err := s.client.Set(ctx, SiteKey(site.ID), data, 0).Err(); err != nil {
		return &domain.StoreError{Op: "save site", Err: err}
	}

	added, err := s.client.SAdd(ctx, KeyAllSites, site.ID).Result()
	if err != nil {
		return &domain.StoreError{Op: "register site", Err: err}
	}
	if added > 0 {
		if err := s.client.RPush(ctx, KeySiteOrder, site.ID).Err(); err != nil {
			return &domain.StoreError{Op: "order site", Err: err}
		}
	}

	s.publish(ctx, store.KeySites)
	return nil
}

// GetSite retrieves a site by ID.
func (s *Store) GetSite(ctx context.Context, id string) (*domain.Site, error) {
	data, err := s.client.Get(ctx, SiteKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, &domain.NotFoundError{Kind: "site", ID: id}
		}
		return nil, &domain.StoreError{Op: "get site", Err: err}
	}

	var site domain.Site
	if err := json.Unmarshal(data, &site); err != nil {
		return nil, &domain.StoreError{Op: "unmarshal site", Err: err}
	}
	return &site, nil
}

// GetSites retrieves all sites in insertion order.
func (s *Store) GetSites(ctx context.Context) ([]*domain.Site, error) {
	ids, err := s.client.LRange(ctx, KeySiteOrder, 0, -1).Result()
	if err != nil {
		return nil, &domain.StoreError{Op: "list sites", Err: err}
	}

	sites := make([]*domain.Site, 0, len(ids))
	for _, id := range ids {
		site, err := s.GetSite(ctx, id)
		if err != nil {
			// Skip records that vanished between LRANGE and GET.
			if domain.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// DeleteSite removes a site. Deleting a missing ID is a no-op.
func (s *Store) DeleteSite(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, SiteKey(id)).Err(); err != nil {
		return &domain.StoreError{Op: "delete site", Err: err}
	}
	if err := s.client.SRem(ctx, KeyAllSites, id).Err(); err != nil {
		return &domain.StoreError{Op: "unregister site", Err: err}
	}
	if err := s.client.LRem(ctx, KeySiteOrder, 0, id).Err(); err != nil {
		return &domain.StoreError{Op: "unorder site", Err: err}
	}

	s.publish(ctx, store.KeySites)
	return nil
}

// ClearSites empties the site collection.
func (s *Store) ClearSites(ctx context.Context) error {
	ids, err := s.client.LRange(ctx, KeySiteOrder, 0, -1).Result()
	if err != nil {
		return &domain.StoreError{Op: "list sites", Err: err}
	}

	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, SiteKey(id))
	}
	pipe.Del(ctx, KeySiteOrder)
	pipe.Del(ctx, KeyAllSites)
	if _, err := pipe.Exec(ctx); err != nil {
		return &domain.StoreError{Op: "clear sites", Err: err}
	}

	s.publish(ctx, store.KeySites)
	return nil
}

// GetSettings retrieves the singleton settings record, or (nil, nil)
// when nothing is persisted yet.
func (s *Store) GetSettings(ctx context.Context) (*domain.Settings, error) {
	data, err := s.client.Get(ctx, KeySettings).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, &domain.StoreError{Op: "get settings", Err: err}
	}

	var settings domain.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, &domain.StoreError{Op: "unmarshal settings", Err: err}
	}
	return &settings, nil
}

// SaveSettings persists the singleton settings record.
func (s *Store) SaveSettings(ctx context.Context, settings *domain.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return &domain.StoreError{Op: "marshal settings", Err: err}
	}
	if err := s.client.Set(ctx, KeySettings, data, 0).Err(); err != nil {
		return &domain.StoreError{Op: "save settings", Err: err}
	}

	s.publish(ctx, store.KeySettings)
	return nil
}

// LastFired returns when an alarm last fired, or the zero time.
func (s *Store) LastFired(ctx context.Context, alarm string) (time.Time, error) {
	v, err := s.client.Get(ctx, FiredKey(alarm)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, &domain.StoreError{Op: "get fired ledger", Err: err}
	}

	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, &domain.StoreError{Op: "parse fired ledger", Err: err}
	}
	return t, nil
}

// MarkFired records that an alarm fired at the given instant.
func (s *Store) MarkFired(ctx context.Context, alarm string, at time.Time) error {
	if err := s.client.Set(ctx, FiredKey(alarm), at.Format(time.RFC3339), FiredTTL).Err(); err != nil {
		return &domain.StoreError{Op: "mark fired", Err: err}
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
