// Package recorder applies visit and check-in events to site records.
package recorder

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/logger"
	"github.com/MrSnakeDoc/revisit/internal/store"
)

// Recorder owns every mutation of a site's visit state. Each update is
// a read-modify-write of the composite record: concurrent writers may
// over- or under-count by at most the number of racers, but the counter
// never goes backward and timestamps never regress.
type Recorder struct {
	store  store.Store
	logger logger.Logger

	// FirstVisitHook fires on the first detected visit of a site's
	// local day (at most once per day). Wired to the notification
	// dispatcher by the app; nil is fine.
	FirstVisitHook func(ctx context.Context, site *domain.Site)
}

func New(st store.Store, log logger.Logger) *Recorder {
	return &Recorder{
		store:  st,
		logger: log,
	}
}

// RecordVisit applies a manual visit to a site by ID.
func (r *Recorder) RecordVisit(ctx context.Context, siteID string, at time.Time) (*domain.Site, error) {
	site, err := r.store.GetSite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if err := r.applyVisit(ctx, site, at); err != nil {
		return nil, err
	}
	return site, nil
}

// RecordAutoVisit applies a detected visit by URL. It re-runs the match
// so a site deleted between the caller's check and this write resolves
// to a race-safe no-op: (nil, nil), not an error.
func (r *Recorder) RecordAutoVisit(ctx context.Context, rawURL string, at time.Time) (*domain.Site, error) {
	sites, err := r.store.GetSites(ctx)
	if err != nil {
		return nil, err
	}

	var site *domain.Site
	for _, s := range sites {
		if domain.URLMatches(s.URL, rawURL) {
			site = s
			break
		}
	}
	if site == nil {
		r.logger.Debug("visit for unmatched url dropped", logger.String("url", rawURL))
		return nil, nil
	}

	firstToday := !site.DoneToday(at)
	if err := r.applyVisit(ctx, site, at); err != nil {
		return nil, err
	}

	if firstToday && r.FirstVisitHook != nil {
		r.FirstVisitHook(ctx, site)
	}
	return site, nil
}

// CheckIn marks a site as explicitly checked in for the day.
func (r *Recorder) CheckIn(ctx context.Context, siteID string, at time.Time) (*domain.Site, error) {
	site, err := r.store.GetSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	if site.LastCheckedInAt == nil || at.After(*site.LastCheckedInAt) {
		site.LastCheckedInAt = &at
	}
	if err := r.store.SaveSite(ctx, site); err != nil {
		return nil, err
	}

	r.logger.Info("site checked in",
		logger.String("site_id", site.ID),
		logger.String("title", site.Title))
	return site, nil
}

// ResetAll clears the derived daily status of every site and returns
// the updated collection.
func (r *Recorder) ResetAll(ctx context.Context) ([]*domain.Site, error) {
	sites, err := r.store.GetSites(ctx)
	if err != nil {
		return nil, err
	}

	for _, site := range sites {
		site.ResetStatus()
		if err := r.store.SaveSite(ctx, site); err != nil {
			return nil, err
		}
	}

	r.logger.Info("daily status reset", logger.Int("sites", len(sites)))
	return sites, nil
}

func (r *Recorder) applyVisit(ctx context.Context, site *domain.Site, at time.Time) error {
	site.VisitCount++
	if site.LastVisitedAt == nil || at.After(*site.LastVisitedAt) {
		site.LastVisitedAt = &at
	}

	if err := r.store.SaveSite(ctx, site); err != nil {
		return err
	}

	r.logger.Debug("visit recorded",
		logger.String("site_id", site.ID),
		logger.Int64("visit_count", site.VisitCount))
	return nil
}
