// Package matcher decides whether a URL corresponds to a saved site.
package matcher

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/logger"
	"github.com/MrSnakeDoc/revisit/internal/store"
)

type Matcher struct {
	store  store.Store
	logger logger.Logger
}

func New(st store.Store, log logger.Logger) *Matcher {
	return &Matcher{
		store:  st,
		logger: log,
	}
}

// Match checks a candidate URL against the saved collection. It is a
// pure read over the store snapshot: no mutation, safe for untrusted
// high-frequency callers. A non-matching or non-http(s) URL is not an
// error; only store I/O can fail.
//
// First match wins; ties break on insertion order of the collection.
func (m *Matcher) Match(ctx context.Context, rawURL string, now time.Time) (domain.MatchResult, error) {
	if _, err := domain.NormalizeURL(rawURL); err != nil {
		// Non-http(s) schemes and garbage never match.
		return domain.MatchResult{}, nil
	}

	sites, err := m.store.GetSites(ctx)
	if err != nil {
		return domain.MatchResult{}, err
	}

	for _, site := range sites {
		if !domain.URLMatches(site.URL, rawURL) {
			continue
		}
		m.logger.Debug("url matched site",
			logger.String("site_id", site.ID),
			logger.String("title", site.Title))
		return domain.MatchResult{
			Matched:             true,
			SiteID:              site.ID,
			SiteName:            site.Title,
			AlreadyVisitedToday: site.DoneToday(now),
		}, nil
	}

	return domain.MatchResult{}, nil
}
