package seed

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/logger"
	"github.com/MrSnakeDoc/revisit/internal/store"
)

// Importer maps seed entries to site records and saves the new ones.
type Importer struct {
	store  store.Store
	logger logger.Logger
}

func NewImporter(st store.Store, log logger.Logger) *Importer {
	return &Importer{
		store:  st,
		logger: log,
	}
}

// Import adds every seed entry whose normalized URL is not saved yet.
// Invalid entries are logged and skipped, never fatal.
func (i *Importer) Import(ctx context.Context, f *File) (added int, err error) {
	existing, err := i.store.GetSites(ctx)
	if err != nil {
		return 0, err
	}

	known := make(map[string]bool, len(existing))
	for _, site := range existing {
		known[site.URL] = true
	}

	now := time.Now()
	for _, entry := range f.Sites {
		site, err := domain.NewSite(entry.URL, entry.Title, now)
		if err != nil {
			i.logger.Warn("skipping invalid seed entry",
				logger.String("url", entry.URL),
				logger.Error(err))
			continue
		}
		if known[site.URL] {
			continue
		}
		site.Favicon = entry.Favicon
		site.Notes = entry.Notes
		site.Tags = entry.Tags

		if err := i.store.SaveSite(ctx, site); err != nil {
			return added, err
		}
		known[site.URL] = true
		added++
	}

	if added > 0 {
		i.logger.Info("seeded sites from file", logger.Int("added", added))
	}
	return added, nil
}
