package store

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/revisit/internal/domain"
)

// Logical keys reported through OnChange.
const (
	KeySites    = "sites"
	KeySettings = "settings"
)

// Store is the durable key-value layer the coordinator runs against.
//
// Implementations guarantee atomic single-key reads and writes but no
// multi-key transactions, which is why Site is persisted as one
// composite record. GetSites returns sites in insertion order.
type Store interface {
	GetSites(ctx context.Context) ([]*domain.Site, error)
	// GetSite returns a *domain.NotFoundError when the id is absent.
	GetSite(ctx context.Context, id string) (*domain.Site, error)
	// SaveSite writes the whole record in one operation. First save of
	// an id appends it to the collection order.
	SaveSite(ctx context.Context, site *domain.Site) error
	// DeleteSite is idempotent; deleting a missing id is not an error.
	DeleteSite(ctx context.Context, id string) error
	ClearSites(ctx context.Context) error

	// GetSettings returns (nil, nil) when nothing is persisted yet;
	// callers materialize defaults.
	GetSettings(ctx context.Context) (*domain.Settings, error)
	SaveSettings(ctx context.Context, settings *domain.Settings) error

	// LastFired and MarkFired back the alarm ledger used for
	// missed-alarm catch-up across process restarts. LastFired returns
	// the zero time for an unknown alarm.
	LastFired(ctx context.Context, alarm string) (time.Time, error)
	MarkFired(ctx context.Context, alarm string, at time.Time) error

	// OnChange registers a callback invoked (asynchronously) after the
	// record under the given logical key changes.
	OnChange(key string, fn func())

	Close() error
}
