// Package notify turns scheduler and recorder events into user-facing
// notifications and decodes button interactions back into actions.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/logger"
	"github.com/MrSnakeDoc/revisit/internal/recorder"
	"github.com/MrSnakeDoc/revisit/internal/scheduler"
	"github.com/MrSnakeDoc/revisit/internal/store"
)

// Notification is a displayable message with ordered action buttons.
type Notification struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Buttons []string `json:"buttons,omitempty"`
}

// Notifier displays notifications. Failures are logged and swallowed;
// notification delivery has no synchronous caller to report to.
type Notifier interface {
	Display(ctx context.Context, n Notification) error
}

// Notification ID families. Button-index-to-action mapping is a closed,
// ordered table per family; out-of-range indices are ignored.
const (
	ReminderID    = "reminder"
	VisitIDPrefix = "visit:"
)

type Dispatcher struct {
	store     store.Store
	notifier  Notifier
	recorder  *recorder.Recorder
	scheduler *scheduler.ReminderScheduler
	logger    logger.Logger
	now       func() time.Time

	// OpenList asks the frontend to open the site list. Wired to the
	// push hub by the app.
	OpenList func()
}

func NewDispatcher(
	st store.Store,
	notifier Notifier,
	rec *recorder.Recorder,
	sched *scheduler.ReminderScheduler,
	log logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:     st,
		notifier:  notifier,
		recorder:  rec,
		scheduler: sched,
		logger:    log,
		now:       time.Now,
	}
}

// ReminderDue shows the recurring reminder notification. Fire and
// forget: every failure is logged and swallowed.
func (d *Dispatcher) ReminderDue(ctx context.Context) {
	settings, err := d.store.GetSettings(ctx)
	if err != nil {
		d.logger.Warn("reminder notification skipped, settings unavailable", logger.Error(err))
		return
	}
	if settings != nil && !settings.NotificationsEnabled {
		d.logger.Debug("notifications disabled, reminder suppressed")
		return
	}

	pending, err := d.pendingCount(ctx)
	if err != nil {
		d.logger.Warn("reminder notification skipped", logger.Error(err))
		return
	}
	if pending == 0 {
		d.logger.Debug("all sites done today, reminder suppressed")
		return
	}

	n := Notification{
		ID:      ReminderID,
		Title:   "Check-in reminder",
		Body:    fmt.Sprintf("%d site(s) still waiting for a check-in today", pending),
		Buttons: []string{"View list", "Snooze"},
	}
	if err := d.notifier.Display(ctx, n); err != nil {
		d.logger.Warn("failed to display reminder notification", logger.Error(err))
	}
}

// SiteVisited shows the first-visit-of-the-day notification for a site.
func (d *Dispatcher) SiteVisited(ctx context.Context, site *domain.Site) {
	settings, err := d.store.GetSettings(ctx)
	if err != nil {
		d.logger.Warn("visit notification skipped, settings unavailable", logger.Error(err))
		return
	}
	if settings != nil && !settings.NotificationsEnabled {
		return
	}

	n := Notification{
		ID:      VisitIDPrefix + site.ID,
		Title:   "Visited " + site.Title,
		Body:    "Mark this site as checked in for today?",
		Buttons: []string{"Mark checked in", "Dismiss"},
	}
	if err := d.notifier.Display(ctx, n); err != nil {
		d.logger.Warn("failed to display visit notification", logger.Error(err))
	}
}

// HandleAction decodes a clicked notification button. Unknown IDs and
// out-of-range indices are ignored, not errors.
func (d *Dispatcher) HandleAction(ctx context.Context, notificationID string, buttonIndex int) (any, error) {
	switch {
	case notificationID == ReminderID:
		switch buttonIndex {
		case 0:
			if d.OpenList != nil {
				d.OpenList()
			}
		case 1:
			d.scheduler.Snooze(ctx)
		default:
			d.logger.Debug("ignoring out-of-range reminder button",
				logger.Int("index", buttonIndex))
		}
		return nil, nil

	case strings.HasPrefix(notificationID, VisitIDPrefix):
		siteID := strings.TrimPrefix(notificationID, VisitIDPrefix)
		switch buttonIndex {
		case 0:
			site, err := d.recorder.CheckIn(ctx, siteID, d.now())
			if err != nil {
				// The site may have been deleted since the
				// notification was shown; that is a no-op.
				if domain.IsNotFound(err) {
					return nil, nil
				}
				return nil, err
			}
			return site, nil
		case 1:
			// Visited only, nothing to record.
		default:
			d.logger.Debug("ignoring out-of-range visit button",
				logger.Int("index", buttonIndex))
		}
		return nil, nil

	default:
		d.logger.Debug("ignoring unknown notification id",
			logger.String("id", notificationID))
		return nil, nil
	}
}

func (d *Dispatcher) pendingCount(ctx context.Context) (int, error) {
	sites, err := d.store.GetSites(ctx)
	if err != nil {
		return 0, err
	}

	pending := 0
	now := d.now()
	for _, site := range sites {
		if !site.DoneToday(now) {
			pending++
		}
	}
	return pending, nil
}
