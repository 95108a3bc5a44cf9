// Package scheduler re-derives the alarm set from persisted settings.
//
// The process hosting the coordinator can be torn down at any time, so
// alarms are never trusted as incrementally maintained state: on every
// cold start, and on every reminder settings change, the desired set is
// rebuilt from settings alone. A persisted fired-ledger makes delivery
// at-least-once-after-restart: overdue slots fire once on the next
// wake, never twice for the same local day.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/revisit/internal/alarm"
	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/logger"
	"github.com/MrSnakeDoc/revisit/internal/recorder"
	"github.com/MrSnakeDoc/revisit/internal/store"
)

const (
	// ReminderPrefix names the recurring per-slot reminder alarms
	// ("reminder:09:00"). Reconciliation cancels everything under it.
	ReminderPrefix = "reminder:"
	// SnoozePrefix names one-shot snooze alarms. It sits under
	// ReminderPrefix so a settings change also clears pending snoozes.
	SnoozePrefix = "reminder:snooze:"
	// DailyResetName is the recurring alarm clearing daily status
	// shortly after local midnight.
	DailyResetName = "daily-reset"
)

type ReminderScheduler struct {
	store       store.Store
	alarms      *alarm.Manager
	recorder    *recorder.Recorder
	logger      logger.Logger
	snoozeDelay time.Duration
	resetAt     string
	now         func() time.Time

	// mu serializes reconciliation. A settings update can trigger
	// Reconcile from the request handler and from the store change feed
	// at the same time.
	mu sync.Mutex
	// fireMu makes the fired-ledger check-and-mark atomic, so an alarm
	// firing while a reconcile catch-up runs cannot both claim the slot.
	fireMu sync.Mutex

	// OnReminderDue delivers a due reminder to the notification
	// dispatcher. Wired by the app; nil is fine.
	OnReminderDue func(ctx context.Context)
}

func New(
	st store.Store,
	alarms *alarm.Manager,
	rec *recorder.Recorder,
	log logger.Logger,
	snoozeDelay time.Duration,
	resetAt string,
) *ReminderScheduler {
	if snoozeDelay <= 0 {
		snoozeDelay = 10 * time.Minute
	}
	if resetAt == "" {
		resetAt = "00:01"
	}
	return &ReminderScheduler{
		store:       st,
		alarms:      alarms,
		recorder:    rec,
		logger:      log,
		snoozeDelay: snoozeDelay,
		resetAt:     resetAt,
		now:         time.Now,
	}
}

// Start performs the cold-start reconciliation: rebuild reminder alarms
// from settings, install the daily reset alarm, and catch up anything
// that should have fired earlier today.
func (s *ReminderScheduler) Start(ctx context.Context) error {
	if err := s.Reconcile(ctx); err != nil {
		return err
	}
	return s.scheduleDailyReset(ctx)
}

// Reconcile rebuilds the reminder alarm set from persisted settings:
// cancel everything under the reminder prefix, then recreate one
// recurring alarm per configured slot if reminders are enabled.
func (s *ReminderScheduler) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return err
	}

	cancelled := s.alarms.CancelPrefix(ReminderPrefix)
	if cancelled > 0 {
		s.logger.Debug("cancelled reminder alarms", logger.Int("count", cancelled))
	}

	if !settings.Reminder.Enabled {
		s.logger.Info("reminders disabled, no alarms scheduled")
		return nil
	}

	now := s.now()
	for _, slot := range settings.Reminder.Times {
		name := ReminderPrefix + slot

		if err := s.alarms.ScheduleDaily(name, slot, s.fireReminder); err != nil {
			s.logger.Warn("skipping invalid reminder time",
				logger.String("time", slot),
				logger.Error(err))
			continue
		}

		// Catch-up: the slot already passed today and has not fired
		// yet (process was unloaded through it). Fire once now; the
		// ledger guard inside fireReminder prevents doubles.
		if due, err := domain.OccurrenceToday(slot, now); err == nil && !due.After(now) {
			s.fireReminder(ctx, name, now)
		}
	}

	s.logger.Info("reminder alarms reconciled",
		logger.Int("slots", len(settings.Reminder.Times)))
	return nil
}

// Snooze schedules a one-shot reminder re-delivery after the configured
// delay. No ledger guard: a snooze is an explicit user request.
func (s *ReminderScheduler) Snooze(ctx context.Context) {
	name := SnoozePrefix + uuid.NewString()
	at := s.now().Add(s.snoozeDelay)

	s.alarms.Schedule(name, at, 0, func(ctx context.Context, _ string, _ time.Time) {
		if s.OnReminderDue != nil {
			s.OnReminderDue(ctx)
		}
	})

	s.logger.Info("reminder snoozed",
		logger.Duration("delay", s.snoozeDelay),
		logger.Time("at", at))
}

func (s *ReminderScheduler) fireReminder(ctx context.Context, name string, firedAt time.Time) {
	if !s.claimFire(ctx, name, firedAt) {
		s.logger.Debug("reminder already fired today, skipping",
			logger.String("alarm", name))
		return
	}

	s.logger.Info("reminder due", logger.String("alarm", name))
	if s.OnReminderDue != nil {
		s.OnReminderDue(ctx)
	}
}

func (s *ReminderScheduler) scheduleDailyReset(ctx context.Context) error {
	if err := s.alarms.ScheduleDaily(DailyResetName, s.resetAt, s.fireDailyReset); err != nil {
		return err
	}

	// Catch-up for the reset as well: a process that slept through
	// midnight still clears yesterday's status once it wakes.
	now := s.now()
	if due, err := domain.OccurrenceToday(s.resetAt, now); err == nil && !due.After(now) {
		s.fireDailyReset(ctx, DailyResetName, now)
	}
	return nil
}

func (s *ReminderScheduler) fireDailyReset(ctx context.Context, name string, firedAt time.Time) {
	if !s.claimFire(ctx, name, firedAt) {
		return
	}

	if _, err := s.recorder.ResetAll(ctx); err != nil {
		s.logger.Error("daily status reset failed", logger.Error(err))
	}
}

// claimFire atomically checks the fired ledger and marks the alarm as
// fired for the day. Of any concurrent callers for the same alarm,
// exactly one wins the claim.
func (s *ReminderScheduler) claimFire(ctx context.Context, name string, now time.Time) bool {
	s.fireMu.Lock()
	defer s.fireMu.Unlock()

	last, err := s.store.LastFired(ctx, name)
	if err != nil {
		s.logger.Warn("failed to read fired ledger",
			logger.String("alarm", name),
			logger.Error(err))
	} else if !last.IsZero() && domain.SameLocalDay(last, now) {
		return false
	}

	if err := s.store.MarkFired(ctx, name, now); err != nil {
		s.logger.Warn("failed to update fired ledger",
			logger.String("alarm", name),
			logger.Error(err))
	}
	return true
}

func (s *ReminderScheduler) loadSettings(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = domain.DefaultSettings()
	}
	return settings, nil
}

// ActiveReminders exposes the current reminder alarm names (tests and
// diagnostics).
func (s *ReminderScheduler) ActiveReminders() []string {
	return s.alarms.ActivePrefix(ReminderPrefix)
}
