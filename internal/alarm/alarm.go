// Package alarm provides named wake signals for the scheduler: the
// in-process counterpart of a host alarm clock. Alarms are ephemeral;
// they never survive a restart and are always re-derived from settings.
package alarm

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/logger"
)

// Handler runs when an alarm fires.
type Handler func(ctx context.Context, name string, firedAt time.Time)

type entry struct {
	cancel context.CancelFunc
	next   time.Time
	repeat time.Duration
}

// Manager owns the active alarm set. One goroutine per alarm, all bound
// to the context given at construction.
type Manager struct {
	ctx    context.Context
	logger logger.Logger

	mu     sync.Mutex
	alarms map[string]*entry
}

func NewManager(ctx context.Context, log logger.Logger) *Manager {
	return &Manager{
		ctx:    ctx,
		logger: log,
		alarms: make(map[string]*entry),
	}
}

// Schedule registers an alarm firing at next, then every repeat
// (one-shot when repeat <= 0). Scheduling an existing name replaces it.
func (m *Manager) Schedule(name string, next time.Time, repeat time.Duration, fn Handler) {
	ctx := m.put(name, next, repeat)

	m.logger.Debug("alarm scheduled",
		logger.String("name", name),
		logger.Time("next", next),
		logger.Duration("repeat", repeat))

	go m.run(ctx, name, next, repeat, fn)
}

// ScheduleDaily registers an alarm firing at the next local occurrence
// of an "HH:MM" slot and then daily at that wall-clock time. Each next
// firing is recomputed from the wall clock, so the slot stays put
// across DST transitions instead of drifting by the offset change.
func (m *Manager) ScheduleDaily(name, hhmm string, fn Handler) error {
	next, err := domain.NextOccurrence(hhmm, time.Now())
	if err != nil {
		return err
	}

	ctx := m.put(name, next, 24*time.Hour)

	m.logger.Debug("daily alarm scheduled",
		logger.String("name", name),
		logger.String("slot", hhmm),
		logger.Time("next", next))

	go m.runDaily(ctx, name, hhmm, next, fn)
	return nil
}

// put installs the alarm entry, replacing any alarm of the same name,
// and returns the context its goroutine runs on.
func (m *Manager) put(name string, next time.Time, repeat time.Duration) context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.alarms[name]; ok {
		old.cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.alarms[name] = &entry{cancel: cancel, next: next, repeat: repeat}
	return ctx
}

func (m *Manager) run(ctx context.Context, name string, next time.Time, repeat time.Duration, fn Handler) {
	for {
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case firedAt := <-timer.C:
			fn(ctx, name, firedAt)
		}

		if repeat <= 0 {
			m.remove(name, ctx)
			return
		}
		next = next.Add(repeat)
		m.bump(name, next)
	}
}

func (m *Manager) runDaily(ctx context.Context, name, hhmm string, next time.Time, fn Handler) {
	for {
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case firedAt := <-timer.C:
			fn(ctx, name, firedAt)
		}

		// Validated at Schedule time; an error here cannot happen.
		n, err := domain.NextOccurrence(hhmm, time.Now())
		if err != nil {
			m.remove(name, ctx)
			return
		}
		next = n
		m.bump(name, next)
	}
}

// remove drops a one-shot alarm after it fired, unless the slot was
// already replaced by a newer Schedule call.
func (m *Manager) remove(name string, ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	if e, ok := m.alarms[name]; ok {
		e.cancel()
		delete(m.alarms, name)
	}
}

func (m *Manager) bump(name string, next time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.alarms[name]; ok {
		e.next = next
	}
}

// Cancel stops and removes one alarm. It reports whether it existed.
func (m *Manager) Cancel(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.alarms[name]
	if !ok {
		return false
	}
	e.cancel()
	delete(m.alarms, name)
	return true
}

// CancelPrefix stops and removes every alarm whose name starts with
// prefix, returning how many were cancelled.
func (m *Manager) CancelPrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for name, e := range m.alarms {
		if strings.HasPrefix(name, prefix) {
			e.cancel()
			delete(m.alarms, name)
			n++
		}
	}
	return n
}

// Active returns the sorted names of all registered alarms.
func (m *Manager) Active() []string {
	return m.ActivePrefix("")
}

// ActivePrefix returns the sorted names of alarms under a prefix.
func (m *Manager) ActivePrefix(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.alarms))
	for name := range m.alarms {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Next returns the scheduled fire time of an alarm, if registered.
func (m *Manager) Next(name string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.alarms[name]
	if !ok {
		return time.Time{}, false
	}
	return e.next, true
}

// Stop cancels every alarm.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, e := range m.alarms {
		e.cancel()
		delete(m.alarms, name)
	}
}
