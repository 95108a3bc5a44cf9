package alarm

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/revisit/internal/logger"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewManager(ctx, logger.New("error", false))
}

func TestOneShotFiresAndIsRemoved(t *testing.T) {
	m := newTestManager(t)

	fired := make(chan string, 1)
	m.Schedule("once", time.Now().Add(20*time.Millisecond), 0, func(_ context.Context, name string, _ time.Time) {
		fired <- name
	})

	select {
	case name := <-fired:
		if name != "once" {
			t.Fatalf("fired with name %q, want %q", name, "once")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("one-shot alarm never fired")
	}

	// Removal happens right after the handler returns; poll briefly.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(m.Active()) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("one-shot alarm still registered after firing: %v", m.Active())
}

func TestRecurringFiresRepeatedly(t *testing.T) {
	m := newTestManager(t)

	fired := make(chan struct{}, 8)
	m.Schedule("tick", time.Now().Add(10*time.Millisecond), 15*time.Millisecond,
		func(context.Context, string, time.Time) {
			fired <- struct{}{}
		})

	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatalf("recurring alarm only fired %d time(s)", i)
		}
	}

	if got := m.Active(); len(got) != 1 || got[0] != "tick" {
		t.Fatalf("Active() = %v, want [tick]", got)
	}
}

func TestScheduleReplacesExisting(t *testing.T) {
	m := newTestManager(t)

	far := time.Now().Add(time.Hour)
	m.Schedule("slot", far, 0, func(context.Context, string, time.Time) {
		t.Error("replaced alarm must not fire")
	})

	fired := make(chan struct{}, 1)
	near := time.Now().Add(20 * time.Millisecond)
	m.Schedule("slot", near, 0, func(context.Context, string, time.Time) {
		fired <- struct{}{}
	})

	if next, ok := m.Next("slot"); !ok || !next.Equal(near) {
		t.Fatalf("Next(slot) = %v, %v; want %v, true", next, ok, near)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("replacement alarm never fired")
	}
}

func TestCancelStopsAlarm(t *testing.T) {
	m := newTestManager(t)

	m.Schedule("doomed", time.Now().Add(30*time.Millisecond), 0,
		func(context.Context, string, time.Time) {
			t.Error("cancelled alarm must not fire")
		})

	if !m.Cancel("doomed") {
		t.Fatal("Cancel reported alarm as missing")
	}
	if m.Cancel("doomed") {
		t.Fatal("second Cancel should report missing")
	}

	time.Sleep(100 * time.Millisecond)
}

func TestCancelPrefix(t *testing.T) {
	m := newTestManager(t)

	far := time.Now().Add(time.Hour)
	noop := func(context.Context, string, time.Time) {}
	m.Schedule("reminder:09:00", far, 0, noop)
	m.Schedule("reminder:18:30", far, 0, noop)
	m.Schedule("daily-reset", far, 0, noop)

	if got := m.ActivePrefix("reminder:"); len(got) != 2 {
		t.Fatalf("ActivePrefix = %v, want 2 entries", got)
	}

	if n := m.CancelPrefix("reminder:"); n != 2 {
		t.Fatalf("CancelPrefix cancelled %d, want 2", n)
	}
	if got := m.Active(); len(got) != 1 || got[0] != "daily-reset" {
		t.Fatalf("Active() = %v, want [daily-reset]", got)
	}
}

func TestScheduleDailyTracksWallClock(t *testing.T) {
	m := newTestManager(t)
	noop := func(context.Context, string, time.Time) {}

	if err := m.ScheduleDaily("daily", "25:00", noop); err == nil {
		t.Fatal("invalid slot should be rejected")
	}

	if err := m.ScheduleDaily("daily", "06:45", noop); err != nil {
		t.Fatalf("ScheduleDaily: %v", err)
	}

	next, ok := m.Next("daily")
	if !ok {
		t.Fatal("daily alarm not registered")
	}
	now := time.Now()
	if !next.After(now) || next.Sub(now) > 25*time.Hour {
		t.Fatalf("next = %v, want within a day of now", next)
	}
	if next.Hour() != 6 || next.Minute() != 45 {
		t.Fatalf("next = %v, want a 06:45 wall-clock occurrence", next)
	}
}

func TestStopCancelsEverything(t *testing.T) {
	m := newTestManager(t)

	far := time.Now().Add(time.Hour)
	noop := func(context.Context, string, time.Time) {}
	m.Schedule("a", far, 0, noop)
	m.Schedule("b", far, 0, noop)

	m.Stop()
	if got := m.Active(); len(got) != 0 {
		t.Fatalf("Active() after Stop = %v, want empty", got)
	}
}
