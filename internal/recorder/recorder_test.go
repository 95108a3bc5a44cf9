package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/logger"
	"github.com/MrSnakeDoc/revisit/internal/store/memory"
)

func newTestRecorder(t *testing.T) (*Recorder, *memory.Memory) {
	t.Helper()
	st := memory.New()
	return New(st, logger.New("error", false)), st
}

func saveSite(t *testing.T, st *memory.Memory, rawURL string, now time.Time) *domain.Site {
	t.Helper()
	site, err := domain.NewSite(rawURL, "", now)
	if err != nil {
		t.Fatalf("NewSite: %v", err)
	}
	if err := st.SaveSite(context.Background(), site); err != nil {
		t.Fatalf("SaveSite: %v", err)
	}
	return site
}

func TestRecordVisitIncrementsAndStamps(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	rec, st := newTestRecorder(t)
	site := saveSite(t, st, "https://example.com/a", now)

	got, err := rec.RecordVisit(ctx, site.ID, now)
	if err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	if got.VisitCount != 1 {
		t.Fatalf("VisitCount = %d, want 1", got.VisitCount)
	}
	if got.LastVisitedAt == nil || !got.LastVisitedAt.Equal(now) {
		t.Fatalf("LastVisitedAt = %v, want %v", got.LastVisitedAt, now)
	}

	got, err = rec.RecordVisit(ctx, site.ID, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	if got.VisitCount != 2 {
		t.Fatalf("VisitCount = %d, want 2", got.VisitCount)
	}
}

func TestRecordVisitTimestampNeverRegresses(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	rec, st := newTestRecorder(t)
	site := saveSite(t, st, "https://example.com/a", now)

	if _, err := rec.RecordVisit(ctx, site.ID, now); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	got, err := rec.RecordVisit(ctx, site.ID, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	if got.VisitCount != 2 {
		t.Fatalf("VisitCount = %d, want 2 (count still increments)", got.VisitCount)
	}
	if !got.LastVisitedAt.Equal(now) {
		t.Fatalf("LastVisitedAt = %v, want unchanged %v", got.LastVisitedAt, now)
	}
}

func TestRecordVisitUnknownSite(t *testing.T) {
	rec, _ := newTestRecorder(t)
	_, err := rec.RecordVisit(context.Background(), "nope", time.Now())
	if !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestRecordAutoVisitUnmatchedIsNoOp(t *testing.T) {
	rec, _ := newTestRecorder(t)
	site, err := rec.RecordAutoVisit(context.Background(), "https://unknown.example.com", time.Now())
	if err != nil {
		t.Fatalf("RecordAutoVisit: %v", err)
	}
	if site != nil {
		t.Fatalf("site = %+v, want nil for unmatched url", site)
	}
}

func TestRecordAutoVisitFirstVisitHookOncePerDay(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	rec, st := newTestRecorder(t)
	saveSite(t, st, "https://example.com/daily", now)

	hookCalls := 0
	rec.FirstVisitHook = func(_ context.Context, s *domain.Site) {
		hookCalls++
		if s.VisitCount != 1 {
			t.Errorf("hook saw VisitCount = %d, want 1", s.VisitCount)
		}
	}

	for i := 0; i < 3; i++ {
		if _, err := rec.RecordAutoVisit(ctx, "https://example.com/daily", now.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("RecordAutoVisit: %v", err)
		}
	}

	if hookCalls != 1 {
		t.Fatalf("FirstVisitHook fired %d times, want 1", hookCalls)
	}
}

func TestCheckInDoesNotTouchVisitCount(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	rec, st := newTestRecorder(t)
	site := saveSite(t, st, "https://example.com/a", now)

	got, err := rec.CheckIn(ctx, site.ID, now)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if got.VisitCount != 0 {
		t.Fatalf("VisitCount = %d, want 0 after check-in", got.VisitCount)
	}
	if got.LastCheckedInAt == nil || !got.LastCheckedInAt.Equal(now) {
		t.Fatalf("LastCheckedInAt = %v, want %v", got.LastCheckedInAt, now)
	}
	if !got.DoneToday(now) {
		t.Fatal("DoneToday = false after check-in")
	}
}

func TestResetAllClearsStatusKeepsCount(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	rec, st := newTestRecorder(t)
	a := saveSite(t, st, "https://example.com/a", now)
	b := saveSite(t, st, "https://example.com/b", now)

	if _, err := rec.RecordVisit(ctx, a.ID, now); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	if _, err := rec.CheckIn(ctx, b.ID, now); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	sites, err := rec.ResetAll(ctx)
	if err != nil {
		t.Fatalf("ResetAll: %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("ResetAll returned %d sites, want 2", len(sites))
	}
	for _, s := range sites {
		if s.LastVisitedAt != nil || s.LastCheckedInAt != nil {
			t.Fatalf("site %s still has daily status after reset", s.ID)
		}
		if s.DoneToday(now) {
			t.Fatalf("site %s still DoneToday after reset", s.ID)
		}
	}

	got, err := st.GetSite(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetSite: %v", err)
	}
	if got.VisitCount != 1 {
		t.Fatalf("VisitCount = %d after reset, want 1 (counter untouched)", got.VisitCount)
	}
}
