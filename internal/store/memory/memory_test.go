package memory

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/revisit/internal/domain"
	"github.com/MrSnakeDoc/revisit/internal/store"
)

func newSite(t *testing.T, rawURL string) *domain.Site {
	t.Helper()
	site, err := domain.NewSite(rawURL, "", time.Now())
	if err != nil {
		t.Fatalf("NewSite: %v", err)
	}
	return site
}

func TestSitesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := New()

	urls := []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"}
	for _, u := range urls {
		if err := m.SaveSite(ctx, newSite(t, u)); err != nil {
			t.Fatalf("SaveSite: %v", err)
		}
	}

	sites, err := m.GetSites(ctx)
	if err != nil {
		t.Fatalf("GetSites: %v", err)
	}
	if len(sites) != len(urls) {
		t.Fatalf("got %d sites, want %d", len(sites), len(urls))
	}
	for i, u := range urls {
		if sites[i].URL != u {
			t.Fatalf("sites[%d].URL = %q, want %q", i, sites[i].URL, u)
		}
	}
}

func TestResaveDoesNotDuplicateOrder(t *testing.T) {
	ctx := context.Background()
	m := New()

	site := newSite(t, "https://a.example.com")
	_ = m.SaveSite(ctx, site)
	site.Title = "updated"
	_ = m.SaveSite(ctx, site)

	sites, _ := m.GetSites(ctx)
	if len(sites) != 1 {
		t.Fatalf("got %d sites after re-save, want 1", len(sites))
	}
	if sites[0].Title != "updated" {
		t.Fatalf("Title = %q, want updated", sites[0].Title)
	}
}

func TestGetSiteReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := New()
	site := newSite(t, "https://a.example.com")
	_ = m.SaveSite(ctx, site)

	got, err := m.GetSite(ctx, site.ID)
	if err != nil {
		t.Fatalf("GetSite: %v", err)
	}
	got.Title = "mutated by caller"

	again, _ := m.GetSite(ctx, site.ID)
	if again.Title == "mutated by caller" {
		t.Fatal("stored record aliased caller mutation")
	}
}

func TestGetMissingSite(t *testing.T) {
	m := New()
	_, err := m.GetSite(context.Background(), "nope")
	if !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := New()

	got, err := m.GetSettings(ctx)
	if err != nil || got != nil {
		t.Fatalf("GetSettings on empty store = %v, %v; want nil, nil", got, err)
	}

	settings := domain.DefaultSettings()
	settings.Theme = domain.ThemeDark
	if err := m.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got, err = m.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if got.Theme != domain.ThemeDark {
		t.Fatalf("Theme = %q, want dark", got.Theme)
	}
}

func TestFiredLedger(t *testing.T) {
	ctx := context.Background()
	m := New()

	last, err := m.LastFired(ctx, "daily-reset")
	if err != nil || !last.IsZero() {
		t.Fatalf("LastFired on empty ledger = %v, %v; want zero, nil", last, err)
	}

	at := time.Now()
	if err := m.MarkFired(ctx, "daily-reset", at); err != nil {
		t.Fatalf("MarkFired: %v", err)
	}
	last, err = m.LastFired(ctx, "daily-reset")
	if err != nil || !last.Equal(at) {
		t.Fatalf("LastFired = %v, %v; want %v", last, err, at)
	}
}

func TestOnChangeFires(t *testing.T) {
	ctx := context.Background()
	m := New()

	changed := make(chan struct{}, 4)
	m.OnChange(store.KeySites, func() { changed <- struct{}{} })

	_ = m.SaveSite(ctx, newSite(t, "https://a.example.com"))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("OnChange listener never fired")
	}
}
