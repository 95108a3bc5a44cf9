package domain

import (
	"time"

	"github.com/google/uuid"
)

// Site represents a saved check-in site.
//
// It is the single composite record persisted per site: every mutation
// rewrites the whole record in one store write, so visit counters and
// timestamps can never be torn apart by concurrent writers.
type Site struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier, generated at creation.
	ID string `json:"id"`

	// URL is the canonical origin+path used for matching.
	// Example: https://leetcode.com/problemset
	URL string `json:"url"`

	// ─────────────────────────────
	// Description
	// ─────────────────────────────

	// Title is the display name shown in notifications and lists.
	Title string `json:"title"`

	// Favicon is an optional icon URL, resolved by the frontend.
	Favicon string `json:"favicon,omitempty"`

	// Notes is free-form user text.
	Notes string `json:"notes,omitempty"`

	// Tags is an optional label set.
	Tags []string `json:"tags,omitempty"`

	// ─────────────────────────────
	// Visit tracking
	// ─────────────────────────────

	// CreatedAt is when the site was saved.
	CreatedAt time.Time `json:"createdAt"`

	// LastVisitedAt is the most recent detected or manual visit.
	// Non-decreasing once set, except for the daily status reset
	// which nulls it.
	LastVisitedAt *time.Time `json:"lastVisitedAt,omitempty"`

	// LastCheckedInAt is the most recent explicit check-in action.
	LastCheckedInAt *time.Time `json:"lastCheckedInAt,omitempty"`

	// VisitCount is monotonic and never negative.
	VisitCount int64 `json:"visitCount"`
}

// NewSite builds a Site from user input. The URL is normalized before
// storage so matching later is a plain string comparison.
func NewSite(rawURL, title string, now time.Time) (*Site, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = HostOf(normalized)
	}

	return &Site{
		ID:        uuid.NewString(),
		URL:       normalized,
		Title:     title,
		CreatedAt: now,
	}, nil
}

// DoneToday reports whether the site was visited or checked in on the
// current local calendar day. This is the derived "daily status"; it is
// never stored, only computed.
func (s *Site) DoneToday(now time.Time) bool {
	if s.LastVisitedAt != nil && SameLocalDay(*s.LastVisitedAt, now) {
		return true
	}
	if s.LastCheckedInAt != nil && SameLocalDay(*s.LastCheckedInAt, now) {
		return true
	}
	return false
}

// ResetStatus clears the derived daily status by nulling both
// timestamps. The visit counter is untouched.
func (s *Site) ResetStatus() {
	s.LastVisitedAt = nil
	s.LastCheckedInAt = nil
}
