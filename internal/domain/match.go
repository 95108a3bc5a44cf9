package domain

import (
	"net/url"
	"strings"
)

// MatchResult is the answer to a CHECK_URL_MATCH request.
type MatchResult struct {
	Matched             bool   `json:"matched"`
	SiteID              string `json:"siteId,omitempty"`
	SiteName            string `json:"siteName,omitempty"`
	AlreadyVisitedToday bool   `json:"alreadyVisitedToday,omitempty"`
}

// NormalizeURL canonicalizes a URL for storage and matching:
// lowercased scheme and host, fragment dropped, trailing slash trimmed
// from the path. Only absolute http(s) URLs are accepted; anything else
// (file://, chrome://, relative paths) is a ValidationError.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &ValidationError{Field: "url", Reason: "missing"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", &ValidationError{Field: "url", Reason: "malformed"}
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", &ValidationError{Field: "url", Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return "", &ValidationError{Field: "url", Reason: "missing host"}
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String(), nil
}

// URLMatches reports whether a candidate URL corresponds to a saved
// site URL. Comparison is origin+path equality on the normalized forms.
// The candidate's query string is ignored unless the saved URL itself
// carries one, in which case it must match exactly.
func URLMatches(saved, candidate string) bool {
	su, err := url.Parse(saved)
	if err != nil {
		return false
	}

	normalized, err := NormalizeURL(candidate)
	if err != nil {
		// Non-http(s) schemes never match.
		return false
	}
	cu, _ := url.Parse(normalized)

	if su.Scheme != cu.Scheme || su.Host != cu.Host || su.Path != cu.Path {
		return false
	}
	if su.RawQuery != "" && su.RawQuery != cu.RawQuery {
		return false
	}
	return true
}

// HostOf returns the host of an already-normalized URL, used as the
// default title for sites saved without one.
func HostOf(normalized string) string {
	u, err := url.Parse(normalized)
	if err != nil {
		return normalized
	}
	return u.Host
}
