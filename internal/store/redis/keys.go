package redis

const (
	// KeyPrefixSite is the prefix for per-site composite records.
	KeyPrefixSite = "revisit:site:"
	// KeySiteOrder is the list holding site IDs in insertion order.
	KeySiteOrder = "revisit:sites:order"
	// KeyAllSites is the set of all site IDs (membership checks).
	KeyAllSites = "revisit:sites:all"
	// KeySettings is the singleton settings record.
	KeySettings = "revisit:settings"
	// KeyPrefixFired is the prefix for the alarm fired-ledger.
	KeyPrefixFired = "revisit:alarm:fired:"
	// ChangesChannel is the pub/sub channel carrying logical key names
	// after a write.
	ChangesChannel = "revisit:changes"
)

// SiteKey returns the Redis key for a site by ID.
func SiteKey(id string) string {
	return KeyPrefixSite + id
}

// FiredKey returns the Redis key of the fired-ledger entry for an alarm.
func FiredKey(alarm string) string {
	return KeyPrefixFired + alarm
}
