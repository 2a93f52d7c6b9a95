// Package common provides shared utilities for quotevault
package common

import "time"

// Freshness TTLs for cached data
const (
	// FreshnessQuote is the maximum age at which a cached latest price is
	// served without attempting a live fetch. The boundary is inclusive:
	// a price exactly this old still counts as fresh.
	FreshnessQuote = 15 * time.Minute
)

// IsFresh returns true if the timestamp is within the TTL of now (inclusive)
func IsFresh(updated time.Time, ttl time.Duration, now time.Time) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) <= ttl
}
