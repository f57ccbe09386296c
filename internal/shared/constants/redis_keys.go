package constants

import "time"

// Redis key layout for Transitly.
// Pattern: transitly:{concern}:{entity}:{identifier}

const KeyPrefix = "transitly"

const (
	// Per-session advisory lock guarding hold creation.
	keySessionLock = KeyPrefix + ":lock:session:"

	// Fast-lookup mirror of a durable seat hold. Never the source of
	// truth: absence means "unknown", not "released".
	keyHoldCache = KeyPrefix + ":hold:"

	// Short-lived session read caches.
	keySessionSnapshot = KeyPrefix + ":session:snapshot:"
	keyActiveSessions  = KeyPrefix + ":sessions:active"
)

// TTLs for cache entries that are not tied to the hold TTL.
const (
	TTLSessionSnapshot = 30 * time.Second // live seat counts
	TTLActiveSessions  = 1 * time.Minute  // session discovery listings
)

// SessionLockKey returns the advisory lock key for a session.
func SessionLockKey(sessionID string) string {
	return keySessionLock + sessionID
}

// HoldCacheKey returns the cache key mirroring a seat hold.
func HoldCacheKey(holdID string) string {
	return keyHoldCache + holdID
}

// SessionSnapshotKey returns the cache key for a session's read snapshot.
func SessionSnapshotKey(sessionID string) string {
	return keySessionSnapshot + sessionID
}

// ActiveSessionsKey returns the cache key for the default session listing.
func ActiveSessionsKey() string {
	return keyActiveSessions
}
