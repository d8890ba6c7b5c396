package domain

import "time"

// CacheFormatVersion is bumped whenever the serialized model layout changes.
// Entries with a different version are treated as a cache miss.
const CacheFormatVersion = 1

// CacheEntry is the persisted form of a BuildModel, keyed by Fingerprint.
// Entries are never mutated in place.
type CacheEntry struct {
	FormatVersion int
	Fingerprint   Fingerprint
	CreatedAt     time.Time
	// ToolVersion is the kiln version that wrote the entry.
	ToolVersion string
	Model       *BuildModel
}
