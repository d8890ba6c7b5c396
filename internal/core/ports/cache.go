package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks

// Fingerprinter computes the invalidation key of a build invocation.
type Fingerprinter interface {
	// Fingerprint hashes every input that can influence the build model.
	Fingerprint(ctx context.Context, inv *domain.BuildInvocation) (domain.Fingerprint, error)
}

// ModelSnapshotStore persists serialized build models keyed by fingerprint.
//
// Implementations must publish entries atomically: a Load never observes a
// partially written entry, and concurrent Saves for different fingerprints
// must not corrupt each other.
type ModelSnapshotStore interface {
	// Load returns the entry stored under fp.
	// Returns nil, nil if there is no entry.
	Load(ctx context.Context, fp domain.Fingerprint) (*domain.CacheEntry, error)

	// Save stores model under fp, replacing any previous entry.
	Save(ctx context.Context, fp domain.Fingerprint, model *domain.BuildModel) error
}

// SnapshotStore is a ModelSnapshotStore holding resources that must be released.
type SnapshotStore interface {
	ModelSnapshotStore
	// Clear removes every entry of the store.
	Clear(ctx context.Context) error
	Close() error
}

// SnapshotStoreProvider opens the snapshot store of a workspace.
type SnapshotStoreProvider interface {
	// Open returns the store configured by opts for the workspace at root.
	Open(ctx context.Context, root string, opts domain.CacheOptions) (SnapshotStore, error)
}
