package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/build"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the graft node ID for the snapshot store provider.
const NodeID graft.ID = "adapter.cas.provider"

func init() {
	graft.Register(graft.Node[ports.SnapshotStoreProvider]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SnapshotStoreProvider, error) {
			return NewProvider(build.Version), nil
		},
	})
}
