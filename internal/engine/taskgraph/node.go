package taskgraph

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the task execution preparer Graft node.
const NodeID graft.ID = "engine.taskgraph"

func init() {
	graft.Register(graft.Node[ports.TaskExecutionPreparer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.TaskExecutionPreparer, error) {
			return NewPreparer(), nil
		},
	})
}
