package ports

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/domain"
)

// Executor defines the interface for executing tasks.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the planned task's command in its working directory.
	//
	// The task's environment overrides are layered over the process environment.
	// It returns an error if the command fails.
	Execute(ctx context.Context, task domain.PlannedTask, stdout, stderr io.Writer) error
}
