// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// BuildModelController drives the configuration phases of one build.
//
// The build orchestration calls each method exactly once, in order:
// PrepareSettings, PrepareProjects, PrepareTaskExecution.
//
//go:generate mockgen -source=controller.go -destination=mocks/mock_controller.go -package=mocks
type BuildModelController interface {
	// PrepareSettings evaluates the settings definition and establishes the project topology.
	PrepareSettings(ctx context.Context) (*domain.Settings, error)

	// PrepareProjects evaluates every project's build script.
	PrepareProjects(ctx context.Context) (*domain.BuildModel, error)

	// PrepareTaskExecution resolves the requested tasks into an executable plan.
	PrepareTaskExecution(ctx context.Context) (*domain.ExecutionPlan, error)
}
