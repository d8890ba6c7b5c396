package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// WorkspaceLocator finds the workspace that a build runs in.
//
//go:generate mockgen -source=preparers.go -destination=mocks/mock_preparers.go -package=mocks
type WorkspaceLocator interface {
	// Locate walks up from cwd and returns the workspace root and its settings file.
	Locate(cwd string) (root, settingsFile string, err error)
}

// SettingsPreparer evaluates the settings definition of a workspace.
type SettingsPreparer interface {
	// PrepareSettings returns the project topology declared by the settings file.
	PrepareSettings(ctx context.Context, inv *domain.BuildInvocation) (*domain.Settings, error)
}

// ProjectsPreparer evaluates the build scripts of the projects declared by the settings.
type ProjectsPreparer interface {
	// PrepareProjects returns one evaluated project per descriptor in settings.
	// Unless inv.Params.ContinueOnFailure is set, the first failure aborts evaluation.
	PrepareProjects(ctx context.Context, inv *domain.BuildInvocation, settings *domain.Settings) ([]*domain.Project, error)
}

// TaskExecutionPreparer turns a configured model into something the execution engine can run.
type TaskExecutionPreparer interface {
	// CalculateTaskGraph resolves the requested selectors against the model's projects.
	CalculateTaskGraph(ctx context.Context, model *domain.BuildModel, requested []string) (*domain.Graph, error)

	// PrepareForExecution wires the model's task graph into a live execution plan.
	// It must be called on every build, including those whose model came from the configuration cache.
	PrepareForExecution(ctx context.Context, model *domain.BuildModel) (*domain.ExecutionPlan, error)
}
