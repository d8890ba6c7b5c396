// Package buildmodel implements the controllers that produce the build model of one invocation.
package buildmodel

import (
	"context"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// VintageController runs the full configuration pipeline:
// settings, then projects, then task execution. Phases run exactly once and in order.
type VintageController struct {
	inv           *domain.BuildInvocation
	settings      ports.SettingsPreparer
	projects      ports.ProjectsPreparer
	taskExecution ports.TaskExecutionPreparer

	stage domain.BuildStage
	model *domain.BuildModel
}

var _ ports.BuildModelController = (*VintageController)(nil)

// NewVintageController creates a controller for inv in the created stage.
func NewVintageController(
	inv *domain.BuildInvocation,
	settings ports.SettingsPreparer,
	projects ports.ProjectsPreparer,
	taskExecution ports.TaskExecutionPreparer,
) *VintageController {
	return &VintageController{
		inv:           inv,
		settings:      settings,
		projects:      projects,
		taskExecution: taskExecution,
		stage:         domain.StageCreated,
	}
}

// Stage returns the current lifecycle stage.
func (c *VintageController) Stage() domain.BuildStage {
	return c.stage
}

// Model returns the model built so far. It is nil before the settings phase.
func (c *VintageController) Model() *domain.BuildModel {
	return c.model
}

// PrepareSettings evaluates the settings file and establishes the project topology.
func (c *VintageController) PrepareSettings(ctx context.Context) (*domain.Settings, error) {
	if err := c.stage.Expect(domain.StageCreated); err != nil {
		return nil, zerr.With(err, "phase", "settings")
	}

	settings, err := c.settings.PrepareSettings(ctx, c.inv)
	if err != nil {
		c.stage = domain.StageFailed
		err = zerr.Wrap(err, domain.ErrSettingsEvaluationFailed.Error())
		return nil, zerr.With(err, "settings_file", c.inv.Params.SettingsFile)
	}

	c.model = domain.NewBuildModel(settings)
	c.stage = c.stage.Next()
	return settings, nil
}

// PrepareProjects evaluates every project declared by the settings.
func (c *VintageController) PrepareProjects(ctx context.Context) (*domain.BuildModel, error) {
	if err := c.stage.Expect(domain.StageSettingsPrepared); err != nil {
		return nil, zerr.With(err, "phase", "projects")
	}

	projects, err := c.projects.PrepareProjects(ctx, c.inv, c.model.Settings)
	if err != nil {
		c.stage = domain.StageFailed
		return nil, zerr.Wrap(err, domain.ErrProjectConfigurationFailed.Error())
	}

	c.model.SetProjects(projects)
	c.stage = c.stage.Next()
	return c.model, nil
}

// PrepareTaskExecution calculates the task graph for the requested tasks
// and wires it for execution.
func (c *VintageController) PrepareTaskExecution(ctx context.Context) (*domain.ExecutionPlan, error) {
	if err := c.stage.Expect(domain.StageProjectsPrepared); err != nil {
		return nil, zerr.With(err, "phase", "task-execution")
	}

	requested := c.inv.Params.RequestedTasks
	graph, err := c.taskExecution.CalculateTaskGraph(ctx, c.model, requested)
	if err != nil {
		c.stage = domain.StageFailed
		return nil, zerr.Wrap(err, domain.ErrTaskGraphFailed.Error())
	}
	c.model.TaskGraph = graph
	c.model.Requested = slices.Clone(requested)

	plan, err := c.taskExecution.PrepareForExecution(ctx, c.model)
	if err != nil {
		c.stage = domain.StageFailed
		return nil, zerr.Wrap(err, domain.ErrTaskGraphFailed.Error())
	}

	c.stage = c.stage.Next()
	return plan, nil
}
