// Package taskgraph resolves requested tasks into a validated task graph and wires it for execution.
package taskgraph

import (
	"context"
	"maps"
	"path/filepath"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Preparer is the default TaskExecutionPreparer.
type Preparer struct{}

var _ ports.TaskExecutionPreparer = (*Preparer)(nil)

// NewPreparer creates a new Preparer.
func NewPreparer() *Preparer {
	return &Preparer{}
}

// CalculateTaskGraph resolves the requested selectors and builds the graph of
// their transitive dependencies.
//
// A qualified selector (":api:build") names exactly one task. An unqualified
// selector ("build") names the task of that name in every project that has one.
func (p *Preparer) CalculateTaskGraph(
	ctx context.Context,
	model *domain.BuildModel,
	requested []string,
) (*domain.Graph, error) {
	if len(requested) == 0 {
		return nil, domain.ErrNoTargetsSpecified
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := indexTasks(model)
	roots, err := resolveSelectors(model, index, requested)
	if err != nil {
		return nil, err
	}

	g := domain.NewGraph()
	queue := slices.Clone(roots)
	seen := make(map[string]bool, len(index))
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if seen[path] {
			continue
		}
		seen[path] = true

		task, ok := index[path]
		if !ok {
			// Reported with its dependent by Validate.
			continue
		}
		if err := g.AddTask(task); err != nil {
			return nil, err
		}
		queue = append(queue, task.Dependencies...)
	}

	g.SetRequested(roots)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// PrepareForExecution turns the model's task graph into an execution plan with
// absolute working directories and resolved task environments.
func (p *Preparer) PrepareForExecution(ctx context.Context, model *domain.BuildModel) (*domain.ExecutionPlan, error) {
	if model.TaskGraph == nil {
		return nil, domain.ErrTaskGraphNotCalculated
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := ""
	if model.Settings != nil {
		root = model.Settings.RootDir
	}

	plan := &domain.ExecutionPlan{
		Tasks:     make([]domain.PlannedTask, 0, model.TaskGraph.Len()),
		Requested: slices.Clone(model.Requested),
	}
	for task := range model.TaskGraph.Walk() {
		plan.Tasks = append(plan.Tasks, domain.PlannedTask{
			Task: task,
			Dir:  filepath.Join(root, filepath.FromSlash(task.WorkingDir)),
			Env:  envList(task.Environment),
		})
	}
	return plan, nil
}

func indexTasks(model *domain.BuildModel) map[string]*domain.Task {
	index := make(map[string]*domain.Task)
	for _, project := range model.Projects {
		for _, task := range project.Tasks {
			index[task.Path] = task
		}
	}
	return index
}

func resolveSelectors(model *domain.BuildModel, index map[string]*domain.Task, selectors []string) ([]string, error) {
	var roots []string
	for _, selector := range selectors {
		if domain.IsQualifiedPath(selector) {
			if _, ok := index[selector]; !ok {
				return nil, zerr.With(domain.ErrTaskNotFound, "selector", selector)
			}
			if !slices.Contains(roots, selector) {
				roots = append(roots, selector)
			}
			continue
		}

		matched := false
		for _, project := range model.Projects {
			task, ok := project.Task(selector)
			if !ok {
				continue
			}
			matched = true
			if !slices.Contains(roots, task.Path) {
				roots = append(roots, task.Path)
			}
		}
		if !matched {
			return nil, zerr.With(domain.ErrTaskNotFound, "selector", selector)
		}
	}
	return roots, nil
}

func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	out := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		out = append(out, k+"="+env[k])
	}
	return out
}
