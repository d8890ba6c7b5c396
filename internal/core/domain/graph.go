package domain

import (
	"iter"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph represents the dependency graph of the tasks selected for a build.
type Graph struct {
	tasks          map[string]*Task
	requested      []string
	executionOrder []string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		tasks: make(map[string]*Task),
	}
}

// AddTask adds a task to the graph.
// It returns an error if a task with the same path already exists.
func (g *Graph) AddTask(t *Task) error {
	if _, exists := g.tasks[t.Path]; exists {
		return zerr.With(ErrTaskAlreadyExists, "task", t.Path)
	}
	g.tasks[t.Path] = t
	return nil
}

// SetRequested records the task paths the user asked for, in request order.
func (g *Graph) SetRequested(paths []string) {
	g.requested = slices.Clone(paths)
}

// Requested returns the requested task paths.
func (g *Graph) Requested() []string {
	return slices.Clone(g.requested)
}

// GetTask returns the task with the given path.
func (g *Graph) GetTask(path string) (*Task, bool) {
	t, ok := g.tasks[path]
	return t, ok
}

// Len returns the number of tasks in the graph.
func (g *Graph) Len() int {
	return len(g.tasks)
}

// Validate checks for cycles using a depth-first topological sort and
// populates the execution order. Tasks are visited in path order so the
// resulting order is stable across runs and across cache round trips.
func (g *Graph) Validate() error {
	g.executionOrder = make([]string, 0, len(g.tasks))
	visited := make(map[string]int, len(g.tasks)) // 0: unvisited, 1: visiting, 2: visited
	var path []string

	var visit func(u string) error
	visit = func(u string) error {
		task, exists := g.tasks[u]
		if !exists {
			err := zerr.With(ErrMissingDependency, "dependency", u)
			if len(path) > 0 {
				err = zerr.With(err, "required_by", path[len(path)-1])
			}
			return err
		}

		visited[u] = 1
		path = append(path, u)

		for _, dep := range task.Dependencies {
			switch visited[dep] {
			case 1:
				return buildCycleError(path, dep)
			case 0:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	for _, name := range slices.Sorted(maps.Keys(g.tasks)) {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				g.executionOrder = nil
				return err
			}
		}
	}
	return nil
}

func buildCycleError(path []string, dep string) error {
	start := slices.Index(path, dep)
	cycle := append(slices.Clone(path[start:]), dep)
	return zerr.With(ErrCycleDetected, "cycle", strings.Join(cycle, " -> "))
}

// Walk returns an iterator that yields tasks in execution order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[*Task] {
	return func(yield func(*Task) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}

// Order returns the task paths in execution order.
func (g *Graph) Order() []string {
	return slices.Clone(g.executionOrder)
}

// Edges returns the dependency map (task path -> dependency paths) of the graph.
func (g *Graph) Edges() map[string][]string {
	edges := make(map[string][]string, len(g.tasks))
	for p, t := range g.tasks {
		edges[p] = slices.Clone(t.Dependencies)
	}
	return edges
}
