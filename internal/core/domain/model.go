package domain

import (
	"slices"
	"strings"
)

// ProjectDescriptor is a project declared by the settings file, before its build script is evaluated.
type ProjectDescriptor struct {
	// Path is the project path, e.g. ":libs:core".
	Path string
	// Dir is the project directory relative to the workspace root.
	Dir string
}

// Settings is the result of the settings phase: the workspace topology.
type Settings struct {
	RootProject  string
	RootDir      string
	SettingsFile string
	Projects     []ProjectDescriptor
	// EnvKeys lists the environment variables build scripts may read.
	EnvKeys []string
	// Properties are default project properties declared by the settings file.
	Properties map[string]string
}

// Project is an evaluated project with its declared tasks.
type Project struct {
	Path        string
	Name        string
	Dir         string
	BuildFile   string
	Description string
	Tasks       []*Task
}

// Task returns the project's task with the given short name.
func (p *Project) Task(name string) (*Task, bool) {
	for _, t := range p.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// BuildModel is the in-memory representation of evaluated projects and the task graph.
// It is owned by the controller that produced it for the duration of one build.
type BuildModel struct {
	Settings *Settings
	// Projects are sorted by path.
	Projects []*Project
	// TaskGraph is nil until the task graph has been calculated.
	TaskGraph *Graph
	// Requested are the task selectors the graph was calculated for.
	Requested []string
}

// NewBuildModel creates a model for the given settings.
func NewBuildModel(settings *Settings) *BuildModel {
	return &BuildModel{Settings: settings}
}

// SetProjects stores the evaluated projects sorted by path.
func (m *BuildModel) SetProjects(projects []*Project) {
	sorted := slices.Clone(projects)
	slices.SortFunc(sorted, func(a, b *Project) int {
		return strings.Compare(a.Path, b.Path)
	})
	m.Projects = sorted
}

// Project returns the project with the given path.
func (m *BuildModel) Project(path string) (*Project, bool) {
	for _, p := range m.Projects {
		if p.Path == path {
			return p, true
		}
	}
	return nil, false
}

// ProjectPaths returns the project paths in model order.
func (m *BuildModel) ProjectPaths() []string {
	paths := make([]string, len(m.Projects))
	for i, p := range m.Projects {
		paths[i] = p.Path
	}
	return paths
}

// PlannedTask is a task wired for execution.
type PlannedTask struct {
	Task *Task
	// Dir is the absolute working directory.
	Dir string
	// Env holds task environment overrides as KEY=VALUE entries, sorted by key.
	Env []string
}

// ExecutionPlan is the live, executable form of a task graph.
type ExecutionPlan struct {
	Tasks     []PlannedTask
	Requested []string
	// FromCache is set when the model behind the plan was loaded from the configuration cache.
	FromCache bool
}

// TaskPaths returns the planned task paths in execution order.
func (p *ExecutionPlan) TaskPaths() []string {
	paths := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		paths[i] = t.Task.Path
	}
	return paths
}
