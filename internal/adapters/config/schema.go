package config

// SettingsFile represents the structure of the kiln.settings.yaml file.
type SettingsFile struct {
	Version string `yaml:"version"`
	// Root is the root project name. It defaults to the workspace directory name.
	Root string `yaml:"root"`
	// Include lists glob patterns, relative to the workspace root, of project directories.
	Include []string `yaml:"include"`
	// Env lists the environment variables build scripts may read.
	Env []string `yaml:"env"`
	// Properties are default project properties, overridden by -P.
	Properties map[string]string `yaml:"properties"`
}

// BuildFile represents the structure of a kiln.yaml build script.
type BuildFile struct {
	Description string              `yaml:"description"`
	Tasks       map[string]*TaskDTO `yaml:"tasks"`
}

// TaskDTO represents a task definition in a build script.
type TaskDTO struct {
	Description string            `yaml:"description"`
	Cmd         []string          `yaml:"cmd"`
	Input       []string          `yaml:"input"`
	Target      []string          `yaml:"target"`
	DependsOn   []string          `yaml:"dependsOn"`
	Environment map[string]string `yaml:"environment"`
	WorkingDir  string            `yaml:"workingDir"`
}

// hclBuildFile represents the structure of a kiln.hcl build script.
type hclBuildFile struct {
	Description *string    `hcl:"description,optional"`
	Tasks       []*hclTask `hcl:"task,block"`
}

// hclTask is a task block: task "build" { ... }.
type hclTask struct {
	Name        string            `hcl:"name,label"`
	Description *string           `hcl:"description,optional"`
	Cmd         []string          `hcl:"cmd"`
	Input       []string          `hcl:"input,optional"`
	Target      []string          `hcl:"target,optional"`
	DependsOn   []string          `hcl:"depends_on,optional"`
	Environment map[string]string `hcl:"environment,optional"`
	WorkingDir  *string           `hcl:"working_dir,optional"`
}

func (t *hclTask) toDTO() *TaskDTO {
	return &TaskDTO{
		Description: deref(t.Description),
		Cmd:         t.Cmd,
		Input:       t.Input,
		Target:      t.Target,
		DependsOn:   t.DependsOn,
		Environment: t.Environment,
		WorkingDir:  deref(t.WorkingDir),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
