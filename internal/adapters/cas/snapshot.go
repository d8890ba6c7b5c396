package cas

import (
	"time"

	"go.trai.ch/kiln/internal/core/domain"
)

// snapshot is the msgpack layout of a cache entry.
// Changing it requires bumping domain.CacheFormatVersion.
type snapshot struct {
	Fingerprint string            `msgpack:"fingerprint"`
	CreatedAt   time.Time         `msgpack:"created_at"`
	ToolVersion string            `msgpack:"tool_version"`
	Settings    *settingsSnapshot `msgpack:"settings"`
	Projects    []projectSnapshot `msgpack:"projects"`
	Graph       *graphSnapshot    `msgpack:"graph"`
	Requested   []string          `msgpack:"requested"`
}

type settingsSnapshot struct {
	RootProject  string               `msgpack:"root_project"`
	RootDir      string               `msgpack:"root_dir"`
	SettingsFile string               `msgpack:"settings_file"`
	Projects     []descriptorSnapshot `msgpack:"projects"`
	EnvKeys      []string             `msgpack:"env_keys"`
	Properties   map[string]string    `msgpack:"properties"`
}

type descriptorSnapshot struct {
	Path string `msgpack:"path"`
	Dir  string `msgpack:"dir"`
}

type projectSnapshot struct {
	Path        string         `msgpack:"path"`
	Name        string         `msgpack:"name"`
	Dir         string         `msgpack:"dir"`
	BuildFile   string         `msgpack:"build_file"`
	Description string         `msgpack:"description"`
	Tasks       []taskSnapshot `msgpack:"tasks"`
}

type taskSnapshot struct {
	Path         string            `msgpack:"path"`
	Name         string            `msgpack:"name"`
	Project      string            `msgpack:"project"`
	Description  string            `msgpack:"description"`
	Command      []string          `msgpack:"command"`
	Inputs       []string          `msgpack:"inputs"`
	Outputs      []string          `msgpack:"outputs"`
	Dependencies []string          `msgpack:"dependencies"`
	Environment  map[string]string `msgpack:"environment"`
	WorkingDir   string            `msgpack:"working_dir"`
}

// graphSnapshot holds the graph tasks in execution order.
// Tasks that also belong to a project are shared with it after decoding.
type graphSnapshot struct {
	Tasks     []taskSnapshot `msgpack:"tasks"`
	Requested []string       `msgpack:"requested"`
}

func toSnapshot(fp domain.Fingerprint, createdAt time.Time, toolVersion string, m *domain.BuildModel) *snapshot {
	s := &snapshot{
		Fingerprint: fp.String(),
		CreatedAt:   createdAt,
		ToolVersion: toolVersion,
		Settings:    fromSettings(m.Settings),
		Projects:    make([]projectSnapshot, len(m.Projects)),
		Requested:   m.Requested,
	}
	for i, p := range m.Projects {
		s.Projects[i] = projectSnapshot{
			Path:        p.Path,
			Name:        p.Name,
			Dir:         p.Dir,
			BuildFile:   p.BuildFile,
			Description: p.Description,
			Tasks:       fromTasks(p.Tasks),
		}
	}
	if m.TaskGraph != nil {
		g := &graphSnapshot{Requested: m.TaskGraph.Requested()}
		for t := range m.TaskGraph.Walk() {
			g.Tasks = append(g.Tasks, fromTask(t))
		}
		s.Graph = g
	}
	return s
}

func fromSettings(s *domain.Settings) *settingsSnapshot {
	out := &settingsSnapshot{
		RootProject:  s.RootProject,
		RootDir:      s.RootDir,
		SettingsFile: s.SettingsFile,
		Projects:     make([]descriptorSnapshot, len(s.Projects)),
		EnvKeys:      s.EnvKeys,
		Properties:   s.Properties,
	}
	for i, d := range s.Projects {
		out.Projects[i] = descriptorSnapshot{Path: d.Path, Dir: d.Dir}
	}
	return out
}

func fromTasks(tasks []*domain.Task) []taskSnapshot {
	out := make([]taskSnapshot, len(tasks))
	for i, t := range tasks {
		out[i] = fromTask(t)
	}
	return out
}

func fromTask(t *domain.Task) taskSnapshot {
	return taskSnapshot{
		Path:         t.Path,
		Name:         t.Name,
		Project:      t.Project,
		Description:  t.Description,
		Command:      t.Command,
		Inputs:       t.Inputs,
		Outputs:      t.Outputs,
		Dependencies: t.Dependencies,
		Environment:  t.Environment,
		WorkingDir:   t.WorkingDir,
	}
}

func (t *taskSnapshot) task() *domain.Task {
	return &domain.Task{
		Path:         t.Path,
		Name:         t.Name,
		Project:      t.Project,
		Description:  t.Description,
		Command:      t.Command,
		Inputs:       t.Inputs,
		Outputs:      t.Outputs,
		Dependencies: t.Dependencies,
		Environment:  t.Environment,
		WorkingDir:   t.WorkingDir,
	}
}

// model rebuilds the build model. The task graph is validated again so a
// decoded graph has the same execution order as the one that was stored.
func (s *snapshot) model() (*domain.BuildModel, error) {
	if s.Settings == nil {
		return nil, domain.ErrCacheEntryCorrupt
	}

	settings := &domain.Settings{
		RootProject:  s.Settings.RootProject,
		RootDir:      s.Settings.RootDir,
		SettingsFile: s.Settings.SettingsFile,
		Projects:     make([]domain.ProjectDescriptor, len(s.Settings.Projects)),
		EnvKeys:      s.Settings.EnvKeys,
		Properties:   s.Settings.Properties,
	}
	for i, d := range s.Settings.Projects {
		settings.Projects[i] = domain.ProjectDescriptor{Path: d.Path, Dir: d.Dir}
	}

	m := domain.NewBuildModel(settings)
	m.Requested = s.Requested

	byPath := make(map[string]*domain.Task)
	projects := make([]*domain.Project, len(s.Projects))
	for i, ps := range s.Projects {
		p := &domain.Project{
			Path:        ps.Path,
			Name:        ps.Name,
			Dir:         ps.Dir,
			BuildFile:   ps.BuildFile,
			Description: ps.Description,
			Tasks:       make([]*domain.Task, len(ps.Tasks)),
		}
		for j := range ps.Tasks {
			t := ps.Tasks[j].task()
			p.Tasks[j] = t
			byPath[t.Path] = t
		}
		projects[i] = p
	}
	m.SetProjects(projects)

	if s.Graph != nil {
		g := domain.NewGraph()
		for i := range s.Graph.Tasks {
			t, ok := byPath[s.Graph.Tasks[i].Path]
			if !ok {
				t = s.Graph.Tasks[i].task()
			}
			if err := g.AddTask(t); err != nil {
				return nil, err
			}
		}
		g.SetRequested(s.Graph.Requested)
		if err := g.Validate(); err != nil {
			return nil, err
		}
		m.TaskGraph = g
	}
	return m, nil
}
