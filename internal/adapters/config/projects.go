package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ProjectsLoader implements ports.ProjectsPreparer for kiln.yaml and kiln.hcl build scripts.
type ProjectsLoader struct {
	fs     FileSystem
	logger ports.Logger
}

var _ ports.ProjectsPreparer = (*ProjectsLoader)(nil)

// NewProjectsLoader creates a new ProjectsLoader.
func NewProjectsLoader(fsys FileSystem, logger ports.Logger) *ProjectsLoader {
	return &ProjectsLoader{fs: fsys, logger: logger}
}

// scriptScope is what a build script can see while it is evaluated.
type scriptScope struct {
	settings   *domain.Settings
	properties map[string]string
	env        map[string]string
}

// PrepareProjects evaluates the build script of every project in parallel.
//
// The first failure cancels the remaining evaluations, unless the invocation
// continues on failure, in which case every failure is reported together.
func (l *ProjectsLoader) PrepareProjects(
	ctx context.Context,
	inv *domain.BuildInvocation,
	settings *domain.Settings,
) ([]*domain.Project, error) {
	scope := &scriptScope{
		settings:   settings,
		properties: mergeProperties(settings.Properties, inv.Params.Properties),
		env:        declaredEnv(settings.EnvKeys, inv.Params.Environment),
	}

	projects := make([]*domain.Project, len(settings.Projects))
	if inv.Params.ContinueOnFailure {
		return l.evaluateAll(ctx, scope, projects)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, desc := range settings.Projects {
		g.Go(func() error {
			p, err := l.evaluateProject(gctx, scope, desc)
			if err != nil {
				return err
			}
			projects[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return projects, nil
}

func (l *ProjectsLoader) evaluateAll(
	ctx context.Context,
	scope *scriptScope,
	projects []*domain.Project,
) ([]*domain.Project, error) {
	errs := make([]error, len(projects))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, desc := range scope.settings.Projects {
		g.Go(func() error {
			projects[i], errs[i] = l.evaluateProject(ctx, scope, desc)
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return projects, nil
}

func (l *ProjectsLoader) evaluateProject(
	ctx context.Context,
	scope *scriptScope,
	desc domain.ProjectDescriptor,
) (*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	project := &domain.Project{
		Path: desc.Path,
		Name: projectName(scope.settings, desc),
		Dir:  desc.Dir,
	}

	dir := filepath.Join(scope.settings.RootDir, filepath.FromSlash(desc.Dir))
	scriptPath, ok := l.findBuildScript(dir, desc.Path)
	if !ok {
		if desc.Path == domain.RootProjectPath {
			// The root project may exist without a build script.
			return project, nil
		}
		return nil, zerr.With(domain.ErrBuildScriptNotFound, "project", desc.Path)
	}
	project.BuildFile = filepath.ToSlash(filepath.Join(desc.Dir, filepath.Base(scriptPath)))

	data, err := l.fs.ReadFile(scriptPath)
	if err != nil {
		err = zerr.Wrap(err, domain.ErrBuildScriptReadFailed.Error())
		return nil, zerr.With(zerr.With(err, "project", desc.Path), "build_file", project.BuildFile)
	}

	var bf *BuildFile
	if filepath.Base(scriptPath) == domain.HCLBuildFileName {
		bf, err = decodeHCL(data, project.BuildFile, scope, project)
	} else {
		bf, err = decodeYAML(data)
	}
	if err != nil {
		err = zerr.Wrap(err, domain.ErrBuildScriptParseFailed.Error())
		return nil, zerr.With(zerr.With(err, "project", desc.Path), "build_file", project.BuildFile)
	}

	project.Description = bf.Description
	tasks, err := buildTasks(project, bf.Tasks)
	if err != nil {
		return nil, zerr.With(zerr.With(err, "project", desc.Path), "build_file", project.BuildFile)
	}
	project.Tasks = tasks
	return project, nil
}

// findBuildScript prefers kiln.yaml over kiln.hcl.
func (l *ProjectsLoader) findBuildScript(dir, projectPath string) (string, bool) {
	var found []string
	for _, name := range []string{domain.BuildFileName, domain.HCLBuildFileName} {
		path := filepath.Join(dir, name)
		if _, err := l.fs.Stat(path); err == nil {
			found = append(found, path)
		}
	}
	switch len(found) {
	case 0:
		return "", false
	case 1:
		return found[0], true
	default:
		l.logger.Warn(fmt.Sprintf("project %s has both %s and %s, using %s",
			projectPath, domain.BuildFileName, domain.HCLBuildFileName, domain.BuildFileName))
		return found[0], true
	}
}

func decodeYAML(data []byte) (*BuildFile, error) {
	var bf BuildFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, err
	}
	return &bf, nil
}

// buildTasks converts task definitions into domain tasks sorted by name.
func buildTasks(project *domain.Project, dtos map[string]*TaskDTO) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0, len(dtos))
	for _, name := range slices.Sorted(maps.Keys(dtos)) {
		if !validNameRegex.MatchString(name) {
			return nil, zerr.With(domain.ErrInvalidTaskName, "task", name)
		}
		dto := dtos[name]
		if dto == nil {
			dto = &TaskDTO{}
		}

		tasks = append(tasks, &domain.Task{
			Path:         domain.TaskPath(project.Path, name),
			Name:         name,
			Project:      project.Path,
			Description:  dto.Description,
			Command:      slices.Clone(dto.Cmd),
			Inputs:       rebasePaths(project.Dir, dto.Input),
			Outputs:      rebasePaths(project.Dir, dto.Target),
			Dependencies: namespaceDependencies(project.Path, dto.DependsOn),
			Environment:  maps.Clone(dto.Environment),
			WorkingDir:   filepath.ToSlash(filepath.Join(project.Dir, dto.WorkingDir)),
		})
	}
	return tasks, nil
}

// namespaceDependencies qualifies dependencies relative to the project: "build" becomes ":api:build".
func namespaceDependencies(projectPath string, deps []string) []string {
	if len(deps) == 0 {
		return nil
	}
	out := make([]string, 0, len(deps))
	for _, dep := range deps {
		if domain.IsQualifiedPath(dep) {
			out = append(out, dep)
		} else {
			out = append(out, domain.TaskPath(projectPath, dep))
		}
	}
	return out
}

// rebasePaths makes project relative paths relative to the workspace root.
func rebasePaths(projectDir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.ToSlash(filepath.Join(projectDir, p))
	}
	return out
}

func projectName(settings *domain.Settings, desc domain.ProjectDescriptor) string {
	if desc.Path == domain.RootProjectPath {
		return settings.RootProject
	}
	return desc.Path[strings.LastIndex(desc.Path, domain.PathSeparator)+1:]
}

func mergeProperties(defaults, overrides map[string]string) map[string]string {
	merged := maps.Clone(defaults)
	if merged == nil {
		merged = make(map[string]string, len(overrides))
	}
	maps.Copy(merged, overrides)
	return merged
}

// declaredEnv restricts the process environment to the declared keys.
func declaredEnv(keys []string, environ map[string]string) map[string]string {
	env := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := environ[k]; ok {
			env[k] = v
		}
	}
	return env
}
