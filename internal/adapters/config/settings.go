// Package config evaluates kiln settings files and project build scripts.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var validNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Locator implements ports.WorkspaceLocator by searching for the settings file.
type Locator struct {
	fs FileSystem
}

var _ ports.WorkspaceLocator = (*Locator)(nil)

// NewLocator creates a new Locator.
func NewLocator(fsys FileSystem) *Locator {
	return &Locator{fs: fsys}
}

// Locate walks up from cwd until it finds kiln.settings.yaml.
// The returned paths are absolute, even when cwd is relative.
func (l *Locator) Locate(cwd string) (root, settingsFile string, err error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", "", zerr.With(zerr.Wrap(err, domain.ErrSettingsReadFailed.Error()), "cwd", cwd)
	}
	for {
		candidate := filepath.Join(currentDir, domain.SettingsFileName)
		if info, statErr := l.fs.Stat(candidate); statErr == nil && !info.IsDir() {
			return currentDir, candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}
	return "", "", zerr.With(domain.ErrSettingsNotFound, "cwd", cwd)
}

// SettingsLoader implements ports.SettingsPreparer for kiln.settings.yaml.
type SettingsLoader struct {
	fs      FileSystem
	locator *Locator
	logger  ports.Logger
}

var _ ports.SettingsPreparer = (*SettingsLoader)(nil)

// NewSettingsLoader creates a new SettingsLoader.
func NewSettingsLoader(fsys FileSystem, logger ports.Logger) *SettingsLoader {
	return &SettingsLoader{fs: fsys, locator: NewLocator(fsys), logger: logger}
}

// PrepareSettings reads the settings file and resolves the included project directories.
func (l *SettingsLoader) PrepareSettings(ctx context.Context, inv *domain.BuildInvocation) (*domain.Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, settingsPath := inv.Params.RootDir, inv.Params.SettingsFile
	if settingsPath == "" {
		var err error
		if root, settingsPath, err = l.locator.Locate(inv.Params.WorkingDir); err != nil {
			return nil, err
		}
	}
	if root == "" {
		root = filepath.Dir(settingsPath)
	}

	sf, err := readSettingsFile(l.fs, settingsPath)
	if err != nil {
		return nil, err
	}

	rootName := sf.Root
	if rootName == "" {
		rootName = filepath.Base(root)
	}
	if !validNameRegex.MatchString(rootName) {
		err := zerr.With(domain.ErrInvalidProjectName, "project_name", rootName)
		return nil, zerr.With(err, "path", settingsPath)
	}

	projects, err := l.resolveProjects(root, sf.Include)
	if err != nil {
		return nil, zerr.With(err, "path", settingsPath)
	}

	return &domain.Settings{
		RootProject:  rootName,
		RootDir:      root,
		SettingsFile: settingsPath,
		Projects:     projects,
		EnvKeys:      normalizeKeys(sf.Env),
		Properties:   maps.Clone(sf.Properties),
	}, nil
}

// resolveProjects expands the include patterns into project descriptors.
// The root project is always present and comes first.
func (l *SettingsLoader) resolveProjects(root string, patterns []string) ([]domain.ProjectDescriptor, error) {
	dirs := make(map[string]struct{})
	for _, pattern := range patterns {
		matches, err := l.fs.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrSettingsParseFailed.Error()), "include", pattern)
		}
		if len(matches) == 0 {
			l.logger.Warn(fmt.Sprintf("include pattern %q matched no directories", pattern))
		}
		for _, match := range matches {
			dirs[match] = struct{}{}
		}
	}

	descriptors := []domain.ProjectDescriptor{{Path: domain.RootProjectPath, Dir: "."}}
	seen := map[string]string{domain.RootProjectPath: "."}

	for _, dir := range slices.Sorted(maps.Keys(dirs)) {
		rel, err := filepath.Rel(root, dir)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)

		if !hasBuildScript(l.fs, dir) {
			l.logger.Warn(fmt.Sprintf("%s missing in project %s, skipping", domain.BuildFileName, rel))
			continue
		}

		for _, segment := range strings.Split(rel, "/") {
			if !validNameRegex.MatchString(segment) {
				err := zerr.With(domain.ErrInvalidProjectName, "project_name", segment)
				return nil, zerr.With(err, "directory", rel)
			}
		}

		path := domain.ProjectPathFromDir(rel)
		if existing, ok := seen[path]; ok {
			err := zerr.With(domain.ErrDuplicateProject, "project", path)
			err = zerr.With(err, "first_occurrence", existing)
			return nil, zerr.With(err, "duplicate_at", rel)
		}
		seen[path] = rel
		descriptors = append(descriptors, domain.ProjectDescriptor{Path: path, Dir: rel})
	}
	return descriptors, nil
}

// DeclaredEnvKeys returns the environment variable names declared by the settings file at path.
func DeclaredEnvKeys(path string) ([]string, error) {
	sf, err := readSettingsFile(NewOSFS(), path)
	if err != nil {
		return nil, err
	}
	return normalizeKeys(sf.Env), nil
}

func readSettingsFile(fsys FileSystem, path string) (*SettingsFile, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(domain.ErrSettingsNotFound, "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSettingsReadFailed.Error()), "path", path)
	}

	var sf SettingsFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSettingsParseFailed.Error()), "path", path)
	}
	return &sf, nil
}

func hasBuildScript(fsys FileSystem, dir string) bool {
	for _, name := range []string{domain.BuildFileName, domain.HCLBuildFileName} {
		if _, err := fsys.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

func normalizeKeys(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
