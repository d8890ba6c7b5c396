package domain

import "strings"

// PathSeparator separates segments of project and task paths (":api:build").
const PathSeparator = ":"

// RootProjectPath is the path of the root project.
const RootProjectPath = ":"

// Task represents a unit of work declared by a project build script.
type Task struct {
	// Path is the fully qualified task path, e.g. ":api:build".
	Path string
	// Name is the task name within its project, e.g. "build".
	Name string
	// Project is the path of the owning project, e.g. ":api".
	Project     string
	Description string
	Command     []string
	Inputs      []string
	Outputs     []string
	// Dependencies are fully qualified task paths.
	Dependencies []string
	Environment  map[string]string
	// WorkingDir is relative to the workspace root.
	WorkingDir string
}

// TaskPath joins a project path and a task name into a qualified task path.
func TaskPath(projectPath, taskName string) string {
	if projectPath == RootProjectPath || projectPath == "" {
		return PathSeparator + taskName
	}
	return projectPath + PathSeparator + taskName
}

// ProjectPathFromDir converts a slash separated directory relative to the root into a project path.
// "" and "." map to the root project; "libs/core" maps to ":libs:core".
func ProjectPathFromDir(rel string) string {
	rel = strings.Trim(strings.ReplaceAll(rel, "\\", "/"), "/")
	if rel == "" || rel == "." {
		return RootProjectPath
	}
	return PathSeparator + strings.ReplaceAll(rel, "/", PathSeparator)
}

// IsQualifiedPath reports whether s is an absolute project or task path.
func IsQualifiedPath(s string) bool {
	return strings.HasPrefix(s, PathSeparator)
}

// SplitTaskPath splits ":api:build" into (":api", "build") and ":build" into (":", "build").
func SplitTaskPath(path string) (project, name string) {
	idx := strings.LastIndex(path, PathSeparator)
	if idx <= 0 {
		return RootProjectPath, strings.TrimPrefix(path, PathSeparator)
	}
	return path[:idx], path[idx+1:]
}
