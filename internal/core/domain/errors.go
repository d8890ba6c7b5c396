package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a path that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task selector matches no task.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrNoTargetsSpecified is returned when no tasks are requested for the run command.
	ErrNoTargetsSpecified = zerr.New("no tasks specified")

	// ErrSettingsNotFound is returned when no settings file can be discovered from the working directory.
	ErrSettingsNotFound = zerr.New("could not find settings file")

	// ErrSettingsReadFailed is returned when the settings file cannot be read.
	ErrSettingsReadFailed = zerr.New("failed to read settings file")

	// ErrSettingsParseFailed is returned when the settings file cannot be parsed.
	ErrSettingsParseFailed = zerr.New("failed to parse settings file")

	// ErrSettingsEvaluationFailed is returned when the settings phase of a build fails.
	ErrSettingsEvaluationFailed = zerr.New("settings evaluation failed")

	// ErrInvalidProjectName is returned when a project name is invalid.
	ErrInvalidProjectName = zerr.New("project name can only contain alphanumeric characters, hyphens and underscores")

	// ErrDuplicateProject is returned when two included directories map to the same project path.
	ErrDuplicateProject = zerr.New("duplicate project path")

	// ErrBuildScriptNotFound is returned when an included project has no build script.
	ErrBuildScriptNotFound = zerr.New("project has no build script")

	// ErrBuildScriptReadFailed is returned when a build script cannot be read.
	ErrBuildScriptReadFailed = zerr.New("failed to read build script")

	// ErrBuildScriptParseFailed is returned when a build script cannot be parsed or evaluated.
	ErrBuildScriptParseFailed = zerr.New("failed to evaluate build script")

	// ErrProjectConfigurationFailed is returned when the projects phase of a build fails.
	ErrProjectConfigurationFailed = zerr.New("project configuration failed")

	// ErrInvalidTaskName is returned when a task name contains invalid characters.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrTaskGraphFailed is returned when the task graph cannot be calculated.
	ErrTaskGraphFailed = zerr.New("task graph calculation failed")

	// ErrTaskGraphNotCalculated is returned when execution is prepared for a model without a task graph.
	ErrTaskGraphNotCalculated = zerr.New("task graph has not been calculated")

	// ErrIllegalStage is returned when a build phase is requested out of order or more than once.
	ErrIllegalStage = zerr.New("illegal build stage transition")

	// ErrMissingCollaborator is returned when a controller is built without a required service.
	ErrMissingCollaborator = zerr.New("missing build model collaborator")

	// ErrInvalidFingerprint is returned when an empty or malformed fingerprint is used as a cache key.
	ErrInvalidFingerprint = zerr.New("invalid fingerprint")

	// ErrFingerprintFailed is returned when the fingerprint of a build invocation cannot be computed.
	ErrFingerprintFailed = zerr.New("failed to compute fingerprint")

	// ErrCacheEntryCorrupt is returned when a cache entry cannot be decoded.
	ErrCacheEntryCorrupt = zerr.New("configuration cache entry is corrupt")

	// ErrCacheFormatMismatch is returned when a cache entry was written with an incompatible format version.
	ErrCacheFormatMismatch = zerr.New("configuration cache entry format mismatch")

	// ErrCacheFingerprintMismatch is returned when a stored entry belongs to a different fingerprint.
	ErrCacheFingerprintMismatch = zerr.New("configuration cache entry fingerprint mismatch")

	// ErrStoreCreateFailed is returned when the snapshot store cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create configuration cache store")

	// ErrStoreReadFailed is returned when a cache entry cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read configuration cache entry")

	// ErrStoreWriteFailed is returned when a cache entry cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write configuration cache entry")

	// ErrUnknownCacheBackend is returned when the configured cache backend is not supported.
	ErrUnknownCacheBackend = zerr.New("unknown configuration cache backend")

	// ErrInvalidProperty is returned when a -P property is not in key=value form.
	ErrInvalidProperty = zerr.New("invalid project property, expected key=value")

	// ErrBuildExecutionFailed is returned when the build execution fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrTaskExecutionFailed is returned when a task command fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")
)
