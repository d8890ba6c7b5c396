package domain

import "go.trai.ch/zerr"

// BuildStage is the lifecycle position of a build model controller.
type BuildStage uint8

const (
	// StageCreated is the initial stage; no phase has run.
	StageCreated BuildStage = iota
	// StageSettingsPrepared means the workspace topology is known.
	StageSettingsPrepared
	// StageProjectsPrepared means every project has been evaluated.
	StageProjectsPrepared
	// StageTaskExecutionPrepared means the task graph is calculated and wired for execution.
	StageTaskExecutionPrepared
	// StageFailed is terminal; it is entered when any phase fails.
	StageFailed
)

// String returns the stage name.
func (s BuildStage) String() string {
	switch s {
	case StageCreated:
		return "created"
	case StageSettingsPrepared:
		return "settings-prepared"
	case StageProjectsPrepared:
		return "projects-prepared"
	case StageTaskExecutionPrepared:
		return "task-execution-prepared"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Next returns the stage that follows s on success.
func (s BuildStage) Next() BuildStage {
	switch s {
	case StageCreated:
		return StageSettingsPrepared
	case StageSettingsPrepared:
		return StageProjectsPrepared
	case StageProjectsPrepared:
		return StageTaskExecutionPrepared
	default:
		return StageFailed
	}
}

// Expect returns ErrIllegalStage unless s equals want.
func (s BuildStage) Expect(want BuildStage) error {
	if s == want {
		return nil
	}
	err := zerr.With(ErrIllegalStage, "expected", want.String())
	return zerr.With(err, "actual", s.String())
}
