package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/buildmodel"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

func newComponents(ctrl *gomock.Controller) (*app.Components, *mocks.MockWorkspaceLocator, *mocks.MockLogger) {
	locator := mocks.NewMockWorkspaceLocator(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	tracer := telemetry.NewNoOpTracer()

	application := app.New(
		buildmodel.Collaborators{
			Settings:      mocks.NewMockSettingsPreparer(ctrl),
			Projects:      mocks.NewMockProjectsPreparer(ctrl),
			TaskExecution: mocks.NewMockTaskExecutionPreparer(ctrl),
			Fingerprinter: mocks.NewMockFingerprinter(ctrl),
			Logger:        logger,
		},
		locator,
		mocks.NewMockSnapshotStoreProvider(ctrl),
		scheduler.NewScheduler(mocks.NewMockExecutor(ctrl), tracer),
		tracer,
	)
	return &app.Components{App: application, Logger: logger}, locator, logger
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	components, _, _ := newComponents(ctrl)

	provider := func(context.Context) (*app.Components, error) {
		return components, nil
	}

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, new(bytes.Buffer), provider)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "kiln version")
}

// TestRun_ProviderError verifies that initialization failures are reported without the logger.
func TestRun_ProviderError(t *testing.T) {
	provider := func(context.Context) (*app.Components, error) {
		return nil, errors.New("graph initialization failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)
	assert.Equal(t, 1, exitCode)
	assert.Equal(t, "Error: graph initialization failed\n", stderr.String())
}

// TestRun_CommandError verifies that command failures are logged and exit with 1.
func TestRun_CommandError(t *testing.T) {
	ctrl := gomock.NewController(t)
	components, locator, logger := newComponents(ctrl)

	locator.EXPECT().Locate("/nowhere").Return("", "", domain.ErrSettingsNotFound)
	logger.EXPECT().Error(domain.ErrSettingsNotFound)

	provider := func(context.Context) (*app.Components, error) {
		return components, nil
	}

	exitCode := run(context.Background(), []string{"run", "build", "-p", "/nowhere"},
		new(bytes.Buffer), new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}
