package buildmodel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/buildmodel"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func newCacheAware(c *collaborators, inv *domain.BuildInvocation) *buildmodel.CacheAwareController {
	return buildmodel.NewCacheAwareController(
		inv, newVintage(c, inv), c.taskExecution, c.fingerprinter, c.store, c.logger,
	)
}

func storedEntry(t *testing.T, fp domain.Fingerprint, requested ...string) *domain.CacheEntry {
	t.Helper()
	return &domain.CacheEntry{
		FormatVersion: domain.CacheFormatVersion,
		Fingerprint:   fp,
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		ToolVersion:   "dev",
		Model:         sampleModel(t, requested...),
	}
}

// An empty store runs the full pipeline and saves the model exactly once.
func TestCacheAwareController_MissRunsPipelineAndSaves(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := newCollaborators(ctrl)
	inv := newInvocation("build")

	c.fingerprinter.EXPECT().Fingerprint(gomock.Any(), inv).Return(fp1, nil)
	c.store.EXPECT().Load(gomock.Any(), fp1).Return(nil, nil)
	c.expectVintagePipeline(t, inv)
	c.logger.EXPECT().Info("Calculating task graph as no cached configuration is available for tasks: build")
	c.logger.EXPECT().Info("Configuration cache entry stored.")

	var saved *domain.BuildModel
	c.store.EXPECT().Save(gomock.Any(), fp1, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Fingerprint, m *domain.BuildModel) error {
			saved = m
			return nil
		}).Times(1)

	controller := newCacheAware(c, inv)
	model, plan := runPhases(t, controller)

	assert.False(t, controller.Hit())
	assert.Equal(t, fp1, controller.Fingerprint())
	assert.Equal(t, domain.StageTaskExecutionPrepared, controller.Stage())
	assert.False(t, plan.FromCache)
	assert.Same(t, model, saved)
	require.NotNil(t, saved.TaskGraph)
}

// A stored entry skips the settings, projects and task graph phases but still
// wires the loaded model for execution.
func TestCacheAwareController_HitSkipsConfiguration(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := newCollaborators(ctrl)
	inv := newInvocation("build")
	entry := storedEntry(t, fp1, "build")

	c.fingerprinter.EXPECT().Fingerprint(gomock.Any(), inv).Return(fp1, nil)
	c.store.EXPECT().Load(gomock.Any(), fp1).Return(entry, nil)
	c.logger.EXPECT().Info("Reusing configuration cache.")
	c.taskExecution.EXPECT().PrepareForExecution(gomock.Any(), entry.Model).
		DoAndReturn(func(_ context.Context, m *domain.BuildModel) (*domain.ExecutionPlan, error) {
			return planFor(m), nil
		})

	controller := newCacheAware(c, inv)
	settings, err := controller.PrepareSettings(context.Background())
	require.NoError(t, err)
	assert.Same(t, entry.Model.Settings, settings)
	assert.True(t, controller.Hit())

	model, err := controller.PrepareProjects(context.Background())
	require.NoError(t, err)
	assert.Same(t, entry.Model, model)

	plan, err := controller.PrepareTaskExecution(context.Background())
	require.NoError(t, err)
	assert.True(t, plan.FromCache)
	assert.Equal(t, []string{":lib:build", ":api:build"}, plan.TaskPaths())
	assert.Equal(t, domain.StageTaskExecutionPrepared, controller.Stage())
}

func TestCacheAwareController_HitEnforcesStageOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := newCollaborators(ctrl)
	inv := newInvocation("build")

	c.fingerprinter.EXPECT().Fingerprint(gomock.Any(), inv).Return(fp1, nil)
	c.store.EXPECT().Load(gomock.Any(), fp1).Return(storedEntry(t, fp1, "build"), nil)
	c.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	controller := newCacheAware(c, inv)
	_, err := controller.PrepareSettings(context.Background())
	require.NoError(t, err)

	_, err = controller.PrepareTaskExecution(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrIllegalStage.Error())

	_, err = controller.PrepareSettings(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrIllegalStage.Error())
}

func TestCacheAwareController_OutOfOrderCallDoesNotFingerprint(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := newCollaborators(ctrl)

	controller := newCacheAware(c, newInvocation("build"))
	_, err := controller.PrepareProjects(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrIllegalStage.Error())
}

func TestCacheAwareController_FingerprintFailureIsMissWithoutSave(t *testing.T) {
	tests := []struct {
		name string
		fp   domain.Fingerprint
		err  error
	}{
		{name: "fingerprinter error", err: zerr.Wrap(errors.New("permission denied"), domain.ErrFingerprintFailed.Error())},
		{name: "empty fingerprint", fp: ""},
		{name: "malformed fingerprint", fp: "not-a-hash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := newCollaborators(ctrl)
			inv := newInvocation("build")

			c.fingerprinter.EXPECT().Fingerprint(gomock.Any(), inv).Return(tt.fp, tt.err)
			c.logger.EXPECT().Warn(gomock.Any()).Times(1)
			c.expectVintagePipeline(t, inv)
			// No Load or Save expectations: the store must not be touched.

			controller := newCacheAware(c, inv)
			_, plan := runPhases(t, controller)

			assert.False(t, controller.Hit())
			assert.Empty(t, controller.Fingerprint())
			assert.False(t, plan.FromCache)
		})
	}
}

// Unusable entries never fail the build; they trigger a full rebuild whose
// result replaces the bad entry.
func TestCacheAwareController_UnusableEntryFallsBackToRebuild(t *testing.T) {
	tests := []struct {
		name    string
		entry   func(t *testing.T) *domain.CacheEntry
		loadErr error
	}{
		{
			name:    "corrupt entry",
			loadErr: zerr.With(domain.ErrCacheEntryCorrupt, "reason", "bad magic"),
		},
		{
			name:    "io error",
			loadErr: zerr.Wrap(errors.New("connection refused"), domain.ErrStoreReadFailed.Error()),
		},
		{
			name: "format version mismatch",
			entry: func(t *testing.T) *domain.CacheEntry {
				e := storedEntry(t, fp1, "build")
				e.FormatVersion = domain.CacheFormatVersion + 1
				return e
			},
		},
		{
			name: "fingerprint mismatch",
			entry: func(t *testing.T) *domain.CacheEntry {
				return storedEntry(t, "0123456789abcdef", "build")
			},
		},
		{
			name: "entry without task graph",
			entry: func(t *testing.T) *domain.CacheEntry {
				e := storedEntry(t, fp1, "build")
				e.Model.TaskGraph = nil
				return e
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := newCollaborators(ctrl)
			inv := newInvocation("build")

			var entry *domain.CacheEntry
			if tt.entry != nil {
				entry = tt.entry(t)
			}

			c.fingerprinter.EXPECT().Fingerprint(gomock.Any(), inv).Return(fp1, nil)
			c.store.EXPECT().Load(gomock.Any(), fp1).Return(entry, tt.loadErr)
			c.logger.EXPECT().Warn(gomock.Any()).Times(1)
			c.logger.EXPECT().Info(gomock.Any()).Times(2)
			c.expectVintagePipeline(t, inv)
			c.store.EXPECT().Save(gomock.Any(), fp1, gomock.Any()).Return(nil).Times(1)

			controller := newCacheAware(c, inv)
			_, plan := runPhases(t, controller)

			assert.False(t, controller.Hit())
			assert.False(t, plan.FromCache)
		})
	}
}

func TestCacheAwareController_SaveFailureOnlyWarns(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := newCollaborators(ctrl)
	inv := newInvocation("build")

	c.fingerprinter.EXPECT().Fingerprint(gomock.Any(), inv).Return(fp1, nil)
	c.store.EXPECT().Load(gomock.Any(), fp1).Return(nil, nil)
	c.logger.EXPECT().Info(gomock.Any()).Times(1)
	c.expectVintagePipeline(t, inv)
	c.store.EXPECT().Save(gomock.Any(), fp1, gomock.Any()).
		Return(zerr.Wrap(errors.New("disk full"), domain.ErrStoreWriteFailed.Error()))
	c.logger.EXPECT().Warn(gomock.Any()).Times(1)

	controller := newCacheAware(c, inv)
	_, plan := runPhases(t, controller)
	assert.NotNil(t, plan)
}

func TestCacheAwareController_MissFailureDoesNotSave(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := newCollaborators(ctrl)
	inv := newInvocation("build")
	settings := sampleSettings()

	c.fingerprinter.EXPECT().Fingerprint(gomock.Any(), inv).Return(fp1, nil)
	c.store.EXPECT().Load(gomock.Any(), fp1).Return(nil, nil)
	c.logger.EXPECT().Info(gomock.Any()).Times(1)
	c.settings.EXPECT().PrepareSettings(gomock.Any(), inv).Return(settings, nil)
	c.projects.EXPECT().PrepareProjects(gomock.Any(), inv, settings).Return(sampleProjects(), nil)
	c.taskExecution.EXPECT().CalculateTaskGraph(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, zerr.With(domain.ErrCycleDetected, "cycle", ":a -> :b -> :a"))

	controller := newCacheAware(c, inv)
	_, err := controller.PrepareSettings(context.Background())
	require.NoError(t, err)
	_, err = controller.PrepareProjects(context.Background())
	require.NoError(t, err)
	_, err = controller.PrepareTaskExecution(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrTaskGraphFailed.Error())
	assert.Equal(t, domain.StageFailed, controller.Stage())
}

func TestCacheAwareController_HitPreparationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := newCollaborators(ctrl)
	inv := newInvocation("build")
	entry := storedEntry(t, fp1, "build")

	c.fingerprinter.EXPECT().Fingerprint(gomock.Any(), inv).Return(fp1, nil)
	c.store.EXPECT().Load(gomock.Any(), fp1).Return(entry, nil)
	c.logger.EXPECT().Info(gomock.Any())
	c.taskExecution.EXPECT().PrepareForExecution(gomock.Any(), entry.Model).
		Return(nil, zerr.With(domain.ErrTaskGraphNotCalculated, "requested", "build"))

	controller := newCacheAware(c, inv)
	_, err := controller.PrepareSettings(context.Background())
	require.NoError(t, err)
	_, err = controller.PrepareProjects(context.Background())
	require.NoError(t, err)
	_, err = controller.PrepareTaskExecution(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrTaskGraphFailed.Error())
	assert.Equal(t, domain.StageFailed, controller.Stage())
}

// Two invocations with the same fingerprint: the second one calls neither the
// settings nor the projects preparer and ends with an equivalent model.
func TestCacheAwareController_SecondInvocationReusesModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := newCollaborators(ctrl)
	store := newMemStore()
	c.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	collab := c.build()
	collab.Store = store
	factory, err := buildmodel.NewFactory(true, collab)
	require.NoError(t, err)

	first := newInvocation("build")
	c.fingerprinter.EXPECT().Fingerprint(gomock.Any(), gomock.Any()).Return(fp1, nil).Times(2)
	c.expectVintagePipeline(t, first)
	firstModel, firstPlan := runPhases(t, factory.Create(first))

	second := newInvocation("build")
	c.taskExecution.EXPECT().PrepareForExecution(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *domain.BuildModel) (*domain.ExecutionPlan, error) {
			return planFor(m), nil
		})
	secondModel, secondPlan := runPhases(t, factory.Create(second))

	assert.Equal(t, 2, store.loads)
	assert.Equal(t, 1, store.saves)
	assert.True(t, secondPlan.FromCache)

	if diff := cmp.Diff(firstModel.Projects, secondModel.Projects); diff != "" {
		t.Errorf("projects mismatch (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(firstModel.TaskGraph.Edges(), secondModel.TaskGraph.Edges()); diff != "" {
		t.Errorf("task graph mismatch (-first +second):\n%s", diff)
	}
	assert.Equal(t, firstModel.TaskGraph.Order(), secondModel.TaskGraph.Order())
	assert.Equal(t, firstPlan.TaskPaths(), secondPlan.TaskPaths())
}
