package buildmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/buildmodel"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// With the cache disabled the vintage controller runs all phases in order
// and neither the fingerprinter nor the store is consulted.
func TestFactory_CacheDisabled_RunsVintagePipeline(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := newCollaborators(ctrl)

	inv := newInvocation("build")
	inv.Params.ConfigurationCache = false
	c.expectVintagePipeline(t, inv)

	factory, err := buildmodel.NewFactory(false, c.build())
	require.NoError(t, err)
	assert.False(t, factory.CacheEnabled())

	controller := factory.Create(inv)
	vintage, ok := controller.(*buildmodel.VintageController)
	require.True(t, ok, "expected *VintageController, got %T", controller)

	model, plan := runPhases(t, controller)
	assert.Equal(t, domain.StageTaskExecutionPrepared, vintage.Stage())
	assert.Equal(t, []string{":lib:build", ":api:build"}, plan.TaskPaths())
	assert.False(t, plan.FromCache)
	assert.Equal(t, []string{":", ":api", ":lib"}, model.ProjectPaths())
}

func TestFactory_Create_CacheEnabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := newCollaborators(ctrl)

	factory, err := buildmodel.NewFactory(true, c.build())
	require.NoError(t, err)
	assert.True(t, factory.CacheEnabled())

	controller := factory.Create(newInvocation("build"))
	assert.IsType(t, &buildmodel.CacheAwareController{}, controller)
}

func TestFactory_Create_HasNoSideEffects(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := newCollaborators(ctrl)

	// No expectations: any collaborator call fails the test.
	factory, err := buildmodel.NewFactory(true, c.build())
	require.NoError(t, err)
	_ = factory.Create(newInvocation("build"))
	_ = factory.Create(newInvocation("test"))
}

func TestNewFactory_MissingCollaborator(t *testing.T) {
	ctrl := gomock.NewController(t)

	tests := []struct {
		name         string
		cacheEnabled bool
		mutate       func(*buildmodel.Collaborators)
		wantMissing  string
	}{
		{
			name:        "settings preparer",
			mutate:      func(c *buildmodel.Collaborators) { c.Settings = nil },
			wantMissing: "SettingsPreparer",
		},
		{
			name:        "projects preparer",
			mutate:      func(c *buildmodel.Collaborators) { c.Projects = nil },
			wantMissing: "ProjectsPreparer",
		},
		{
			name:        "task execution preparer",
			mutate:      func(c *buildmodel.Collaborators) { c.TaskExecution = nil },
			wantMissing: "TaskExecutionPreparer",
		},
		{
			name:         "store when cache enabled",
			cacheEnabled: true,
			mutate:       func(c *buildmodel.Collaborators) { c.Store = nil },
			wantMissing:  "ModelSnapshotStore",
		},
		{
			name:         "fingerprinter when cache enabled",
			cacheEnabled: true,
			mutate:       func(c *buildmodel.Collaborators) { c.Fingerprinter = nil },
			wantMissing:  "Fingerprinter",
		},
		{
			name: "cache collaborators are optional when disabled",
			mutate: func(c *buildmodel.Collaborators) {
				c.Store = nil
				c.Fingerprinter = nil
				c.Logger = nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collab := newCollaborators(ctrl).build()
			tt.mutate(&collab)

			factory, err := buildmodel.NewFactory(tt.cacheEnabled, collab)
			if tt.wantMissing == "" {
				require.NoError(t, err)
				assert.NotNil(t, factory)
				return
			}
			require.Error(t, err)
			assert.Nil(t, factory)
			assert.ErrorContains(t, err, domain.ErrMissingCollaborator.Error())

			zErr, ok := err.(*zerr.Error)
			require.True(t, ok, "expected *zerr.Error, got %T", err)
			assert.Equal(t, tt.wantMissing, zErr.Metadata()["collaborator"])
		})
	}
}
