package cas_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/cas"
	"go.trai.ch/kiln/internal/core/domain"
)

const (
	fp1 domain.Fingerprint = "9f86d081884c7d65"
	fp2 domain.Fingerprint = "60303ae22b998861"
)

var fixedTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newCodec() *cas.Codec {
	c := cas.NewCodec("1.2.3")
	c.SetClock(func() time.Time { return fixedTime })
	return c
}

// sampleModel returns a model with two projects where :api:build depends on :lib:build.
func sampleModel(t *testing.T) *domain.BuildModel {
	t.Helper()

	lib := &domain.Task{
		Path:       ":lib:build",
		Name:       "build",
		Project:    ":lib",
		Command:    []string{"go", "build", "./..."},
		Inputs:     []string{"lib/**/*.go"},
		WorkingDir: "lib",
	}
	api := &domain.Task{
		Path:         ":api:build",
		Name:         "build",
		Project:      ":api",
		Description:  "Build the API",
		Command:      []string{"go", "build", "-o", "bin/api"},
		Outputs:      []string{"api/bin/api"},
		Dependencies: []string{":lib:build"},
		Environment:  map[string]string{"CGO_ENABLED": "0"},
		WorkingDir:   "api",
	}
	lint := &domain.Task{Path: ":api:lint", Name: "lint", Project: ":api", Command: []string{"golangci-lint", "run"}}

	model := domain.NewBuildModel(&domain.Settings{
		RootProject:  "shop",
		RootDir:      "/ws",
		SettingsFile: "/ws/kiln.settings.yaml",
		Projects: []domain.ProjectDescriptor{
			{Path: ":", Dir: "."},
			{Path: ":api", Dir: "api"},
			{Path: ":lib", Dir: "lib"},
		},
		EnvKeys:    []string{"GOOS"},
		Properties: map[string]string{"profile": "release"},
	})
	model.SetProjects([]*domain.Project{
		{Path: ":lib", Name: "lib", Dir: "lib", BuildFile: "lib/kiln.yaml", Tasks: []*domain.Task{lib}},
		{Path: ":", Name: "shop", Dir: "."},
		{Path: ":api", Name: "api", Dir: "api", BuildFile: "api/kiln.hcl", Tasks: []*domain.Task{api, lint}},
	})

	graph := domain.NewGraph()
	require.NoError(t, graph.AddTask(api))
	require.NoError(t, graph.AddTask(lib))
	graph.SetRequested([]string{":api:build"})
	require.NoError(t, graph.Validate())
	model.TaskGraph = graph
	model.Requested = []string{"build"}
	return model
}

// assertEquivalent checks that got describes the same projects and task graph as want.
func assertEquivalent(t *testing.T, want, got *domain.BuildModel) {
	t.Helper()

	opts := cmpopts.EquateEmpty()
	if diff := cmp.Diff(want.Settings, got.Settings, opts); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Projects, got.Projects, opts); diff != "" {
		t.Errorf("projects mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, want.Requested, got.Requested)

	require.NotNil(t, got.TaskGraph)
	assert.Equal(t, want.TaskGraph.Order(), got.TaskGraph.Order())
	assert.Equal(t, want.TaskGraph.Requested(), got.TaskGraph.Requested())
	if diff := cmp.Diff(want.TaskGraph.Edges(), got.TaskGraph.Edges(), opts); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}
