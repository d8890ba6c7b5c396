package buildmodel_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/buildmodel"
	"go.uber.org/mock/gomock"
)

const fp1 = domain.Fingerprint("9f86d081884c7d65")

type collaborators struct {
	settings      *mocks.MockSettingsPreparer
	projects      *mocks.MockProjectsPreparer
	taskExecution *mocks.MockTaskExecutionPreparer
	fingerprinter *mocks.MockFingerprinter
	store         *mocks.MockModelSnapshotStore
	logger        *mocks.MockLogger
}

func newCollaborators(ctrl *gomock.Controller) *collaborators {
	return &collaborators{
		settings:      mocks.NewMockSettingsPreparer(ctrl),
		projects:      mocks.NewMockProjectsPreparer(ctrl),
		taskExecution: mocks.NewMockTaskExecutionPreparer(ctrl),
		fingerprinter: mocks.NewMockFingerprinter(ctrl),
		store:         mocks.NewMockModelSnapshotStore(ctrl),
		logger:        mocks.NewMockLogger(ctrl),
	}
}

func (c *collaborators) build() buildmodel.Collaborators {
	return buildmodel.Collaborators{
		Settings:      c.settings,
		Projects:      c.projects,
		TaskExecution: c.taskExecution,
		Fingerprinter: c.fingerprinter,
		Store:         c.store,
		Logger:        c.logger,
	}
}

// expectVintagePipeline registers one in-order run of all three phases.
func (c *collaborators) expectVintagePipeline(t *testing.T, inv *domain.BuildInvocation) {
	t.Helper()
	settings := sampleSettings()
	projects := sampleProjects()
	gomock.InOrder(
		c.settings.EXPECT().PrepareSettings(gomock.Any(), inv).Return(settings, nil),
		c.projects.EXPECT().PrepareProjects(gomock.Any(), inv, settings).Return(projects, nil),
		c.taskExecution.EXPECT().CalculateTaskGraph(gomock.Any(), gomock.Any(), inv.Params.RequestedTasks).
			DoAndReturn(func(_ context.Context, _ *domain.BuildModel, requested []string) (*domain.Graph, error) {
				return sampleGraph(t, requested), nil
			}),
		c.taskExecution.EXPECT().PrepareForExecution(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, m *domain.BuildModel) (*domain.ExecutionPlan, error) {
				return planFor(m), nil
			}),
	)
}

func newInvocation(tasks ...string) *domain.BuildInvocation {
	return domain.NewBuildInvocation(domain.StartParameters{
		RequestedTasks:     tasks,
		ConfigurationCache: true,
		RootDir:            "/ws",
		SettingsFile:       "/ws/kiln.settings.yaml",
	})
}

func sampleSettings() *domain.Settings {
	return &domain.Settings{
		RootProject:  "demo",
		RootDir:      "/ws",
		SettingsFile: "/ws/kiln.settings.yaml",
		Projects: []domain.ProjectDescriptor{
			{Path: ":", Dir: "."},
			{Path: ":api", Dir: "api"},
			{Path: ":lib", Dir: "lib"},
		},
	}
}

func sampleProjects() []*domain.Project {
	return []*domain.Project{
		{
			Path: ":lib", Name: "lib", Dir: "lib", BuildFile: "lib/kiln.yaml",
			Tasks: []*domain.Task{
				{Path: ":lib:build", Name: "build", Project: ":lib", Command: []string{"go", "build", "./..."}, WorkingDir: "lib"},
			},
		},
		{
			Path: ":api", Name: "api", Dir: "api", BuildFile: "api/kiln.yaml",
			Tasks: []*domain.Task{
				{
					Path: ":api:build", Name: "build", Project: ":api",
					Command:      []string{"go", "build", "./..."},
					Dependencies: []string{":lib:build"},
					WorkingDir:   "api",
				},
			},
		},
		{Path: ":", Name: "demo", Dir: ".", BuildFile: "kiln.yaml"},
	}
}

func sampleGraph(t *testing.T, requested []string) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	for _, p := range sampleProjects() {
		for _, task := range p.Tasks {
			require.NoError(t, g.AddTask(task))
		}
	}
	g.SetRequested(requested)
	require.NoError(t, g.Validate())
	return g
}

func sampleModel(t *testing.T, requested ...string) *domain.BuildModel {
	t.Helper()
	m := domain.NewBuildModel(sampleSettings())
	m.SetProjects(sampleProjects())
	m.TaskGraph = sampleGraph(t, requested)
	m.Requested = requested
	return m
}

func planFor(m *domain.BuildModel) *domain.ExecutionPlan {
	plan := &domain.ExecutionPlan{Requested: m.Requested}
	for task := range m.TaskGraph.Walk() {
		plan.Tasks = append(plan.Tasks, domain.PlannedTask{Task: task, Dir: "/ws/" + task.WorkingDir})
	}
	return plan
}

// memStore is an in-memory ModelSnapshotStore.
type memStore struct {
	mu      sync.Mutex
	entries map[domain.Fingerprint]*domain.CacheEntry
	loads   int
	saves   int
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[domain.Fingerprint]*domain.CacheEntry)}
}

func (s *memStore) Load(_ context.Context, fp domain.Fingerprint) (*domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.entries[fp], nil
}

func (s *memStore) Save(_ context.Context, fp domain.Fingerprint, model *domain.BuildModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.entries[fp] = &domain.CacheEntry{
		FormatVersion: domain.CacheFormatVersion,
		Fingerprint:   fp,
		CreatedAt:     time.Now(),
		ToolVersion:   "test",
		Model:         model,
	}
	return nil
}

// runPhases drives a controller through all three phases in order.
func runPhases(t *testing.T, c ports.BuildModelController) (*domain.BuildModel, *domain.ExecutionPlan) {
	t.Helper()
	ctx := context.Background()

	_, err := c.PrepareSettings(ctx)
	require.NoError(t, err)
	model, err := c.PrepareProjects(ctx)
	require.NoError(t, err)
	plan, err := c.PrepareTaskExecution(ctx)
	require.NoError(t, err)
	return model, plan
}
