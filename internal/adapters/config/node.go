package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/logger" //nolint:depguard // Wired in node
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// LocatorNodeID is the graft node ID for the workspace locator.
	LocatorNodeID graft.ID = "adapter.config.locator"
	// SettingsNodeID is the graft node ID for the settings preparer.
	SettingsNodeID graft.ID = "adapter.config.settings"
	// ProjectsNodeID is the graft node ID for the projects preparer.
	ProjectsNodeID graft.ID = "adapter.config.projects"
)

func init() {
	graft.Register(graft.Node[ports.WorkspaceLocator]{
		ID:        LocatorNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.WorkspaceLocator, error) {
			return NewLocator(NewOSFS()), nil
		},
	})

	graft.Register(graft.Node[ports.SettingsPreparer]{
		ID:        SettingsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.SettingsPreparer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewSettingsLoader(NewOSFS(), log), nil
		},
	})

	graft.Register(graft.Node[ports.ProjectsPreparer]{
		ID:        ProjectsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ProjectsPreparer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewProjectsLoader(NewOSFS(), log), nil
		},
	})
}
