package buildmodel

import (
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Collaborators are the services a build model controller calls into.
// Fingerprinter, Store and Logger are only required when the configuration cache is enabled.
type Collaborators struct {
	Settings      ports.SettingsPreparer
	Projects      ports.ProjectsPreparer
	TaskExecution ports.TaskExecutionPreparer
	Fingerprinter ports.Fingerprinter
	Store         ports.ModelSnapshotStore
	Logger        ports.Logger
}

// missing returns the name of the first required collaborator that is nil.
func (c Collaborators) missing(cacheEnabled bool) string {
	switch {
	case c.Settings == nil:
		return "SettingsPreparer"
	case c.Projects == nil:
		return "ProjectsPreparer"
	case c.TaskExecution == nil:
		return "TaskExecutionPreparer"
	case !cacheEnabled:
		return ""
	case c.Fingerprinter == nil:
		return "Fingerprinter"
	case c.Store == nil:
		return "ModelSnapshotStore"
	case c.Logger == nil:
		return "Logger"
	default:
		return ""
	}
}

// Factory selects the controller implementation of a build.
type Factory struct {
	cacheEnabled bool
	collab       Collaborators
}

// NewFactory creates a factory. cacheEnabled is resolved once from the start
// parameters and is not re-evaluated for the lifetime of the factory.
func NewFactory(cacheEnabled bool, c Collaborators) (*Factory, error) {
	if name := c.missing(cacheEnabled); name != "" {
		return nil, zerr.With(domain.ErrMissingCollaborator, "collaborator", name)
	}
	return &Factory{cacheEnabled: cacheEnabled, collab: c}, nil
}

// CacheEnabled reports whether Create returns cache-aware controllers.
func (f *Factory) CacheEnabled() bool {
	return f.cacheEnabled
}

// Create returns the controller for inv: a *VintageController, or a
// *CacheAwareController wrapping one when the configuration cache is enabled.
func (f *Factory) Create(inv *domain.BuildInvocation) ports.BuildModelController {
	vintage := NewVintageController(inv, f.collab.Settings, f.collab.Projects, f.collab.TaskExecution)
	if !f.cacheEnabled {
		return vintage
	}
	return NewCacheAwareController(
		inv,
		vintage,
		f.collab.TaskExecution,
		f.collab.Fingerprinter,
		f.collab.Store,
		f.collab.Logger,
	)
}
