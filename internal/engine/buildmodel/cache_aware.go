package buildmodel

import (
	"context"
	"fmt"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

type decision uint8

const (
	undecided decision = iota
	cacheHit
	cacheMiss
)

// CacheAwareController wraps a VintageController with the configuration cache.
//
// The hit/miss decision is made once, on the settings phase. On a hit the
// settings and projects phases return the stored model and the task execution
// phase only wires it for execution. On a miss every phase is delegated to the
// vintage controller and the resulting model is stored once the task
// execution phase succeeds.
type CacheAwareController struct {
	inv           *domain.BuildInvocation
	vintage       *VintageController
	taskExecution ports.TaskExecutionPreparer
	fingerprinter ports.Fingerprinter
	store         ports.ModelSnapshotStore
	logger        ports.Logger

	decision    decision
	fingerprint domain.Fingerprint
	entry       *domain.CacheEntry
	stage       domain.BuildStage
}

var _ ports.BuildModelController = (*CacheAwareController)(nil)

// NewCacheAwareController creates a cache-aware controller around vintage.
func NewCacheAwareController(
	inv *domain.BuildInvocation,
	vintage *VintageController,
	taskExecution ports.TaskExecutionPreparer,
	fingerprinter ports.Fingerprinter,
	store ports.ModelSnapshotStore,
	logger ports.Logger,
) *CacheAwareController {
	return &CacheAwareController{
		inv:           inv,
		vintage:       vintage,
		taskExecution: taskExecution,
		fingerprinter: fingerprinter,
		store:         store,
		logger:        logger,
		stage:         domain.StageCreated,
	}
}

// Hit reports whether the model of this build is loaded from the configuration cache.
// It is false until the settings phase has run.
func (c *CacheAwareController) Hit() bool {
	return c.decision == cacheHit
}

// Fingerprint returns the fingerprint of this build, or "" if it could not be computed.
func (c *CacheAwareController) Fingerprint() domain.Fingerprint {
	return c.fingerprint
}

// Stage returns the current lifecycle stage.
func (c *CacheAwareController) Stage() domain.BuildStage {
	if c.decision == cacheHit {
		return c.stage
	}
	return c.vintage.Stage()
}

// PrepareSettings decides between cache and vintage pipeline, then returns the settings.
func (c *CacheAwareController) PrepareSettings(ctx context.Context) (*domain.Settings, error) {
	if c.decision == undecided && c.vintage.Stage() == domain.StageCreated {
		c.decide(ctx)
	}
	if c.decision != cacheHit {
		return c.vintage.PrepareSettings(ctx)
	}

	if err := c.stage.Expect(domain.StageCreated); err != nil {
		return nil, zerr.With(err, "phase", "settings")
	}
	c.stage = c.stage.Next()
	return c.entry.Model.Settings, nil
}

// PrepareProjects returns the evaluated projects.
func (c *CacheAwareController) PrepareProjects(ctx context.Context) (*domain.BuildModel, error) {
	if c.decision != cacheHit {
		return c.vintage.PrepareProjects(ctx)
	}

	if err := c.stage.Expect(domain.StageSettingsPrepared); err != nil {
		return nil, zerr.With(err, "phase", "projects")
	}
	c.stage = c.stage.Next()
	return c.entry.Model, nil
}

// PrepareTaskExecution returns the execution plan.
func (c *CacheAwareController) PrepareTaskExecution(ctx context.Context) (*domain.ExecutionPlan, error) {
	if c.decision != cacheHit {
		return c.prepareAndStore(ctx)
	}

	if err := c.stage.Expect(domain.StageProjectsPrepared); err != nil {
		return nil, zerr.With(err, "phase", "task-execution")
	}

	plan, err := c.taskExecution.PrepareForExecution(ctx, c.entry.Model)
	if err != nil {
		c.stage = domain.StageFailed
		err = zerr.Wrap(err, domain.ErrTaskGraphFailed.Error())
		return nil, zerr.With(err, "fingerprint", c.fingerprint.String())
	}
	plan.FromCache = true

	c.stage = c.stage.Next()
	return plan, nil
}

func (c *CacheAwareController) prepareAndStore(ctx context.Context) (*domain.ExecutionPlan, error) {
	plan, err := c.vintage.PrepareTaskExecution(ctx)
	if err != nil {
		return nil, err
	}

	if c.fingerprint == "" {
		return plan, nil
	}

	if err := c.store.Save(ctx, c.fingerprint, c.vintage.Model()); err != nil {
		c.logger.Warn(fmt.Sprintf("Configuration cache entry %s could not be stored: %v", c.fingerprint.Short(), err))
		return plan, nil
	}
	c.logger.Info("Configuration cache entry stored.")
	return plan, nil
}

// decide computes the fingerprint and looks it up in the store.
// Every failure falls back to the vintage pipeline.
func (c *CacheAwareController) decide(ctx context.Context) {
	c.decision = cacheMiss

	fp, err := c.fingerprinter.Fingerprint(ctx, c.inv)
	if err == nil {
		err = fp.Validate()
	}
	if err != nil {
		c.logger.Warn(fmt.Sprintf("Configuration cache cannot be used for this build: %v", err))
		return
	}
	c.fingerprint = fp

	entry, err := c.store.Load(ctx, fp)
	if err == nil && entry != nil {
		err = validateEntry(entry, fp)
	}
	switch {
	case err != nil:
		c.logger.Warn(fmt.Sprintf("Configuration cache entry %s discarded: %v", fp.Short(), err))
		c.logMiss()
	case entry == nil:
		c.logMiss()
	default:
		c.entry = entry
		c.decision = cacheHit
		c.logger.Info("Reusing configuration cache.")
	}
}

func (c *CacheAwareController) logMiss() {
	tasks := strings.Join(c.inv.Params.RequestedTasks, ", ")
	c.logger.Info(fmt.Sprintf("Calculating task graph as no cached configuration is available for tasks: %s", tasks))
}

func validateEntry(entry *domain.CacheEntry, fp domain.Fingerprint) error {
	if entry.FormatVersion != domain.CacheFormatVersion {
		err := zerr.With(domain.ErrCacheFormatMismatch, "expected", domain.CacheFormatVersion)
		return zerr.With(err, "actual", entry.FormatVersion)
	}
	if entry.Fingerprint != fp {
		err := zerr.With(domain.ErrCacheFingerprintMismatch, "expected", fp.String())
		return zerr.With(err, "actual", entry.Fingerprint.String())
	}
	if entry.Model == nil || entry.Model.Settings == nil || entry.Model.TaskGraph == nil {
		return zerr.With(domain.ErrCacheEntryCorrupt, "reason", "incomplete model")
	}
	return nil
}
