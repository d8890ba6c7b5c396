// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"go.trai.ch/kiln/internal/adapters/telemetry" //nolint:depguard // Profiling is wired in app layer
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/buildmodel"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	collab    buildmodel.Collaborators
	locator   ports.WorkspaceLocator
	stores    ports.SnapshotStoreProvider
	scheduler *scheduler.Scheduler
	tracer    ports.Tracer
	logger    ports.Logger
	stdout    io.Writer
	stderr    io.Writer
}

// New creates a new App instance.
// The Store of collab is ignored; it is opened per build when the configuration cache is enabled.
func New(
	collab buildmodel.Collaborators,
	locator ports.WorkspaceLocator,
	stores ports.SnapshotStoreProvider,
	sched *scheduler.Scheduler,
	tracer ports.Tracer,
) *App {
	collab.Store = nil
	return &App{
		collab:    collab,
		locator:   locator,
		stores:    stores,
		scheduler: sched,
		tracer:    tracer,
		logger:    collab.Logger,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

// WithOutput sets where task output and dry-run plans are written.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Profile logs the duration of every build phase and task.
	Profile bool
}

// Run configures the build described by params and executes the requested tasks.
func (a *App) Run(ctx context.Context, params domain.StartParameters, opts RunOptions) error {
	if len(params.RequestedTasks) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	if opts.Profile {
		shutdown := telemetry.InstallProfiler(a.logger)
		defer func() {
			_ = shutdown(context.WithoutCancel(ctx))
		}()
	}

	root, settingsFile, err := a.locator.Locate(params.WorkingDir)
	if err != nil {
		return err
	}
	params.RootDir = root
	params.SettingsFile = settingsFile

	collab := a.collab
	if params.ConfigurationCache {
		store, err := a.stores.Open(ctx, root, params.Cache)
		if err != nil {
			// An unusable store degrades to configuring from scratch, like an unreadable entry.
			a.logger.Warn(fmt.Sprintf("Configuration cache is unavailable: %v", err))
			params.ConfigurationCache = false
		} else {
			defer a.closeStore(store)
			collab.Store = store
		}
	}

	inv := domain.NewBuildInvocation(params)
	factory, err := buildmodel.NewFactory(inv.CacheEnabled(), collab)
	if err != nil {
		return err
	}

	plan, err := a.configure(ctx, factory.Create(inv))
	if err != nil {
		return err
	}
	a.tracer.EmitPlan(ctx, plan.TaskPaths())

	if params.DryRun {
		for _, path := range plan.TaskPaths() {
			_, _ = fmt.Fprintf(a.stdout, "%s SKIPPED\n", path)
		}
		return nil
	}

	return a.scheduler.Run(ctx, plan, scheduler.RunOptions{
		Parallelism:       runtime.NumCPU(),
		ContinueOnFailure: params.ContinueOnFailure,
		Stdout:            a.stdout,
		Stderr:            a.stderr,
	})
}

// configure runs the three configuration phases of controller, each in its own span.
func (a *App) configure(ctx context.Context, controller ports.BuildModelController) (*domain.ExecutionPlan, error) {
	ctx, span := a.tracer.Start(ctx, "configuration")
	defer span.End()

	err := a.phase(ctx, "settings", func(ctx context.Context) error {
		_, err := controller.PrepareSettings(ctx)
		return err
	})
	if err == nil {
		err = a.phase(ctx, "projects", func(ctx context.Context) error {
			_, err := controller.PrepareProjects(ctx)
			return err
		})
	}

	var plan *domain.ExecutionPlan
	if err == nil {
		err = a.phase(ctx, "task graph", func(ctx context.Context) error {
			var err error
			plan, err = controller.PrepareTaskExecution(ctx)
			return err
		})
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttribute("configuration_cache.hit", plan.FromCache)
	span.SetAttribute("tasks", len(plan.Tasks))
	return plan, nil
}

func (a *App) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := a.tracer.Start(ctx, name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (a *App) closeStore(store ports.SnapshotStore) {
	if err := store.Close(); err != nil {
		a.logger.Warn(fmt.Sprintf("Configuration cache store could not be closed: %v", err))
	}
}

// Projects evaluates the workspace found from workingDir and returns its build model.
// The configuration cache is not consulted.
func (a *App) Projects(ctx context.Context, workingDir string, properties map[string]string) (*domain.BuildModel, error) {
	root, settingsFile, err := a.locator.Locate(workingDir)
	if err != nil {
		return nil, err
	}

	inv := domain.NewBuildInvocation(domain.StartParameters{
		WorkingDir:   workingDir,
		RootDir:      root,
		SettingsFile: settingsFile,
		Properties:   properties,
		Environment:  domain.EnvironmentFromList(os.Environ()),
	})

	controller := buildmodel.NewVintageController(inv, a.collab.Settings, a.collab.Projects, a.collab.TaskExecution)
	if _, err := controller.PrepareSettings(ctx); err != nil {
		return nil, err
	}
	return controller.PrepareProjects(ctx)
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	WorkingDir string
	// ConfigurationCache clears the entries of the configured snapshot store.
	ConfigurationCache bool
	// All removes the whole .kiln directory of the workspace.
	All   bool
	Cache domain.CacheOptions
}

// Clean removes kiln state of the workspace found from opts.WorkingDir.
func (a *App) Clean(ctx context.Context, opts CleanOptions) error {
	root, _, err := a.locator.Locate(opts.WorkingDir)
	if err != nil {
		return err
	}

	var errs error
	if opts.ConfigurationCache || opts.All {
		a.logger.Info("removing configuration cache...")
		if err := a.clearConfigurationCache(ctx, root, opts.Cache); err != nil {
			errs = errors.Join(errs, err)
		} else {
			a.logger.Info("removed configuration cache")
		}
	}

	if opts.All {
		a.logger.Info(fmt.Sprintf("removing %s...", domain.KilnDirName))
		if err := os.RemoveAll(domain.DefaultKilnPath(root)); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", domain.KilnDirName)))
		} else {
			a.logger.Info(fmt.Sprintf("removed %s", domain.KilnDirName))
		}
	}

	return errs
}

func (a *App) clearConfigurationCache(ctx context.Context, root string, opts domain.CacheOptions) error {
	store, err := a.stores.Open(ctx, root, opts)
	if err != nil {
		return err
	}
	defer a.closeStore(store)
	return store.Clear(ctx)
}
