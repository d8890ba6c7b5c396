// Package scheduler runs an execution plan with bounded parallelism.
package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to be executed.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
	// StatusSkipped indicates the task did not run because a dependency failed.
	StatusSkipped TaskStatus = "Skipped"
)

// RunOptions configures one Run.
type RunOptions struct {
	// Parallelism bounds the number of tasks running at once. Values below one mean one.
	Parallelism int
	// ContinueOnFailure keeps running tasks that do not depend on a failed task.
	ContinueOnFailure bool
	// Stdout and Stderr receive task output. Output of a task is written in one
	// piece once the task finishes, so concurrent tasks do not interleave.
	Stdout io.Writer
	Stderr io.Writer
}

// Scheduler executes the planned tasks of a build in dependency order.
type Scheduler struct {
	executor ports.Executor
	tracer   ports.Tracer

	mu         sync.RWMutex
	taskStatus map[string]TaskStatus
	outputMu   sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(executor ports.Executor, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		executor:   executor,
		tracer:     tracer,
		taskStatus: make(map[string]TaskStatus),
	}
}

// Statuses returns a copy of the task statuses of the last run.
func (s *Scheduler) Statuses() map[string]TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make(map[string]TaskStatus, len(s.taskStatus))
	for k, v := range s.taskStatus {
		statuses[k] = v
	}
	return statuses
}

func (s *Scheduler) updateStatus(path string, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[path] = status
}

// Run executes every task of plan. A task starts once all of its dependencies
// have completed. The first failure stops scheduling new tasks unless
// opts.ContinueOnFailure is set, in which case only the dependents of the
// failed task are skipped.
func (s *Scheduler) Run(ctx context.Context, plan *domain.ExecutionPlan, opts RunOptions) error {
	if plan == nil || len(plan.Tasks) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	state := s.newRunState(ctx, plan, opts)

	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if ctx.Err() != nil {
			// Wait for running tasks; nothing new is started.
			state.ready = nil
			if state.active == 0 {
				break
			}
			state.handleResult(<-state.resultsCh)
			continue
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
			if res.err != nil && !opts.ContinueOnFailure {
				cancel()
			}
		case <-ctx.Done():
		}
	}

	if err := context.Cause(ctx); err != nil && state.errs == nil {
		state.errs = err
	}
	if state.errs == nil {
		return nil
	}

	err := zerr.Wrap(state.errs, domain.ErrBuildExecutionFailed.Error())
	return zerr.With(err, "failed_tasks", state.failed)
}

type result struct {
	path string
	err  error
}

type schedulerRunState struct {
	inDegree    map[string]int
	dependents  map[string][]string
	tasks       map[string]domain.PlannedTask
	ready       []string
	active      int
	failed      int
	resultsCh   chan result
	errs        error
	ctx         context.Context
	parallelism int
	opts        RunOptions
	s           *Scheduler
}

func (s *Scheduler) newRunState(ctx context.Context, plan *domain.ExecutionPlan, opts RunOptions) *schedulerRunState {
	parallelism := max(opts.Parallelism, 1)

	tasks := make(map[string]domain.PlannedTask, len(plan.Tasks))
	for _, pt := range plan.Tasks {
		tasks[pt.Task.Path] = pt
	}

	s.mu.Lock()
	s.taskStatus = make(map[string]TaskStatus, len(tasks))
	s.mu.Unlock()

	inDegree := make(map[string]int, len(tasks))
	dependents := make(map[string][]string, len(tasks))
	var ready []string
	// Iterate the plan, not the map, so tasks with no pending dependency start in plan order.
	for _, pt := range plan.Tasks {
		path := pt.Task.Path
		for _, dep := range pt.Task.Dependencies {
			if _, ok := tasks[dep]; !ok {
				continue
			}
			inDegree[path]++
			dependents[dep] = append(dependents[dep], path)
		}
		if inDegree[path] == 0 {
			ready = append(ready, path)
		}
		s.updateStatus(path, StatusPending)
	}

	return &schedulerRunState{
		inDegree:    inDegree,
		dependents:  dependents,
		tasks:       tasks,
		ready:       ready,
		resultsCh:   make(chan result, parallelism),
		ctx:         ctx,
		parallelism: parallelism,
		opts:        opts,
		s:           s,
	}
}

func (state *schedulerRunState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *schedulerRunState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		path := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(path, StatusRunning)

		go func(pt domain.PlannedTask) {
			state.resultsCh <- result{path: pt.Task.Path, err: state.s.execute(state.ctx, pt, state.opts)}
		}(state.tasks[path])
	}
}

func (state *schedulerRunState) handleResult(res result) {
	state.active--
	if res.err != nil {
		state.failed++
		state.errs = errors.Join(state.errs, res.err)
		state.s.updateStatus(res.path, StatusFailed)
		state.skipDependents(res.path)
		return
	}

	state.s.updateStatus(res.path, StatusCompleted)
	for _, dep := range state.dependents[res.path] {
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}
}

// skipDependents marks every transitive dependent of path as skipped.
// Skipped tasks never reach an in-degree of zero, so they are never scheduled.
func (state *schedulerRunState) skipDependents(path string) {
	queue := []string{path}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dep := range state.dependents[current] {
			if state.inDegree[dep] < 0 {
				continue
			}
			state.inDegree[dep] = -1
			state.s.updateStatus(dep, StatusSkipped)
			queue = append(queue, dep)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, pt domain.PlannedTask, opts RunOptions) error {
	ctx, span := s.tracer.Start(ctx, pt.Task.Path)
	defer span.End()
	span.SetAttribute("task.dir", pt.Dir)

	var stdout, stderr bytes.Buffer
	err := s.executor.Execute(ctx, pt, &stdout, &stderr)
	if err != nil {
		span.RecordError(err)
	}

	s.flush(pt.Task.Path, opts, &stdout, &stderr)
	return err
}

func (s *Scheduler) flush(path string, opts RunOptions, stdout, stderr *bytes.Buffer) {
	s.outputMu.Lock()
	defer s.outputMu.Unlock()

	if opts.Stdout != nil {
		_, _ = fmt.Fprintf(opts.Stdout, "> Task %s\n", path)
		_, _ = stdout.WriteTo(opts.Stdout)
	}
	if opts.Stderr != nil {
		_, _ = stderr.WriteTo(opts.Stderr)
	}
}
