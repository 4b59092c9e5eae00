// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package integrations

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/datasektionen/hive/internal/clock"
	"github.com/datasektionen/hive/internal/logging"
	"github.com/datasektionen/hive/internal/pool"
	"github.com/datasektionen/hive/internal/tracing"
)

// Task is one configured integration task: a unit of work the runner
// executes under a singleton run lock. Implementations observe cancel via
// the passed context and should check it between log-entry boundaries
// only; integration tasks are not interrupted mid-flight.
type Task interface {
	IntegrationID() string
	TaskID() string
	Run(ctx context.Context, log func(kind LogKind, message string)) error
}

// Runner drives the Idle -> Running -> Finished state machine, fanning
// independent tasks out across an internal/pool worker pool.
type Runner struct {
	repo RepositoryInterface
	pool pool.WorkerPoolInterface
	clk  *clock.Clock

	cancelled atomic.Bool

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

// Reconcile must run once at process startup, before any task is
// scheduled, to close out runs left open by a prior process.
func (r *Runner) Reconcile(ctx context.Context) error {
	n, err := r.repo.ReconcileOrphans(ctx, r.clk.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		r.logger.Warnf("reconciled %d orphaned integration run(s) at startup", n)
	}
	return nil
}

// Cancel sets the cooperative cancellation flag; an in-flight task observes
// it at its next log call, which is dropped and cancels the context the task
// was given. Tasks are not forcibly interrupted.
func (r *Runner) Cancel() {
	r.cancelled.Store(true)
}

// RunAll attempts to start every task's run; tasks whose singleton lock is
// already held are skipped, not retried.
func (r *Runner) RunAll(ctx context.Context, tasks []Task) {
	results := make(chan *pool.Result[any], len(tasks))
	wg := new(sync.WaitGroup)

	for _, task := range tasks {
		wg.Add(1)
		t := task
		if _, err := r.pool.Submit(func() any {
			r.runOne(ctx, t)
			return true
		}, results, wg); err != nil {
			r.logger.Errorf("unable to submit integration task %s/%s: %v", t.IntegrationID(), t.TaskID(), err)
			wg.Done()
		}
	}

	wg.Wait()
	close(results)
}

func (r *Runner) runOne(ctx context.Context, task Task) {
	run, err := r.repo.StartRun(ctx, task.IntegrationID(), task.TaskID())
	if err != nil {
		if err == ErrAlreadyRunning {
			r.logger.Debugf("skipping %s/%s: a run is already active", task.IntegrationID(), task.TaskID())
			return
		}
		r.logger.Errorf("unable to start run for %s/%s: %v", task.IntegrationID(), task.TaskID(), err)
		return
	}

	taskCtx, stop := context.WithCancel(ctx)
	defer stop()

	logFn := func(kind LogKind, message string) {
		if r.cancelled.Load() {
			stop()
			return
		}
		if err := r.repo.AppendLog(ctx, run.ID, kind, message, r.clk.Now()); err != nil {
			r.logger.Errorf("unable to append integration run log: %v", err)
		}
	}

	err = task.Run(taskCtx, logFn)
	succeeded := err == nil
	if err != nil {
		logFn(LogError, err.Error())
	}

	if err := r.repo.FinishRun(ctx, run.ID, succeeded, r.clk.Now()); err != nil {
		r.logger.Errorf("unable to finish run for %s/%s: %v", task.IntegrationID(), task.TaskID(), err)
	}
}

func NewRunner(repo RepositoryInterface, workerPool pool.WorkerPoolInterface, clk *clock.Clock, tracer tracing.TracingInterface, logger logging.LoggerInterface) *Runner {
	r := new(Runner)

	r.repo = repo
	r.pool = workerPool
	r.clk = clk
	r.tracer = tracer
	r.logger = logger

	return r
}
