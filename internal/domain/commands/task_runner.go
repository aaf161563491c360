package commands

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/monorepo/internal/infrastructure/repositories"
)

const (
	outputCancelled = "cancelled"
	outputBailed    = "not started after an earlier failure"
)

// TaskOptions holds the options of one TaskRunner invocation.
type TaskOptions struct {
	Concurrency int  // maximum actions in flight, <= 0 means one per CPU
	Bail        bool // stop starting projects after the first failure
	Stream      bool // log each project's output as soon as it finishes
	Action      repositories.ActionOptions
}

// TaskRunner executes one operation across a set of projects. Ordered operations wait for the
// in-set dependencies of each project; independent projects run concurrently up to the limit.
type TaskRunner struct {
	actions *infraRepos.ActionRegistry
}

// NewTaskRunner creates a TaskRunner dispatching to the given actions.
func NewTaskRunner(actions *infraRepos.ActionRegistry) *TaskRunner {
	return &TaskRunner{actions: actions}
}

// Run executes op once per project and returns one result per project, in input order. A single
// project failing is never an error; the error return is reserved for an unknown operation or a
// dependency cycle when op must respect ordering.
func (it *TaskRunner) Run(
	ctx context.Context,
	op entities.Operation,
	projects []*entities.Project,
	opts TaskOptions,
) ([]entities.TaskResult, error) {
	action, err := it.actions.Get(op)
	if err != nil {
		return nil, err
	}
	graph := entities.NewDependencyGraph(projects)
	if _, err = graph.OrderFor(op); err != nil {
		return nil, err
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	if opts.Action.Set == nil {
		opts.Action.Set = projects
	}

	index := make(map[string]int, len(projects))
	done := make([]chan struct{}, len(projects))
	for i, p := range projects {
		index[p.Name] = i
		done[i] = make(chan struct{})
	}

	results := make([]entities.TaskResult, len(projects))
	sem := semaphore.NewWeighted(int64(limit))
	var failed atomic.Bool
	var wg sync.WaitGroup

	logger.Infof("[%s] Running on %d project(s) with concurrency %d", op, len(projects), limit)
	for i, project := range projects {
		var waitFor []int
		if op.Ordered() {
			for _, dep := range graph.Dependencies(project.Name) {
				waitFor = append(waitFor, index[dep.Name])
			}
		}

		wg.Go(func() {
			defer close(done[i])
			results[i] = it.runOne(ctx, runSlot{
				op:      op,
				action:  action,
				project: project,
				waitFor: waitFor,
				done:    done,
				results: results,
				sem:     sem,
				failed:  &failed,
				opts:    opts,
			})
		})
	}
	wg.Wait()

	report := entities.NewRunReport(op, results)
	logger.Infof("[%s] %d succeeded, %d failed, %d skipped",
		op, len(report.Succeeded()), len(report.Failed()), len(report.Skipped()))
	return results, nil
}

// runSlot is everything one scheduled project needs to decide whether and how to run.
type runSlot struct {
	op      entities.Operation
	action  repositories.ActionRepository
	project *entities.Project
	waitFor []int
	done    []chan struct{}
	results []entities.TaskResult
	sem     *semaphore.Weighted
	failed  *atomic.Bool
	opts    TaskOptions
}

func (it *TaskRunner) runOne(ctx context.Context, slot runSlot) entities.TaskResult {
	project := slot.project

	for _, dep := range slot.waitFor {
		<-slot.done[dep]
		if depResult := slot.results[dep]; depResult.Status != entities.TaskSuccess {
			logger.Warnf("[%s] Skipping %s: dependency %s did not succeed", slot.op, project.Name, depResult.Project.Name)
			return skipped(project, fmt.Sprintf("dependency %s was %s", depResult.Project.Name, depResult.Status))
		}
	}

	if ctx.Err() != nil {
		return skipped(project, outputCancelled)
	}
	if err := slot.sem.Acquire(ctx, 1); err != nil {
		return skipped(project, outputCancelled)
	}
	defer slot.sem.Release(1)
	if ctx.Err() != nil {
		return skipped(project, outputCancelled)
	}
	if slot.opts.Bail && slot.failed.Load() {
		return skipped(project, outputBailed)
	}

	logger.Debugf("[%s] Starting %s", slot.op, project.Name)
	started := time.Now()
	outcome := slot.action.Execute(ctx, project, slot.opts.Action)
	result := entities.TaskResult{
		Project:  project,
		Status:   entities.TaskSuccess,
		Output:   outcome.Output,
		Duration: time.Since(started),
	}
	if outcome.Err != nil {
		slot.failed.Store(true)
		result.Status = entities.TaskFailed
		result.Err = &entities.TaskFailure{Project: project.Name, Operation: slot.op, Err: outcome.Err}
		logger.Errorf("[%s] %s failed: %v", slot.op, project.Name, outcome.Err)
	} else {
		logger.Infof("[%s] %s done in %s", slot.op, project.Name, result.Duration.Round(time.Millisecond))
	}
	if slot.opts.Stream {
		streamOutput(project.Name, outcome.Output)
	}
	return result
}

func skipped(project *entities.Project, reason string) entities.TaskResult {
	return entities.TaskResult{Project: project, Status: entities.TaskSkipped, Output: reason}
}

func streamOutput(name, output string) {
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		if line == "" {
			continue
		}
		logger.Infof("[%s] %s", name, line)
	}
}
