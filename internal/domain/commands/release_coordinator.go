package commands

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// ReleaseStage is one step of the release pipeline. Name is the state the plan reaches once the
// stage succeeds.
type ReleaseStage interface {
	Name() entities.ReleaseState
	Enabled(plan *entities.ReleasePlan) bool
	Run(ctx context.Context, plan *entities.ReleasePlan) error
}

// ReleaseCoordinator drives a ReleasePlan through an ordered list of stages. Stages run strictly
// one after another; the first failure moves the plan to the failed state and stops the pipeline.
// Once a durable commit exists the remaining stages ignore cancellation and nothing is rolled back.
type ReleaseCoordinator struct {
	stages []ReleaseStage
}

// NewReleaseCoordinator creates a coordinator running the given stages in order.
func NewReleaseCoordinator(stages ...ReleaseStage) *ReleaseCoordinator {
	return &ReleaseCoordinator{stages: stages}
}

// Execute runs every enabled stage. The returned error is always a *entities.StageError.
func (it *ReleaseCoordinator) Execute(ctx context.Context, plan *entities.ReleasePlan) error {
	for _, stage := range it.stages {
		name := stage.Name()
		if !stage.Enabled(plan) {
			logger.Debugf("[release] Stage %s is disabled", name)
			continue
		}

		runCtx := ctx
		if plan.IsCommitted() {
			runCtx = context.WithoutCancel(ctx)
		} else if err := ctx.Err(); err != nil {
			return it.fail(plan, name, err)
		}

		logger.Infof("[release] Running stage %s", name)
		if err := stage.Run(runCtx, plan); err != nil {
			return it.fail(plan, name, err)
		}
		plan.State = name
	}
	return nil
}

func (it *ReleaseCoordinator) fail(plan *entities.ReleasePlan, stage entities.ReleaseState, err error) error {
	plan.Fail(stage)
	if plan.IsCommitted() {
		logger.Errorf("[release] Stage %s failed after the release commit; finish the remaining steps by hand", stage)
	}

	var stageErr *entities.StageError
	if errors.As(err, &stageErr) {
		return stageErr
	}
	return &entities.StageError{Stage: stage, Err: err}
}
