//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// SpyActionRepository implements repositories.ActionRepository as a configurable spy. It is safe
// for concurrent use by the TaskRunner.
type SpyActionRepository struct {
	Op entities.Operation

	// --- Execute ---
	Outcomes map[string]repositories.ActionOutcome // by project name, zero outcome when absent
	Delay    time.Duration
	// OnExecute, when set, runs inside Execute before the outcome is returned.
	OnExecute func(ctx context.Context, project *entities.Project)

	mu          sync.Mutex
	events      []string
	inFlight    int
	maxInFlight int
	lastOpts    repositories.ActionOptions
}

var _ repositories.ActionRepository = (*SpyActionRepository)(nil)

func (a *SpyActionRepository) Operation() entities.Operation { return a.Op }

func (a *SpyActionRepository) Execute(
	ctx context.Context,
	project *entities.Project,
	opts repositories.ActionOptions,
) repositories.ActionOutcome {
	a.mu.Lock()
	a.events = append(a.events, "start:"+project.Name)
	a.inFlight++
	if a.inFlight > a.maxInFlight {
		a.maxInFlight = a.inFlight
	}
	a.lastOpts = opts
	a.mu.Unlock()

	if a.OnExecute != nil {
		a.OnExecute(ctx, project)
	}
	if a.Delay > 0 {
		select {
		case <-time.After(a.Delay):
		case <-ctx.Done():
		}
	}

	a.mu.Lock()
	a.inFlight--
	a.events = append(a.events, "end:"+project.Name)
	a.mu.Unlock()
	return a.Outcomes[project.Name]
}

// Events returns the recorded "start:<name>" and "end:<name>" events in order.
func (a *SpyActionRepository) Events() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.events))
	copy(out, a.events)
	return out
}

// Started returns the names of the projects Execute was called for, in call order.
func (a *SpyActionRepository) Started() []string {
	var out []string
	for _, e := range a.Events() {
		if name, ok := strings.CutPrefix(e, "start:"); ok {
			out = append(out, name)
		}
	}
	return out
}

// MaxInFlight returns the highest number of concurrent Execute calls observed.
func (a *SpyActionRepository) MaxInFlight() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.maxInFlight
}

// LastOptions returns the options of the most recent Execute call.
func (a *SpyActionRepository) LastOptions() repositories.ActionOptions {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastOpts
}
