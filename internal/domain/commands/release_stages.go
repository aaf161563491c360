package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/monorepo/internal/infrastructure/repositories"
)

const changelogFile = "CHANGELOG.md"

// ReleaseEnv holds the collaborators the release stages act through. VCS may be nil when the
// plan does not touch git, Publisher when it does not publish, and Lock when no lock is wanted.
type ReleaseEnv struct {
	Settings  *entities.Settings
	Fs        afero.Fs
	Runner    *TaskRunner
	Manifests *infraRepos.ManifestRegistry
	VCS       repositories.VCSRepository
	Publisher repositories.PublisherRepository
	Lock      repositories.LockRepository
	Now       func() time.Time
}

func (e ReleaseEnv) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// NewReleaseStages returns the full release pipeline in execution order.
func NewReleaseStages(env ReleaseEnv) []ReleaseStage {
	return []ReleaseStage{
		&PreconditionStage{Checks: DefaultPreconditions(env)},
		&buildStage{env: env},
		&versionBumpStage{env: env},
		&commitStage{env: env},
		&pushStage{env: env},
		NewPublishStage(env),
		&doneStage{},
	}
}

// Precondition is a named check run before any release side effect.
type Precondition struct {
	Name  string
	Check func(ctx context.Context, plan *entities.ReleasePlan) error
}

// DefaultPreconditions returns the built-in checks: valid versions, and, when git is used, a clean
// working tree on an allowed branch. The release lock is taken last since the lock file itself
// shows up as an untracked file in the working tree.
func DefaultPreconditions(env ReleaseEnv) []Precondition {
	return []Precondition{
		{Name: "versions", Check: checkVersions},
		{Name: "collaborators", Check: func(_ context.Context, plan *entities.ReleasePlan) error {
			if plan.DoGit && env.VCS == nil {
				return entities.NewConfigurationError("git stages are enabled but no repository is available", nil)
			}
			if plan.DoPublish && env.Publisher == nil {
				return entities.NewConfigurationError("publishing is enabled but no registry is configured", nil)
			}
			return nil
		}},
		{Name: "clean tree", Check: func(ctx context.Context, plan *entities.ReleasePlan) error {
			if !plan.DoGit || env.VCS == nil {
				return nil
			}
			clean, err := env.VCS.IsClean(ctx)
			if err != nil {
				return err
			}
			if !clean {
				return errors.New("working tree has uncommitted changes")
			}
			return nil
		}},
		{Name: "branch", Check: func(ctx context.Context, plan *entities.ReleasePlan) error {
			if !plan.DoGit || env.VCS == nil || len(env.Settings.Release.AllowBranches) == 0 {
				return nil
			}
			branch, err := env.VCS.CurrentBranch(ctx)
			if err != nil {
				return err
			}
			allowed, err := entities.MatchAny(env.Settings.Release.AllowBranches, branch)
			if err != nil {
				return err
			}
			if !allowed {
				return fmt.Errorf("branch %q is not allowed to release (allowed: %s)",
					branch, strings.Join(env.Settings.Release.AllowBranches, ", "))
			}
			return nil
		}},
		{Name: "lock", Check: func(_ context.Context, plan *entities.ReleasePlan) error {
			if env.Lock == nil {
				return nil
			}
			return env.Lock.Acquire(plan.ID)
		}},
	}
}

func checkVersions(_ context.Context, plan *entities.ReleasePlan) error {
	var errs []error
	for _, item := range plan.Items {
		if !entities.IsValidVersion(item.FromVersion) {
			errs = append(errs, fmt.Errorf("%s: current version %q is not semver", item.Project.Name, item.FromVersion))
		}
		if !entities.IsValidVersion(item.ToVersion) {
			errs = append(errs, fmt.Errorf("%s: target version %q is not semver", item.Project.Name, item.ToVersion))
		}
	}
	return errors.Join(errs...)
}

// PreconditionStage runs every check and fails when any of them fails. Checks never change the
// repository, so a failure here leaves nothing to undo.
type PreconditionStage struct {
	Checks []Precondition
}

func (s *PreconditionStage) Name() entities.ReleaseState { return entities.StatePreconditionsChecked }

func (s *PreconditionStage) Enabled(_ *entities.ReleasePlan) bool { return true }

func (s *PreconditionStage) Run(ctx context.Context, plan *entities.ReleasePlan) error {
	var errs []error
	for _, check := range s.Checks {
		if err := check.Check(ctx, plan); err != nil {
			logger.Errorf("[release] Precondition %q failed: %v", check.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", check.Name, err))
			continue
		}
		logger.Debugf("[release] Precondition %q passed", check.Name)
	}
	return errors.Join(errs...)
}

// buildStage runs clean, build and test through the TaskRunner, in that order.
type buildStage struct {
	env ReleaseEnv
}

func (s *buildStage) Name() entities.ReleaseState { return entities.StateBuilt }

func (s *buildStage) Enabled(plan *entities.ReleasePlan) bool {
	return plan.DoClean || plan.DoBuild || plan.DoTest
}

func (s *buildStage) Run(ctx context.Context, plan *entities.ReleasePlan) error {
	steps := []struct {
		op      entities.Operation
		enabled bool
	}{
		{entities.OperationClean, plan.DoClean},
		{entities.OperationBuild, plan.DoBuild},
		{entities.OperationTest, plan.DoTest},
	}

	for _, step := range steps {
		if !step.enabled {
			continue
		}
		results, err := s.env.Runner.Run(ctx, step.op, plan.Projects(), TaskOptions{
			Concurrency: s.env.Settings.EffectiveConcurrency(),
			Bail:        true,
			Action:      repositories.ActionOptions{Settings: s.env.Settings},
		})
		if err != nil {
			return err
		}
		if err = unsuccessful(step.op, results); err != nil {
			return err
		}
	}
	return nil
}

// unsuccessful returns an error naming every project that did not succeed, or nil.
func unsuccessful(op entities.Operation, results []entities.TaskResult) error {
	var names []string
	var errs []error
	for _, res := range results {
		if res.Status == entities.TaskSuccess {
			continue
		}
		names = append(names, res.Project.Name)
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	if len(names) == 0 {
		return nil
	}
	msg := fmt.Sprintf("%s did not succeed for %s", op, strings.Join(names, ", "))
	if len(errs) == 0 {
		return errors.New(msg)
	}
	return fmt.Errorf("%s: %w", msg, errors.Join(errs...))
}

// fileSnapshot is the content of a file before the version bump touched it.
type fileSnapshot struct {
	path string
	data []byte
	mode os.FileMode
}

// versionBumpStage writes the target versions into every manifest, in plan order, and promotes
// the Unreleased section of each project's changelog. Any failure restores what was written.
type versionBumpStage struct {
	env ReleaseEnv
}

func (s *versionBumpStage) Name() entities.ReleaseState { return entities.StateVersionBumped }

func (s *versionBumpStage) Enabled(_ *entities.ReleasePlan) bool { return true }

func (s *versionBumpStage) Run(ctx context.Context, plan *entities.ReleasePlan) error {
	changes := plan.VersionChanges()
	date := s.env.now().Format("2006-01-02")

	var snapshots []fileSnapshot
	for _, item := range plan.Items {
		item.Files = nil
		if err := ctx.Err(); err != nil {
			s.restore(snapshots)
			return err
		}

		written, err := s.bump(item, dependencyChanges(item.Project, changes), date, &snapshots)
		if err != nil {
			s.restore(snapshots)
			return fmt.Errorf("failed to bump %s: %w", item.Project.Name, err)
		}
		item.Files = written
		logger.Infof("[release] %s: %s -> %s", item.Project.Name, item.FromVersion, item.ToVersion)
	}
	return nil
}

func (s *versionBumpStage) bump(
	item *entities.ReleaseItem,
	deps map[string]entities.VersionChange,
	date string,
	snapshots *[]fileSnapshot,
) ([]string, error) {
	project := item.Project
	manifest := s.env.Manifests.ForKind(project.Kind)
	if manifest == nil {
		return nil, entities.NewConfigurationError(fmt.Sprintf("no manifest handler for %s", project.Kind), nil)
	}

	snap, err := s.snapshot(project.Manifest)
	if err != nil {
		return nil, err
	}
	*snapshots = append(*snapshots, snap)
	if err = manifest.WriteVersion(project.Manifest, item.ToVersion, deps); err != nil {
		return nil, err
	}
	written := []string{project.Manifest}

	changelog := filepath.Join(project.Path, changelogFile)
	exists, err := afero.Exists(s.env.Fs, changelog)
	if err != nil || !exists || item.FromVersion == item.ToVersion {
		return written, nil //nolint:nilerr // a changelog that cannot be stat'ed is simply not updated
	}
	snap, err = s.snapshot(changelog)
	if err != nil {
		return nil, err
	}
	*snapshots = append(*snapshots, snap)
	updated := entities.ReleaseChangelog(string(snap.data), item.ToVersion, date)
	if updated == string(snap.data) {
		return written, nil
	}
	if err = afero.WriteFile(s.env.Fs, changelog, []byte(updated), snap.mode); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", changelog, err)
	}
	return append(written, changelog), nil
}

func (s *versionBumpStage) snapshot(path string) (fileSnapshot, error) {
	info, err := s.env.Fs.Stat(path)
	if err != nil {
		return fileSnapshot{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	data, err := afero.ReadFile(s.env.Fs, path)
	if err != nil {
		return fileSnapshot{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return fileSnapshot{path: path, data: data, mode: info.Mode().Perm()}, nil
}

func (s *versionBumpStage) restore(snapshots []fileSnapshot) {
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		if err := afero.WriteFile(s.env.Fs, snap.path, snap.data, snap.mode); err != nil {
			logger.Errorf("[release] Failed to restore %s: %v", snap.path, err)
		}
	}
}

// dependencyChanges keeps the changes of the project's dependencies whose version moves.
func dependencyChanges(project *entities.Project, changes map[string]entities.VersionChange) map[string]entities.VersionChange {
	out := make(map[string]entities.VersionChange)
	for _, dep := range project.Dependencies {
		if change, ok := changes[dep]; ok && change.From != change.To {
			out[dep] = change
		}
	}
	return out
}

// commitStage records one commit with every bumped file and tags it once per project.
type commitStage struct {
	env ReleaseEnv
}

func (s *commitStage) Name() entities.ReleaseState { return entities.StateCommitted }

func (s *commitStage) Enabled(plan *entities.ReleasePlan) bool { return plan.DoGit }

func (s *commitStage) Run(ctx context.Context, plan *entities.ReleasePlan) error {
	hash, err := s.env.VCS.Commit(ctx, CommitMessage(plan), plan.Files())
	if err != nil {
		return err
	}
	for _, item := range plan.Items {
		item.Committed = true
	}
	logger.Infof("[release] Created release commit %s", shortHash(hash))

	for _, item := range plan.Items {
		if err = s.env.VCS.Tag(ctx, item.Tag, item.Tag); err != nil {
			return err
		}
		logger.Infof("[release] Tagged %s", item.Tag)
	}
	return nil
}

// CommitMessage returns the release commit message: the configured subject followed by one line
// per released project.
func CommitMessage(plan *entities.ReleasePlan) string {
	lines := []string{plan.Message, ""}
	for _, item := range plan.Items {
		lines = append(lines, " - "+item.Tag)
	}
	return strings.Join(lines, "\n")
}

func shortHash(hash string) string {
	const short = 7
	if len(hash) > short {
		return hash[:short]
	}
	return hash
}

// pushStage pushes the release commit and tags. It is never retried.
type pushStage struct {
	env ReleaseEnv
}

func (s *pushStage) Name() entities.ReleaseState { return entities.StatePushed }

func (s *pushStage) Enabled(plan *entities.ReleasePlan) bool { return plan.DoPush }

func (s *pushStage) Run(ctx context.Context, plan *entities.ReleasePlan) error {
	if err := s.env.VCS.Push(ctx, plan.Remote); err != nil {
		return err
	}
	logger.Infof("[release] Pushed to %s", plan.Remote)
	return nil
}

// PublishStage publishes every public item that is not published yet and whose kind the registry
// accepts. A failing project does not stop its siblings; the stage fails afterwards naming which
// projects made it.
type PublishStage struct {
	publisher repositories.PublisherRepository
}

// NewPublishStage creates the publish stage for the env's registry.
func NewPublishStage(env ReleaseEnv) *PublishStage {
	return &PublishStage{publisher: env.Publisher}
}

func (s *PublishStage) Name() entities.ReleaseState { return entities.StatePublished }

func (s *PublishStage) Enabled(plan *entities.ReleasePlan) bool { return plan.DoPublish }

func (s *PublishStage) Run(ctx context.Context, plan *entities.ReleasePlan) error {
	var failed []string
	var errs []error
	for _, item := range plan.Items {
		switch {
		case item.Project.Private:
			logger.Infof("[release] %s is private, not publishing", item.Project.Name)
			continue
		case item.Published:
			logger.Debugf("[release] %s was already published", item.Project.Name)
			continue
		case !s.publisher.Supports(item.Project.Kind):
			logger.Infof("[release] %s is a %s project, %s does not publish it",
				item.Project.Name, item.Project.Kind, s.publisher.Name())
			continue
		}

		result, err := s.publisher.Publish(ctx, item.Released(), plan.DistTag)
		if err != nil {
			logger.Errorf("[release] Failed to publish %s: %v", item.Project.Name, err)
			failed = append(failed, item.Project.Name)
			errs = append(errs, err)
			continue
		}
		item.Published = true
		logger.Infof("[release] %s %s on %s", item.Tag, result.Status, s.publisher.Name())
	}

	if len(failed) == 0 {
		return nil
	}
	return &entities.StageError{
		Stage:     entities.StatePublished,
		Succeeded: plan.PublishedNames(),
		Failed:    failed,
		Err:       errors.Join(errs...),
	}
}

// doneStage logs the outcome of the plan.
type doneStage struct{}

func (s *doneStage) Name() entities.ReleaseState { return entities.StateDone }

func (s *doneStage) Enabled(_ *entities.ReleasePlan) bool { return true }

func (s *doneStage) Run(_ context.Context, plan *entities.ReleasePlan) error {
	names := make([]string, 0, len(plan.Items))
	for _, item := range plan.Items {
		names = append(names, item.Tag)
	}
	sort.Strings(names)
	logger.Infof("[release] Released %d project(s): %s", len(names), strings.Join(names, ", "))
	return nil
}
