package actions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// BootstrapAction installs a project's external dependencies, then links the sibling projects it
// depends on into its link directory so they resolve to the working copy.
type BootstrapAction struct {
	fs      afero.Fs
	install *ScriptAction
}

var _ repositories.ActionRepository = (*BootstrapAction)(nil)

// NewBootstrapAction creates the bootstrap action over the given filesystem.
func NewBootstrapAction(fs afero.Fs) *BootstrapAction {
	return &BootstrapAction{fs: fs, install: NewScriptAction(entities.OperationBootstrap)}
}

func (a *BootstrapAction) Operation() entities.Operation { return entities.OperationBootstrap }

func (a *BootstrapAction) Execute(
	ctx context.Context,
	project *entities.Project,
	opts repositories.ActionOptions,
) repositories.ActionOutcome {
	outcome := a.install.Execute(ctx, project, opts)
	if outcome.Err != nil {
		return outcome
	}
	if project.Kind != entities.KindJavaScript || opts.Settings == nil {
		return outcome
	}

	linker, ok := a.fs.(afero.Linker)
	if !ok {
		return repositories.ActionOutcome{
			Output: outcome.Output,
			Err:    errors.New("filesystem does not support symbolic links"),
		}
	}

	lines := []string{strings.TrimRight(outcome.Output, "\n")}
	for _, dep := range siblings(project, opts.Set) {
		link := filepath.Join(project.Path, opts.Settings.Link.Dir, filepath.FromSlash(dep.Name))
		if err := a.replaceWithLink(linker, dep.Path, link); err != nil {
			return repositories.ActionOutcome{Output: strings.Join(lines, "\n"), Err: err}
		}
		logger.Debugf("[bootstrap] Linked %s -> %s", link, dep.Path)
		lines = append(lines, fmt.Sprintf("linked %s", dep.Name))
	}
	return repositories.ActionOutcome{Output: strings.TrimLeft(strings.Join(lines, "\n"), "\n")}
}

func (a *BootstrapAction) replaceWithLink(linker afero.Linker, target, link string) error {
	if err := a.fs.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(link), err)
	}
	if err := a.fs.RemoveAll(link); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to replace %s: %w", link, err)
	}
	if err := linker.SymlinkIfPossible(target, link); err != nil {
		return fmt.Errorf("failed to link %s: %w", link, err)
	}
	return nil
}

// UnlinkAction removes the sibling links created by bootstrap, leaving regular installs alone.
type UnlinkAction struct {
	fs afero.Fs
}

var _ repositories.ActionRepository = (*UnlinkAction)(nil)

// NewUnlinkAction creates the unlink action over the given filesystem.
func NewUnlinkAction(fs afero.Fs) *UnlinkAction {
	return &UnlinkAction{fs: fs}
}

func (a *UnlinkAction) Operation() entities.Operation { return entities.OperationUnlink }

func (a *UnlinkAction) Execute(
	ctx context.Context,
	project *entities.Project,
	opts repositories.ActionOptions,
) repositories.ActionOutcome {
	if project.Kind != entities.KindJavaScript || opts.Settings == nil {
		return repositories.ActionOutcome{}
	}
	lstater, ok := a.fs.(afero.Lstater)
	if !ok {
		return repositories.ActionOutcome{Err: errors.New("filesystem does not support symbolic links")}
	}

	var lines []string
	for _, dep := range siblings(project, opts.Set) {
		if err := ctx.Err(); err != nil {
			return repositories.ActionOutcome{Output: strings.Join(lines, "\n"), Err: err}
		}
		link := filepath.Join(project.Path, opts.Settings.Link.Dir, filepath.FromSlash(dep.Name))
		info, _, err := lstater.LstatIfPossible(link)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return repositories.ActionOutcome{Err: fmt.Errorf("failed to stat %s: %w", link, err)}
		}
		if info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		if err = a.fs.Remove(link); err != nil {
			return repositories.ActionOutcome{Err: fmt.Errorf("failed to remove %s: %w", link, err)}
		}
		lines = append(lines, "unlinked "+dep.Name)
	}
	return repositories.ActionOutcome{Output: strings.Join(lines, "\n")}
}

// siblings returns the projects of the working set the project depends on.
func siblings(project *entities.Project, set []*entities.Project) []*entities.Project {
	var out []*entities.Project
	for _, p := range set {
		if p.Name != project.Name && project.DependsOn(p.Name) {
			out = append(out, p)
		}
	}
	return out
}
