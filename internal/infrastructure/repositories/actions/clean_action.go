package actions

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// CleanAction removes the configured build outputs of a project.
type CleanAction struct {
	fs afero.Fs
}

var _ repositories.ActionRepository = (*CleanAction)(nil)

// NewCleanAction creates the clean action over the given filesystem.
func NewCleanAction(fs afero.Fs) *CleanAction {
	return &CleanAction{fs: fs}
}

func (a *CleanAction) Operation() entities.Operation { return entities.OperationClean }

// Execute removes every clean path under the project directory. Missing paths are ignored.
func (a *CleanAction) Execute(
	ctx context.Context,
	project *entities.Project,
	opts repositories.ActionOptions,
) repositories.ActionOutcome {
	if opts.Settings == nil {
		return repositories.ActionOutcome{}
	}

	var removed []string
	for _, rel := range opts.Settings.Clean.Paths {
		if err := ctx.Err(); err != nil {
			return repositories.ActionOutcome{Output: strings.Join(removed, "\n"), Err: err}
		}

		target, err := within(project.Path, rel)
		if err != nil {
			return repositories.ActionOutcome{Err: err}
		}
		exists, err := afero.Exists(a.fs, target)
		if err != nil {
			return repositories.ActionOutcome{Err: fmt.Errorf("failed to stat %s: %w", target, err)}
		}
		if !exists {
			continue
		}
		if err = a.fs.RemoveAll(target); err != nil {
			return repositories.ActionOutcome{Err: fmt.Errorf("failed to remove %s: %w", target, err)}
		}
		logger.Debugf("[clean] Removed %s", target)
		removed = append(removed, "removed "+rel)
	}
	return repositories.ActionOutcome{Output: strings.Join(removed, "\n")}
}

// within joins rel to dir and rejects results escaping dir.
func within(dir, rel string) (string, error) {
	target := filepath.Join(dir, rel)
	back, err := filepath.Rel(dir, target)
	if err != nil || back == "." || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", entities.NewConfigurationError(fmt.Sprintf("path %q is outside project %s", rel, dir), err)
	}
	return target, nil
}
