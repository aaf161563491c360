//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// SpyVCSRepository implements repositories.VCSRepository as a configurable spy.
type SpyVCSRepository struct {
	// --- IsClean / CurrentBranch / ChangedFiles ---
	Dirty     bool
	Branch    string
	Changed   []string
	StatusErr error

	// --- Commit ---
	CommitHash string
	CommitErr  error
	Commits    []CommitCall

	// --- Tag ---
	TagErr error
	Tags   []string

	// --- Push ---
	PushErr error
	Pushes  []string

	// Calls records every mutating call ("commit", "tag:<name>", "push:<remote>") in order.
	Calls []string
}

// CommitCall records a single invocation of Commit.
type CommitCall struct {
	Message string
	Files   []string
}

var _ repositories.VCSRepository = (*SpyVCSRepository)(nil)

func (v *SpyVCSRepository) IsClean(_ context.Context) (bool, error) {
	return !v.Dirty, v.StatusErr
}

func (v *SpyVCSRepository) CurrentBranch(_ context.Context) (string, error) {
	if v.Branch == "" {
		return "main", v.StatusErr
	}
	return v.Branch, v.StatusErr
}

func (v *SpyVCSRepository) ChangedFiles(_ context.Context) ([]string, error) {
	return v.Changed, v.StatusErr
}

func (v *SpyVCSRepository) Commit(_ context.Context, message string, files []string) (string, error) {
	v.Calls = append(v.Calls, "commit")
	if v.CommitErr != nil {
		return "", &entities.VcsError{Op: "commit", Err: v.CommitErr}
	}
	v.Commits = append(v.Commits, CommitCall{Message: message, Files: files})
	if v.CommitHash == "" {
		return "0123456789abcdef", nil
	}
	return v.CommitHash, nil
}

func (v *SpyVCSRepository) Tag(_ context.Context, name, _ string) error {
	v.Calls = append(v.Calls, "tag:"+name)
	if v.TagErr != nil {
		return &entities.VcsError{Op: "tag", Err: v.TagErr}
	}
	v.Tags = append(v.Tags, name)
	return nil
}

func (v *SpyVCSRepository) Push(_ context.Context, remote string) error {
	v.Calls = append(v.Calls, "push:"+remote)
	if v.PushErr != nil {
		return &entities.VcsError{Op: "push", Err: v.PushErr}
	}
	v.Pushes = append(v.Pushes, remote)
	return nil
}
