package repositories

import "context"

// VCSRepository abstracts the version-control system of the monorepo. Every call is atomic:
// on failure the repository state is left unchanged. Errors wrap *entities.VcsError.
type VCSRepository interface {
	IsClean(ctx context.Context) (bool, error)
	CurrentBranch(ctx context.Context) (string, error)
	ChangedFiles(ctx context.Context) ([]string, error)
	Commit(ctx context.Context, message string, files []string) (string, error)
	Tag(ctx context.Context, name, message string) error
	Push(ctx context.Context, remote string) error
}
