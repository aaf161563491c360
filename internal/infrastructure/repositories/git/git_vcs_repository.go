package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

const tokenUsername = "x-access-token"

// VCSRepository implements repositories.VCSRepository on top of go-git, so no git binary is
// needed. Every mutating call either completes or leaves the index and refs as they were.
type VCSRepository struct {
	repo   *gogit.Repository
	root   string
	author entities.AuthorSettings
	token  string
	now    func() time.Time
}

var _ repositories.VCSRepository = (*VCSRepository)(nil)

// NewVCSRepository opens the git repository containing dir.
func NewVCSRepository(dir string, author entities.AuthorSettings, token string) (*VCSRepository, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, &entities.VcsError{Op: "open", Err: err}
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, &entities.VcsError{Op: "open", Err: err}
	}
	return &VCSRepository{
		repo:   repo,
		root:   wt.Filesystem.Root(),
		author: author,
		token:  token,
		now:    time.Now,
	}, nil
}

// NewVCSRepositoryFromSettings opens the repository at the monorepo root.
func NewVCSRepositoryFromSettings(settings *entities.Settings) (repositories.VCSRepository, error) {
	return NewVCSRepository(settings.Root, settings.Release.Author, settings.GitHub.Token)
}

// IsClean reports whether the worktree has no staged, modified or untracked files.
func (r *VCSRepository) IsClean(_ context.Context) (bool, error) {
	status, err := r.status()
	if err != nil {
		return false, err
	}
	return status.IsClean(), nil
}

// CurrentBranch returns the short name of the checked-out branch.
func (r *VCSRepository) CurrentBranch(_ context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", &entities.VcsError{Op: "branch", Err: err}
	}
	if !head.Name().IsBranch() {
		return "", &entities.VcsError{Op: "branch", Err: errors.New("HEAD is detached")}
	}
	return head.Name().Short(), nil
}

// ChangedFiles returns the sorted slash-separated paths, relative to the repository root, of
// every file that differs from HEAD.
func (r *VCSRepository) ChangedFiles(_ context.Context) ([]string, error) {
	status, err := r.status()
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(status))
	for path, st := range status {
		if st.Staging == gogit.Unmodified && st.Worktree == gogit.Unmodified {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// Commit stages the given files and records one commit. When anything fails the index is reset
// to HEAD.
func (r *VCSRepository) Commit(_ context.Context, message string, files []string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", &entities.VcsError{Op: "commit", Err: err}
	}
	head, err := r.repo.Head()
	if err != nil {
		return "", &entities.VcsError{Op: "commit", Err: err}
	}
	signature, err := r.signature()
	if err != nil {
		return "", &entities.VcsError{Op: "commit", Err: err}
	}

	hash, err := r.stageAndCommit(wt, message, files, signature)
	if err != nil {
		if resetErr := wt.Reset(&gogit.ResetOptions{Commit: head.Hash(), Mode: gogit.MixedReset}); resetErr != nil {
			logger.Warnf("[git] Failed to reset the index after a failed commit: %v", resetErr)
		}
		return "", &entities.VcsError{Op: "commit", Err: err}
	}
	logger.Debugf("[git] Created commit %s", hash)
	return hash.String(), nil
}

func (r *VCSRepository) stageAndCommit(
	wt *gogit.Worktree,
	message string,
	files []string,
	signature *object.Signature,
) (plumbing.Hash, error) {
	for _, file := range files {
		rel, err := r.relative(file)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		if _, err = wt.Add(rel); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("failed to stage %s: %w", rel, err)
		}
	}
	return wt.Commit(message, &gogit.CommitOptions{Author: signature, Committer: signature})
}

// Tag creates an annotated tag on HEAD.
func (r *VCSRepository) Tag(_ context.Context, name, message string) error {
	head, err := r.repo.Head()
	if err != nil {
		return &entities.VcsError{Op: "tag", Err: err}
	}
	signature, err := r.signature()
	if err != nil {
		return &entities.VcsError{Op: "tag", Err: err}
	}
	if _, err = r.repo.CreateTag(name, head.Hash(), &gogit.CreateTagOptions{
		Tagger:  signature,
		Message: message,
	}); err != nil {
		return &entities.VcsError{Op: "tag", Err: fmt.Errorf("%s: %w", name, err)}
	}
	return nil
}

// Push pushes the current branch and every tag to remote.
func (r *VCSRepository) Push(ctx context.Context, remote string) error {
	branch, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	refs := []config.RefSpec{
		config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)),
		config.RefSpec("refs/tags/*:refs/tags/*"),
	}

	err = r.repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: remote,
		RefSpecs:   refs,
		Auth:       r.auth(remote),
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return &entities.VcsError{Op: "push", Err: err}
	}
	return nil
}

func (r *VCSRepository) status() (gogit.Status, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, &entities.VcsError{Op: "status", Err: err}
	}
	status, err := wt.Status()
	if err != nil {
		return nil, &entities.VcsError{Op: "status", Err: err}
	}
	return status, nil
}

// signature returns the configured author, falling back to the user.name and user.email of the
// repository and global git configuration.
func (r *VCSRepository) signature() (*object.Signature, error) {
	name, email := r.author.Name, r.author.Email
	if name == "" || email == "" {
		cfg, err := r.repo.ConfigScoped(config.GlobalScope)
		if err != nil {
			return nil, fmt.Errorf("failed to read git config: %w", err)
		}
		if name == "" {
			name = cfg.User.Name
		}
		if email == "" {
			email = cfg.User.Email
		}
	}
	if name == "" || email == "" {
		return nil, errors.New("no author configured (set release.author or git user.name/user.email)")
	}
	return &object.Signature{Name: name, Email: email, When: r.now()}, nil
}

// auth returns token credentials for HTTP remotes; other transports use their own defaults.
func (r *VCSRepository) auth(remote string) transport.AuthMethod {
	if r.token == "" {
		return nil
	}
	rem, err := r.repo.Remote(remote)
	if err != nil || len(rem.Config().URLs) == 0 {
		return nil
	}
	if !strings.HasPrefix(rem.Config().URLs[0], "http") {
		return nil
	}
	return &http.BasicAuth{Username: tokenUsername, Password: r.token}
}

func (r *VCSRepository) relative(file string) (string, error) {
	if !filepath.IsAbs(file) {
		return filepath.ToSlash(file), nil
	}
	rel, err := filepath.Rel(r.root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the repository", file)
	}
	return filepath.ToSlash(rel), nil
}
