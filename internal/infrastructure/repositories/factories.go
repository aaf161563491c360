package repositories

import (
	"github.com/spf13/afero"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	domainRepos "github.com/rios0rios0/monorepo/internal/domain/repositories"
	"github.com/rios0rios0/monorepo/internal/infrastructure/repositories/git"
	"github.com/rios0rios0/monorepo/internal/infrastructure/repositories/lockfile"
)

// VCSFactory opens the version-control repository of the monorepo described by the settings.
type VCSFactory func(settings *entities.Settings) (domainRepos.VCSRepository, error)

// LockFactory creates the release lock of the monorepo described by the settings.
type LockFactory func(settings *entities.Settings) domainRepos.LockRepository

// NewVCSFactory returns the go-git backed VCS factory.
func NewVCSFactory() VCSFactory {
	return git.NewVCSRepositoryFromSettings
}

// NewLockFactory returns a factory of lock files on fs.
func NewLockFactory(fs afero.Fs) LockFactory {
	return func(settings *entities.Settings) domainRepos.LockRepository {
		return lockfile.NewLockRepository(fs, settings.LockPath())
	}
}
