package repositories

import (
	"github.com/spf13/afero"
	"go.uber.org/dig"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	domainRepos "github.com/rios0rios0/monorepo/internal/domain/repositories"
	"github.com/rios0rios0/monorepo/internal/infrastructure/repositories/actions"
	ghRepo "github.com/rios0rios0/monorepo/internal/infrastructure/repositories/github"
	jsRepo "github.com/rios0rios0/monorepo/internal/infrastructure/repositories/javascript"
	npmRepo "github.com/rios0rios0/monorepo/internal/infrastructure/repositories/npm"
	pyRepo "github.com/rios0rios0/monorepo/internal/infrastructure/repositories/python"
	"github.com/rios0rios0/monorepo/internal/infrastructure/repositories/report"
	tfRepo "github.com/rios0rios0/monorepo/internal/infrastructure/repositories/terraform"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Every filesystem access goes through afero so tests can swap in memory
	if err := container.Provide(afero.NewOsFs); err != nil {
		return err
	}

	// Register manifest registry with all manifest implementations
	if err := container.Provide(func(fs afero.Fs) *ManifestRegistry {
		reg := NewManifestRegistry()
		reg.Register(jsRepo.NewManifestRepository(fs))
		reg.Register(pyRepo.NewManifestRepository(fs))
		reg.Register(tfRepo.NewManifestRepository(fs))
		return reg
	}); err != nil {
		return err
	}

	// Register action registry with one action per operation
	if err := container.Provide(func(fs afero.Fs) *ActionRegistry {
		reg := NewActionRegistry()
		reg.Register(actions.NewBootstrapAction(fs))
		reg.Register(actions.NewScriptAction(entities.OperationBuild))
		reg.Register(actions.NewCleanAction(fs))
		reg.Register(actions.NewScriptAction(entities.OperationLint))
		reg.Register(actions.NewScriptAction(entities.OperationTest))
		reg.Register(actions.NewScriptAction(entities.OperationRun))
		reg.Register(actions.NewUnlinkAction(fs))
		return reg
	}); err != nil {
		return err
	}

	// Register publisher registry with all registry factories
	if err := container.Provide(func(fs afero.Fs) *PublisherRegistry {
		reg := NewPublisherRegistry()
		reg.Register("npm", npmRepo.NewPublisherRepository)
		reg.Register("github", func(settings *entities.Settings) domainRepos.PublisherRepository {
			return ghRepo.NewPublisherRepository(fs, settings)
		})
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(NewFilesystemProjectRepository); err != nil {
		return err
	}
	if err := container.Provide(NewVCSFactory); err != nil {
		return err
	}
	if err := container.Provide(NewLockFactory); err != nil {
		return err
	}
	if err := container.Provide(report.NewReportRepository); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *FilesystemProjectRepository) domainRepos.ProjectRepository {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *report.ReportRepository) domainRepos.ReportRepository {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
