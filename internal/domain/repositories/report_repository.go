package repositories

import "github.com/rios0rios0/monorepo/internal/domain/entities"

// ReportRepository persists the summary of a release.
type ReportRepository interface {
	Write(path string, plan *entities.ReleasePlan) error
}
