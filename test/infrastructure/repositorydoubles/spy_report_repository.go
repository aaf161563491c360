//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// SpyReportRepository implements repositories.ReportRepository and records every written report.
type SpyReportRepository struct {
	WriteErr error
	Paths    []string
	States   []entities.ReleaseState
}

var _ repositories.ReportRepository = (*SpyReportRepository)(nil)

func (r *SpyReportRepository) Write(path string, plan *entities.ReleasePlan) error {
	r.Paths = append(r.Paths, path)
	r.States = append(r.States, plan.State)
	return r.WriteErr
}
